package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultAsyncBufferSize   = 1024
	defaultAsyncFlushTimeout = 5 * time.Second
)

// AsyncOptions configures the async log pipeline.
type AsyncOptions struct {
	BufferSize   int           // Queued records before new ones are dropped
	FlushTimeout time.Duration // Shutdown flush bound when ctx has no deadline
}

type queuedRecord struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// asyncQueue is shared by every handler derived through WithAttrs/WithGroup.
type asyncQueue struct {
	mu           sync.RWMutex // guards records against send-after-close
	records      chan queuedRecord
	flushTimeout time.Duration
	closed       bool
	dropped      atomic.Uint64
	done         sync.WaitGroup
}

// AsyncHandler hands records to a single background goroutine so that
// remote shipping never blocks a chat request. When the queue is full
// records are dropped and counted.
type AsyncHandler struct {
	queue   *asyncQueue
	handler slog.Handler
}

// NewAsyncHandler starts the background goroutine and returns the handler.
func NewAsyncHandler(handler slog.Handler, opts AsyncOptions) *AsyncHandler {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultAsyncBufferSize
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = defaultAsyncFlushTimeout
	}

	q := &asyncQueue{
		records:      make(chan queuedRecord, opts.BufferSize),
		flushTimeout: opts.FlushTimeout,
	}
	q.done.Go(func() {
		for rec := range q.records {
			_ = rec.handler.Handle(rec.ctx, rec.record)
		}
	})

	return &AsyncHandler{queue: q, handler: handler}
}

// Enabled reports whether the wrapped handler accepts the level.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle queues a clone of the record. It never blocks.
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.handler.Enabled(ctx, r.Level) {
		return nil
	}
	h.queue.mu.RLock()
	defer h.queue.mu.RUnlock()
	if h.queue.closed {
		return nil
	}
	select {
	case h.queue.records <- queuedRecord{ctx: context.WithoutCancel(ctx), record: r.Clone(), handler: h.handler}:
	default:
		h.queue.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{queue: h.queue, handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a handler sharing the same queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{queue: h.queue, handler: h.handler.WithGroup(name)}
}

// Dropped returns how many records were discarded because the queue was full.
func (h *AsyncHandler) Dropped() uint64 {
	return h.queue.dropped.Load()
}

// Shutdown stops accepting records and waits for the queue to drain.
// Safe to call more than once.
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	if h == nil || h.queue == nil {
		return nil
	}
	h.queue.mu.Lock()
	if h.queue.closed {
		h.queue.mu.Unlock()
		return nil
	}
	h.queue.closed = true
	close(h.queue.records)
	h.queue.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.queue.flushTimeout)
		defer cancel()
	}

	drained := make(chan struct{})
	go func() {
		h.queue.done.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
