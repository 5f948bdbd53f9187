// Package feed loads tabular data published as CSV (typically a spreadsheet
// "publish to web" export) and keeps it in a per-feed TTL cache.
//
// A Feed holds one immutable decoded slice at a time. A refresh downloads,
// parses and decodes the whole document and only then swaps the slice in;
// a failed refresh leaves the previous slice untouched.
package feed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/xuanlung-gov/tthc-assistant/internal/ctxutil"
	domerrors "github.com/xuanlung-gov/tthc-assistant/internal/errors"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
)

// Clock supplies the current time to the cache.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Decoder turns parsed rows into typed records. It must not retain rows.
type Decoder[T any] func(rows []Row) []T

// Options configures a Feed.
type Options struct {
	Name    string        // Metrics and log label, e.g. "tthc"
	URL     string        // Empty means the feed is unavailable
	TTL     time.Duration // Cache lifetime of a successful download
	Timeout time.Duration // Bound on one download
	Clock   Clock
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// Status describes a feed for readiness reporting.
type Status struct {
	Name       string    `json:"name"`
	Configured bool      `json:"configured"`
	Records    int       `json:"records"`
	FetchedAt  time.Time `json:"fetched_at,omitzero"`
	Fresh      bool      `json:"fresh"`
}

// Feed is a cached, typed view of one remote CSV document.
type Feed[T any] struct {
	name    string
	url     string
	ttl     time.Duration
	timeout time.Duration
	clock   Clock
	fetcher Fetcher
	decode  Decoder[T]
	metrics *metrics.Metrics
	logger  *logger.Logger

	group singleflight.Group

	mu        sync.RWMutex
	records   []T // nil when never fetched or the last download was empty
	fetchedAt time.Time
}

// New creates a feed. Zero TTL/Timeout/Clock take package defaults.
func New[T any](fetcher Fetcher, decode Decoder[T], opts Options) *Feed[T] {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewWithWriter("error", io.Discard)
	}
	return &Feed[T]{
		name:    opts.Name,
		url:     opts.URL,
		ttl:     opts.TTL,
		timeout: opts.Timeout,
		clock:   opts.Clock,
		fetcher: fetcher,
		decode:  decode,
		metrics: opts.Metrics,
		logger:  opts.Logger.WithModule("feed").WithField("feed", opts.Name),
	}
}

// Name returns the feed label.
func (f *Feed[T]) Name() string { return f.name }

// Configured reports whether the feed has a URL.
func (f *Feed[T]) Configured() bool { return f.url != "" }

// Records returns the cached records, downloading them first when the cache
// is empty or older than the TTL.
//
// It returns (nil, nil) without any network call when the feed has no URL,
// an empty non-nil slice when the document has no data rows, and a
// *errors.FetchError when the download fails.
func (f *Feed[T]) Records(ctx context.Context) ([]T, error) {
	if f.url == "" {
		return nil, nil
	}

	if records, ok := f.cached(); ok {
		f.metrics.RecordCacheHit(f.name)
		return records, nil
	}
	f.metrics.RecordCacheMiss(f.name)

	return f.load(ctx)
}

// Refresh downloads the feed regardless of cache age and returns the
// number of records now cached.
func (f *Feed[T]) Refresh(ctx context.Context) (int, error) {
	if f.url == "" {
		return 0, domerrors.ErrFeedUnavailable
	}
	records, err := f.load(ctx)
	return len(records), err
}

// Status reports the current cache state.
func (f *Feed[T]) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Status{
		Name:       f.name,
		Configured: f.url != "",
		Records:    len(f.records),
		FetchedAt:  f.fetchedAt,
		Fresh:      f.records != nil && f.clock.Now().Sub(f.fetchedAt) < f.ttl,
	}
}

func (f *Feed[T]) cached() ([]T, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.records == nil || f.clock.Now().Sub(f.fetchedAt) >= f.ttl {
		return nil, false
	}
	return f.records, true
}

// load runs one shared download for all concurrent callers. The download
// is detached from any single caller's cancellation; each caller still
// stops waiting when its own context ends.
func (f *Feed[T]) load(ctx context.Context) ([]T, error) {
	detached := ctxutil.PreserveTracing(ctx)
	ch := f.group.DoChan(f.name, func() (any, error) {
		return f.download(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			f.metrics.RecordFeedDedup(f.name)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}

func (f *Feed[T]) download(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	body, err := f.fetcher.Fetch(ctx, f.url)
	if err == nil {
		var rows []Row
		rows, err = Parse(bytes.NewReader(body))
		if err == nil {
			return f.store(ctx, rows, time.Since(start))
		}
	}

	status := 0
	var se *StatusError
	if errors.As(err, &se) {
		status = se.StatusCode
	}
	f.metrics.RecordFeedFetch(f.name, "error", time.Since(start).Seconds())
	f.logger.WithError(err).WithField("status", status).WarnContext(ctx, "Feed download failed, keeping previous cache")
	return nil, domerrors.NewFetchError(f.name, f.url, status, err)
}

func (f *Feed[T]) store(ctx context.Context, rows []Row, elapsed time.Duration) ([]T, error) {
	records := f.decode(rows)
	now := f.clock.Now()

	if len(records) == 0 {
		f.mu.Lock()
		f.records = nil
		f.fetchedAt = now
		f.mu.Unlock()

		f.metrics.RecordFeedFetch(f.name, "empty", elapsed.Seconds())
		f.metrics.SetFeedRecords(f.name, 0)
		f.logger.WithField("rows", len(rows)).WarnContext(ctx, "Feed has no usable records")
		return []T{}, nil
	}

	f.mu.Lock()
	f.records = records
	f.fetchedAt = now
	f.mu.Unlock()

	f.metrics.RecordFeedFetch(f.name, "success", elapsed.Seconds())
	f.metrics.SetFeedRecords(f.name, len(records))
	f.logger.WithField("records", len(records)).
		WithField("skipped_rows", len(rows)-len(records)).
		WithField("duration_ms", elapsed.Milliseconds()).
		InfoContext(ctx, "Feed refreshed")
	return records, nil
}
