// Package warmup preloads the CSV feeds at startup and keeps them fresh in
// the background, so the first chat request after boot or after a TTL
// expiry does not pay for a download.
package warmup

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domerrors "github.com/xuanlung-gov/tthc-assistant/internal/errors"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
)

// Target is a feed that can be refreshed. *feed.Feed[T] satisfies it.
type Target interface {
	Name() string
	Configured() bool
	Refresh(ctx context.Context) (int, error)
}

// Task status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Result is the outcome of refreshing one target.
type Result struct {
	Feed    string
	Status  string
	Records int
	Err     error
}

// Options configures Preload and Refresher.
type Options struct {
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

func (o Options) logger() *logger.Logger {
	if o.Logger == nil {
		return logger.NewWithWriter("error", io.Discard).WithModule("warmup")
	}
	return o.Logger.WithModule("warmup")
}

// Preload refreshes every target concurrently and returns one Result per
// target in argument order. A failing feed never fails the others; the
// returned error joins the individual failures and is informational only.
// Unconfigured targets are skipped.
func Preload(ctx context.Context, opts Options, targets ...Target) ([]Result, error) {
	log := opts.logger()
	start := time.Now()
	results := make([]Result, len(targets))

	var g errgroup.Group
	for i, t := range targets {
		g.Go(func() error {
			results[i] = refreshOne(ctx, t, opts.Metrics, log)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	opts.Metrics.RecordWarmupDuration(elapsed.Seconds())

	var errs []error
	fields := map[string]any{"duration": elapsed.String()}
	for _, r := range results {
		fields[r.Feed] = r.Records
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		log.WithFields(fields).WithError(err).WarnContext(ctx, "Feed preload finished with errors")
	} else {
		log.WithFields(fields).InfoContext(ctx, "Feed preload complete")
	}
	return results, err
}

func refreshOne(ctx context.Context, t Target, m *metrics.Metrics, log *logger.Logger) Result {
	r := Result{Feed: t.Name()}
	if !t.Configured() {
		r.Status = StatusSkipped
		m.RecordWarmupTask(r.Feed, r.Status)
		log.WithField("feed", r.Feed).InfoContext(ctx, "Feed URL not configured, skipping preload")
		return r
	}

	n, err := t.Refresh(ctx)
	r.Records = n
	switch {
	case err == nil:
		r.Status = StatusSuccess
	case errors.Is(err, domerrors.ErrFeedUnavailable):
		r.Status = StatusSkipped
	default:
		r.Status = StatusError
		r.Err = err
	}
	m.RecordWarmupTask(r.Feed, r.Status)
	return r
}

// Refresher periodically refreshes targets ahead of their TTL. A failed
// tick is logged and the previous cache stays in place.
type Refresher struct {
	interval time.Duration
	targets  []Target
	opts     Options
	log      *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRefresher creates a refresher. A non-positive interval disables it:
// Start becomes a no-op.
func NewRefresher(interval time.Duration, opts Options, targets ...Target) *Refresher {
	return &Refresher{
		interval: interval,
		targets:  targets,
		opts:     opts,
		log:      opts.logger(),
	}
}

// Start launches the background loop. It returns immediately.
func (r *Refresher) Start(ctx context.Context) {
	if r.interval <= 0 || len(r.targets) == 0 {
		return
	}
	r.once.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		r.wg.Go(func() { r.loop(ctx) })
		r.log.WithField("interval", r.interval.String()).InfoContext(ctx, "Background feed refresh started")
	})
}

func (r *Refresher) loop(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			r.log.WithField("panic", p).Error("Panic in background feed refresh")
		}
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = Preload(ctx, r.opts, r.targets...)
		}
	}
}

// Stop ends the loop and waits for an in-flight refresh to return.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
