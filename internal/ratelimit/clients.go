package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
)

// Reason names the layer that rejected a request; it is also the
// limiter_type metric label.
type Reason string

const (
	ReasonNone  Reason = ""
	ReasonBurst Reason = "burst"
	ReasonDaily Reason = "daily"
)

// ClientConfig configures a ClientLimiter.
type ClientConfig struct {
	Burst      float64 // bucket capacity
	RefillRate float64 // tokens per second
	DailyLimit int     // rolling 24h cap; 0 disables

	CleanupPeriod time.Duration // how often idle clients are forgotten

	Metrics *metrics.Metrics
	Now     func() time.Time // nil = wall clock
}

// ClientLimiter keeps one bucket and one daily window per client key,
// normally the client IP.
type ClientLimiter struct {
	cfg ClientConfig

	mu      sync.RWMutex
	clients map[string]*client

	stopOnce sync.Once
	stop     chan struct{}
	done     sync.WaitGroup
}

type client struct {
	mu     sync.Mutex // serializes check-then-consume across both layers
	bucket *Bucket
	daily  *Window
}

// NewClientLimiter creates the limiter and starts its cleanup loop.
// Call Stop to end the loop.
func NewClientLimiter(cfg ClientConfig) *ClientLimiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	l := &ClientLimiter{
		cfg:     cfg,
		clients: make(map[string]*client),
		stop:    make(chan struct{}),
	}
	l.done.Go(l.cleanupLoop)
	return l
}

// Allow records a request for key. Both layers are checked before either
// is consumed, so a rejected request costs nothing. An empty key is
// always allowed.
func (l *ClientLimiter) Allow(key string) (bool, Reason) {
	if key == "" {
		return true, ReasonNone
	}

	c := l.get(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.daily.check() {
		l.cfg.Metrics.RecordRateLimiterDrop(string(ReasonDaily))
		return false, ReasonDaily
	}
	if !c.bucket.check() {
		l.cfg.Metrics.RecordRateLimiterDrop(string(ReasonBurst))
		return false, ReasonBurst
	}

	c.daily.consume()
	c.bucket.consume()
	return true, ReasonNone
}

func (l *ClientLimiter) get(key string) *client {
	l.mu.RLock()
	c, ok := l.clients[key]
	l.mu.RUnlock()
	if ok {
		return c
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok = l.clients[key]; ok {
		return c
	}
	c = &client{
		bucket: NewBucket(l.cfg.Burst, l.cfg.RefillRate, l.cfg.Now),
		daily:  NewWindow(l.cfg.DailyLimit, 24*time.Hour, l.cfg.Now),
	}
	l.clients[key] = c
	return c
}

// DailyRemaining returns the remaining daily quota of key, or -1 when the
// daily cap is disabled.
func (l *ClientLimiter) DailyRemaining(key string) int {
	if l.cfg.DailyLimit <= 0 {
		return -1
	}
	l.mu.RLock()
	c, ok := l.clients[key]
	l.mu.RUnlock()
	if !ok {
		return l.cfg.DailyLimit
	}
	return c.daily.Remaining()
}

// ActiveClients returns the number of tracked clients.
func (l *ClientLimiter) ActiveClients() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}

// Cleanup forgets clients whose bucket is full and whose daily window is
// empty, and returns how many remain.
func (l *ClientLimiter) Cleanup() int {
	l.mu.Lock()
	for key, c := range l.clients {
		if c.bucket.Full() && c.daily.Empty() {
			delete(l.clients, key)
		}
	}
	n := len(l.clients)
	l.mu.Unlock()

	l.cfg.Metrics.SetRateLimiterClients(n)
	return n
}

func (l *ClientLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// Stop ends the cleanup loop and waits for it. Safe to call twice.
func (l *ClientLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	l.done.Wait()
}

// Shutdown adapts Stop to the context-taking shutdown hooks.
func (l *ClientLimiter) Shutdown(context.Context) error {
	l.Stop()
	return nil
}
