// Package ratelimit throttles chat requests per client: a token bucket
// absorbs short bursts and a sliding window caps the daily volume.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a token bucket. It is safe for concurrent use.
//
//   - Tokens are added at refillRate per second up to capacity
//   - Each request consumes one token
//   - A request without a token is rejected, never queued
type Bucket struct {
	mu         sync.Mutex
	now        func() time.Time
	tokens     float64
	capacity   float64
	refillRate float64
	lastRefill time.Time
}

// NewBucket creates a full bucket. now may be nil for the wall clock.
func NewBucket(capacity, refillRate float64, now func() time.Time) *Bucket {
	if now == nil {
		now = time.Now
	}
	return &Bucket{
		now:        now,
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: now(),
	}
}

// refill must be called with mu held.
func (b *Bucket) refill() {
	now := b.now()
	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	}
	b.lastRefill = now
}

// Allow consumes a token if one is available.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// check reports whether a token is available without consuming it.
// The caller must serialize check and consume.
func (b *Bucket) check() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens >= 1
}

func (b *Bucket) consume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens >= 1 {
		b.tokens--
	}
}

// Available returns the current token count.
func (b *Bucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens
}

// Full reports whether the bucket has refilled to capacity, i.e. the
// client has been idle long enough to forget.
func (b *Bucket) Full() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens >= b.capacity
}
