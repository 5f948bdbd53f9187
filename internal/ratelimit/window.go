package ratelimit

import (
	"sync"
	"time"
)

// Window is a sliding window counter: it keeps the counts of the current
// and previous fixed windows and weights the previous one by how much of
// it still overlaps the sliding window.
//
//	effective = curr + prev * (window - elapsed) / window
//
// A nil *Window allows everything.
type Window struct {
	mu    sync.Mutex
	now   func() time.Time
	limit int
	size  time.Duration
	start time.Time
	curr  int
	prev  int
}

// NewWindow returns nil when limit <= 0 (disabled). now may be nil for the
// wall clock.
func NewWindow(limit int, size time.Duration, now func() time.Time) *Window {
	if limit <= 0 {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &Window{now: now, limit: limit, size: size, start: now()}
}

// rotate and effective must be called with mu held.
func (w *Window) rotate(now time.Time) {
	elapsed := now.Sub(w.start)
	if elapsed < w.size {
		return
	}
	passed := int(elapsed / w.size)
	if passed == 1 {
		w.prev = w.curr
	} else {
		w.prev = 0
	}
	w.curr = 0
	w.start = w.start.Add(time.Duration(passed) * w.size)
}

func (w *Window) effective(now time.Time) float64 {
	overlap := float64(w.size-now.Sub(w.start)) / float64(w.size)
	overlap = max(0, min(1, overlap))
	return float64(w.curr) + float64(w.prev)*overlap
}

// Allow counts a request if the window has room.
func (w *Window) Allow() bool {
	if w == nil {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.rotate(now)
	if w.effective(now) >= float64(w.limit) {
		return false
	}
	w.curr++
	return true
}

func (w *Window) check() bool {
	if w == nil {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.rotate(now)
	return w.effective(now) < float64(w.limit)
}

func (w *Window) consume() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rotate(w.now())
	w.curr++
}

// Remaining returns the approximate remaining quota, or -1 when disabled.
func (w *Window) Remaining() int {
	if w == nil {
		return -1
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.rotate(now)
	return max(0, int(float64(w.limit)-w.effective(now)))
}

// Empty reports whether no request counts against the window any more.
func (w *Window) Empty() bool {
	if w == nil {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.rotate(now)
	return w.effective(now) == 0
}
