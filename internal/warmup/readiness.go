package warmup

import (
	"sync/atomic"
	"time"
)

// ReadinessState tracks whether the startup preload has finished. The
// service reports ready once MarkReady is called or once the timeout has
// elapsed, so a slow or unreachable feed never keeps it out of rotation.
type ReadinessState struct {
	ready     atomic.Bool
	now       func() time.Time
	startTime time.Time     // immutable after construction
	timeout   time.Duration // immutable after construction
}

// ReadinessStatus is the readiness part of the /readyz body.
type ReadinessStatus struct {
	Ready          bool   `json:"ready"`
	Reason         string `json:"reason,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// NewReadinessState starts the readiness timer. now may be nil for the
// wall clock.
func NewReadinessState(timeout time.Duration, now func() time.Time) *ReadinessState {
	if now == nil {
		now = time.Now
	}
	return &ReadinessState{
		now:       now,
		startTime: now(),
		timeout:   timeout,
	}
}

// IsReady reports whether the service should accept traffic.
func (s *ReadinessState) IsReady() bool {
	return s.ready.Load() || s.now().Sub(s.startTime) >= s.timeout
}

// MarkReady records that the preload finished.
func (s *ReadinessState) MarkReady() {
	s.ready.Store(true)
}

// WarmupCompleted reports whether MarkReady was called. Unlike IsReady it
// ignores the timeout.
func (s *ReadinessState) WarmupCompleted() bool {
	return s.ready.Load()
}

// Status returns the current state for /readyz.
func (s *ReadinessState) Status() ReadinessStatus {
	isReady := s.IsReady()
	status := ReadinessStatus{
		Ready:          isReady,
		ElapsedSeconds: int(s.now().Sub(s.startTime).Seconds()),
		TimeoutSeconds: int(s.timeout.Seconds()),
	}

	switch {
	case !isReady:
		status.Reason = "feed preload in progress"
	case !s.ready.Load():
		status.Reason = "timeout reached (preload may still be running)"
	}
	return status
}
