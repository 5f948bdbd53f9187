package genai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		attempt     int
		initial     time.Duration
		max         time.Duration
		maxExpected time.Duration
	}{
		{name: "first attempt", attempt: 0, initial: time.Second, max: 10 * time.Second, maxExpected: 0},
		{name: "first retry", attempt: 1, initial: time.Second, max: 10 * time.Second, maxExpected: time.Second},
		{name: "second retry", attempt: 2, initial: time.Second, max: 10 * time.Second, maxExpected: 2 * time.Second},
		{name: "capped", attempt: 10, initial: time.Second, max: 5 * time.Second, maxExpected: 5 * time.Second},
		{name: "zero initial", attempt: 1, initial: 0, max: time.Second, maxExpected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for range 10 {
				got := CalculateBackoff(tt.attempt, tt.initial, tt.max)
				if got < 0 || got > tt.maxExpected {
					t.Errorf("CalculateBackoff(%d, %v, %v) = %v, want within [0, %v]",
						tt.attempt, tt.initial, tt.max, got, tt.maxExpected)
				}
			}
		})
	}
}

func TestSleep(t *testing.T) {
	t.Parallel()

	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep on cancelled context = %v, want context.Canceled", err)
	}
}

func TestHasSufficientBudget(t *testing.T) {
	t.Parallel()

	if !HasSufficientBudget(context.Background(), time.Hour) {
		t.Error("no deadline should always have budget")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if HasSufficientBudget(ctx, time.Second) {
		t.Error("50ms deadline should not cover 1s")
	}
	if !HasSufficientBudget(ctx, time.Millisecond) {
		t.Error("50ms deadline should cover 1ms")
	}
}
