// Package errors provides domain-specific error types and sentinel errors
// for the answer pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is() to check them.
var (
	// ErrFeedUnavailable indicates a feed has no URL configured.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrEmptyFeed indicates a feed was reachable but held no usable rows.
	ErrEmptyFeed = errors.New("feed is empty")

	// ErrNoMatch indicates no record matched the question.
	ErrNoMatch = errors.New("no matching record")

	// ErrGeneration indicates the text generator failed hard.
	ErrGeneration = errors.New("generation failed")

	// ErrInvalidInput indicates the caller sent an unusable request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimitExceeded indicates the caller is sending too many requests.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// FetchError represents a failed feed download: transport failure or a
// non-success HTTP status.
type FetchError struct {
	Feed       string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s feed (url=%s, status=%d): %v", e.Feed, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s feed (url=%s): %v", e.Feed, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error.
func NewFetchError(feed, url string, statusCode int, err error) *FetchError {
	return &FetchError{
		Feed:       feed,
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsFetchError reports whether err wraps a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
