package genai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrorAction is what the fallback chain does after a failed call.
type ErrorAction int

const (
	// ActionRetry retries the same provider.
	ActionRetry ErrorAction = iota
	// ActionFallback moves on to the next provider.
	ActionFallback
	// ActionFail stops the chain.
	ActionFail
)

func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFallback:
		return "fallback"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// LLMError is a provider failure with its HTTP status, when known.
type LLMError struct {
	Err        error
	StatusCode int
	Provider   Provider
}

func (e *LLMError) Error() string {
	msg := string(e.Provider) + ": " + e.Err.Error()
	if e.StatusCode > 0 {
		msg += " (status: " + strconv.Itoa(e.StatusCode) + ")"
	}
	return msg
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// WrapError attaches provider and status to err. nil stays nil.
func WrapError(err error, provider Provider, statusCode int) error {
	if err == nil {
		return nil
	}
	return &LLMError{Err: err, StatusCode: statusCode, Provider: provider}
}

// ClassifyError maps a provider failure to the next step:
//   - transient (429, 408, 409, 5xx, timeouts, network) retries
//   - quota exhaustion and auth failures move to the next provider
//   - cancellation and malformed requests stop
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionFail
	}

	if errors.Is(err, context.Canceled) {
		return ActionFail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ActionRetry
	}

	var llmErr *LLMError
	if errors.As(err, &llmErr) && llmErr.StatusCode > 0 {
		if action, ok := classifyStatusCode(llmErr.StatusCode); ok {
			return action
		}
	}

	msg := strings.ToLower(err.Error())

	// Quota before rate limit: "RESOURCE_EXHAUSTED: quota" is not transient.
	if containsAny(msg, "quota", "daily limit", "monthly limit", "billing") {
		return ActionFallback
	}
	if containsAny(msg, "rate limit", "too many requests", "resource_exhausted") {
		return ActionRetry
	}
	if containsAny(msg, "unavailable", "internal server error", "bad gateway",
		"gateway timeout", "overloaded", "capacity", "timeout", "deadline", "connection") {
		return ActionRetry
	}
	if containsAny(msg, "unauthorized", "unauthenticated", "api key", "forbidden", "permission denied") {
		return ActionFallback
	}
	if containsAny(msg, "invalid", "bad request", "malformed", "unprocessable") {
		return ActionFail
	}

	return ActionRetry
}

// classifyStatusCode reports false for codes that carry no decision.
func classifyStatusCode(statusCode int) (ErrorAction, bool) {
	switch {
	case statusCode == http.StatusTooManyRequests,
		statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusConflict,
		statusCode >= 500 && statusCode < 600:
		return ActionRetry, true

	// A key or model problem on one provider says nothing about the next.
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		statusCode == http.StatusNotFound,
		statusCode == http.StatusPaymentRequired:
		return ActionFallback, true

	case statusCode >= 400 && statusCode < 500:
		return ActionFail, true

	default:
		return 0, false
	}
}

// IsRetryable returns true if the error is transient.
func IsRetryable(err error) bool {
	return ClassifyError(err) == ActionRetry
}

// IsPermanent returns true if no provider should be tried again.
func IsPermanent(err error) bool {
	return ClassifyError(err) == ActionFail
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
