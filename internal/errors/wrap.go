package errors

import (
	"errors"
	"fmt"
)

// WrappedError carries internal error details alongside the text that may be
// shown to the citizen. Error() is for logs only.
type WrappedError struct {
	Operation   string // e.g. "generate", "load_feed"
	Module      string // e.g. "assistant", "chat"
	Cause       error
	UserMessage string
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %v", e.Module, e.Operation, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// Wrap attaches module/operation context and a user-facing message.
// Returns nil if err is nil.
func Wrap(err error, module, operation, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation:   operation,
		Module:      module,
		Cause:       err,
		UserMessage: userMessage,
	}
}

// GetUserMessage returns the user-facing message of the outermost
// WrappedError in err's chain, or fallback when there is none.
// Internal error text is never returned.
func GetUserMessage(err error, fallback string) string {
	var wrapped *WrappedError
	if errors.As(err, &wrapped) && wrapped.UserMessage != "" {
		return wrapped.UserMessage
	}
	return fallback
}
