package transcriber

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrJobTimeout is wrapped into the provider error when an asynchronous
// backend's job does not reach a terminal state within the polling budget.
var ErrJobTimeout = errors.New("transcription job timed out")

// Error is the normalized failure shape shared by all backends. Provider is
// the backend name, or "all" when every configured provider has failed.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError constructs a normalized provider error.
func NewError(provider string, statusCode int, message string) *Error {
	return &Error{Provider: provider, StatusCode: statusCode, Message: message}
}

// WrapError normalizes an underlying failure into a provider error while
// keeping the cause reachable via errors.Is/As.
func WrapError(provider string, statusCode int, err error) *Error {
	return &Error{Provider: provider, StatusCode: statusCode, Message: err.Error(), Err: err}
}

// ValidationError rejects a request before any provider is contacted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// allProvidersFailed is the terminal error when the whole provider chain is
// exhausted. Per-provider causes are logged, not surfaced.
func allProvidersFailed() *Error {
	return &Error{
		Provider:   "all",
		StatusCode: http.StatusServiceUnavailable,
		Message:    "all transcription providers failed, retry later",
	}
}

// IsAllProvidersFailed reports whether err is the chain-exhaustion error.
func IsAllProvidersFailed(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Provider == "all"
}
