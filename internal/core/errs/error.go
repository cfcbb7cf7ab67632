package errs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error is the runtime error value built from a catalog Kind. It carries a
// stable code for support/triage plus an open details map for diagnostics.
// Details are for operators only; Message is the user-facing text.
type Error struct {
	ID        string
	Code      string
	Message   string
	Status    int
	Severity  Severity
	Details   map[string]any
	Timestamp time.Time

	cause error
}

// New builds an Error from a catalog code. Unknown codes resolve to the
// generic unknown kind.
func New(code string) *Error {
	k := Lookup(code)
	return &Error{
		ID:        uuid.NewString(),
		Code:      k.Code,
		Message:   k.Message,
		Status:    k.Status,
		Severity:  k.Severity,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap builds an Error from a catalog code keeping the underlying cause for
// errors.Is/As chains. The cause's text goes into details, never the Message.
func Wrap(code string, cause error) *Error {
	e := New(code)
	e.cause = cause
	if cause != nil {
		e.WithDetail("originalError", cause.Error())
	}
	return e
}

// WithDetail attaches a diagnostic key/value and returns the error for
// chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether the error's kind may be retried.
func (e *Error) Retryable() bool {
	return IsRetryable(e.Code)
}

// ProviderCategory returns the provider classification for the error's kind,
// or empty when the kind is not a provider kind.
func (e *Error) ProviderCategory() ProviderCategory {
	k := Lookup(e.Code)
	if k.Provider == nil {
		return ""
	}
	return k.Provider.Category
}

// Classify converts any failure into a well-formed *Error. Typed errors pass
// through untouched; everything else is wrapped under the unknown kind with
// the original text preserved in details. Total: never fails, even on nil.
func Classify(err error) *Error {
	if err == nil {
		return New(CodeUnknown).WithDetail("originalError", "classify called with nil error")
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(CodeUnknown, err)
}

// FromProviderCode builds an Error from a provider numeric error code,
// recording the raw number for diagnostics.
func FromProviderCode(code int, cause error) *Error {
	e := Wrap(MapProviderCode(code), cause)
	return e.WithDetail("providerCode", code)
}
