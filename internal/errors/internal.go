package errors

import "github.com/pkg/errors"

// InternalError wraps a post-condition assertion failure inside the
// realizer itself — a bug in the realizer, not a malformed schedule —
// with a stack trace via pkg/errors so it can be reported distinctly
// from user-facing CompilerErrors (§7 "Internal errors").
type InternalError struct {
	cause error
}

func (e *InternalError) Error() string { return "internal: " + e.cause.Error() }
func (e *InternalError) Unwrap() error { return e.cause }

// NewInternalError wraps message with a stack trace, for a component
// that has detected its own post-condition has been violated.
func NewInternalError(message string) error {
	return &InternalError{cause: errors.New(message)}
}

// WrapInternal annotates err with message and a stack trace, for
// surfacing an unexpected lower-level failure as an internal error.
func WrapInternal(err error, message string) error {
	if err == nil {
		return nil
	}
	return &InternalError{cause: errors.Wrap(err, message)}
}
