// Package errors attaches stack traces to errors crossing service boundaries
// so the logger can print where they came from.
package errors

import "github.com/pkg/errors"

// StackTracer is implemented by errors that carry a stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer carries a message and a stack-traced cause.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer returns a tracer with the given message and no cause yet.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{Message: message}
}

// TracerFromError wraps err, capturing a stack unless err already has one.
// It returns nil for a nil err.
func TracerFromError(err error) *ErrorTracer {
	if err == nil {
		return nil
	}
	return NewTracer(err.Error()).Wrap(err)
}

// Wrap sets err as the cause, capturing a stack unless err already has one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	if _, ok := err.(StackTracer); !ok {
		err = errors.WithStack(err)
	}
	e.Err = err
	return e
}

func (e *ErrorTracer) Error() string {
	if e.Err != nil && e.Message != e.Err.Error() {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ErrorTracer) Unwrap() error { return e.Err }

// StackTrace returns the cause's stack, if any.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if st, ok := e.Err.(StackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
