package error

import (
	"errors"
	"fmt"
)

// Wrap attaches a cause to a new Error located at the caller of Wrap.
// If cause is nil, an opaque cause is created. An empty message falls back to
// the cause's text.
func Wrap(cause error, message string) *Error {
	if cause == nil {
		cause = errors.New("unknown")
	}

	if message == "" {
		message = cause.Error()
	}

	e := &Error{message: message, cause: cause}
	e.locate(Capture(1))

	return e
}

// Ensure converts any error to *Error.
//
// Behavior:
//   - nil input => nil output
//   - if err already wraps an *Error => that *Error is returned (same pointer)
//   - otherwise wrap it, located at the caller of Ensure, keeping err's text as message
func Ensure(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error

	if errors.As(err, &e) {
		return e
	}

	e = &Error{message: err.Error(), cause: err}
	e.locate(Capture(1))

	return e
}

// Recovered converts a value returned by recover() into an Error located at
// the panicking frame. It must be called directly from the deferred function.
// A nil value yields nil.
func Recovered(v any) *Error {
	if v == nil {
		return nil
	}

	var cause error

	switch x := v.(type) {
	case error:
		cause = x
	default:
		cause = fmt.Errorf("%v", x)
	}

	e := &Error{message: "panic: " + cause.Error(), cause: cause}
	e.locate(CapturePanic())

	return e
}
