package error

import (
	"fmt"

	"github.com/next-trace/scg-report/contract"
)

// Error is a located error.
//
// Fields:
//   - Message:      human-readable text (no cause chain)
//   - FilePath:     file of the top-of-stack frame ("" when unknown)
//   - LineNumber:   line of the top-of-stack frame (0 when unknown)
//   - FunctionName: fully qualified function of the top frame ("" when unknown)
//   - Stack:        the full captured stack, top frame first
type Error struct {
	message      string
	filePath     string
	lineNumber   int
	functionName string
	stack        Stack
	cause        error
}

// compile-time guarantees
var (
	_ contract.Located         = (*Error)(nil)
	_ contract.StackSerializer = (*Error)(nil)
)

// ------ standard error interface

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.cause != nil {
		return fmt.Sprintf("%s [%s:%d]: %v", e.message, e.filePath, e.lineNumber, e.cause)
	}

	return fmt.Sprintf("%s [%s:%d]", e.message, e.filePath, e.lineNumber)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// ------ contract.Located getters

func (e *Error) Message() string {
	if e == nil {
		return ""
	}

	return e.message
}

func (e *Error) FilePath() string {
	if e == nil {
		return ""
	}

	return e.filePath
}

func (e *Error) LineNumber() int {
	if e == nil {
		return 0
	}

	return e.lineNumber
}

func (e *Error) FunctionName() string {
	if e == nil {
		return ""
	}

	return e.functionName
}

// Stack returns a copy of the captured stack.
func (e *Error) Stack() Stack {
	if e == nil || len(e.stack) == 0 {
		return nil
	}

	out := make(Stack, len(e.stack))
	copy(out, e.stack)

	return out
}

// Serialize renders the captured stack as JSON (contract.StackSerializer).
func (e *Error) Serialize() string {
	if e == nil {
		return contract.StackUnavailable
	}

	return e.stack.Serialize()
}

// ------ core constructors

// New creates an Error located at the caller of New.
// The optional cause parameter (if provided) is stored and exposed via Unwrap().
func New(message string, cause ...error) *Error {
	e := &Error{message: message}
	e.locate(Capture(1))

	if len(cause) > 0 {
		e.cause = cause[0]
	}

	return e
}

// ------ fluent helpers (chainable, mutate receiver intentionally)

// At overrides the top-of-stack location and returns the same receiver for chaining.
// The captured stack is kept as is.
func (e *Error) At(filePath string, lineNumber int, functionName string) *Error {
	if e == nil {
		return nil
	}

	e.filePath = filePath
	e.lineNumber = lineNumber
	e.functionName = functionName

	return e
}

// WithMessage replaces the message and returns the same receiver for chaining.
func (e *Error) WithMessage(message string) *Error {
	if e == nil {
		return nil
	}

	e.message = message

	return e
}

func (e *Error) locate(s Stack) {
	e.stack = s

	top, ok := s.Top()
	if !ok {
		return
	}

	e.filePath = top.FilePath
	e.lineNumber = top.LineNumber
	e.functionName = top.FunctionName
}
