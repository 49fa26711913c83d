// Package contract exposes the minimal surfaces shared between the located
// error type, the report pipeline and its collaborators.
//
// Implementations must never panic from these methods; the report pipeline
// still recovers if they do.
package contract

// StackUnavailable is the notice a StackSerializer produces when no stack
// could be captured.
const StackUnavailable = `{"error":"Unable to capture stack trace information"}`

// StackSerializer renders a complete multi-frame stack trace as JSON.
type StackSerializer interface {
	Serialize() string
}

// Located is an error that already carries its top-of-stack call site.
//
// Implementations must:
//   - Return "" / 0 for unknown parts rather than guessing.
//   - Keep Message free of the cause chain (Error() may include it).
//   - Support errors.Unwrap via Unwrap().
type Located interface {
	error
	Message() string
	FilePath() string
	LineNumber() int
	FunctionName() string
	Unwrap() error
}
