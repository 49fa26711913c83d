// Package error provides a located error type: an error that carries the call
// site it was raised at and, when available, the full captured stack.
//
// It exposes a single concrete type Error that implements contract.Located and
// contract.StackSerializer and integrates with the standard library's errors
// helpers (Is/As) via Unwrap.
//
// Key characteristics:
//   - Message kept separate from the cause chain
//   - Top-of-stack FilePath, LineNumber and FunctionName
//   - Full Stack serialized as JSON on demand
//   - Optional underlying cause preserved for errors.Is / errors.As
//
// New, E and Wrap capture the caller's stack; Recovered captures the stack of
// a recovered panic; Ensure adapts arbitrary errors.
package error
