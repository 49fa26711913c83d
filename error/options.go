package error

// Option configures an Error during construction via E().
type Option func(*Error)

// defaultMessage is the message used by E when none is given and by Wrap for nil causes.
const defaultMessage = "error"

// WithLocation sets the top-of-stack location during E() construction.
func WithLocation(filePath string, lineNumber int, functionName string) Option {
	return func(e *Error) {
		e.filePath = filePath
		e.lineNumber = lineNumber
		e.functionName = functionName
	}
}

// WithStack replaces the captured stack and relocates the error to its top frame.
func WithStack(s Stack) Option { return func(e *Error) { e.locate(s) } }

// WithCause sets the underlying cause to be returned by Unwrap().
func WithCause(cause error) Option { return func(e *Error) { e.cause = cause } }

// E is a minimal builder when you need to override what New captures.
// Defaults: Message="error", location and stack of the caller of E.
func E(message string, opts ...Option) *Error {
	if message == "" {
		message = defaultMessage
	}

	e := &Error{message: message}
	e.locate(Capture(1))

	for _, o := range opts {
		o(e)
	}

	return e
}
