package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/next-trace/scg-report/contract"
	"github.com/next-trace/scg-report/guard"
)

// Kind classifies a raw error value for routing.
type Kind int

const (
	KindNone       Kind = iota // nil
	KindStructured             // an error with a contract.Located in its chain
	KindException              // any other error
	KindString                 // a string or fmt.Stringer
	KindUnknown                // anything else
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStructured:
		return "structured"
	case KindException:
		return "exception"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Classify returns the routing kind of err. The first matching rule wins:
// nil, located error, plain error, string, fmt.Stringer, anything else.
func Classify(err any) Kind {
	kind, _ := classify(err)
	return kind
}

func classify(err any) (kind Kind, located contract.Located) {
	defer func() {
		if recover() != nil {
			kind, located = KindUnknown, nil
		}
	}()

	switch v := err.(type) {
	case nil:
		return KindNone, nil
	case error:
		if errors.As(v, &located) {
			return KindStructured, located
		}

		return KindException, nil
	case fmt.Stringer:
		return KindString, nil
	}

	if guard.IsString(err) {
		return KindString, nil
	}

	return KindUnknown, nil
}

// Route writes the message and report location derived from err into r and
// returns r.
//
//   - KindNone leaves r untouched.
//   - KindStructured copies Message (or Error() when empty), prefixed with any
//     outer wrapping text, and the call site of the located error; when the error can serialize its stack the result
//     is stored with SetStackTrace.
//   - KindException, KindString and KindUnknown set the message only and leave
//     the report location at its defaults.
//
// Route never panics: a panicking Error, String or Message method leaves the
// message unchanged.
func Route(err any, r *Report) *Report {
	if r == nil {
		return nil
	}

	kind, located := classify(err)

	switch kind {
	case KindNone:
		return r
	case KindStructured:
		r.SetMessage(safeText(func() string { return structuredMessage(err.(error), located) }, r.Message()))

		site := locate(located)

		r.SetFilePath(site.FilePath()).
			SetLineNumber(max(site.LineNumber(), 0)).
			SetFunctionName(site.FunctionName())

		if s, ok := located.(contract.StackSerializer); ok {
			r.SetStackTrace(site.SetFullStackSerializer(s).SerializeFullStack())
		}
	case KindException:
		e := err.(error)
		r.SetMessage(safeText(e.Error, r.Message()))
	case KindString:
		if s, ok := err.(fmt.Stringer); ok {
			r.SetMessage(safeText(s.String, r.Message()))
		} else {
			r.SetMessage(guard.StringOr(err, r.Message()))
		}
	default:
		r.SetMessage(safeText(func() string { return fmt.Sprintf("%v", err) }, r.Message()))
	}

	return r
}

// structuredMessage uses Message (or Error when empty) of the located error.
// When err wraps it, the outer text is kept and only the located error's own
// text is swapped for its message.
func structuredMessage(err error, located contract.Located) string {
	msg := located.Message()
	if msg == "" {
		msg = located.Error()
	}

	if _, outermost := err.(contract.Located); outermost {
		return msg
	}

	outer, inner := err.Error(), located.Error()
	if inner == "" || !strings.Contains(outer, inner) {
		return outer
	}

	i := strings.LastIndex(outer, inner)

	return outer[:i] + msg + outer[i+len(inner):]
}

// locate reads the call site of l into scratch state. An unknown line
// (0 or less) stays at the CallSite default of -1.
func locate(l contract.Located) *CallSite {
	site := NewCallSite()

	file := safeText(l.FilePath, "")
	fn := safeText(l.FunctionName, "")

	line := -1
	func() {
		defer func() { _ = recover() }()

		if n := l.LineNumber(); n > 0 {
			line = n
		}
	}()

	site.SetFilePath(file).SetFunctionName(fn)

	if line > 0 {
		site.SetLineNumber(line)
	}

	return site
}

func safeText(fn func() string, fallback string) (out string) {
	defer func() {
		if recover() != nil {
			out = fallback
		}
	}()

	return fn()
}
