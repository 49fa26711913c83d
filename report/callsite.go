package report

import (
	"reflect"

	"github.com/next-trace/scg-report/contract"
	"github.com/next-trace/scg-report/guard"
)

// SerializerFunc adapts a plain function to contract.StackSerializer.
type SerializerFunc func() string

func (f SerializerFunc) Serialize() string { return f() }

type unavailable struct{}

func (unavailable) Serialize() string { return contract.StackUnavailable }

// stubSerializer reports capture failure as data.
var stubSerializer contract.StackSerializer = unavailable{}

// CallSite holds one stack frame plus a serializer for the full stack.
//
// Every setter validates its input and falls back to the field default on a
// mismatch: "" for strings, -1 for the line number, the capture-failure stub
// for the serializer.
type CallSite struct {
	filePath     string
	lineNumber   int
	functionName string
	serializer   contract.StackSerializer
}

// NewCallSite returns a CallSite with every field at its default.
func NewCallSite() *CallSite {
	return &CallSite{
		lineNumber: -1,
		serializer: stubSerializer,
	}
}

func (c *CallSite) FilePath() string     { return c.filePath }
func (c *CallSite) LineNumber() int      { return c.lineNumber }
func (c *CallSite) FunctionName() string { return c.functionName }

// ------ fluent setters (chainable, mutate receiver intentionally)

func (c *CallSite) SetFilePath(v any) *CallSite {
	if c == nil {
		return nil
	}

	c.filePath = guard.StringOr(v, "")

	return c
}

func (c *CallSite) SetLineNumber(v any) *CallSite {
	if c == nil {
		return nil
	}

	c.lineNumber = guard.IntOr(v, -1)

	return c
}

func (c *CallSite) SetFunctionName(v any) *CallSite {
	if c == nil {
		return nil
	}

	c.functionName = guard.StringOr(v, "")

	return c
}

// SetFullStackSerializer accepts a contract.StackSerializer, a SerializerFunc
// or a func() string. Anything else, typed nils included, installs the stub.
func (c *CallSite) SetFullStackSerializer(v any) *CallSite {
	if c == nil {
		return nil
	}

	c.serializer = toSerializer(v)

	return c
}

// SerializeFullStack renders the full stack as JSON. It never panics: a
// failing or empty serializer yields the capture-failure notice.
func (c *CallSite) SerializeFullStack() (out string) {
	if c == nil || c.serializer == nil {
		return contract.StackUnavailable
	}

	defer func() {
		if recover() != nil || out == "" {
			out = contract.StackUnavailable
		}
	}()

	return c.serializer.Serialize()
}

func toSerializer(v any) contract.StackSerializer {
	if !guard.IsFunction(v) && !guard.IsObject(v) && !hasMethods(v) {
		return stubSerializer
	}

	switch s := v.(type) {
	case SerializerFunc:
		if s != nil {
			return s
		}
	case func() string:
		return SerializerFunc(s)
	case contract.StackSerializer:
		if !isNil(s) {
			return s
		}
	}

	return stubSerializer
}

// hasMethods admits named non-struct types (e.g. a slice of frames) that
// implement contract.StackSerializer.
func hasMethods(v any) bool {
	return v != nil && reflect.TypeOf(v).NumMethod() > 0
}

// isNil catches typed nils hiding behind a non-nil interface.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
