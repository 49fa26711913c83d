package error_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/next-trace/scg-report/contract"
	apiError "github.com/next-trace/scg-report/error"
)

func TestNew_LocatesCaller(t *testing.T) {
	t.Parallel()

	e := apiError.New("payment timeout")

	if got, want := e.Message(), "payment timeout"; got != want {
		t.Fatalf("Message=%q want=%q", got, want)
	}

	if !strings.HasSuffix(e.FilePath(), "error_test.go") {
		t.Fatalf("FilePath=%q want suffix error_test.go", e.FilePath())
	}

	if e.LineNumber() <= 0 {
		t.Fatalf("LineNumber=%d want > 0", e.LineNumber())
	}

	if !strings.Contains(e.FunctionName(), "TestNew_LocatesCaller") {
		t.Fatalf("FunctionName=%q", e.FunctionName())
	}

	top, ok := e.Stack().Top()
	if !ok || top.FunctionName != e.FunctionName() || top.LineNumber != e.LineNumber() {
		t.Fatalf("stack top %+v does not match location", top)
	}
}

func TestNew_StackIsCopied(t *testing.T) {
	t.Parallel()

	e := apiError.New("x")
	s := e.Stack()
	s[0].FunctionName = "mutated"

	if e.Stack()[0].FunctionName == "mutated" {
		t.Fatalf("Stack returned the internal slice (mutation leaked)")
	}
}

func TestEBuilder_DefaultsAndOverrides(t *testing.T) {
	t.Parallel()

	e := apiError.E("")
	if e.Message() != "error" {
		t.Fatalf("default Message=%q want=\"error\"", e.Message())
	}

	if !strings.HasSuffix(e.FilePath(), "error_test.go") {
		t.Fatalf("default FilePath=%q", e.FilePath())
	}

	cause := errors.New("sql: no rows in result set")
	e = apiError.E(
		"customer not found",
		apiError.WithLocation("repo/customer.go", 42, "repo.Get"),
		apiError.WithCause(cause),
	)

	if e.FilePath() != "repo/customer.go" || e.LineNumber() != 42 || e.FunctionName() != "repo.Get" {
		t.Fatalf("location=%s:%d %s", e.FilePath(), e.LineNumber(), e.FunctionName())
	}

	if !errors.Is(e, cause) {
		t.Fatalf("errors.Is(e, cause) = false; want true")
	}

	if len(e.Stack()) == 0 {
		t.Fatalf("WithLocation must keep the captured stack")
	}
}

func TestWithStack_Relocates(t *testing.T) {
	t.Parallel()

	s := apiError.Stack{
		{FilePath: "a.go", LineNumber: 1, FunctionName: "a.A"},
		{FilePath: "b.go", LineNumber: 2, FunctionName: "b.B"},
	}
	e := apiError.E("m", apiError.WithStack(s))

	if e.FilePath() != "a.go" || e.LineNumber() != 1 || e.FunctionName() != "a.A" {
		t.Fatalf("location=%s:%d %s", e.FilePath(), e.LineNumber(), e.FunctionName())
	}

	var got []apiError.Frame
	if err := json.Unmarshal([]byte(e.Serialize()), &got); err != nil {
		t.Fatalf("Serialize produced invalid JSON: %v", err)
	}

	if len(got) != 2 || got[1].FilePath != "b.go" {
		t.Fatalf("Serialize=%s", e.Serialize())
	}
}

func TestStack_SerializeEmpty(t *testing.T) {
	t.Parallel()

	if got := apiError.Stack(nil).Serialize(); got != contract.StackUnavailable {
		t.Fatalf("Serialize()=%s want=%s", got, contract.StackUnavailable)
	}
}

func TestWrapAndEnsure(t *testing.T) {
	t.Parallel()

	cause := errors.New("row not found")
	e := apiError.Wrap(cause, "")

	if !errors.Is(e, cause) {
		t.Fatalf("wrapped error must match cause with errors.Is")
	}

	if e.Message() != "row not found" {
		t.Fatalf("empty message must fall back to cause text; got=%q", e.Message())
	}

	var out *apiError.Error
	if !errors.As(e, &out) || out != e {
		t.Fatalf("errors.As should yield *Error itself")
	}

	if got := apiError.Wrap(nil, "m").Unwrap(); got == nil || got.Error() != "unknown" {
		t.Fatalf("Wrap(nil) cause=%v want opaque 'unknown'", got)
	}

	if got := apiError.Ensure(nil); got != nil {
		t.Fatalf("Ensure(nil) => %v; want nil", got)
	}

	if got := apiError.Ensure(e); got != e {
		t.Fatalf("Ensure(*Error) returned different pointer")
	}

	plain := errors.New("boom")
	wrapped := apiError.Ensure(plain)

	if wrapped.Message() != "boom" || !errors.Is(wrapped, plain) {
		t.Fatalf("Ensure(plain) message=%q", wrapped.Message())
	}

	if !strings.Contains(wrapped.FunctionName(), "TestWrapAndEnsure") {
		t.Fatalf("Ensure must locate its caller; got=%q", wrapped.FunctionName())
	}
}

func TestEnsure_FindsWrappedError(t *testing.T) {
	t.Parallel()

	inner := apiError.New("inner")
	outer := errors.Join(errors.New("context"), inner)

	if got := apiError.Ensure(outer); got != inner {
		t.Fatalf("Ensure must return the *Error found in the chain")
	}
}

type cart struct{ items int }

func panicker() {
	var c *cart
	c.items++
}

func recoverFrom(fn func()) (e *apiError.Error) {
	defer func() {
		e = apiError.Recovered(recover())
	}()

	fn()

	return nil
}

func TestRecovered_LocatesPanickingFrame(t *testing.T) {
	t.Parallel()

	e := recoverFrom(panicker)
	if e == nil {
		t.Fatalf("Recovered returned nil for a real panic")
	}

	if !strings.Contains(e.FunctionName(), "panicker") {
		t.Fatalf("FunctionName=%q want panicker frame on top", e.FunctionName())
	}

	if !strings.HasPrefix(e.Message(), "panic: ") {
		t.Fatalf("Message=%q", e.Message())
	}

	if e.Unwrap() == nil {
		t.Fatalf("runtime error must be kept as cause")
	}
}

func TestRecovered_NonErrorValue(t *testing.T) {
	t.Parallel()

	e := recoverFrom(func() { panic("out of stock") })
	if e.Message() != "panic: out of stock" {
		t.Fatalf("Message=%q", e.Message())
	}

	if apiError.Recovered(nil) != nil {
		t.Fatalf("Recovered(nil) must be nil")
	}
}

func TestNilReceiverBehaviors(t *testing.T) {
	t.Parallel()

	var e *apiError.Error

	if got := e.Error(); got != "<nil>" {
		t.Fatalf("nil receiver Error()=%q", got)
	}

	if e.At("f", 1, "fn") != nil || e.WithMessage("m") != nil {
		t.Fatalf("fluent helpers on nil should return nil receiver")
	}

	if e.Message() != "" || e.FilePath() != "" || e.LineNumber() != 0 || e.FunctionName() != "" {
		t.Fatalf("nil receiver getters must return zero values")
	}

	if e.Serialize() != contract.StackUnavailable {
		t.Fatalf("nil receiver Serialize()=%q", e.Serialize())
	}
}

func TestErrorString_Format(t *testing.T) {
	t.Parallel()

	e := apiError.E("repository failure",
		apiError.WithLocation("repo.go", 7, "repo.Get"),
		apiError.WithCause(errors.New("db down")),
	)

	if got, want := e.Error(), "repository failure [repo.go:7]: db down"; got != want {
		t.Fatalf("Error()=%q want=%q", got, want)
	}

	e.At("svc.go", 9, "svc.Run").WithMessage("retry")

	if got, want := e.Error(), "retry [svc.go:9]: db down"; got != want {
		t.Fatalf("Error()=%q want=%q", got, want)
	}
}

// FuzzE (no panics, message preserved).
func FuzzE(f *testing.F) {
	f.Add("boom", 3)
	f.Add("", -1)
	f.Fuzz(func(t *testing.T, msg string, line int) {
		t.Parallel()

		e := apiError.E(msg, apiError.WithLocation("f.go", line, "f"))

		if msg != "" && e.Message() != msg {
			t.Fatalf("Message=%q want=%q", e.Message(), msg)
		}

		if e.LineNumber() != line {
			t.Fatalf("LineNumber=%d want=%d", e.LineNumber(), line)
		}
	})
}
