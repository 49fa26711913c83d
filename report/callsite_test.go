package report_test

import (
	"testing"

	"github.com/next-trace/scg-report/contract"
	apiError "github.com/next-trace/scg-report/error"
	"github.com/next-trace/scg-report/report"
)

const stub = `{"error":"Unable to capture stack trace information"}`

func TestCallSite_Defaults(t *testing.T) {
	t.Parallel()

	c := report.NewCallSite()

	if c.FilePath() != "" || c.LineNumber() != -1 || c.FunctionName() != "" {
		t.Fatalf("defaults=%q %d %q", c.FilePath(), c.LineNumber(), c.FunctionName())
	}

	if got := c.SerializeFullStack(); got != stub {
		t.Fatalf("SerializeFullStack()=%s want=%s", got, stub)
	}

	if stub != contract.StackUnavailable {
		t.Fatalf("capture-failure notice drifted: %s", contract.StackUnavailable)
	}
}

func TestCallSite_SettersDefaultOnInvalid(t *testing.T) {
	t.Parallel()

	c := report.NewCallSite()

	if got := c.SetFilePath("main.go").SetLineNumber(12).SetFunctionName("main.run"); got != c {
		t.Fatalf("chain returned a different instance")
	}

	if c.FilePath() != "main.go" || c.LineNumber() != 12 || c.FunctionName() != "main.run" {
		t.Fatalf("values=%q %d %q", c.FilePath(), c.LineNumber(), c.FunctionName())
	}

	c.SetFilePath(7).SetLineNumber("12").SetFunctionName(nil)

	if c.FilePath() != "" || c.LineNumber() != -1 || c.FunctionName() != "" {
		t.Fatalf("invalid input must default; got %q %d %q", c.FilePath(), c.LineNumber(), c.FunctionName())
	}
}

func TestCallSite_SerializerKinds(t *testing.T) {
	t.Parallel()

	var nilFn func() string

	var nilErr *apiError.Error

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"func", func() string { return `[1]` }, `[1]`},
		{"serializer func", report.SerializerFunc(func() string { return `[2]` }), `[2]`},
		{"stack", apiError.Stack{{FilePath: "a.go", LineNumber: 3, FunctionName: "a"}}, `[{"filePath":"a.go","lineNumber":3,"functionName":"a"}]`},
		{"nil", nil, stub},
		{"string", "not callable", stub},
		{"typed nil func", nilFn, stub},
		{"typed nil serializer func", report.SerializerFunc(nil), stub},
		{"typed nil pointer", nilErr, stub},
		{"empty stack", apiError.Stack{}, stub},
		{"wrong func signature", func() int { return 1 }, stub},
	}

	for _, tc := range cases {
		c := report.NewCallSite().SetFullStackSerializer(tc.in)
		if got := c.SerializeFullStack(); got != tc.want {
			t.Fatalf("%s: SerializeFullStack()=%s want=%s", tc.name, got, tc.want)
		}
	}
}

func TestCallSite_SerializerNeverPanics(t *testing.T) {
	t.Parallel()

	c := report.NewCallSite().SetFullStackSerializer(func() string { panic("boom") })
	if got := c.SerializeFullStack(); got != stub {
		t.Fatalf("panicking serializer: got=%s want stub", got)
	}

	c.SetFullStackSerializer(func() string { return "" })
	if got := c.SerializeFullStack(); got != stub {
		t.Fatalf("empty serializer output: got=%q want stub", got)
	}

	var nilSite *report.CallSite
	if nilSite.SetFilePath("x") != nil || nilSite.SerializeFullStack() != stub {
		t.Fatalf("nil receiver must be safe")
	}
}

func TestRequestInfo_Defaults(t *testing.T) {
	t.Parallel()

	info := report.NewRequestInfo()
	if info.URL() != "" || info.Method() != "" || info.StatusCode() != 0 {
		t.Fatalf("defaults: %+v", info)
	}

	info.SetURL("/a").SetMethod("GET").SetStatusCode(418)
	info.SetURL(1).SetMethod(nil).SetStatusCode("418").SetRemoteAddress(false).SetUserAgent(2).SetReferrer(3)

	if info.URL() != "" || info.Method() != "" || info.StatusCode() != 0 ||
		info.RemoteAddress() != "" || info.UserAgent() != "" || info.Referrer() != "" {
		t.Fatalf("invalid input must default: %+v", info)
	}

	var nilInfo *report.RequestInfo
	if nilInfo.SetMethod("GET") != nil {
		t.Fatalf("nil receiver must return nil")
	}
}
