package report

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/next-trace/scg-report/guard"
)

// DefaultServiceValue is used for service and version when none is given.
const DefaultServiceValue = "default"

// eventTimeLayout is ISO-8601 in UTC with millisecond precision.
const eventTimeLayout = "2006-01-02T15:04:05.000Z"

// Payload is the wire representation of a Report.
type Payload struct {
	EventTime      string         `json:"eventTime"`
	ServiceContext ServiceContext `json:"serviceContext"`
	Message        string         `json:"message"`
	Context        Context        `json:"context"`
}

type ServiceContext struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

type Context struct {
	HTTPRequest    HTTPRequest `json:"httpRequest"`
	User           string      `json:"user"`
	ReportLocation Location    `json:"reportLocation"`
}

type HTTPRequest struct {
	Method             string `json:"method"`
	URL                string `json:"url"`
	UserAgent          string `json:"userAgent"`
	Referrer           string `json:"referrer"`
	ResponseStatusCode int    `json:"responseStatusCode"`
	RemoteIP           string `json:"remoteIp"`
}

type Location struct {
	FilePath     string `json:"filePath"`
	LineNumber   int    `json:"lineNumber"`
	FunctionName string `json:"functionName"`
}

// Report is the canonical error report. One Report describes one error and
// is owned by the code handling that error; it is not safe for concurrent
// mutation.
//
// Setters never fail. Invalid input resets the field to its default:
// "" for strings, "default" for the service context and -1 for the response
// status code and the report line number. A new report has line number 0.
type Report struct {
	p          Payload
	stackTrace string
}

// New returns a Report with every default applied and the event time set to now.
func New() *Report {
	r := &Report{
		p: Payload{
			ServiceContext: ServiceContext{
				Service: DefaultServiceValue,
				Version: DefaultServiceValue,
			},
			Context: Context{
				HTTPRequest: HTTPRequest{ResponseStatusCode: -1},
			},
		},
	}

	return r.SetEventTimeToNow()
}

// ------ getters

func (r *Report) EventTime() string       { return r.p.EventTime }
func (r *Report) Service() string         { return r.p.ServiceContext.Service }
func (r *Report) Version() string         { return r.p.ServiceContext.Version }
func (r *Report) Message() string         { return r.p.Message }
func (r *Report) HTTPMethod() string      { return r.p.Context.HTTPRequest.Method }
func (r *Report) URL() string             { return r.p.Context.HTTPRequest.URL }
func (r *Report) UserAgent() string       { return r.p.Context.HTTPRequest.UserAgent }
func (r *Report) Referrer() string        { return r.p.Context.HTTPRequest.Referrer }
func (r *Report) ResponseStatusCode() int { return r.p.Context.HTTPRequest.ResponseStatusCode }
func (r *Report) RemoteIP() string        { return r.p.Context.HTTPRequest.RemoteIP }
func (r *Report) User() string            { return r.p.Context.User }
func (r *Report) FilePath() string        { return r.p.Context.ReportLocation.FilePath }
func (r *Report) LineNumber() int         { return r.p.Context.ReportLocation.LineNumber }
func (r *Report) FunctionName() string    { return r.p.Context.ReportLocation.FunctionName }

// StackTrace returns the serialized full stack. It is not part of the wire payload.
func (r *Report) StackTrace() string { return r.stackTrace }

// Payload returns a copy of the wire payload.
func (r *Report) Payload() Payload { return r.p }

// MarshalJSON emits the wire payload.
func (r *Report) MarshalJSON() ([]byte, error) { return json.Marshal(r.p) }

// ------ fluent setters (chainable, mutate receiver intentionally)

// SetEventTimeToNow stamps the report with the current instant.
func (r *Report) SetEventTimeToNow() *Report {
	if r == nil {
		return nil
	}

	r.p.EventTime = time.Now().UTC().Format(eventTimeLayout)

	return r
}

// SetServiceContext sets service and version, each defaulting independently.
func (r *Report) SetServiceContext(service, version any) *Report {
	if r == nil {
		return nil
	}

	r.p.ServiceContext.Service = guard.StringOr(service, DefaultServiceValue)
	r.p.ServiceContext.Version = guard.StringOr(version, DefaultServiceValue)

	return r
}

func (r *Report) SetMessage(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Message = guard.StringOr(v, "")

	return r
}

func (r *Report) SetHTTPMethod(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.HTTPRequest.Method = guard.StringOr(v, "")

	return r
}

func (r *Report) SetURL(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.HTTPRequest.URL = guard.StringOr(v, "")

	return r
}

func (r *Report) SetUserAgent(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.HTTPRequest.UserAgent = guard.StringOr(v, "")

	return r
}

func (r *Report) SetReferrer(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.HTTPRequest.Referrer = guard.StringOr(v, "")

	return r
}

func (r *Report) SetResponseStatusCode(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.HTTPRequest.ResponseStatusCode = guard.IntOr(v, -1)

	return r
}

func (r *Report) SetRemoteIP(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.HTTPRequest.RemoteIP = guard.StringOr(v, "")

	return r
}

func (r *Report) SetUser(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.User = guard.StringOr(v, "")

	return r
}

func (r *Report) SetFilePath(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.ReportLocation.FilePath = guard.StringOr(v, "")

	return r
}

// SetLineNumber sets the report line number; invalid input yields -1. A new
// report starts at 0.
func (r *Report) SetLineNumber(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.ReportLocation.LineNumber = guard.IntOr(v, -1)

	return r
}

func (r *Report) SetFunctionName(v any) *Report {
	if r == nil {
		return nil
	}

	r.p.Context.ReportLocation.FunctionName = guard.StringOr(v, "")

	return r
}

func (r *Report) SetStackTrace(v any) *Report {
	if r == nil {
		return nil
	}

	r.stackTrace = guard.StringOr(v, "")

	return r
}

// ConsumeRequestInformation copies request fields onto the report through the
// single-field setters, so each field is validated on its own.
//
// v may be a *RequestInfo, a map with string keys or any struct whose exported
// fields are named after the keys (case-insensitive): method, url, userAgent,
// referrer, statusCode, remoteAddress. Missing keys reset the field to its
// default. Anything that is not object-shaped leaves the report untouched.
func (r *Report) ConsumeRequestInformation(v any) *Report {
	if r == nil {
		return nil
	}

	if !guard.IsObject(v) {
		return r
	}

	switch info := v.(type) {
	case *RequestInfo:
		return r.consume(info.field)
	case RequestInfo:
		return r.consume(info.field)
	default:
		return r.consume(lookup(v))
	}
}

func (r *Report) consume(get func(key string) any) *Report {
	return r.SetHTTPMethod(get("method")).
		SetURL(get("url")).
		SetUserAgent(get("userAgent")).
		SetReferrer(get("referrer")).
		SetResponseStatusCode(get("statusCode")).
		SetRemoteIP(get("remoteAddress"))
}

// lookup reads keys from a string-keyed map or exported struct fields.
func lookup(v any) func(key string) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		return func(key string) any {
			mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if !mv.IsValid() {
				return nil
			}

			return mv.Interface()
		}
	case reflect.Struct:
		return func(key string) any {
			f := rv.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, key) })
			if !f.IsValid() || !f.CanInterface() {
				return nil
			}

			return f.Interface()
		}
	default:
		return func(string) any { return nil }
	}
}
