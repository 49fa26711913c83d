package report

import "github.com/next-trace/scg-report/guard"

// RequestInfo is the framework-neutral record a request adapter fills in.
// Report.ConsumeRequestInformation reads it once; remoteAddress ends up as
// the report's remoteIp.
type RequestInfo struct {
	url           string
	method        string
	referrer      string
	userAgent     string
	remoteAddress string
	statusCode    int
}

// NewRequestInfo returns an empty RequestInfo ("" strings, status code 0).
func NewRequestInfo() *RequestInfo { return &RequestInfo{} }

func (r *RequestInfo) URL() string           { return r.url }
func (r *RequestInfo) Method() string        { return r.method }
func (r *RequestInfo) Referrer() string      { return r.referrer }
func (r *RequestInfo) UserAgent() string     { return r.userAgent }
func (r *RequestInfo) RemoteAddress() string { return r.remoteAddress }
func (r *RequestInfo) StatusCode() int       { return r.statusCode }

func (r *RequestInfo) SetURL(v any) *RequestInfo {
	if r == nil {
		return nil
	}

	r.url = guard.StringOr(v, "")

	return r
}

func (r *RequestInfo) SetMethod(v any) *RequestInfo {
	if r == nil {
		return nil
	}

	r.method = guard.StringOr(v, "")

	return r
}

func (r *RequestInfo) SetReferrer(v any) *RequestInfo {
	if r == nil {
		return nil
	}

	r.referrer = guard.StringOr(v, "")

	return r
}

func (r *RequestInfo) SetUserAgent(v any) *RequestInfo {
	if r == nil {
		return nil
	}

	r.userAgent = guard.StringOr(v, "")

	return r
}

func (r *RequestInfo) SetRemoteAddress(v any) *RequestInfo {
	if r == nil {
		return nil
	}

	r.remoteAddress = guard.StringOr(v, "")

	return r
}

func (r *RequestInfo) SetStatusCode(v any) *RequestInfo {
	if r == nil {
		return nil
	}

	r.statusCode = guard.IntOr(v, 0)

	return r
}

// field reads a value by its adapter key.
func (r *RequestInfo) field(key string) any {
	switch key {
	case "method":
		return r.method
	case "url":
		return r.url
	case "userAgent":
		return r.userAgent
	case "referrer":
		return r.referrer
	case "statusCode":
		return r.statusCode
	case "remoteAddress":
		return r.remoteAddress
	default:
		return nil
	}
}
