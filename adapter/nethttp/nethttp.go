// Package nethttp adapts net/http requests to the report pipeline.
package nethttp

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	apiError "github.com/next-trace/scg-report/error"
	"github.com/next-trace/scg-report/report"
	"github.com/next-trace/scg-report/reporter"
)

// DefaultMinStatus is the lowest response status reported by Middleware.
const DefaultMinStatus = http.StatusInternalServerError

// Extract reads the request information of r. status is the response status,
// 0 when not known yet. A nil request yields an empty RequestInfo.
func Extract(r *http.Request, status int) *report.RequestInfo {
	info := report.NewRequestInfo()
	if r == nil {
		return info
	}

	return info.
		SetMethod(r.Method).
		SetURL(requestURL(r)).
		SetUserAgent(r.UserAgent()).
		SetReferrer(r.Referer()).
		SetRemoteAddress(remoteIP(r.RemoteAddr)).
		SetStatusCode(status)
}

func requestURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}

	if r.URL.IsAbs() || r.Host == "" {
		return r.URL.String()
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}

// Option configures Middleware.
type Option func(*options)

type options struct {
	minStatus int
}

// WithMinStatus reports responses with status >= code; zero or less disables
// status reporting and leaves only panics.
func WithMinStatus(code int) Option { return func(o *options) { o.minStatus = code } }

// Middleware reports panics and responses with a server error status.
// A recovered panic is answered with 500 when nothing was written yet;
// http.ErrAbortHandler is reported and re-panicked.
func Middleware(rp *reporter.Reporter, opts ...Option) func(http.Handler) http.Handler {
	o := options{minStatus: DefaultMinStatus}
	for _, fn := range opts {
		fn(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				v := recover()
				if v == nil {
					return
				}

				e := apiError.Recovered(v)

				status := rec.status
				if !rec.written {
					status = http.StatusInternalServerError
				}

				rp.Report(r.Context(), e, Extract(r, status))

				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				if !rec.written {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(rec, r)

			if o.minStatus > 0 && rec.status >= o.minStatus {
				rp.Report(r.Context(), statusMessage(rec.status), Extract(r, rec.status))
			}
		})
	}
}

func statusMessage(status int) string {
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// statusRecorder remembers the status written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.written {
		s.status = code
		s.written = true
	}

	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.written = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }
