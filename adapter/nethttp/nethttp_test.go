package nethttp_test

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/next-trace/scg-report/adapter/nethttp"
	"github.com/next-trace/scg-report/report"
	"github.com/next-trace/scg-report/reporter"
	"github.com/next-trace/scg-report/transport"
)

type sink struct {
	mu  sync.Mutex
	got []*report.Report
}

func (s *sink) SendError(_ context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.got = append(s.got, r)

	return nil
}

func (s *sink) reports() []*report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*report.Report(nil), s.got...)
}

var _ transport.Transport = (*sink)(nil)

func TestExtract(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "http://shop.example.com/cart?id=7", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("User-Agent", "curl/8.0")
	r.Header.Set("Referer", "https://shop.example.com/")

	info := nethttp.Extract(r, 502)

	if info.Method() != "POST" || info.URL() != "http://shop.example.com/cart?id=7" {
		t.Fatalf("method=%q url=%q", info.Method(), info.URL())
	}

	if info.RemoteAddress() != "203.0.113.9" || info.UserAgent() != "curl/8.0" || info.Referrer() != "https://shop.example.com/" {
		t.Fatalf("info=%+v", info)
	}

	if info.StatusCode() != 502 {
		t.Fatalf("StatusCode=%d want=502", info.StatusCode())
	}
}

func TestExtract_RelativeURLAndTLS(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	r.Host = "api.example.com"
	r.TLS = &tls.ConnectionState{}
	r.URL.Scheme = ""
	r.URL.Host = ""
	r.RemoteAddr = "not-a-host-port"

	info := nethttp.Extract(r, 0)

	if info.URL() != "https://api.example.com/orders/1" {
		t.Fatalf("URL=%q", info.URL())
	}

	if info.RemoteAddress() != "not-a-host-port" {
		t.Fatalf("RemoteAddress=%q", info.RemoteAddress())
	}

	if nethttp.Extract(nil, 500).StatusCode() != 0 {
		t.Fatalf("nil request must yield empty info")
	}
}

func TestMiddleware_ReportsServerErrors(t *testing.T) {
	t.Parallel()

	s := &sink{}
	rp := reporter.New("svc", "1", s)

	h := nethttp.Middleware(rp)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("fine"))
		case "/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))

	for _, path := range []string{"/ok", "/missing", "/down"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := s.reports()
	if len(got) != 1 {
		t.Fatalf("reports=%d want=1", len(got))
	}

	if got[0].Message() != "503 Service Unavailable" || got[0].ResponseStatusCode() != 503 {
		t.Fatalf("payload=%+v", got[0].Payload())
	}

	if !strings.HasSuffix(got[0].URL(), "/down") {
		t.Fatalf("URL=%q", got[0].URL())
	}
}

func TestMiddleware_MinStatus(t *testing.T) {
	t.Parallel()

	s := &sink{}
	rp := reporter.New("svc", "1", s)

	h := nethttp.Middleware(rp, nethttp.WithMinStatus(400))(http.NotFoundHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if n := len(s.reports()); n != 1 {
		t.Fatalf("reports=%d want=1", n)
	}

	s2 := &sink{}
	off := nethttp.Middleware(reporter.New("svc", "1", s2), nethttp.WithMinStatus(0))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	off.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if n := len(s2.reports()); n != 0 {
		t.Fatalf("reports=%d want=0 when status reporting is off", n)
	}
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	t.Parallel()

	s := &sink{}
	rp := reporter.New("svc", "1", s)

	h := nethttp.Middleware(rp)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("inventory missing")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want=500", rec.Code)
	}

	got := s.reports()
	if len(got) != 1 {
		t.Fatalf("reports=%d want=1", len(got))
	}

	r := got[0]
	if !strings.Contains(r.Message(), "inventory missing") || r.ResponseStatusCode() != 500 {
		t.Fatalf("payload=%+v", r.Payload())
	}

	if r.FilePath() == "" || r.LineNumber() <= 0 {
		t.Fatalf("panic location missing: %+v", r.Payload().Context.ReportLocation)
	}
}

func TestMiddleware_RepanicsAbortHandler(t *testing.T) {
	t.Parallel()

	s := &sink{}
	h := nethttp.Middleware(reporter.New("svc", "1", s))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		v := recover()

		err, ok := v.(error)
		if !ok || !errors.Is(err, http.ErrAbortHandler) {
			t.Fatalf("recovered=%v want ErrAbortHandler", v)
		}

		if n := len(s.reports()); n != 1 {
			t.Fatalf("reports=%d want=1", n)
		}
	}()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stream", nil))
}
