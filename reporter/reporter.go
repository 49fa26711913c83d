// Package reporter turns one error into one delivered report.
//
// A Reporter builds the report (request information, service context, user,
// routed message and location) and hands it to a transport. Delivery problems
// are logged and returned, never panicked.
package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/next-trace/scg-report/report"
	"github.com/next-trace/scg-report/transport"
)

// defaultTimeout bounds one delivery when the caller's context has no deadline.
const defaultTimeout = 10 * time.Second

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger used for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(rp *Reporter) {
		if l != nil {
			rp.logger = l
		}
	}
}

// WithTimeout bounds each delivery; zero or less disables the bound.
func WithTimeout(d time.Duration) Option { return func(rp *Reporter) { rp.timeout = d } }

// WithUser resolves the user of a report from the request context.
func WithUser(fn func(ctx context.Context) string) Option {
	return func(rp *Reporter) { rp.user = fn }
}

// Reporter is safe for concurrent use; every call builds its own report.
type Reporter struct {
	service   string
	version   string
	transport transport.Transport
	logger    *slog.Logger
	timeout   time.Duration
	user      func(ctx context.Context) string
}

// New returns a Reporter stamping every report with service and version.
// A nil transport discards reports.
func New(service, version string, t transport.Transport, opts ...Option) *Reporter {
	if t == nil {
		t = transport.Discard
	}

	rp := &Reporter{
		service:   service,
		version:   version,
		transport: t,
		logger:    slog.Default(),
		timeout:   defaultTimeout,
	}

	for _, o := range opts {
		o(rp)
	}

	return rp
}

// Build creates the report for err. requestInfo is anything
// report.Report.ConsumeRequestInformation accepts; nil skips it.
func (rp *Reporter) Build(ctx context.Context, err any, requestInfo any) *report.Report {
	r := report.New().
		ConsumeRequestInformation(requestInfo).
		SetServiceContext(rp.service, rp.version)

	if rp.user != nil {
		r.SetUser(rp.resolveUser(ctx))
	}

	return report.Route(err, r)
}

// Send delivers r through the transport.
func (rp *Reporter) Send(ctx context.Context, r *report.Report) (err error) {
	if rp.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc

			ctx, cancel = context.WithTimeout(ctx, rp.timeout)
			defer cancel()
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reporter: transport panicked: %v", rec)
		}

		if err != nil {
			attrs := []any{slog.String("error", err.Error())}
			if r != nil {
				attrs = append(attrs, slog.String("message", r.Message()))
			}

			rp.logger.ErrorContext(ctx, "error report not delivered", attrs...)
		}
	}()

	return rp.transport.SendError(ctx, r)
}

// Report builds and sends the report for err and returns it. Delivery
// failures are logged; the report is returned either way.
func (rp *Reporter) Report(ctx context.Context, err any, requestInfo any) *report.Report {
	r := rp.Build(ctx, err, requestInfo)
	_ = rp.Send(ctx, r)

	return r
}

func (rp *Reporter) resolveUser(ctx context.Context) (user string) {
	defer func() {
		if recover() != nil {
			user = ""
		}
	}()

	return rp.user(ctx)
}
