// Package transport delivers finished error reports.
//
// Every sink implements Transport and is safe for concurrent use. Timeouts
// come from the caller's context; sinks do not retry.
package transport

import (
	"context"
	"errors"

	"github.com/next-trace/scg-report/report"
)

// ErrNilReport is returned when a sink is handed a nil report.
var ErrNilReport = errors.New("transport: nil report")

// Transport sends one report.
type Transport interface {
	SendError(ctx context.Context, r *report.Report) error
}

// Func adapts a plain function to Transport.
type Func func(ctx context.Context, r *report.Report) error

func (f Func) SendError(ctx context.Context, r *report.Report) error { return f(ctx, r) }

// Discard drops every report.
var Discard Transport = Func(func(context.Context, *report.Report) error { return nil })
