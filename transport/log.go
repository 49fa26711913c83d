package transport

import (
	"context"
	"log/slog"

	"github.com/next-trace/scg-report/report"
)

// Log writes each report as a structured log record. It never fails.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLog returns a log sink; a nil logger means slog.Default().
func NewLog(logger *slog.Logger, level slog.Level) *Log {
	if logger == nil {
		logger = slog.Default()
	}

	return &Log{logger: logger, level: level}
}

func (l *Log) SendError(ctx context.Context, r *report.Report) error {
	if r == nil {
		return ErrNilReport
	}

	p := r.Payload()

	attrs := []slog.Attr{
		slog.String("event_time", p.EventTime),
		slog.Group("service",
			slog.String("name", p.ServiceContext.Service),
			slog.String("version", p.ServiceContext.Version),
		),
		slog.Group("http",
			slog.String("method", p.Context.HTTPRequest.Method),
			slog.String("url", p.Context.HTTPRequest.URL),
			slog.Int("status", p.Context.HTTPRequest.ResponseStatusCode),
			slog.String("remote_ip", p.Context.HTTPRequest.RemoteIP),
		),
		slog.Group("location",
			slog.String("file", p.Context.ReportLocation.FilePath),
			slog.Int("line", p.Context.ReportLocation.LineNumber),
			slog.String("function", p.Context.ReportLocation.FunctionName),
		),
	}

	if p.Context.User != "" {
		attrs = append(attrs, slog.String("user", p.Context.User))
	}

	if st := r.StackTrace(); st != "" {
		attrs = append(attrs, slog.String("stack", st))
	}

	l.logger.LogAttrs(ctx, l.level, p.Message, attrs...)

	return nil
}
