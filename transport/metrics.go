package transport

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/next-trace/scg-report/report"
)

// Metrics holds the collectors shared by instrumented sinks.
type Metrics struct {
	sent     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors on reg
// (prometheus.DefaultRegisterer when nil).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scg",
			Subsystem: "report",
			Name:      "sent_total",
			Help:      "Error reports handed to a sink, by sink and outcome.",
		}, []string{"sink", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scg",
			Subsystem: "report",
			Name:      "send_duration_seconds",
			Help:      "Time spent delivering one error report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
	}

	for _, c := range []prometheus.Collector{m.sent, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Instrument wraps t so every send is counted and timed under sink.
func (m *Metrics) Instrument(sink string, t Transport) Transport {
	if m == nil {
		return t
	}

	return Func(func(ctx context.Context, r *report.Report) error {
		start := time.Now()
		err := t.SendError(ctx, r)

		m.duration.WithLabelValues(sink).Observe(time.Since(start).Seconds())

		outcome := "ok"
		if err != nil {
			outcome = "error"
		}

		m.sent.WithLabelValues(sink, outcome).Inc()

		return err
	})
}
