package transport

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/next-trace/scg-report/report"
)

// Multi fans a report out to several sinks concurrently. Every sink is
// attempted; failures are joined.
type Multi struct {
	sinks []named
}

type named struct {
	name string
	t    Transport
}

// NewMulti returns an empty fan-out; add sinks with Add.
func NewMulti() *Multi { return &Multi{} }

// Add registers a sink under name and returns the receiver for chaining.
// nil sinks are ignored.
func (m *Multi) Add(name string, t Transport) *Multi {
	if m == nil || t == nil {
		return m
	}

	m.sinks = append(m.sinks, named{name: name, t: t})

	return m
}

// Len returns the number of registered sinks.
func (m *Multi) Len() int {
	if m == nil {
		return 0
	}

	return len(m.sinks)
}

func (m *Multi) SendError(ctx context.Context, r *report.Report) error {
	if r == nil {
		return ErrNilReport
	}

	if m == nil {
		return nil
	}

	errs := make([]error, len(m.sinks))

	var g errgroup.Group

	for i, s := range m.sinks {
		i, s := i, s
		g.Go(func() error {
			if err := s.t.SendError(ctx, r); err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.name, err)
			}

			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}
