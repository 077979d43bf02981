package optimizer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/cxd309/strike-engine/internal/optimizer"

type metrics struct {
	simulations metric.Int64Counter
	touches     metric.Int64Counter
	graderCalls metric.Int64Counter
	solves      metric.Int64Counter
}

// newMetrics registers the counters on the global meter, a no-op unless an
// SDK provider has been installed.
func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	out := &metrics{}

	var err error
	out.simulations, err = m.Int64Counter("optimizer.simulations",
		metric.WithDescription("Candidate strikes simulated"))
	if err != nil {
		return nil, fmt.Errorf("creating simulations counter: %w", err)
	}
	out.touches, err = m.Int64Counter("optimizer.touches",
		metric.WithDescription("Simulated car-ball touches"))
	if err != nil {
		return nil, fmt.Errorf("creating touches counter: %w", err)
	}
	out.graderCalls, err = m.Int64Counter("optimizer.grader_calls",
		metric.WithDescription("Hypotheticals handed to the grader"))
	if err != nil {
		return nil, fmt.Errorf("creating grader calls counter: %w", err)
	}
	out.solves, err = m.Int64Counter("optimizer.solves",
		metric.WithDescription("Solve calls by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating solves counter: %w", err)
	}
	return out, nil
}

func (m *metrics) record(d Diagnostics) {
	ctx := context.Background()
	m.simulations.Add(ctx, int64(d.Simulations))
	m.touches.Add(ctx, int64(d.Touches))
	m.graderCalls.Add(ctx, int64(d.GraderCalls))
	m.solves.Add(ctx, 1, metric.WithAttributes(attribute.Bool("solved", d.Solved)))
}
