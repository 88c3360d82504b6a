package ports

import (
	"context"
	"io"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals that a set of tasks is planned for execution.
	EmitPlan(ctx context.Context, taskNames []string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Skipped marks a span for a task that was up to date.
	Skipped bool
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithSkipped marks the span as an up-to-date task.
func WithSkipped() SpanOption {
	return func(c *SpanConfig) { c.Skipped = true }
}

// Renderer presents task progress to the operator.
type Renderer interface {
	// OnPlanEmit announces the tasks a run will visit, in order.
	OnPlanEmit(tasks []string)
	// OnTaskStart is called when a task span starts. skipped marks an up-to-date task.
	OnTaskStart(spanID, name string, startTime time.Time, skipped bool)
	// OnTaskComplete is called when a task span ends.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
