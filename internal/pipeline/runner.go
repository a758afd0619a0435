package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"htscreen/internal/infrastructure"
)

// Runner executes steps in order. A failing step stops the run and marks the
// remaining steps skipped.
type Runner struct {
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
}

// NewRunner creates a runner. A nil metrics set records nothing.
func NewRunner(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, metrics: metrics, tracer: infrastructure.NoopTracer()}
}

// SetTracer makes the runner open a span per run and per step
func (r *Runner) SetTracer(tracer trace.Tracer) {
	if tracer != nil {
		r.tracer = tracer
	}
}

// Run executes steps sequentially against state
func (r *Runner) Run(ctx context.Context, state *RunState, steps []Step) error {
	for _, step := range steps {
		state.AddStep(NewStepState(step.ID(), step.Name()))
	}

	ctx, runSpan := r.tracer.Start(ctx, "run",
		trace.WithAttributes(attribute.String("run.id", state.ID)))
	defer runSpan.End()

	state.Start()
	r.logger.InfoContext(ctx, "run started",
		slog.String("run_id", state.ID),
		slog.Int("step_count", len(steps)))

	for i, step := range steps {
		stepState := state.GetStep(step.ID())

		if err := ctx.Err(); err != nil {
			r.skipRemaining(state, steps[i:], "run cancelled")
			state.Cancel()
			infrastructure.RecordError(runSpan, err)
			r.logger.WarnContext(ctx, "run cancelled",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()))
			return err
		}

		stepCtx, span := r.tracer.Start(ctx, "step "+step.ID(),
			trace.WithAttributes(attribute.String("step", step.ID())))

		stepState.Start()
		start := time.Now()
		err := step.Execute(stepCtx, state)
		duration := time.Since(start)
		r.recordDuration(ctx, step.ID(), duration)
		span.SetAttributes(infrastructure.SpanAttributes(stepState.GetMetadata())...)

		if err != nil {
			infrastructure.RecordError(span, err)
			span.End()
			infrastructure.RecordError(runSpan, err)
			stepState.Fail(err)
			infrastructure.WithError(r.logger, err).ErrorContext(ctx, "step failed",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()),
				slog.Duration("duration", duration))
			r.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				state.Cancel()
			} else {
				state.Fail(err)
			}
			return fmt.Errorf("step %s: %w", step.ID(), err)
		}

		span.End()
		stepState.Complete()
		r.logger.InfoContext(ctx, "step completed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.Any("metadata", stepState.GetMetadata()))
	}

	state.Complete()
	r.logger.InfoContext(ctx, "run completed", slog.String("run_id", state.ID))
	return nil
}

func (r *Runner) skipRemaining(state *RunState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil {
			s.Skip(reason)
		}
	}
}

func (r *Runner) recordDuration(ctx context.Context, stepID string, d time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.StepDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("step", stepID)))
}

// add increments a counter when metrics are configured
func (r *Runner) add(ctx context.Context, counter func(*infrastructure.PipelineMetrics) metric.Int64Counter, n int) {
	if r.metrics == nil || n == 0 {
		return
	}
	counter(r.metrics).Add(ctx, int64(n))
}
