package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"htscreen/internal/combine"
	"htscreen/internal/config"
	apperrors "htscreen/internal/errors"
	"htscreen/internal/hits"
	"htscreen/internal/infrastructure"
)

// Hit validation step identifiers
const (
	StepFit      = "fit"
	StepClassify = "classify"
)

// HitResult is the output of a hit-validation run
type HitResult struct {
	RunID  string
	Calls  []hits.HitCall
	Counts map[hits.Activity]int
	State  *RunState
}

// HitValidation fits and classifies compounds from long-format points
type HitValidation struct {
	cfg        config.HitsConfig
	thresholds hits.Thresholds
	workers    int
	runner     *Runner
	logger     *slog.Logger
}

// NewHitValidation creates a hit-validation pipeline. metrics may be nil.
func NewHitValidation(cfg config.HitsConfig, workers int, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *HitValidation {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "hit_validation")
	return &HitValidation{
		cfg:        cfg,
		thresholds: hits.ThresholdsFromConfig(cfg),
		workers:    workers,
		runner:     NewRunner(logger, metrics),
		logger:     logger,
	}
}

// WithTracer opens a span per run and per step on tracer
func (h *HitValidation) WithTracer(tracer trace.Tracer) *HitValidation {
	h.runner.SetTracer(tracer)
	return h
}

// PointsFromScreening builds long-format points from the compound table of
// a screening run, deriving concentrations from the configured stock
// concentration and assay volume.
func (h *HitValidation) PointsFromScreening(res *ScreeningResult) ([]hits.Point, error) {
	if h.cfg.AssayVolume <= 0 || h.cfg.StockConcentration <= 0 {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("stock concentration %g and assay volume %g must be positive", h.cfg.StockConcentration, h.cfg.AssayVolume), nil)
	}
	column := res.FeatureColumn
	if column == "" || column == combine.ColZScore {
		return nil, apperrors.NewAppValidationError("screening run has no activation or inhibition values")
	}
	return hits.PointsFromMetrics(res.Compounds, column, h.cfg.StockConcentration, h.cfg.AssayVolume), nil
}

// Run fits every compound and classifies it. Fit failures end up as
// inconclusive calls and never fail the run.
func (h *HitValidation) Run(ctx context.Context, points []hits.Point) (*HitResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	result := &HitResult{RunID: runID, State: NewRunState(runID)}

	var (
		groups []hits.Group
		fits   []hits.FitResult
	)

	steps := []Step{
		NewStep(StepFit, "Fit dose-response curves", func(ctx context.Context, state *RunState) error {
			groups = hits.GroupByCompound(points, h.thresholds.ValueLowerBound)

			var err error
			fits, err = hits.FitAll(ctx, groups, h.thresholds.MaxEvaluations, h.workers)
			if err != nil {
				return err
			}

			failed := 0
			for _, f := range fits {
				if f.Failed() {
					failed++
					h.logger.WarnContext(ctx, "curve fit failed",
						slog.String("compound_id", f.CompoundID),
						slog.String("error", f.Err.Error()))
				}
			}
			h.runner.add(ctx, compoundsFitted, len(fits))
			h.runner.add(ctx, fitFailures, failed)

			st := state.GetStep(StepFit)
			st.SetMetadata("compounds", len(fits))
			st.SetMetadata("failed", failed)
			return nil
		}),
		NewStep(StepClassify, "Classify compounds", func(ctx context.Context, state *RunState) error {
			result.Calls = hits.ClassifyGroups(groups, fits, h.thresholds)
			result.Counts = hits.CountActivity(result.Calls)

			st := state.GetStep(StepClassify)
			for activity, n := range result.Counts {
				st.SetMetadata(string(activity), n)
			}
			return nil
		}),
	}

	if err := h.runner.Run(ctx, result.State, steps); err != nil {
		return result, err
	}
	return result, nil
}
