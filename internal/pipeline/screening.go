package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"htscreen/internal/combine"
	"htscreen/internal/config"
	"htscreen/internal/files"
	"htscreen/internal/infrastructure"
	"htscreen/internal/plate"
	"htscreen/internal/transfer"
)

// Screening step identifiers
const (
	StepPlates    = "plates"
	StepQuality   = "quality"
	StepTransfers = "transfers"
	StepCombine   = "combine"
	StepAggregate = "aggregate"
)

// ScreeningInput holds the raw files of one screening run
type ScreeningInput struct {
	PlateFiles    []files.Input
	TransferFiles []files.Input
	// PlateMap optionally maps source plate/well to compound ids
	PlateMap *files.Input
	// KeyColumns overrides the transfer columns retained
	KeyColumns []string
}

// Aggregates holds the per-plate summaries of the three combined tables
type Aggregates struct {
	Compounds []combine.PlateAggregate `json:"compounds"`
	Positive  []combine.PlateAggregate `json:"positive"`
	Negative  []combine.PlateAggregate `json:"negative"`
}

// ScreeningResult is the output of a screening run
type ScreeningResult struct {
	RunID string

	// Batch holds every parsed plate before quality filtering
	Batch    *plate.Batch
	Stats    []plate.QualityStats
	Values   plate.Tensor
	Excluded []combine.ExcludedPlate

	Transfers *transfer.Result
	// MissingCompoundIDs counts transfers dropped for lack of a plate map entry
	MissingCompoundIDs int

	Combined  *combine.Table
	Compounds *combine.Table
	Positive  *combine.Table
	Negative  *combine.Table
	// FeatureColumn is the metric summarised in Aggregates
	FeatureColumn string
	Aggregates    Aggregates

	State *RunState
}

// Screening runs plate ingestion through metric combination
type Screening struct {
	cfg    config.AnalysisConfig
	runner *Runner
	logger *slog.Logger
}

// NewScreening creates a screening pipeline. metrics may be nil.
func NewScreening(cfg config.AnalysisConfig, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Screening {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "screening")
	return &Screening{cfg: cfg, runner: NewRunner(logger, metrics), logger: logger}
}

// WithTracer opens a span per run and per step on tracer
func (s *Screening) WithTracer(tracer trace.Tracer) *Screening {
	s.runner.SetTracer(tracer)
	return s
}

// options converts the analysis configuration
func (s *Screening) options() (combine.Options, error) {
	def, err := combine.ParseMode(s.cfg.DefaultMode)
	if err != nil {
		return combine.Options{}, err
	}
	opts := combine.Options{
		DefaultMode: def,
		Modes:       make(map[string]combine.Mode, len(s.cfg.Modes)),
		Formula:     combine.FormulaStandard,
	}
	if s.cfg.ActivationFormula != "" {
		opts.Formula = combine.Formula(s.cfg.ActivationFormula)
	}
	for barcode, name := range s.cfg.Modes {
		m, err := combine.ParseMode(name)
		if err != nil {
			return combine.Options{}, fmt.Errorf("plate %s: %w", barcode, err)
		}
		opts.Modes[barcode] = m
	}
	return opts, nil
}

// Run executes the screening steps.
//
// Per-file plate failures are recorded in Batch.Failed and excluded plates
// in Excluded; neither stops the run. A malformed transfer log or plate map
// does.
func (s *Screening) Run(ctx context.Context, in ScreeningInput) (*ScreeningResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	opts, err := s.options()
	if err != nil {
		return nil, err
	}

	result := &ScreeningResult{RunID: runID, State: NewRunState(runID)}

	steps := []Step{
		NewStep(StepPlates, "Parse plate exports", func(ctx context.Context, state *RunState) error {
			batch, err := plate.ParseBatch(ctx, in.PlateFiles, s.cfg.Workers, s.logger)
			if err != nil {
				return err
			}
			result.Batch = batch

			s.runner.add(ctx, platesParsed, batch.PlateCount())
			s.runner.add(ctx, plateFailures, len(batch.Failed))
			s.runner.add(ctx, outliersFlagged, batch.OutlierCount())

			st := state.GetStep(StepPlates)
			st.SetMetadata("plates", batch.PlateCount())
			st.SetMetadata("failed", len(batch.Failed))
			st.SetMetadata("outliers", batch.OutlierCount())
			st.SetMetadata("plates_with_outliers", batch.WithOutliers().PlateCount())
			return nil
		}),
		NewStep(StepQuality, "Filter low quality plates", func(ctx context.Context, state *RunState) error {
			stats, values, excluded, err := combine.FilterLowQualityPlates(
				result.Batch.Stats, result.Batch.Values, s.cfg.ZFactorThreshold)
			if err != nil {
				return err
			}
			result.Stats, result.Values, result.Excluded = stats, values, excluded

			for _, ex := range excluded {
				s.logger.InfoContext(ctx, "plate excluded by quality filter",
					slog.String("barcode", ex.Barcode),
					slog.Float64("z_factor", ex.ZFactor),
					slog.Float64("threshold", s.cfg.ZFactorThreshold))
			}
			s.runner.add(ctx, platesExcluded, len(excluded))

			st := state.GetStep(StepQuality)
			st.SetMetadata("kept", len(stats))
			st.SetMetadata("excluded", len(excluded))
			return nil
		}),
		NewStep(StepTransfers, "Parse transfer logs", func(ctx context.Context, state *RunState) error {
			parsed, err := transfer.Parse(in.TransferFiles)
			if err != nil {
				return err
			}

			if in.PlateMap != nil {
				plateMap, err := transfer.ReadPlateMap(*in.PlateMap)
				if err != nil {
					return err
				}
				merged, skipped, err := transfer.MergeCompoundIDs(parsed.Transfers, plateMap)
				if err != nil {
					return err
				}
				parsed.Transfers = merged
				result.MissingCompoundIDs = skipped
				if skipped > 0 {
					s.logger.WarnContext(ctx, "transfers without compound id skipped",
						slog.Int("rows", skipped))
				}
			}

			parsed.RetainKeyColumns(in.KeyColumns)
			result.Transfers = parsed
			s.runner.add(ctx, transferRows, parsed.Transfers.Len())

			st := state.GetStep(StepTransfers)
			st.SetMetadata("transfers", parsed.Transfers.Len())
			st.SetMetadata("exceptions", parsed.Exceptions.Len())
			st.SetMetadata("missing_compound_ids", result.MissingCompoundIDs)
			return nil
		}),
		NewStep(StepCombine, "Combine readings with transfers", func(ctx context.Context, state *RunState) error {
			combined, err := combine.Combine(result.Transfers.Transfers, result.Stats, result.Values, opts)
			if err != nil {
				return err
			}
			result.Combined = combined.Deduplicate()

			compounds, positive, negative := combine.Split(result.Combined)
			result.Compounds = compounds.DropIncomplete()
			result.Positive, result.Negative = positive, negative

			st := state.GetStep(StepCombine)
			st.SetMetadata("rows", result.Combined.Len())
			st.SetMetadata("compounds", result.Compounds.Len())
			st.SetMetadata("positive", positive.Len())
			st.SetMetadata("negative", negative.Len())
			return nil
		}),
		NewStep(StepAggregate, "Aggregate per-plate statistics", func(ctx context.Context, state *RunState) error {
			result.FeatureColumn = featureColumn(result.Combined)
			result.Aggregates = Aggregates{
				Compounds: combine.Aggregate(result.Compounds, result.FeatureColumn, true),
				Positive:  combine.Aggregate(result.Positive, result.FeatureColumn, false),
				Negative:  combine.Aggregate(result.Negative, result.FeatureColumn, false),
			}
			state.GetStep(StepAggregate).SetMetadata("plates", len(result.Aggregates.Compounds))
			return nil
		}),
	}

	if err := s.runner.Run(ctx, result.State, steps); err != nil {
		return result, err
	}
	return result, nil
}

// featureColumn picks the metric summarised per plate
func featureColumn(t *combine.Table) string {
	switch {
	case t.HasActivation:
		return combine.ColActivation
	case t.HasInhibition:
		return combine.ColInhibition
	default:
		return combine.ColZScore
	}
}

func platesParsed(m *infrastructure.PipelineMetrics) metric.Int64Counter    { return m.PlatesParsed }
func plateFailures(m *infrastructure.PipelineMetrics) metric.Int64Counter   { return m.PlateFailures }
func platesExcluded(m *infrastructure.PipelineMetrics) metric.Int64Counter  { return m.PlatesExcluded }
func outliersFlagged(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.OutliersFlagged }
func transferRows(m *infrastructure.PipelineMetrics) metric.Int64Counter    { return m.TransferRows }
func compoundsFitted(m *infrastructure.PipelineMetrics) metric.Int64Counter { return m.CompoundsFitted }
func fitFailures(m *infrastructure.PipelineMetrics) metric.Int64Counter     { return m.FitFailures }
