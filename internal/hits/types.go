package hits

import (
	"htscreen/internal/config"
)

// Point is one (compound, concentration, value) observation
type Point struct {
	CompoundID    string  `json:"compound_id"`
	Concentration float64 `json:"concentration"`
	Value         float64 `json:"value"`
}

// Params are the four logistic parameters
type Params struct {
	Lower float64 `json:"lower_limit"`
	Upper float64 `json:"upper_limit"`
	IC50  float64 `json:"ic50"`
	Slope float64 `json:"slope"`
}

// Operator relates the fitted ic50 to the tested concentration range
type Operator string

const (
	OpLess    Operator = "<"
	OpGreater Operator = ">"
	OpEqual   Operator = "="
)

// Activity is the final call of a compound
type Activity string

const (
	ActivityActive       Activity = "active"
	ActivityInactive     Activity = "inactive"
	ActivityInconclusive Activity = "inconclusive"
)

// FitResult is the curve fit of one compound. Err is set, and every
// parameter is NaN, when the fit failed.
type FitResult struct {
	CompoundID string `json:"compound_id"`
	Params
	MinConcentration float64  `json:"min_concentration"`
	MaxConcentration float64  `json:"max_concentration"`
	R2               float64  `json:"r2"`
	Operator         Operator `json:"operator"`
	Evaluations      int      `json:"evaluations"`
	Err              error    `json:"-"`
}

// Failed reports whether the fit did not produce parameters
func (r FitResult) Failed() bool {
	return r.Err != nil
}

// HitCall is a fit result with the derived classification flags
type HitCall struct {
	FitResult
	MinValue          float64  `json:"min_value"`
	MaxValue          float64  `json:"max_value"`
	MeanValue         float64  `json:"mean_value"`
	ModulationIC50    float64  `json:"modulation_ic50"`
	Concentration50   float64  `json:"concentration_50"`
	AllConcActive     bool     `json:"all_conc_active"`
	AllConcInactive   bool     `json:"all_conc_inactive"`
	IsReverseDose     bool     `json:"is_reverse_dose"`
	IsActive          bool     `json:"is_active"`
	IsPartiallyActive bool     `json:"is_partially_active"`
	ActivityFinal     Activity `json:"activity_final"`
}

// Thresholds parameterise classification and the solver budget
type Thresholds struct {
	// AllActiveMin: every value above it marks the compound active at all concentrations
	AllActiveMin float64
	// AllInactiveMax: every value below it marks the compound inactive at all concentrations
	AllInactiveMax          float64
	ConcentrationUpperBound float64
	TopLowerBound           float64
	TopUpperBound           float64
	// ValueLowerBound: values below it are discarded before fitting
	ValueLowerBound float64
	MaxEvaluations  int
}

// DefaultThresholds returns the standard hit-calling thresholds
func DefaultThresholds() Thresholds {
	return ThresholdsFromConfig(config.Default().Hits)
}

// ThresholdsFromConfig maps the hits configuration section
func ThresholdsFromConfig(cfg config.HitsConfig) Thresholds {
	return Thresholds{
		AllActiveMin:            cfg.AllActiveMin,
		AllInactiveMax:          cfg.AllInactiveMax,
		ConcentrationUpperBound: cfg.ConcentrationUpperBound,
		TopLowerBound:           cfg.TopLowerBound,
		TopUpperBound:           cfg.TopUpperBound,
		ValueLowerBound:         cfg.ValueLowerBound,
		MaxEvaluations:          cfg.MaxEvaluations,
	}
}
