package combine

import (
	"fmt"
	"math"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/plate"
)

// Metric column names of the combined table
const (
	ColActivation = "% ACTIVATION"
	ColInhibition = "% INHIBITION"
	ColZScore     = "Z-SCORE"
)

// Mode selects which normalised readouts a plate produces
type Mode string

const (
	ModeActivation Mode = "activation"
	ModeInhibition Mode = "inhibition"
	ModeAll        Mode = "all"
)

// ParseMode validates a mode name. An empty name selects ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeAll, nil
	case ModeActivation, ModeInhibition, ModeAll:
		return Mode(s), nil
	}
	return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown analysis mode %q", s))
}

// Activation reports whether the mode produces % activation
func (m Mode) Activation() bool { return m == ModeActivation || m == ModeAll }

// Inhibition reports whether the mode produces % inhibition
func (m Mode) Inhibition() bool { return m == ModeInhibition || m == ModeAll }

// Formula selects the activation normalisation
type Formula string

const (
	// FormulaStandard normalises between the negative and positive control means
	FormulaStandard Formula = "standard"
	// FormulaWithoutPos normalises against the negative control mean only
	FormulaWithoutPos Formula = "without_pos"
)

// Activation returns % activation of a reading. A degenerate plate whose
// control means coincide yields ±Inf or NaN.
func Activation(value float64, s plate.QualityStats, f Formula) float64 {
	if f == FormulaWithoutPos {
		return (value - s.MeanNeg) / s.MeanNeg * 100
	}
	return (value - s.MeanNeg) / (s.MeanPos - s.MeanNeg) * 100
}

// Inhibition returns % inhibition of a reading
func Inhibition(value float64, s plate.QualityStats) float64 {
	return (1 - (value-s.MeanPos)/(s.MeanNeg-s.MeanPos)) * 100
}

// ZScore standardises a reading against the plate's compound wells
func ZScore(value float64, s plate.QualityStats) float64 {
	return (value - s.MeanCmpd) / s.StdCmpd
}

// WellMetric holds the derived readouts of one well. Activation and
// Inhibition are only meaningful when the matching Has flag is set.
type WellMetric struct {
	Barcode       string
	Well          string
	Value         float64
	Activation    float64
	Inhibition    float64
	ZScore        float64
	HasActivation bool
	HasInhibition bool
}

// WellMetrics derives readouts for every well of one plate in row-major
// order. Wells flagged in the outlier mask are omitted.
func WellMetrics(s plate.QualityStats, values [2]plate.Grid, mode Mode, f Formula) []WellMetric {
	grid, mask := &values[plate.ValueLayer], &values[plate.MaskLayer]

	out := make([]WellMetric, 0, plate.Rows*plate.Cols)
	for r := 0; r < plate.Rows; r++ {
		for c := 0; c < plate.Cols; c++ {
			if mask[r][c] == 1 {
				continue
			}
			v := grid[r][c]
			m := WellMetric{
				Barcode:    s.Barcode,
				Well:       plate.CoordinateToWell(r, c),
				Value:      v,
				Activation: math.NaN(),
				Inhibition: math.NaN(),
				ZScore:     ZScore(v, s),
			}
			if mode.Activation() {
				m.Activation = Activation(v, s, f)
				m.HasActivation = true
			}
			if mode.Inhibition() {
				m.Inhibition = Inhibition(v, s)
				m.HasInhibition = true
			}
			out = append(out, m)
		}
	}
	return out
}
