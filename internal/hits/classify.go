package hits

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ModulationAt50 is the response level used for concentration_50
const ModulationAt50 = 50.0

// Classify derives the hit call of a fitted compound. values are the raw
// (not averaged) valid values of the compound.
//
// The curve operator is overridden to "<" when every value exceeds
// AllActiveMin and to ">" when every value stays below AllInactiveMax. The
// final call is inconclusive for any operator other than "=" or a NaN ic50
// or upper limit, inactive when ic50 reaches ConcentrationUpperBound or the
// upper limit does not exceed TopLowerBound, and active otherwise.
func Classify(fit FitResult, values []float64, th Thresholds) HitCall {
	call := HitCall{
		FitResult: fit,
		MinValue:  math.NaN(),
		MaxValue:  math.NaN(),
		MeanValue: math.NaN(),
	}
	if len(values) > 0 {
		call.MinValue = floats.Min(values)
		call.MaxValue = floats.Max(values)
		call.MeanValue = stat.Mean(values, nil)
	}

	call.AllConcActive = call.MinValue > th.AllActiveMin
	call.AllConcInactive = call.MaxValue < th.AllInactiveMax
	switch {
	case call.AllConcActive:
		call.Operator = OpLess
	case call.AllConcInactive:
		call.Operator = OpGreater
	}

	ic50, upper := fit.IC50, fit.Upper
	call.IsReverseDose = fit.Slope < 0
	call.IsActive = ic50 < th.ConcentrationUpperBound

	switch {
	case call.Operator != OpEqual, math.IsNaN(ic50), math.IsNaN(upper):
		call.ActivityFinal = ActivityInconclusive
	case ic50 >= th.ConcentrationUpperBound || upper <= th.TopLowerBound:
		call.ActivityFinal = ActivityInactive
	default:
		call.ActivityFinal = ActivityActive
	}

	call.IsPartiallyActive = upper > th.TopLowerBound && upper < th.TopUpperBound &&
		ic50 < th.ConcentrationUpperBound

	call.ModulationIC50 = FourPL(ic50, fit.Params)
	call.Concentration50 = InverseFourPL(ModulationAt50, fit.Params)
	return call
}
