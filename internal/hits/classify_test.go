package hits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fitWith(ic50, upper float64) FitResult {
	return FitResult{
		CompoundID:       "C",
		Params:           Params{Lower: 0, Upper: upper, IC50: ic50, Slope: 1},
		MinConcentration: 0.1,
		MaxConcentration: 100,
		Operator:         OpEqual,
	}
}

var spread = []float64{0, 50, 100}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 75.0, th.AllActiveMin)
	assert.Equal(t, 30.0, th.AllInactiveMax)
	assert.Equal(t, 10.0, th.ConcentrationUpperBound)
	assert.Equal(t, 30.0, th.TopLowerBound)
	assert.Equal(t, 80.0, th.TopUpperBound)
	assert.Equal(t, -100.0, th.ValueLowerBound)
	assert.Equal(t, 10000, th.MaxEvaluations)
}

func TestClassify_Boundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name    string
		ic50    float64
		upper   float64
		want    Activity
		partial bool
	}{
		{"ic50 at bound is inactive", 10, 100, ActivityInactive, false},
		{"upper at bound is inactive", 5, 30, ActivityInactive, false},
		{"upper just above bound is active", 5, 30.0001, ActivityActive, true},
		{"full activity", 5, 100, ActivityActive, false},
		{"upper below partial ceiling", 9.99, 79.9, ActivityActive, true},
		{"NaN ic50 is inconclusive", math.NaN(), 100, ActivityInconclusive, false},
		{"NaN upper is inconclusive", 5, math.NaN(), ActivityInconclusive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := Classify(fitWith(tt.ic50, tt.upper), spread, th)
			assert.Equal(t, tt.want, call.ActivityFinal)
			assert.Equal(t, tt.partial, call.IsPartiallyActive)
		})
	}
}

func TestClassify_OperatorOverrides(t *testing.T) {
	th := DefaultThresholds()

	active := Classify(fitWith(5, 100), []float64{80, 90, 99}, th)
	assert.True(t, active.AllConcActive)
	assert.Equal(t, OpLess, active.Operator)
	assert.Equal(t, ActivityInconclusive, active.ActivityFinal)

	inactive := Classify(fitWith(5, 100), []float64{1, 29.9}, th)
	assert.True(t, inactive.AllConcInactive)
	assert.Equal(t, OpGreater, inactive.Operator)
	assert.Equal(t, ActivityInconclusive, inactive.ActivityFinal)

	// thresholds are strict
	edge := Classify(fitWith(5, 100), []float64{30, 75}, th)
	assert.False(t, edge.AllConcActive)
	assert.False(t, edge.AllConcInactive)
	assert.Equal(t, OpEqual, edge.Operator)

	outside := fitWith(500, 100)
	outside.Operator = OpGreater
	assert.Equal(t, ActivityInconclusive, Classify(outside, spread, th).ActivityFinal)
}

func TestClassify_Flags(t *testing.T) {
	th := DefaultThresholds()

	fit := fitWith(5, 100)
	fit.Slope = -1
	call := Classify(fit, spread, th)
	assert.True(t, call.IsReverseDose)
	assert.True(t, call.IsActive)
	assert.Equal(t, 0.0, call.MinValue)
	assert.Equal(t, 100.0, call.MaxValue)
	assert.Equal(t, 50.0, call.MeanValue)

	assert.False(t, Classify(fitWith(12, 100), spread, th).IsActive)
}

func TestClassify_ModulationAndConcentration50(t *testing.T) {
	call := Classify(fitWith(5, 100), spread, DefaultThresholds())
	assert.InDelta(t, 50.0, call.ModulationIC50, 1e-12)
	assert.InDelta(t, 5.0, call.Concentration50, 1e-12)

	// a curve topping out below 50 never reaches it
	low := fitWith(5, 40)
	low.Slope = 1.5
	assert.True(t, math.IsNaN(Classify(low, spread, DefaultThresholds()).Concentration50))
}

func TestClassify_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.ConcentrationUpperBound = 20

	assert.Equal(t, ActivityActive, Classify(fitWith(10, 100), spread, th).ActivityFinal)
}
