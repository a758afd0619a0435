package hits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "htscreen/internal/errors"
)

var doubling = []float64{0.5, 1, 2, 4, 8, 16, 32, 64}

// curvePoints samples a logistic at xs with two replicates offset by ±1
func curvePoints(id string, p Params, xs []float64) []Point {
	var out []Point
	for _, x := range xs {
		y := FourPL(x, p)
		out = append(out,
			Point{CompoundID: id, Concentration: x, Value: y + 1},
			Point{CompoundID: id, Concentration: x, Value: y - 1},
		)
	}
	return out
}

func TestFourPL(t *testing.T) {
	p := Params{Lower: 0, Upper: 100, IC50: 5, Slope: 2}

	assert.InDelta(t, 50.0, FourPL(5, p), 1e-12)
	assert.InDelta(t, 20.0, FourPL(2.5, p), 1e-12)
	assert.InDelta(t, 2.5, InverseFourPL(20, p), 1e-9)
	assert.InDelta(t, 5.0, InverseFourPL(50, p), 1e-9)

	p.Slope = 1.5
	assert.True(t, math.IsNaN(InverseFourPL(150, p)))
}

func TestAverage(t *testing.T) {
	x, y := Average([]Point{
		{Concentration: 10, Value: 4},
		{Concentration: 1, Value: 1},
		{Concentration: 10, Value: 6},
		{Concentration: 5, Value: 2},
	})
	assert.Equal(t, []float64{1, 5, 10}, x)
	assert.Equal(t, []float64{1, 2, 5}, y)
}

func TestFit_RecoversKnownParameters(t *testing.T) {
	want := Params{Lower: 0, Upper: 100, IC50: 5, Slope: 2}

	result := Fit("C1", curvePoints("C1", want, doubling), 10000)
	require.NoError(t, result.Err)

	assert.InDelta(t, want.Lower, result.Lower, 1e-4)
	assert.InDelta(t, want.Upper, result.Upper, 1e-4)
	assert.InDelta(t, want.IC50, result.IC50, 1e-4)
	assert.InDelta(t, want.Slope, result.Slope, 1e-4)
	assert.InDelta(t, 1.0, result.R2, 1e-9)
	assert.Equal(t, 0.5, result.MinConcentration)
	assert.Equal(t, 64.0, result.MaxConcentration)
	assert.Equal(t, OpEqual, result.Operator)
	assert.LessOrEqual(t, result.Evaluations, 10000)
}

func TestFit_Deterministic(t *testing.T) {
	points := curvePoints("C1", Params{Lower: 10, Upper: 90, IC50: 3, Slope: 1.2}, doubling)
	// noise that no curve fits exactly
	points[3].Value += 7
	points[10].Value -= 5

	first := Fit("C1", points, 10000)
	second := Fit("C1", points, 10000)
	require.NoError(t, first.Err)
	assert.Equal(t, first, second)
}

func TestFit_InsufficientPoints(t *testing.T) {
	result := Fit("C2", []Point{
		{Concentration: 1, Value: 10},
		{Concentration: 2, Value: 20},
		{Concentration: 2, Value: 22},
		{Concentration: 4, Value: 40},
	}, 10000)

	require.Error(t, result.Err)
	assert.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, apperrors.ErrInsufficientPoints)
	assert.True(t, apperrors.IsType(result.Err, apperrors.ErrTypeFit))
	assert.True(t, math.IsNaN(result.IC50))
	assert.True(t, math.IsNaN(result.R2))
	assert.Equal(t, 1.0, result.MinConcentration)
	assert.Equal(t, 4.0, result.MaxConcentration)
	assert.Equal(t, OpEqual, result.Operator)
}

func TestFit_BudgetExhausted(t *testing.T) {
	points := curvePoints("C3", Params{Lower: 0, Upper: 100, IC50: 5, Slope: 2}, doubling)

	result := Fit("C3", points, 1)
	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, apperrors.ErrFitDiverged)
	assert.True(t, math.IsNaN(result.Lower))
	assert.True(t, math.IsNaN(result.Upper))
	assert.True(t, math.IsNaN(result.Slope))
}

func TestFit_FlatResponse(t *testing.T) {
	var points []Point
	for _, x := range doubling {
		points = append(points, Point{Concentration: x, Value: 5})
	}

	result := Fit("flat", points, 10000)
	require.NoError(t, result.Err)
	assert.Equal(t, 5.0, result.Lower)
	assert.Equal(t, 5.0, result.Upper)
}

func TestInferOperator(t *testing.T) {
	assert.Equal(t, OpGreater, inferOperator(100, 1, 50))
	assert.Equal(t, OpLess, inferOperator(0.5, 1, 50))
	assert.Equal(t, OpEqual, inferOperator(50, 1, 50))
	assert.Equal(t, OpEqual, inferOperator(math.NaN(), 1, 50))
}
