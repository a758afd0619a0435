package hits

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	apperrors "htscreen/internal/errors"
)

// Solver tolerances
const (
	relCostTol  = 1e-15
	relStepTol  = 1e-12
	gradTol     = 1e-12
	lambdaStart = 1e-3
	lambdaMin   = 1e-12
	lambdaMax   = 1e16
)

// NumParams is the number of logistic parameters; a fit needs at least as
// many distinct concentrations.
const NumParams = 4

// Average collapses replicates sharing a concentration into their arithmetic
// mean. The returned concentrations are ascending.
func Average(points []Point) (x, y []float64) {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, p := range points {
		sums[p.Concentration] += p.Value
		counts[p.Concentration]++
	}

	x = make([]float64, 0, len(sums))
	for c := range sums {
		x = append(x, c)
	}
	sort.Float64s(x)

	y = make([]float64, len(x))
	for i, c := range x {
		y[i] = sums[c] / float64(counts[c])
	}
	return x, y
}

// Fit averages one compound's replicates and fits the logistic curve.
// The solver stops after maxEvaluations curve evaluations.
func Fit(compoundID string, points []Point, maxEvaluations int) FitResult {
	x, y := Average(points)

	result := FitResult{
		CompoundID:       compoundID,
		Params:           nanParams(),
		MinConcentration: math.NaN(),
		MaxConcentration: math.NaN(),
		R2:               math.NaN(),
	}
	if len(x) > 0 {
		result.MinConcentration = x[0]
		result.MaxConcentration = x[len(x)-1]
	}

	if len(x) < NumParams {
		result.Err = apperrors.NewFitError(
			fmt.Sprintf("compound %s has %d concentrations, need %d", compoundID, len(x), NumParams),
			apperrors.ErrInsufficientPoints,
		).WithContext("compound_id", compoundID)
	} else {
		params, evals, err := levenbergMarquardt(x, y, seed(x, y), maxEvaluations)
		result.Evaluations = evals
		if err != nil {
			result.Err = apperrors.NewFitError(fmt.Sprintf("compound %s", compoundID), err).
				WithContext("compound_id", compoundID).
				WithContext("evaluations", evals)
		} else {
			result.Params = params
			result.R2 = RSquared(x, y, params)
		}
	}

	result.Operator = inferOperator(result.IC50, result.MinConcentration, result.MaxConcentration)
	return result
}

// inferOperator places ic50 relative to the tested range. NaN compares
// false on both sides and yields "=".
func inferOperator(ic50, minConc, maxConc float64) Operator {
	switch {
	case ic50 > maxConc:
		return OpGreater
	case ic50 < minConc:
		return OpLess
	default:
		return OpEqual
	}
}

// seed derives deterministic starting parameters from the data: the
// responses at the lowest and highest concentration, the geometric mean of
// the positive concentrations and a unit slope.
func seed(x, y []float64) Params {
	logSum, n := 0.0, 0
	for _, c := range x {
		if c > 0 {
			logSum += math.Log(c)
			n++
		}
	}
	ic50 := 1.0
	if n > 0 {
		ic50 = math.Exp(logSum / float64(n))
	}
	return Params{Lower: y[0], Upper: y[len(y)-1], IC50: ic50, Slope: 1}
}

func sumSquares(x, y []float64, p Params) float64 {
	var s float64
	for i := range x {
		r := y[i] - FourPL(x[i], p)
		s += r * r
	}
	return s
}

// levenbergMarquardt minimises the squared residuals of FourPL over (x, y)
// with Marquardt's diagonal scaling.
//
// Returns: the fitted parameters, the number of curve evaluations used, and
// ErrFitDiverged when the budget runs out or the parameters leave the finite
// range.
func levenbergMarquardt(x, y []float64, start Params, maxEvaluations int) (Params, int, error) {
	p := start
	cost := sumSquares(x, y, p)
	evals := 1
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return nanParams(), evals, fmt.Errorf("%w: non-finite residuals at start", apperrors.ErrFitDiverged)
	}

	n := len(x)
	lambda := lambdaStart
	jac := mat.NewDense(n, NumParams, nil)
	res := mat.NewVecDense(n, nil)

	for evals < maxEvaluations {
		if cost == 0 {
			return p, evals, nil
		}

		for i := 0; i < n; i++ {
			g := gradient(x[i], p)
			jac.SetRow(i, g[:])
			res.SetVec(i, y[i]-FourPL(x[i], p))
		}

		var jtj mat.SymDense
		jtj.SymOuterK(1, jac.T())
		var jtr mat.VecDense
		jtr.MulVec(jac.T(), res)

		if mat.Norm(&jtr, math.Inf(1)) <= gradTol {
			return p, evals, nil
		}

		improved := false
		for !improved && evals < maxEvaluations {
			damped := mat.NewDense(NumParams, NumParams, nil)
			damped.Copy(&jtj)
			for k := 0; k < NumParams; k++ {
				d := jtj.At(k, k)
				if d < 1e-12 {
					d = 1e-12
				}
				damped.Set(k, k, jtj.At(k, k)+lambda*d)
			}

			var step mat.VecDense
			if err := step.SolveVec(damped, &jtr); err != nil {
				lambda *= 10
				if lambda > lambdaMax {
					return p, evals, nil
				}
				continue
			}

			candidate := p.vector()
			for k := range candidate {
				candidate[k] += step.AtVec(k)
			}
			next := paramsFrom(candidate)
			nextCost := sumSquares(x, y, next)
			evals++

			if next.finite() && !math.IsNaN(nextCost) && nextCost < cost {
				improved = true
				reduction := cost - nextCost
				stepNorm := mat.Norm(&step, 2)
				p, cost = next, nextCost
				lambda = math.Max(lambda/10, lambdaMin)

				if reduction <= relCostTol*cost || stepNorm <= relStepTol*(mat.Norm(mat.NewVecDense(NumParams, p.vector()), 2)+relStepTol) {
					return p, evals, nil
				}
				continue
			}

			lambda *= 10
			if lambda > lambdaMax {
				// no descent direction left: p is a stationary point
				return p, evals, nil
			}
		}
	}

	return nanParams(), evals, fmt.Errorf("%w after %d evaluations", apperrors.ErrFitDiverged, evals)
}
