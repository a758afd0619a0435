package hits

import "math"

// FourPL evaluates the four-parameter logistic
//
//	f(x) = upper + (lower - upper) / (1 + (x/ic50)^slope)
func FourPL(x float64, p Params) float64 {
	return p.Upper + (p.Lower-p.Upper)/(1+math.Pow(x/p.IC50, p.Slope))
}

// InverseFourPL returns the concentration at which the curve reaches y.
// NaN when no real solution exists.
func InverseFourPL(y float64, p Params) float64 {
	base := (p.Lower-p.Upper)/(y-p.Upper) - 1
	return p.IC50 * math.Pow(base, 1/p.Slope)
}

// gradient returns the partial derivatives of FourPL at x with respect to
// lower, upper, ic50 and slope.
func gradient(x float64, p Params) [4]float64 {
	u := math.Pow(x/p.IC50, p.Slope)
	d := 1 + u
	diff := p.Lower - p.Upper

	var g [4]float64
	g[0] = 1 / d
	g[1] = u / d
	g[2] = diff * p.Slope * u / (p.IC50 * d * d)
	if u != 0 {
		g[3] = -diff * u * math.Log(x/p.IC50) / (d * d)
	}
	return g
}

func (p Params) vector() []float64 {
	return []float64{p.Lower, p.Upper, p.IC50, p.Slope}
}

func paramsFrom(v []float64) Params {
	return Params{Lower: v[0], Upper: v[1], IC50: v[2], Slope: v[3]}
}

func (p Params) finite() bool {
	for _, v := range p.vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func nanParams() Params {
	nan := math.NaN()
	return Params{Lower: nan, Upper: nan, IC50: nan, Slope: nan}
}

// RSquared returns 1 - SS_res/SS_tot of the curve over the given points
func RSquared(x, y []float64, p Params) float64 {
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i := range x {
		r := y[i] - FourPL(x[i], p)
		ssRes += r * r
		t := y[i] - mean
		ssTot += t * t
	}
	return 1 - ssRes/ssTot
}
