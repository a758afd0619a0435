package plate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// OutlierSigma is the cutoff multiplier for control outliers
const OutlierSigma = 3.0

// MaxOutliersPerControl bounds how many wells one control column may lose
const MaxOutliersPerControl = 2

// ControlStats holds population statistics of both control columns
type ControlStats struct {
	MeanPos float64
	StdPos  float64
	MeanNeg float64
	StdNeg  float64
	ZFactor float64
}

// ZFactor computes 1 - 3*(stdPos+stdNeg)/(meanNeg-meanPos).
// A zero control separation yields ±Inf or NaN, never a panic.
func ZFactor(meanPos, stdPos, meanNeg, stdNeg float64) float64 {
	return 1 - (3 * (stdPos + stdNeg) / (meanNeg - meanPos))
}

// ControlStatistics computes NaN-skipping population mean/std of both
// control arrays and the resulting Z-factor.
func ControlStatistics(pos, neg []float64) ControlStats {
	meanPos, stdPos := NanMeanStd(pos)
	meanNeg, stdNeg := NanMeanStd(neg)
	return ControlStats{
		MeanPos: meanPos,
		StdPos:  stdPos,
		MeanNeg: meanNeg,
		StdNeg:  stdNeg,
		ZFactor: ZFactor(meanPos, stdPos, meanNeg, stdNeg),
	}
}

// NanMeanStd returns the population mean and standard deviation of the
// non-NaN values. An empty or all-NaN input gives NaN for both.
func NanMeanStd(values []float64) (mean, std float64) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN(), math.NaN()
	}
	mean, variance := stat.PopMeanVariance(finite, nil)
	return mean, math.Sqrt(variance)
}

// FindOutliers returns the indices (ascending) of control values that lie
// outside mean ± 3*std AND are among the two values deviating most from the
// mean. At most MaxOutliersPerControl indices are returned; nil means none.
func FindOutliers(control []float64, mean, std float64) []int {
	cutoff := OutlierSigma * std
	lower, upper := mean-cutoff, mean+cutoff

	candidates := make(map[int]bool)
	for i, v := range control {
		if v > upper || v < lower {
			candidates[i] = true
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ranked := make([]int, 0, len(control))
	for i, v := range control {
		if !math.IsNaN(v) {
			ranked = append(ranked, i)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return math.Abs(control[ranked[a]]-mean) < math.Abs(control[ranked[b]]-mean)
	})
	if len(ranked) > MaxOutliersPerControl {
		ranked = ranked[len(ranked)-MaxOutliersPerControl:]
	}

	var outliers []int
	for _, i := range ranked {
		if candidates[i] {
			outliers = append(outliers, i)
		}
	}
	sort.Ints(outliers)
	return outliers
}

// withoutIndices returns a copy of values with the given indices set to NaN
func withoutIndices(values []float64, indices []int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	for _, i := range indices {
		out[i] = math.NaN()
	}
	return out
}

// Assessment is the outcome of the two-pass plate assessment: raw control
// statistics, the outliers found from them, and the statistics recomputed
// without those outliers. The raw Z-factor stays available for audit.
type Assessment struct {
	Stats            QualityStats
	Raw              ControlStats
	Cleaned          ControlStats
	PositiveOutliers []int
	NegativeOutliers []int
	Mask             Grid
}

// Assess computes quality statistics and the outlier mask of a plate.
// It never fails; degenerate controls produce NaN statistics.
func Assess(p Plate) Assessment {
	pos, neg := p.Positive(), p.Negative()

	// Pass 1: raw control statistics
	raw := ControlStatistics(pos, neg)

	// Pass 2: drop outliers and recompute
	posOutliers := FindOutliers(pos, raw.MeanPos, raw.StdPos)
	negOutliers := FindOutliers(neg, raw.MeanNeg, raw.StdNeg)
	cleaned := ControlStatistics(withoutIndices(pos, posOutliers), withoutIndices(neg, negOutliers))

	var mask Grid
	for _, r := range posOutliers {
		mask[r][PositiveControlCol] = 1
	}
	for _, r := range negOutliers {
		mask[r][NegativeControlCol] = 1
	}

	meanCmpd, stdCmpd := NanMeanStd(p.Grid.CompoundValues())

	return Assessment{
		Stats: QualityStats{
			Barcode:           p.Barcode,
			StdCmpd:           stdCmpd,
			StdPos:            raw.StdPos,
			StdNeg:            raw.StdNeg,
			MeanCmpd:          meanCmpd,
			MeanPos:           raw.MeanPos,
			MeanNeg:           raw.MeanNeg,
			ZFactor:           raw.ZFactor,
			ZFactorNoOutliers: cleaned.ZFactor,
		},
		Raw:              raw,
		Cleaned:          cleaned,
		PositiveOutliers: posOutliers,
		NegativeOutliers: negOutliers,
		Mask:             mask,
	}
}
