package plate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZFactor(t *testing.T) {
	pos := []float64{1, 3}   // mean 2, std 1
	neg := []float64{10, 14} // mean 12, std 2

	s := ControlStatistics(pos, neg)
	assert.InDelta(t, 2.0, s.MeanPos, 1e-12)
	assert.InDelta(t, 1.0, s.StdPos, 1e-12)
	assert.InDelta(t, 12.0, s.MeanNeg, 1e-12)
	assert.InDelta(t, 2.0, s.StdNeg, 1e-12)
	assert.InDelta(t, 1-3*(1.0+2.0)/(12.0-2.0), s.ZFactor, 1e-12)
	assert.InDelta(t, 0.1, s.ZFactor, 1e-12)
}

func TestControlStatistics_Degenerate(t *testing.T) {
	nan := math.NaN()

	t.Run("NaN values are skipped", func(t *testing.T) {
		s := ControlStatistics([]float64{1, nan, 3}, []float64{10, 14, nan})
		assert.InDelta(t, 2.0, s.MeanPos, 1e-12)
		assert.InDelta(t, 12.0, s.MeanNeg, 1e-12)
	})

	t.Run("all NaN yields NaN", func(t *testing.T) {
		s := ControlStatistics([]float64{nan, nan}, []float64{1, 2})
		assert.True(t, math.IsNaN(s.MeanPos))
		assert.True(t, math.IsNaN(s.StdPos))
		assert.True(t, math.IsNaN(s.ZFactor))
	})

	t.Run("equal control means", func(t *testing.T) {
		s := ControlStatistics([]float64{5, 5}, []float64{5, 5})
		// 0/0
		assert.True(t, math.IsNaN(s.ZFactor))
	})
}

func TestFindOutliers(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		control := []float64{10, 11, 9, 10}
		mean, std := NanMeanStd(control)
		assert.Nil(t, FindOutliers(control, mean, std))
	})

	t.Run("single gross outlier", func(t *testing.T) {
		control := make([]float64, Rows)
		for i := range control {
			control[i] = 10
		}
		control[6] = 1000
		mean, std := NanMeanStd(control)
		assert.Equal(t, []int{6}, FindOutliers(control, mean, std))
	})

	t.Run("intersection keeps only the two largest deviations", func(t *testing.T) {
		control := []float64{0, 0, 0, 10, 20, 30}
		assert.Equal(t, []int{4, 5}, FindOutliers(control, 0, 1))
	})

	t.Run("cutoff decides candidacy", func(t *testing.T) {
		control := []float64{0, -4, 4, 2}
		// cutoff 3: -4 and 4 are both candidates and both in the top two
		assert.Equal(t, []int{1, 2}, FindOutliers(control, 0, 1))
		// cutoff 3.9: same candidates
		assert.Equal(t, []int{1, 2}, FindOutliers(control, 0, 1.3))
		// cutoff 6: none
		assert.Nil(t, FindOutliers(control, 0, 2))
	})

	t.Run("NaN std flags nothing", func(t *testing.T) {
		assert.Nil(t, FindOutliers([]float64{1, 2}, math.NaN(), math.NaN()))
	})
}

func TestFindOutliers_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 500; trial++ {
		control := make([]float64, Rows)
		for i := range control {
			control[i] = rng.NormFloat64() * 10
			if rng.Intn(5) == 0 {
				control[i] += rng.Float64() * 500
			}
		}
		mean, std := NanMeanStd(control)
		// also exercise a tighter external std
		for _, s := range []float64{std, std / 4} {
			outliers := FindOutliers(control, mean, s)
			require.LessOrEqual(t, len(outliers), MaxOutliersPerControl)
			for _, i := range outliers {
				assert.Greater(t, math.Abs(control[i]-mean), OutlierSigma*s)
			}
		}
	}
}

func TestAssess_EndToEndControls(t *testing.T) {
	p := Plate{Barcode: "P1", Grid: uniformGrid(100, 0, 200)}

	a := Assess(p)
	assert.Equal(t, "P1", a.Stats.Barcode)
	assert.Equal(t, 0.0, a.Stats.MeanNeg)
	assert.Equal(t, 200.0, a.Stats.MeanPos)
	assert.Equal(t, 100.0, a.Stats.MeanCmpd)
	assert.Equal(t, 0.0, a.Stats.StdCmpd)
	assert.Equal(t, 1.0, a.Stats.ZFactor)
	assert.Equal(t, 1.0, a.Stats.ZFactorNoOutliers)
	assert.Equal(t, 0, a.Mask.Count(1))
}

func TestAssess_Outliers(t *testing.T) {
	g := uniformGrid(100, 10, 200)
	// small spread so the Z-factor is finite
	for r := 0; r < Rows; r++ {
		g[r][PositiveControlCol] += float64(r % 2)
		g[r][NegativeControlCol] -= float64(r % 2)
	}
	g[3][PositiveControlCol] = 5000
	g[9][NegativeControlCol] = -4000

	a := Assess(Plate{Barcode: "P2", Grid: g})

	assert.Equal(t, []int{3}, a.PositiveOutliers)
	assert.Equal(t, []int{9}, a.NegativeOutliers)
	assert.Equal(t, 1.0, a.Mask[3][PositiveControlCol])
	assert.Equal(t, 1.0, a.Mask[9][NegativeControlCol])
	assert.Equal(t, 2, a.Mask.Count(1))

	// only control columns are ever flagged
	for r := 0; r < Rows; r++ {
		for c := 0; c < CompoundCols; c++ {
			assert.Equal(t, 0.0, a.Mask[r][c])
		}
	}

	// the cleaned Z-factor improves and the raw one is retained
	assert.Less(t, a.Stats.ZFactor, a.Stats.ZFactorNoOutliers)
	assert.Equal(t, a.Raw.ZFactor, a.Stats.ZFactor)
	assert.Equal(t, a.Cleaned.ZFactor, a.Stats.ZFactorNoOutliers)

	// compound statistics ignore control outlier removal
	assert.Equal(t, 100.0, a.Stats.MeanCmpd)
}

func TestAssess_AllNaNControls(t *testing.T) {
	g := uniformGrid(1, math.NaN(), math.NaN())

	a := Assess(Plate{Barcode: "P3", Grid: g})
	assert.True(t, math.IsNaN(a.Stats.MeanPos))
	assert.True(t, math.IsNaN(a.Stats.ZFactor))
	assert.True(t, math.IsNaN(a.Stats.ZFactorNoOutliers))
	assert.Equal(t, 0, a.Mask.Count(1))
}
