package combine

import (
	"fmt"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/plate"
)

// Destination well suffixes of the control columns
const (
	PositiveSuffix = "24"
	NegativeSuffix = "23"
)

// Split separates compound rows from positive and negative control rows by
// the last two characters of the destination well.
func Split(t *Table) (compounds, positive, negative *Table) {
	suffix := func(i int) string { return plate.WellSuffix(t.Rows[i].DestWell) }

	positive = t.filter(func(i int) bool { return suffix(i) == PositiveSuffix })
	negative = t.filter(func(i int) bool { return suffix(i) == NegativeSuffix })
	compounds = t.filter(func(i int) bool {
		s := suffix(i)
		return s != PositiveSuffix && s != NegativeSuffix
	})
	return compounds, positive, negative
}

// ExcludedPlate records a plate removed by the quality filter
type ExcludedPlate struct {
	Barcode string  `json:"barcode"`
	ZFactor float64 `json:"z_factor"`
}

// FilterLowQualityPlates keeps plates whose Z-factor exceeds threshold.
// Stats and values stay aligned by position; plates with a NaN Z-factor are
// excluded.
//
// Returns: the kept stats and values, and the excluded plates in input order.
func FilterLowQualityPlates(stats []plate.QualityStats, values plate.Tensor, threshold float64) ([]plate.QualityStats, plate.Tensor, []ExcludedPlate, error) {
	if len(stats) != len(values) {
		return nil, nil, nil, apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("%d plate stats for %d value grids", len(stats), len(values)),
			apperrors.ErrShapeMismatch,
		)
	}

	var (
		kept       []plate.QualityStats
		keptValues plate.Tensor
		excluded   []ExcludedPlate
	)
	for i, s := range stats {
		if s.ZFactor > threshold {
			kept = append(kept, s)
			keptValues = append(keptValues, values[i])
			continue
		}
		excluded = append(excluded, ExcludedPlate{Barcode: s.Barcode, ZFactor: s.ZFactor})
	}
	return kept, keptValues, excluded, nil
}
