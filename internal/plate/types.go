package plate

// Plate geometry of a 384-well plate-reader export
const (
	Rows = 16
	Cols = 24
	// CompoundCols is the number of leading columns holding compounds
	CompoundCols = 22
	// NegativeControlCol and PositiveControlCol are the two trailing control columns
	NegativeControlCol = 22
	PositiveControlCol = 23
)

// Layer indices of one Tensor entry
const (
	ValueLayer = 0
	MaskLayer  = 1
)

// Grid is a fixed 16x24 matrix of readings. Missing readings are NaN, never absent.
type Grid [Rows][Cols]float64

// Column returns a copy of column col
func (g *Grid) Column(col int) []float64 {
	out := make([]float64, Rows)
	for r := 0; r < Rows; r++ {
		out[r] = g[r][col]
	}
	return out
}

// CompoundValues returns every reading in the compound columns, row-major
func (g *Grid) CompoundValues() []float64 {
	out := make([]float64, 0, Rows*CompoundCols)
	for r := 0; r < Rows; r++ {
		out = append(out, g[r][:CompoundCols]...)
	}
	return out
}

// Count returns how many cells equal v
func (g *Grid) Count(v float64) int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if g[r][c] == v {
				n++
			}
		}
	}
	return n
}

// Plate is one parsed plate-reader export
type Plate struct {
	Barcode string
	Grid    Grid
}

// Positive returns the positive control column
func (p *Plate) Positive() []float64 {
	return p.Grid.Column(PositiveControlCol)
}

// Negative returns the negative control column
func (p *Plate) Negative() []float64 {
	return p.Grid.Column(NegativeControlCol)
}

// QualityStats summarises one plate. Computed once at ingestion and never mutated.
type QualityStats struct {
	Barcode           string  `json:"barcode"`
	StdCmpd           float64 `json:"std_cmpd"`
	StdPos            float64 `json:"std_pos"`
	StdNeg            float64 `json:"std_neg"`
	MeanCmpd          float64 `json:"mean_cmpd"`
	MeanPos           float64 `json:"mean_pos"`
	MeanNeg           float64 `json:"mean_neg"`
	ZFactor           float64 `json:"z_factor"`
	ZFactorNoOutliers float64 `json:"z_factor_no_outliers"`
}

// Tensor stacks per-plate [value, outlier mask] grids, aligned by position
// with a []QualityStats table.
type Tensor [][2]Grid

// OutlierCount counts flagged cells across all plates
func (t Tensor) OutlierCount() int {
	n := 0
	for i := range t {
		n += t[i][MaskLayer].Count(1)
	}
	return n
}
