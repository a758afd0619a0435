package combine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/plate"
	"htscreen/internal/transfer"
)

// screenPlate has compounds alternating 64/192, negative controls 0 and
// positive controls 256.
func screenPlate(barcode string) (plate.QualityStats, [2]plate.Grid) {
	var g plate.Grid
	for r := 0; r < plate.Rows; r++ {
		for c := 0; c < plate.CompoundCols; c++ {
			g[r][c] = 64
			if c%2 == 1 {
				g[r][c] = 192
			}
		}
		g[r][plate.NegativeControlCol] = 0
		g[r][plate.PositiveControlCol] = 256
	}
	a := plate.Assess(plate.Plate{Barcode: barcode, Grid: g})
	return a.Stats, [2]plate.Grid{g, a.Mask}
}

func transfers(rows ...[]string) *transfer.Table {
	return &transfer.Table{
		Columns: []string{
			transfer.ColDestWell, transfer.ColDestPlate, transfer.ColCompoundID,
			transfer.ColVolume, transfer.ColSourcePlate, transfer.ColSourceWell,
		},
		Rows: rows,
	}
}

func TestMetricFormulas(t *testing.T) {
	s := plate.QualityStats{MeanNeg: 0, MeanPos: 200, MeanCmpd: 100, StdCmpd: 10}

	assert.Equal(t, 50.0, Activation(100, s, FormulaStandard))
	assert.Equal(t, 50.0, Inhibition(100, s))
	assert.Equal(t, 0.0, ZScore(100, s))
	assert.Equal(t, 2.0, ZScore(120, s))

	s.MeanNeg = 50
	assert.Equal(t, 100.0, Activation(100, s, FormulaWithoutPos))
}

func TestMetricFormulas_DegeneratePlate(t *testing.T) {
	s := plate.QualityStats{MeanNeg: 5, MeanPos: 5, MeanCmpd: 1, StdCmpd: 0}

	assert.True(t, math.IsInf(Activation(10, s, FormulaStandard), 1))
	assert.True(t, math.IsNaN(Activation(5, s, FormulaStandard)))
	assert.True(t, math.IsInf(Inhibition(10, s), -1))
	assert.True(t, math.IsNaN(Inhibition(5, s)))
	assert.True(t, math.IsInf(ZScore(2, s), 1))

	s.MeanNeg = 0
	assert.True(t, math.IsInf(Activation(1, s, FormulaWithoutPos), 1))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAll, m)

	m, err = ParseMode("inhibition")
	require.NoError(t, err)
	assert.False(t, m.Activation())
	assert.True(t, m.Inhibition())

	_, err = ParseMode("both")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestWellMetrics_SkipsOutliers(t *testing.T) {
	stats, values := screenPlate("P1")
	values[plate.MaskLayer][2][plate.PositiveControlCol] = 1

	metrics := WellMetrics(stats, values, ModeActivation, FormulaStandard)
	require.Len(t, metrics, plate.Rows*plate.Cols-1)

	assert.Equal(t, "A1", metrics[0].Well)
	assert.Equal(t, "P24", metrics[len(metrics)-1].Well)
	for _, m := range metrics {
		assert.NotEqual(t, "C24", m.Well)
		assert.True(t, m.HasActivation)
		assert.False(t, m.HasInhibition)
		assert.True(t, math.IsNaN(m.Inhibition))
	}
}

func TestCombine(t *testing.T) {
	stats, values := screenPlate("P1")
	values[plate.MaskLayer][0][plate.NegativeControlCol] = 1

	table, err := Combine(transfers(
		[]string{"A02", "P1", "C1", "2.5", "S1", "A1"},
		[]string{"A23", "P1", "CTRL NEG", "2.5", "S1", "A2"},
		[]string{"B24", "P1", "CTRL POS", "2.5", "S1", "A3"},
		[]string{"A01", "P9", "C9", "2.5", "S1", "A4"},
	), []plate.QualityStats{stats}, plate.Tensor{values}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		transfer.ColCompoundID, transfer.ColSourcePlate, transfer.ColSourceWell,
		transfer.ColDestPlate, transfer.ColDestWell, transfer.ColVolume,
		ColActivation, ColInhibition, ColZScore,
	}, table.Columns())
	require.Equal(t, 4, table.Len())

	// A02 holds 192 with mean_neg 0, mean_pos 256 and compounds 128 ± 64
	assert.Equal(t, 75.0, table.Value(0, ColActivation))
	assert.Equal(t, 75.0, table.Value(0, ColInhibition))
	assert.Equal(t, 1.0, table.Value(0, ColZScore))
	assert.Equal(t, []string{"C1", "S1", "A1", "P1", "A02", "2.5", "75", "75", "1"}, table.Strings(0))

	// masked control well and unknown plate keep their transfer row
	assert.Nil(t, table.Rows[1].Metric)
	assert.Nil(t, table.Rows[3].Metric)
	assert.Equal(t, []string{"C9", "S1", "A4", "P9", "A01", "2.5", "", "", ""}, table.Strings(3))

	assert.InDelta(t, 100.0, table.Value(2, ColActivation), 1e-9)
}

func TestCombine_ModesPerPlate(t *testing.T) {
	s1, v1 := screenPlate("P1")
	s2, v2 := screenPlate("P2")

	table, err := Combine(transfers(
		[]string{"A1", "P1", "C1", "1", "S", "A1"},
		[]string{"A1", "P2", "C2", "1", "S", "A2"},
	), []plate.QualityStats{s1, s2}, plate.Tensor{v1, v2}, Options{
		Modes:       map[string]Mode{"P2": ModeInhibition},
		DefaultMode: ModeActivation,
	})
	require.NoError(t, err)

	assert.True(t, table.HasActivation)
	assert.True(t, table.HasInhibition)
	assert.False(t, math.IsNaN(table.Value(0, ColActivation)))
	assert.True(t, math.IsNaN(table.Value(0, ColInhibition)))
	assert.True(t, math.IsNaN(table.Value(1, ColActivation)))
	assert.False(t, math.IsNaN(table.Value(1, ColInhibition)))

	cells := table.Strings(0)
	assert.Equal(t, "", cells[len(cells)-2])
}

func TestCombine_Errors(t *testing.T) {
	stats, values := screenPlate("P1")

	_, err := Combine(transfers(), []plate.QualityStats{stats}, nil, Options{})
	assert.ErrorIs(t, err, apperrors.ErrShapeMismatch)

	_, err = Combine(&transfer.Table{Columns: []string{transfer.ColDestWell}}, []plate.QualityStats{stats}, plate.Tensor{values}, Options{})
	assert.ErrorIs(t, err, apperrors.ErrMissingColumn)
}

func TestCanonicalColumns(t *testing.T) {
	got := CanonicalColumns([]string{"Extra", transfer.ColDestWell, transfer.ColCompoundID, transfer.ColVolume, transfer.ColSourceWell})
	assert.Equal(t, []string{transfer.ColCompoundID, transfer.ColSourceWell, transfer.ColDestWell, transfer.ColVolume, "Extra"}, got)
}

func TestDeduplicateAndDropIncomplete(t *testing.T) {
	stats, values := screenPlate("P1")

	table, err := Combine(transfers(
		[]string{"A01", "P1", "C1", "1", "S", "A1"},
		[]string{"A01", "P1", "C1", "1", "S", "A1"},
		[]string{"A02", "P1", "", "1", "S", "A2"},
		[]string{"A03", "P7", "C3", "1", "S", "A3"},
		[]string{"A04", "P1", "C4", "1", "S", "A4"},
	), []plate.QualityStats{stats}, plate.Tensor{values}, Options{DefaultMode: ModeActivation})
	require.NoError(t, err)

	deduped := table.Deduplicate()
	assert.Equal(t, 4, deduped.Len())

	complete := deduped.DropIncomplete()
	require.Equal(t, 2, complete.Len())
	assert.Equal(t, "C1", complete.Rows[0].CompoundID)
	assert.Equal(t, "C4", complete.Rows[1].CompoundID)
}

func TestDropIncomplete_KeepsInfinite(t *testing.T) {
	table := &Table{
		TransferColumns: []string{transfer.ColDestWell},
		HasActivation:   true,
		Rows: []Row{
			{Cells: []string{"A1"}, Metric: &WellMetric{Activation: math.Inf(1), HasActivation: true, ZScore: 1}},
			{Cells: []string{"A2"}, Metric: &WellMetric{Activation: math.NaN(), HasActivation: true, ZScore: 1}},
		},
	}

	out := table.DropIncomplete()
	require.Equal(t, 1, out.Len())
	assert.Equal(t, []string{"A1", "+Inf", "1"}, out.Strings(0))
}
