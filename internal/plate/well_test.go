package plate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "htscreen/internal/errors"
)

func TestWellToCoordinate(t *testing.T) {
	tests := []struct {
		well    string
		row     int
		col     int
		wantErr bool
	}{
		{"C13", 2, 12, false},
		{"A01", 0, 0, false},
		{"A1", 0, 0, false},
		{"P24", 15, 23, false},
		{"b7", 1, 6, false},
		{"Q01", 0, 0, true},
		{"A25", 0, 0, true},
		{"A00", 0, 0, true},
		{"AB1", 0, 0, true},
		{"12", 0, 0, true},
		{"A", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.well, func(t *testing.T) {
			row, col, err := WellToCoordinate(tt.well)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidWell)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.row, row)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestWellRoundTrip(t *testing.T) {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			for _, w := range []string{PaddedWell(r, c), CoordinateToWell(r, c)} {
				row, col, err := WellToCoordinate(w)
				require.NoError(t, err, w)
				assert.Equal(t, NormalizeWell(w), CoordinateToWell(row, col), w)
			}
		}
	}
}

func TestNormalizeWell(t *testing.T) {
	tests := map[string]string{
		"A01":  "A1",
		"A1":   "A1",
		"A10":  "A10",
		"P24":  "P24",
		"B00":  "B0",
		" c05": "C5",
		"CTRL": "CTRL",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeWell(in), in)
	}
}

func TestPaddedWell(t *testing.T) {
	assert.Equal(t, "A01", PaddedWell(0, 0))
	assert.Equal(t, "P24", PaddedWell(15, 23))
	assert.Equal(t, "C13", PaddedWell(2, 12))
}

func TestWellSuffix(t *testing.T) {
	assert.Equal(t, "24", WellSuffix("A24"))
	assert.Equal(t, "23", WellSuffix("P23"))
	assert.Equal(t, "A3", WellSuffix("A3"))
	assert.Equal(t, "3", WellSuffix("3"))
}
