package testutil

import (
	"fmt"
	"strings"

	"htscreen/internal/plate"
)

// TransferHeader is the column row of a liquid-handler export
const TransferHeader = "CMPD ID,Source Plate Barcode,Source Well,Destination Plate Barcode,Destination Well,Actual Volume,Transfer Status"

// PlateCSV renders a headerless 16x24 plate grid. cell gives compound
// readings; neg and pos give the control columns by row.
func PlateCSV(cell func(r, c int) float64, neg, pos func(r int) float64) []byte {
	var b strings.Builder
	for r := 0; r < plate.Rows; r++ {
		cells := make([]string, plate.Cols)
		for c := 0; c < plate.CompoundCols; c++ {
			cells[c] = fmt.Sprintf("%g", cell(r, c))
		}
		cells[plate.NegativeControlCol] = fmt.Sprintf("%g", neg(r))
		cells[plate.PositiveControlCol] = fmt.Sprintf("%g", pos(r))
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// Constant returns v for every row
func Constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

// Alternating returns a on even rows and b on odd rows
func Alternating(a, b float64) func(int) float64 {
	return func(r int) float64 {
		if r%2 == 0 {
			return a
		}
		return b
	}
}

// GoodPlate alternates compound readings 64/192 by column with negative
// controls at 0 and positive controls at 256. Its Z-factor is 1.
func GoodPlate() []byte {
	return PlateCSV(
		func(_, c int) float64 {
			if c%2 == 1 {
				return 192
			}
			return 64
		},
		Constant(0), Constant(256),
	)
}

// NoisyPlate has overlapping control distributions and a Z-factor of -2
func NoisyPlate() []byte {
	return PlateCSV(
		func(int, int) float64 { return 100 },
		Alternating(0, 100), Alternating(100, 200),
	)
}

// Lines joins lines into newline-terminated file content
func Lines(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}
