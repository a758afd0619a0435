package plate

import (
	"fmt"
	"strings"
)

// uniformGrid returns compounds=cmpd, negative column=neg, positive column=pos
func uniformGrid(cmpd, neg, pos float64) Grid {
	var g Grid
	for r := 0; r < Rows; r++ {
		for c := 0; c < CompoundCols; c++ {
			g[r][c] = cmpd
		}
		g[r][NegativeControlCol] = neg
		g[r][PositiveControlCol] = pos
	}
	return g
}

// tabular renders a grid as a headerless CSV table
func tabular(g Grid) []byte {
	var b strings.Builder
	for r := 0; r < Rows; r++ {
		cells := make([]string, Cols)
		for c := 0; c < Cols; c++ {
			cells[c] = fmt.Sprintf("%g", g[r][c])
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return []byte(b.String())
}
