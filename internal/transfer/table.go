package transfer

import (
	"fmt"
	"sort"

	apperrors "htscreen/internal/errors"
)

// Column names of a transfer export
const (
	ColCompoundID  = "CMPD ID"
	ColSourcePlate = "Source Plate Barcode"
	ColSourceWell  = "Source Well"
	ColDestPlate   = "Destination Plate Barcode"
	ColDestWell    = "Destination Well"
	ColVolume      = "Actual Volume"
	ColStatus      = "Transfer Status"
	// ColEOS holds compound ids joined in from a plate map
	ColEOS = "EOS"
)

// KeyColumns are the transfer columns retained by default, in canonical order
var KeyColumns = []string{
	ColCompoundID,
	ColEOS,
	ColSourcePlate,
	ColSourceWell,
	ColDestPlate,
	ColDestWell,
	ColVolume,
}

// Table is a string-typed table with named columns. Every row has exactly
// len(Columns) cells; cells missing from the source are "".
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of a column or -1
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries a column
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Value returns the cell of row at column, or "" when the column is absent
func (t *Table) Value(row int, column string) string {
	i := t.Index(column)
	if i < 0 {
		return ""
	}
	return t.Rows[row][i]
}

// AppendRow adds a row, padding or truncating it to the table width
func (t *Table) AppendRow(cells []string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Concat appends the rows of other. Columns unknown to t are added at the
// end and back-filled with "" for the rows already present.
func (t *Table) Concat(other *Table) {
	if other == nil {
		return
	}
	for _, c := range other.Columns {
		if !t.Has(c) {
			t.Columns = append(t.Columns, c)
			for i := range t.Rows {
				t.Rows[i] = append(t.Rows[i], "")
			}
		}
	}
	for _, src := range other.Rows {
		row := make([]string, len(t.Columns))
		for j, c := range other.Columns {
			row[t.Index(c)] = src[j]
		}
		t.Rows = append(t.Rows, row)
	}
}

// Select returns a new table holding the requested columns that exist,
// in the order requested.
func (t *Table) Select(columns []string) *Table {
	var keep []string
	var idx []int
	for _, c := range columns {
		if i := t.Index(c); i >= 0 && !contains(keep, c) {
			keep = append(keep, c)
			idx = append(idx, i)
		}
	}

	out := NewTable(keep...)
	for _, src := range t.Rows {
		row := make([]string, len(idx))
		for j, i := range idx {
			row[j] = src[i]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// SortColumns reorders columns alphabetically
func (t *Table) SortColumns() *Table {
	sorted := append([]string(nil), t.Columns...)
	sort.Strings(sorted)
	return t.Select(sorted)
}

// Require fails with ErrMissingColumn when any column is absent
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("table lacks columns %q", missing),
			apperrors.ErrMissingColumn,
		).WithContext("missing", missing)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
