package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Concat(t *testing.T) {
	a := &Table{Columns: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}}
	b := &Table{Columns: []string{"y", "z"}, Rows: [][]string{{"3", "4"}}}

	a.Concat(b)
	assert.Equal(t, []string{"x", "y", "z"}, a.Columns)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"", "3", "4"}}, a.Rows)

	a.Concat(nil)
	assert.Equal(t, 2, a.Len())
}

func TestTable_SelectAndSort(t *testing.T) {
	table := &Table{Columns: []string{"b", "a", "c"}, Rows: [][]string{{"2", "1", "3"}}}

	selected := table.Select([]string{"c", "missing", "b", "c"})
	assert.Equal(t, []string{"c", "b"}, selected.Columns)
	assert.Equal(t, [][]string{{"3", "2"}}, selected.Rows)

	sorted := table.SortColumns()
	assert.Equal(t, []string{"a", "b", "c"}, sorted.Columns)
	assert.Equal(t, [][]string{{"1", "2", "3"}}, sorted.Rows)
}

func TestTable_AppendRowPads(t *testing.T) {
	table := NewTable("a", "b", "c")
	table.AppendRow([]string{"1"})
	table.AppendRow([]string{"1", "2", "3", "4"})
	assert.Equal(t, [][]string{{"1", "", ""}, {"1", "2", "3"}}, table.Rows)

	var empty *Table
	assert.Equal(t, 0, empty.Len())
}
