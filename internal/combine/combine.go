package combine

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/plate"
	"htscreen/internal/transfer"
)

// Options configure metric derivation
type Options struct {
	// Modes overrides DefaultMode per plate barcode
	Modes       map[string]Mode
	DefaultMode Mode
	Formula     Formula
}

// ModeFor returns the analysis mode of a plate
func (o Options) ModeFor(barcode string) Mode {
	if m, ok := o.Modes[barcode]; ok {
		return m
	}
	if o.DefaultMode == "" {
		return ModeAll
	}
	return o.DefaultMode
}

// Row is one transfer joined with the readouts of its destination well.
// Metric is nil when no reading matched.
type Row struct {
	transfer.Record
	Cells  []string
	Metric *WellMetric
}

// Table is the combined per-compound table. TransferColumns lists the
// transfer part of each row in canonical order; Row.Cells follows it.
type Table struct {
	TransferColumns []string
	HasActivation   bool
	HasInhibition   bool
	Rows            []Row
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Columns returns the full header: transfer columns, then the metric columns
func (t *Table) Columns() []string {
	cols := append([]string(nil), t.TransferColumns...)
	if t.HasActivation {
		cols = append(cols, ColActivation)
	}
	if t.HasInhibition {
		cols = append(cols, ColInhibition)
	}
	return append(cols, ColZScore)
}

// Value returns a metric of row i, NaN when it is null
func (t *Table) Value(i int, column string) float64 {
	m := t.Rows[i].Metric
	if m == nil {
		return math.NaN()
	}
	switch column {
	case ColActivation:
		if m.HasActivation {
			return m.Activation
		}
	case ColInhibition:
		if m.HasInhibition {
			return m.Inhibition
		}
	case ColZScore:
		return m.ZScore
	}
	return math.NaN()
}

// Strings renders row i aligned with Columns. Null metrics render as "".
func (t *Table) Strings(i int) []string {
	row := t.Rows[i]
	out := append([]string(nil), row.Cells...)

	metric := func(ok bool, v float64) string {
		if row.Metric == nil || !ok {
			return ""
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if t.HasActivation {
		out = append(out, metric(row.Metric != nil && row.Metric.HasActivation, t.Value(i, ColActivation)))
	}
	if t.HasInhibition {
		out = append(out, metric(row.Metric != nil && row.Metric.HasInhibition, t.Value(i, ColInhibition)))
	}
	return append(out, metric(true, t.Value(i, ColZScore)))
}

// filter returns a table with the same header and the rows keep accepts
func (t *Table) filter(keep func(i int) bool) *Table {
	out := &Table{
		TransferColumns: t.TransferColumns,
		HasActivation:   t.HasActivation,
		HasInhibition:   t.HasInhibition,
	}
	for i := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// Deduplicate drops rows whose rendering repeats an earlier row
func (t *Table) Deduplicate() *Table {
	seen := make(map[string]bool, len(t.Rows))
	return t.filter(func(i int) bool {
		key := strings.Join(t.Strings(i), "\x1f")
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}

// DropIncomplete drops rows with an empty cell or a NaN metric.
// Infinite metrics are kept.
func (t *Table) DropIncomplete() *Table {
	return t.filter(func(i int) bool {
		for _, cell := range t.Strings(i) {
			if cell == "" || cell == "NaN" {
				return false
			}
		}
		return true
	})
}

// CanonicalColumns orders transfer columns as identifier, source plate,
// source well, destination plate, destination well, volume, then every
// other column in its original order.
func CanonicalColumns(columns []string) []string {
	var out []string
	for _, c := range transfer.KeyColumns {
		if containsString(columns, c) {
			out = append(out, c)
		}
	}
	for _, c := range columns {
		if !containsString(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// Combine derives per-well readouts for every plate and left-joins them onto
// the transfer table on (destination plate, destination well). Wells without
// a transfer row are dropped; transfer rows without a reading keep null
// metrics.
//
// Parameters:
//   - transfers: transfer table with at least the destination plate and well columns
//   - stats, values: per-plate statistics and readings, aligned by position
//   - opts: analysis mode per plate and activation formula
//
// Returns: the combined table, or an error on misaligned plates or missing columns.
func Combine(transfers *transfer.Table, stats []plate.QualityStats, values plate.Tensor, opts Options) (*Table, error) {
	if len(stats) != len(values) {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("%d plate stats for %d value grids", len(stats), len(values)),
			apperrors.ErrShapeMismatch,
		)
	}

	canonical := transfers.Select(CanonicalColumns(transfers.Columns))
	records, err := canonical.Records()
	if err != nil {
		return nil, err
	}

	table := &Table{TransferColumns: canonical.Columns}
	metrics := make(map[transfer.WellKey]*WellMetric)
	for i, s := range stats {
		mode := opts.ModeFor(s.Barcode)
		table.HasActivation = table.HasActivation || mode.Activation()
		table.HasInhibition = table.HasInhibition || mode.Inhibition()

		for _, m := range WellMetrics(s, values[i], mode, opts.Formula) {
			metrics[transfer.WellKey{Plate: m.Barcode, Well: m.Well}] = &m
		}
	}

	matched := 0
	table.Rows = make([]Row, len(records))
	for i, rec := range records {
		table.Rows[i] = Row{Record: rec, Cells: canonical.Rows[i], Metric: metrics[rec.Key()]}
		if table.Rows[i].Metric != nil {
			matched++
		}
	}

	slog.Debug("transfer rows joined with plate readings",
		"plates", len(stats),
		"transfers", len(records),
		"matched", matched,
	)
	return table, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
