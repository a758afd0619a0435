package transfer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/files"
	"htscreen/internal/plate"
)

// Section markers of a transfer export
const (
	MarkerExceptions = "[EXCEPTIONS]"
	MarkerDetails    = "[DETAILS]"
)

// footerPrefix marks instrument status rows trailing the details block
const footerPrefix = "instrument"

// Result holds the concatenated tables of one or more transfer exports
type Result struct {
	Transfers  *Table
	Exceptions *Table
}

// Section is the parsed content of a single export
type Section struct {
	Transfers  *Table
	Exceptions *Table
	Markers    []int
}

// FindMarkers returns the zero-based line numbers of the section markers, in
// order of appearance. Scanning stops once both markers are found.
func FindMarkers(lines []string) []int {
	var markers []int
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case MarkerExceptions, MarkerDetails:
			markers = append(markers, i)
		}
		if len(markers) == 2 {
			break
		}
	}
	return markers
}

// ParseFile splits one export into its transfer and exceptions tables.
//
// With two markers the exceptions block runs from the header after the first
// marker up to, but excluding, the delimiter line preceding the second marker;
// the transfer table starts with the header after the second marker. A single
// marker is taken as [DETAILS]. Without markers the whole file is the
// exceptions table.
//
// Returns: the section, or a PARSING AppError when a block is not valid CSV.
func ParseFile(in files.Input) (*Section, error) {
	text := strings.ReplaceAll(string(in.Content), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	markers := FindMarkers(lines)

	section := &Section{
		Transfers:  NewTable(),
		Exceptions: NewTable(),
		Markers:    markers,
	}

	var err error
	switch len(markers) {
	case 2:
		exc, det := markers[0], markers[1]
		end := det - 1
		if end < exc+1 {
			end = exc + 1
		}
		if section.Exceptions, err = readBlock(lines[exc+1 : end]); err != nil {
			return nil, blockError(in.Name, MarkerExceptions, err)
		}
		if section.Transfers, err = readBlock(lines[det+1:]); err != nil {
			return nil, blockError(in.Name, MarkerDetails, err)
		}
	case 1:
		if section.Transfers, err = readBlock(lines[markers[0]+1:]); err != nil {
			return nil, blockError(in.Name, MarkerDetails, err)
		}
	default:
		if section.Exceptions, err = readBlock(lines); err != nil {
			return nil, blockError(in.Name, MarkerExceptions, err)
		}
	}

	section.Transfers = dropFooters(section.Transfers)
	return section, nil
}

// Parse parses and concatenates transfer exports in arrival order.
// It fails with ErrNoTransferRows when no input carries a marker and all
// tables are empty.
func Parse(inputs []files.Input) (*Result, error) {
	result := &Result{Transfers: NewTable(), Exceptions: NewTable()}
	markers := 0

	for _, in := range inputs {
		section, err := ParseFile(in)
		if err != nil {
			return nil, err
		}
		slog.Debug("transfer file parsed",
			"file", in.Name,
			"markers", len(section.Markers),
			"transfers", section.Transfers.Len(),
			"exceptions", section.Exceptions.Len(),
		)
		markers += len(section.Markers)
		result.Transfers.Concat(section.Transfers)
		result.Exceptions.Concat(section.Exceptions)
	}

	if markers == 0 && result.Transfers.Len()+result.Exceptions.Len() == 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("no transfer rows in %d file(s)", len(inputs)),
			apperrors.ErrNoTransferRows,
		)
	}
	return result, nil
}

// RetainKeyColumns restricts the transfer table to the requested columns that
// exist (KeyColumns when columns is nil) and normalises destination wells.
// The exceptions table keeps the same columns plus the transfer status,
// sorted alphabetically.
func (r *Result) RetainKeyColumns(columns []string) {
	if columns == nil {
		columns = KeyColumns
	}

	r.Transfers = r.Transfers.Select(columns)
	if i := r.Transfers.Index(ColDestWell); i >= 0 {
		for _, row := range r.Transfers.Rows {
			row[i] = plate.NormalizeWell(row[i])
		}
	}

	withStatus := append(append([]string(nil), columns...), ColStatus)
	r.Exceptions = r.Exceptions.Select(withStatus).SortColumns()
}

// readBlock reads a header row followed by data rows. Blank lines are skipped.
func readBlock(lines []string) (*Table, error) {
	var kept []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		return NewTable(), nil
	}

	reader := csv.NewReader(bytes.NewBufferString(strings.Join(kept, "\n")))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	table := NewTable(header...)
	for _, record := range records[1:] {
		table.AppendRow(record)
	}
	return table, nil
}

// dropFooters removes rows whose first cell is empty or starts with
// "instrument" in any case.
func dropFooters(t *Table) *Table {
	out := NewTable(t.Columns...)
	for _, row := range t.Rows {
		first := ""
		if len(row) > 0 {
			first = strings.TrimSpace(row[0])
		}
		if first == "" || strings.HasPrefix(strings.ToLower(first), footerPrefix) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func blockError(filename, marker string, err error) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("transfer file %s: cannot read %s block", filename, marker), err,
	).WithContext("file", filename)
}
