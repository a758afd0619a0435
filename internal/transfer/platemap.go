package transfer

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/files"
	"htscreen/internal/plate"
)

// Plate map columns
const (
	ColMapPlate = "Plate"
	ColMapWell  = "Well"
)

// ReadPlateMap loads the compound id map (columns Plate, Well, EOS) from a
// CSV file or, for .xlsx inputs, from the first sheet of the workbook.
func ReadPlateMap(in files.Input) (*Table, error) {
	var (
		table *Table
		err   error
	)

	if strings.EqualFold(filepath.Ext(in.Name), ".xlsx") {
		table, err = readWorkbook(in.Content)
	} else {
		table, err = readBlock(strings.Split(strings.ReplaceAll(string(in.Content), "\r\n", "\n"), "\n"))
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("plate map %s", in.Name), err).
			WithContext("file", in.Name)
	}

	if err := table.Require(ColMapPlate, ColMapWell, ColEOS); err != nil {
		return nil, err
	}
	return table, nil
}

func readWorkbook(content []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NewTable(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return NewTable(), nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	table := NewTable(header...)
	for _, row := range rows[1:] {
		table.AppendRow(row)
	}
	return table, nil
}

// MergeCompoundIDs joins compound ids from a plate map onto the transfer
// table, matching (source plate, source well) with wells normalised so that
// "A01" and "A1" agree. Transfers without a compound id are dropped.
//
// Returns: the merged table with an EOS column, and the number of dropped rows.
func MergeCompoundIDs(transfers, plateMap *Table) (*Table, int, error) {
	if err := transfers.Require(ColSourcePlate, ColSourceWell); err != nil {
		return nil, 0, err
	}
	if err := plateMap.Require(ColMapPlate, ColMapWell, ColEOS); err != nil {
		return nil, 0, err
	}

	ids := make(map[WellKey]string, plateMap.Len())
	for i := range plateMap.Rows {
		key := WellKey{
			Plate: strings.TrimSpace(plateMap.Value(i, ColMapPlate)),
			Well:  plate.NormalizeWell(plateMap.Value(i, ColMapWell)),
		}
		if id := strings.TrimSpace(plateMap.Value(i, ColEOS)); id != "" {
			ids[key] = id
		}
	}

	columns := append([]string(nil), transfers.Columns...)
	eos := transfers.Index(ColEOS)
	if eos < 0 {
		columns = append(columns, ColEOS)
		eos = len(columns) - 1
	}
	wellIdx := transfers.Index(ColSourceWell)

	merged := NewTable(columns...)
	skipped := 0
	for i, src := range transfers.Rows {
		key := WellKey{
			Plate: strings.TrimSpace(transfers.Value(i, ColSourcePlate)),
			Well:  plate.NormalizeWell(transfers.Value(i, ColSourceWell)),
		}
		id, ok := ids[key]
		if !ok {
			skipped++
			continue
		}
		row := make([]string, len(columns))
		copy(row, src)
		row[wellIdx] = key.Well
		row[eos] = id
		merged.Rows = append(merged.Rows, row)
	}

	return merged, skipped, nil
}
