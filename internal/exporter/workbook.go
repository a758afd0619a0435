package exporter

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/hits"
)

// HitSheet is the worksheet holding hit calls
const HitSheet = "hits"

// WriteHitWorkbook writes hit calls to an XLSX workbook with a frozen,
// bold header row. Numeric columns are stored as numbers; NaN and infinite
// values are left blank.
func (e *Exporter) WriteHitWorkbook(filePath string, calls []hits.HitCall) error {
	fullPath := e.csvWriter.resolvePath(filePath)

	slog.Info("Writing hit workbook",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(calls)))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), HitSheet); err != nil {
		return apperrors.NewStorageError("failed to name sheet", err)
	}

	header := make([]interface{}, len(hits.Columns))
	for i, col := range hits.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(HitSheet, "A1", &header); err != nil {
		return apperrors.NewStorageError("failed to write header", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("failed to create header style", err)
	}
	if err := f.SetRowStyle(HitSheet, 1, 1, bold); err != nil {
		return apperrors.NewStorageError("failed to style header", err)
	}
	if err := f.SetPanes(HitSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return apperrors.NewStorageError("failed to freeze header", err)
	}

	for i, call := range calls {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("failed to address row", err)
		}
		row := workbookRow(call.Strings())
		if err := f.SetSheetRow(HitSheet, cell, &row); err != nil {
			return apperrors.NewStorageError("failed to write hit row", err).
				WithContext("compound_id", call.CompoundID)
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", fullPath)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", fullPath)
	}
	return nil
}

// workbookRow converts rendered cells to typed values. The compound id in
// the first column always stays text.
func workbookRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, cell := range cells {
		if i == 0 {
			row[i] = cell
			continue
		}
		if cell == "true" || cell == "false" {
			row[i] = cell == "true"
			continue
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[i] = ""
			} else {
				row[i] = v
			}
			continue
		}
		row[i] = cell
	}
	return row
}
