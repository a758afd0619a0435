package hits

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"htscreen/internal/combine"
	apperrors "htscreen/internal/errors"
	"htscreen/internal/files"
)

// Long-format column names
const (
	ColEOS           = "EOS"
	ColConcentration = "CONCENTRATION"
	ColValue         = "VALUE"
)

// Concentration converts a transferred volume into the assay concentration
func Concentration(volume, stockConcentration, assayVolume float64) float64 {
	return volume * stockConcentration / assayVolume
}

// PointsFromMetrics builds long-format points from a combined table, using
// column as the value and each transfer's volume for the concentration.
// Rows without a compound id or a value are skipped.
func PointsFromMetrics(t *combine.Table, column string, stockConcentration, assayVolume float64) []Point {
	points := make([]Point, 0, t.Len())
	for i, row := range t.Rows {
		v := t.Value(i, column)
		if row.CompoundID == "" || math.IsNaN(v) || math.IsNaN(row.Volume) {
			continue
		}
		points = append(points, Point{
			CompoundID:    row.CompoundID,
			Concentration: Concentration(row.Volume, stockConcentration, assayVolume),
			Value:         v,
		})
	}
	return points
}

// ReadPoints reads a long-format CSV with EOS (or CMPD ID), CONCENTRATION and
// VALUE columns. Header matching ignores case and surrounding spaces.
func ReadPoints(in files.Input) ([]Point, error) {
	reader := csv.NewReader(bytes.NewReader(in.Content))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("screening file %s", in.Name), err).
			WithContext("file", in.Name)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("screening file %s is empty", in.Name), apperrors.ErrMissingColumn)
	}

	index := make(map[string]int)
	for i, h := range records[0] {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	idCol, ok := index[ColEOS]
	if !ok {
		idCol, ok = index["CMPD ID"]
	}
	concCol, okConc := index[ColConcentration]
	valueCol, okValue := index[ColValue]
	if !ok || !okConc || !okValue {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("screening file %s needs %s, %s and %s columns", in.Name, ColEOS, ColConcentration, ColValue),
			apperrors.ErrMissingColumn,
		).WithContext("file", in.Name)
	}

	points := make([]Point, 0, len(records)-1)
	for line, rec := range records[1:] {
		conc, err := strconv.ParseFloat(strings.TrimSpace(rec[concCol]), 64)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("screening file %s line %d: bad concentration %q", in.Name, line+2, rec[concCol]), err,
			).WithContext("file", in.Name)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[valueCol]), 64)
		if err != nil {
			value = math.NaN()
		}
		points = append(points, Point{
			CompoundID:    strings.TrimSpace(rec[idCol]),
			Concentration: conc,
			Value:         value,
		})
	}
	return points, nil
}
