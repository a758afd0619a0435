package plate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "htscreen/internal/errors"
)

// Barcode derives the plate barcode from a file name: the last path segment
// (either separator) up to its first dot.
func Barcode(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

// Parse reads one plate-reader export.
//
// Two layouts are accepted and told apart by the first non-blank line:
//   - well/value lines ("A02 134.5"), when the line starts with a row letter;
//     wells not listed keep a reading of 0
//   - a headerless 16x24 numeric CSV grid otherwise
//
// Returns: the plate, or a PARSING AppError wrapping ErrMalformedLine,
// ErrInvalidWell or ErrGridShape.
func Parse(filename string, content []byte) (Plate, error) {
	p := Plate{Barcode: Barcode(filename)}

	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	first := firstNonBlank(lines)

	var err error
	if startsWithRowLetter(first) {
		p.Grid, err = parseWellValues(filename, lines)
	} else {
		p.Grid, err = parseTabular(filename, content)
	}
	if err != nil {
		return Plate{}, err
	}
	return p, nil
}

func firstNonBlank(lines []string) string {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func startsWithRowLetter(line string) bool {
	if line == "" {
		return false
	}
	c := line[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func parseWellValues(filename string, lines []string) (Grid, error) {
	var grid Grid

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Fields(line)
		if len(cells) != 2 {
			return Grid{}, apperrors.NewParsingError(
				fmt.Sprintf("wrong format of file %s - line %d has %d cells instead of 2", filename, i, len(cells)),
				apperrors.ErrMalformedLine,
			).WithContext("file", filename).WithContext("line", i)
		}

		row, col, err := WellToCoordinate(cells[0])
		if err != nil {
			return Grid{}, apperrors.NewParsingError(
				fmt.Sprintf("file %s line %d", filename, i), err,
			).WithContext("file", filename).WithContext("line", i)
		}

		value, err := parseReading(cells[1])
		if err != nil {
			return Grid{}, apperrors.NewParsingError(
				fmt.Sprintf("file %s line %d: bad reading %q", filename, i, cells[1]),
				fmt.Errorf("%w: %v", apperrors.ErrMalformedLine, err),
			).WithContext("file", filename).WithContext("line", i)
		}
		grid[row][col] = value
	}

	return grid, nil
}

func parseTabular(filename string, content []byte) (Grid, error) {
	var grid Grid

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Grid{}, apperrors.NewParsingError(fmt.Sprintf("file %s is not a numeric table", filename), err)
	}

	if len(records) != Rows {
		return Grid{}, apperrors.NewParsingError(
			fmt.Sprintf("file %s has %d rows, expected %d", filename, len(records), Rows),
			apperrors.ErrGridShape,
		).WithContext("file", filename)
	}

	for r, record := range records {
		if len(record) != Cols {
			return Grid{}, apperrors.NewParsingError(
				fmt.Sprintf("file %s row %d has %d columns, expected %d", filename, r, len(record), Cols),
				apperrors.ErrGridShape,
			).WithContext("file", filename).WithContext("line", r)
		}
		for c, cell := range record {
			value, err := parseReading(cell)
			if err != nil {
				return Grid{}, apperrors.NewParsingError(
					fmt.Sprintf("file %s row %d column %d: bad reading %q", filename, r, c, cell), err,
				).WithContext("file", filename)
			}
			grid[r][c] = value
		}
	}

	return grid, nil
}

// parseReading converts one cell; empty cells and NaN spellings become NaN
func parseReading(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
