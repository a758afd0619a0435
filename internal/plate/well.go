package plate

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "htscreen/internal/errors"
)

const digits = "0123456789"

// WellToCoordinate maps a well name such as "C13" or "A02" to zero-based
// (row, col). The trailing digit run is the 1-indexed column and the single
// leading letter the row.
func WellToCoordinate(well string) (row, col int, err error) {
	w := strings.TrimSpace(well)
	head := strings.TrimRight(w, digits)
	tail := w[len(head):]

	if len(head) != 1 || tail == "" {
		return 0, 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidWell, well)
	}

	letter := strings.ToUpper(head)[0]
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidWell, well)
	}

	row, col = int(letter)-'A', n-1
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return 0, 0, fmt.Errorf("%w: %q outside %dx%d plate", apperrors.ErrInvalidWell, well, Rows, Cols)
	}
	return row, col, nil
}

// PaddedWell renders a coordinate with a two-digit column, e.g. "A01"
func PaddedWell(row, col int) string {
	return fmt.Sprintf("%c%02d", rune('A'+row), col+1)
}

// CoordinateToWell renders a coordinate in normalised form, e.g. "A1", "P24"
func CoordinateToWell(row, col int) string {
	return NormalizeWell(PaddedWell(row, col))
}

// NormalizeWell strips leading zeros from the column number so "A01" and
// "A1" compare equal. The number never becomes empty. Strings that do not
// end in digits are returned trimmed but otherwise unchanged.
func NormalizeWell(well string) string {
	w := strings.TrimSpace(well)
	head := strings.TrimRight(w, digits)
	tail := w[len(head):]
	if tail == "" {
		return w
	}

	number := strings.TrimLeft(tail, "0")
	if number == "" {
		number = "0"
	}
	return strings.ToUpper(head) + number
}

// WellSuffix returns the last two characters of a well name, used to tell
// control columns ("23", "24") from compounds.
func WellSuffix(well string) string {
	w := strings.TrimSpace(well)
	if len(w) < 2 {
		return w
	}
	return w[len(w)-2:]
}
