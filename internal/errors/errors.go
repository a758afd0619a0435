package errors

import (
	stderrors "errors"
)

// Sentinel causes carried inside AppError values.
var (
	// ErrMalformedLine is returned when a well/value line does not split into two tokens
	ErrMalformedLine = stderrors.New("malformed plate line")
	// ErrGridShape is returned when a plate does not resolve to 16x24
	ErrGridShape = stderrors.New("plate grid has wrong shape")
	// ErrInvalidWell is returned for well names outside the plate
	ErrInvalidWell = stderrors.New("invalid well name")
	// ErrNoTransferRows is returned when a transfer export has no markers and no rows
	ErrNoTransferRows = stderrors.New("no transfer rows found")
	// ErrMissingColumn is returned when a required column is absent from a table
	ErrMissingColumn = stderrors.New("missing required column")
	// ErrFitDiverged is returned when the solver exhausts its evaluation budget
	ErrFitDiverged = stderrors.New("curve fit did not converge")
	// ErrInsufficientPoints is returned when a compound has fewer points than fit parameters
	ErrInsufficientPoints = stderrors.New("not enough concentrations to fit curve")
	// ErrShapeMismatch is returned when the stats table and value tensor disagree in length
	ErrShapeMismatch = stderrors.New("plate stats and values are not aligned")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
