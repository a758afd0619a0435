package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{"parsing error type", ErrTypeParsing, "PARSING"},
		{"fit error type", ErrTypeFit, "FIT"},
		{"quality error type", ErrTypeQuality, "QUALITY"},
		{"validation error type", ErrTypeValidation, "VALIDATION"},
		{"storage error type", ErrTypeStorage, "STORAGE"},
		{"config error type", ErrTypeConfig, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewQualityError("plate P1 excluded"),
			want: "[QUALITY] plate P1 excluded",
		},
		{
			name: "with cause",
			err:  NewParsingError("plate.txt line 3", ErrMalformedLine),
			want: "[PARSING] plate.txt line 3: malformed plate line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := fmt.Errorf("parse batch: %w", NewFitError("compound C1", ErrFitDiverged))

	assert.True(t, errors.Is(err, ErrFitDiverged))
	assert.True(t, Is(err, ErrFitDiverged))
	assert.False(t, Is(err, ErrGridShape))

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, ErrTypeFit, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad"}
	err.WithContext("file", "P1.txt").WithContext("line", 4)

	assert.Equal(t, "P1.txt", err.Context["file"])
	assert.Equal(t, 4, err.Context["line"])
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewParsingError("x", ErrGridShape))

	assert.True(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsType(wrapped, ErrTypeFit))
	assert.False(t, IsType(errors.New("plain"), ErrTypeParsing))
	assert.False(t, IsType(nil, ErrTypeParsing))
}
