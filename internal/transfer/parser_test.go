package transfer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/files"
)

const header = "Source Plate Barcode,Source Well,Destination Plate Barcode,Destination Well,Actual Volume,Transfer Status"

func input(name string, lines ...string) files.Input {
	return files.Input{Name: name, Content: []byte(strings.Join(lines, "\n") + "\n")}
}

func TestFindMarkers(t *testing.T) {
	lines := strings.Split("Skip_this\n[EXCEPTIONS]\nline1\nline2\n[DETAILS]\nline3\n", "\n")
	assert.Equal(t, []int{1, 4}, FindMarkers(lines))

	assert.Equal(t, []int{0}, FindMarkers([]string{" [DETAILS] ", "a,b"}))
	assert.Nil(t, FindMarkers([]string{"a,b", "1,2"}))
}

func TestParseFile_TwoMarkers(t *testing.T) {
	in := input("run1.csv",
		"[EXCEPTIONS]", // 0
		header,         // 1
		"S1,A01,D1,A03,,Failed",
		"S1,A02,D1,A04,,Failed",
		"",          // 4 delimiter
		"[DETAILS]", // 5
		header,      // 6
		"S1,A05,D1,B01,2.5,",
		"S1,A06,D1,B02,2.5,",
		"S1,A07,D1,B03,2.5,",
		"Instrument Name,Echo 655",
		"instrument serial,123",
	)

	section, err := ParseFile(in)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 5}, section.Markers)
	require.Equal(t, 2, section.Exceptions.Len())
	assert.Equal(t, "A03", section.Exceptions.Value(0, ColDestWell))
	assert.Equal(t, "Failed", section.Exceptions.Value(1, ColStatus))

	require.Equal(t, 3, section.Transfers.Len())
	assert.Equal(t, "B01", section.Transfers.Value(0, ColDestWell))
	assert.Equal(t, "B03", section.Transfers.Value(2, ColDestWell))
}

func TestParseFile_OneMarker(t *testing.T) {
	in := input("run.csv",
		"[DETAILS]",
		"Plate,Well,Transfer Volume",
		"plate123,A01,10",
		",,",
		"Instrument",
	)

	section, err := ParseFile(in)
	require.NoError(t, err)
	assert.Equal(t, 0, section.Exceptions.Len())
	assert.Equal(t, []string{"Plate", "Well", "Transfer Volume"}, section.Transfers.Columns)
	assert.Equal(t, [][]string{{"plate123", "A01", "10"}}, section.Transfers.Rows)
}

func TestParseFile_NoMarkers(t *testing.T) {
	in := input("plain.csv", header, "S1,A01,D1,A01,,Failed")

	section, err := ParseFile(in)
	require.NoError(t, err)
	assert.Equal(t, 0, section.Transfers.Len())
	assert.Equal(t, 1, section.Exceptions.Len())
}

func TestParse_Concatenates(t *testing.T) {
	first := input("a.csv", "[DETAILS]", header, "S1,A01,D1,A01,2.5,")
	second := input("b.csv",
		"[DETAILS]",
		"CMPD ID,Source Plate Barcode,Source Well,Destination Plate Barcode,Destination Well,Actual Volume",
		"X1,S2,B01,D2,C01,5",
	)

	result, err := Parse([]files.Input{first, second})
	require.NoError(t, err)

	require.Equal(t, 2, result.Transfers.Len())
	assert.Equal(t, "D1", result.Transfers.Value(0, ColDestPlate))
	assert.Equal(t, "D2", result.Transfers.Value(1, ColDestPlate))
	// columns only present in later files are back-filled
	assert.Equal(t, "", result.Transfers.Value(0, ColCompoundID))
	assert.Equal(t, "X1", result.Transfers.Value(1, ColCompoundID))
}

func TestParse_NoRows(t *testing.T) {
	_, err := Parse([]files.Input{{Name: "empty.csv", Content: []byte("\n\n")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoTransferRows)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	// a marker without rows is not an error
	result, err := Parse([]files.Input{input("m.csv", "[DETAILS]")})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Transfers.Len())
}

func TestParse_MalformedBlock(t *testing.T) {
	_, err := Parse([]files.Input{input("bad.csv", "[DETAILS]", "a,b", "\"x,1")})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestRetainKeyColumns(t *testing.T) {
	in := input("run.csv",
		"[EXCEPTIONS]",
		header+",Extra",
		"S1,A01,D1,A03,,Failed,x",
		"",
		"[DETAILS]",
		"Extra,"+header,
		"x,S1,A05,D1,B01,2.5,",
	)
	result, err := Parse([]files.Input{in})
	require.NoError(t, err)

	result.RetainKeyColumns(nil)

	assert.Equal(t, []string{ColSourcePlate, ColSourceWell, ColDestPlate, ColDestWell, ColVolume}, result.Transfers.Columns)
	assert.Equal(t, "B1", result.Transfers.Value(0, ColDestWell))

	assert.Equal(t, []string{
		ColVolume, ColDestPlate, ColDestWell, ColSourcePlate, ColSourceWell, ColStatus,
	}, result.Exceptions.Columns)
	assert.Equal(t, "Failed", result.Exceptions.Value(0, ColStatus))
}

func TestRetainKeyColumns_Custom(t *testing.T) {
	result := &Result{
		Transfers:  &Table{Columns: []string{"Plate", "Well", "Transfer Volume"}, Rows: [][]string{{"p", "A01", "10"}}},
		Exceptions: NewTable(),
	}
	result.RetainKeyColumns([]string{"Plate", "Wrong_column"})

	assert.Equal(t, []string{"Plate"}, result.Transfers.Columns)
	assert.Equal(t, [][]string{{"p"}}, result.Transfers.Rows)
	assert.Empty(t, result.Exceptions.Columns)
}
