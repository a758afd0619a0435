package plate

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htscreen/internal/files"
)

func TestParseBatch(t *testing.T) {
	good := uniformGrid(100, 0, 200)
	withOutlier := uniformGrid(100, 10, 200)
	for r := 0; r < Rows; r++ {
		withOutlier[r][PositiveControlCol] += float64(r % 2)
	}
	withOutlier[0][PositiveControlCol] = 9000

	inputs := []files.Input{
		{Name: "P1.csv", Content: tabular(good)},
		{Name: "broken.txt", Content: []byte("A01 1 2\n")},
		{Name: "P3.csv", Content: tabular(withOutlier)},
		{Name: "P4.txt", Content: []byte("A01 5\n")},
	}

	batch, err := ParseBatch(context.Background(), inputs, 3, nil)
	require.NoError(t, err)

	require.Equal(t, 3, batch.PlateCount())
	assert.Equal(t, "P1", batch.Stats[0].Barcode)
	assert.Equal(t, "P3", batch.Stats[1].Barcode)
	assert.Equal(t, "P4", batch.Stats[2].Barcode)
	assert.Len(t, batch.Values, 3)
	assert.Equal(t, good, batch.Values[0][ValueLayer])

	require.Len(t, batch.Failed, 1)
	assert.Equal(t, "broken.txt", batch.Failed[0].File)
	assert.Contains(t, batch.Failed[0].Error, "instead of 2")

	assert.Equal(t, 3*Rows*CompoundCols, batch.CompoundWellCount())
	assert.Equal(t, 1, batch.OutlierCount())

	flagged := batch.WithOutliers()
	require.Equal(t, 1, flagged.PlateCount())
	assert.Equal(t, "P3", flagged.Stats[0].Barcode)
}

func TestParseBatch_SameNameFailuresAreKept(t *testing.T) {
	inputs := []files.Input{
		{Name: "plate.txt", Content: []byte("A01 1 2\n")},
		{Name: "plate.txt", Content: []byte("not a plate\n")},
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	batch, err := ParseBatch(context.Background(), inputs, 2, logger)
	require.NoError(t, err)

	require.Len(t, batch.Failed, 2)
	assert.Equal(t, "plate.txt", batch.Failed[0].File)
	assert.Equal(t, "plate.txt", batch.Failed[1].File)
	assert.Contains(t, batch.Failed[0].Error, "instead of 2")
	assert.Equal(t, 2, strings.Count(buf.String(), "error while parsing plate file"))
}

func TestParseBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []files.Input{{Name: "P1.csv", Content: tabular(uniformGrid(1, 0, 2))}}
	_, err := ParseBatch(ctx, inputs, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseBatch_Empty(t *testing.T) {
	batch, err := ParseBatch(context.Background(), nil, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.PlateCount())
	assert.Empty(t, batch.Failed)
}
