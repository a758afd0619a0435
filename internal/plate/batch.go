package plate

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"htscreen/internal/files"
)

// FileFailure is one plate export the reader rejected
type FileFailure struct {
	File  string
	Error string
}

// Batch is the ingestion result of many plate exports. Stats and Values are
// aligned by position and follow input order; rejected files are listed in
// Failed in input order and never abort the batch.
type Batch struct {
	Stats  []QualityStats
	Values Tensor
	Failed []FileFailure
}

// ParseBatch parses and assesses every input using up to workers goroutines.
// Only context cancellation returns an error. A nil logger falls back to
// slog.Default().
func ParseBatch(ctx context.Context, inputs []files.Input, workers int, logger *slog.Logger) (*Batch, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}

	type outcome struct {
		stats  QualityStats
		values [2]Grid
		err    error
	}
	outcomes := make([]outcome, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := Parse(in.Name, in.Content)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			a := Assess(p)
			outcomes[i] = outcome{stats: a.Stats, values: [2]Grid{p.Grid, a.Mask}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &Batch{}
	for i, o := range outcomes {
		if o.err != nil {
			logger.WarnContext(ctx, "error while parsing plate file",
				"file", inputs[i].Name,
				"error", o.err,
			)
			batch.Failed = append(batch.Failed, FileFailure{File: inputs[i].Name, Error: o.err.Error()})
			continue
		}
		batch.Stats = append(batch.Stats, o.stats)
		batch.Values = append(batch.Values, o.values)
	}

	logger.InfoContext(ctx, "plate files parsed",
		"plates", len(batch.Stats),
		"failed", len(batch.Failed),
		"outliers", batch.Values.OutlierCount(),
	)

	return batch, nil
}

// PlateCount returns the number of successfully parsed plates
func (b *Batch) PlateCount() int {
	return len(b.Stats)
}

// CompoundWellCount returns the number of compound wells across all plates
func (b *Batch) CompoundWellCount() int {
	return len(b.Values) * Rows * CompoundCols
}

// OutlierCount returns the number of flagged control wells
func (b *Batch) OutlierCount() int {
	return b.Values.OutlierCount()
}

// WithOutliers restricts the batch to plates with at least one flagged well
func (b *Batch) WithOutliers() *Batch {
	out := &Batch{Failed: b.Failed}
	for i := range b.Values {
		if b.Values[i][MaskLayer].Count(1) > 0 {
			out.Stats = append(out.Stats, b.Stats[i])
			out.Values = append(out.Values, b.Values[i])
		}
	}
	return out
}
