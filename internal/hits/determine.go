package hits

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Group collects the points of one compound
type Group struct {
	CompoundID string
	Points     []Point
}

// GroupByCompound groups points by compound id, sorted by id. Points whose
// value is NaN or below lowerBound are dropped.
func GroupByCompound(points []Point, lowerBound float64) []Group {
	byID := make(map[string][]Point)
	for _, p := range points {
		if math.IsNaN(p.Value) || p.Value < lowerBound {
			continue
		}
		byID[p.CompoundID] = append(byID[p.CompoundID], p)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	groups := make([]Group, len(ids))
	for i, id := range ids {
		groups[i] = Group{CompoundID: id, Points: byID[id]}
	}
	return groups
}

// FitAll fits every group using up to workers goroutines. Results follow the
// order of groups regardless of completion order. Only context cancellation
// returns an error; fit failures are carried in FitResult.Err.
func FitAll(ctx context.Context, groups []Group, maxEvaluations, workers int) ([]FitResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]FitResult, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, group := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Fit(group.CompoundID, group.Points, maxEvaluations)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ClassifyGroups classifies each group against its fit. fits must be aligned
// with groups, as returned by FitAll.
func ClassifyGroups(groups []Group, fits []FitResult, th Thresholds) []HitCall {
	calls := make([]HitCall, len(groups))
	for i, group := range groups {
		values := make([]float64, len(group.Points))
		for j, p := range group.Points {
			values[j] = p.Value
		}
		calls[i] = Classify(fits[i], values, th)
	}
	return calls
}

// CountActivity tallies hit calls by final activity
func CountActivity(calls []HitCall) map[Activity]int {
	counts := make(map[Activity]int)
	for _, c := range calls {
		counts[c.ActivityFinal]++
	}
	return counts
}
