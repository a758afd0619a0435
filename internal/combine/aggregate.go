package combine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the spread of one metric over a group of wells
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// PlateAggregate summarises one destination plate. X is the plate's rank by
// ascending metric mean, or -1 when ranks were not requested.
type PlateAggregate struct {
	Barcode string  `json:"barcode"`
	Metric  Summary `json:"metric"`
	ZScore  Summary `json:"z_score"`
	X       int     `json:"x"`
}

// Aggregate groups rows by destination plate (first appearance order) and
// summarises the chosen metric column and the Z-score. Null values are
// skipped; the standard deviation is the sample one.
func Aggregate(t *Table, column string, assignX bool) []PlateAggregate {
	type group struct {
		metric, z []float64
	}
	var order []string
	groups := make(map[string]*group)

	for i, row := range t.Rows {
		g, ok := groups[row.DestPlate]
		if !ok {
			g = &group{}
			groups[row.DestPlate] = g
			order = append(order, row.DestPlate)
		}
		if v := t.Value(i, column); !math.IsNaN(v) {
			g.metric = append(g.metric, v)
		}
		if v := t.Value(i, ColZScore); !math.IsNaN(v) {
			g.z = append(g.z, v)
		}
	}

	out := make([]PlateAggregate, len(order))
	for i, barcode := range order {
		out[i] = PlateAggregate{
			Barcode: barcode,
			Metric:  summarize(groups[barcode].metric),
			ZScore:  summarize(groups[barcode].z),
			X:       -1,
		}
	}

	if assignX {
		ranked := make([]int, len(out))
		for i := range ranked {
			ranked[i] = i
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return lessNaNLast(out[ranked[a]].Metric.Mean, out[ranked[b]].Metric.Mean)
		})
		for rank, i := range ranked {
			out[i].X = rank
		}
	}
	return out
}

func summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Max: nan}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Summary{
		Mean: mean,
		Std:  std,
		Min:  floats.Min(values),
		Max:  floats.Max(values),
	}
}

func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
