package exporter

import (
	"fmt"
	"sort"
	"strconv"

	"htscreen/internal/combine"
	"htscreen/internal/hits"
	"htscreen/internal/pipeline"
	"htscreen/internal/plate"
	"htscreen/internal/transfer"
)

// Output file names written by WriteScreening and WriteHits
const (
	CombinedFile   = "combined.csv"
	CompoundsFile  = "compounds.csv"
	PositiveFile   = "positive_controls.csv"
	NegativeFile   = "negative_controls.csv"
	ExceptionsFile = "exceptions.csv"
	PlateStatsFile = "plate_stats.csv"
	ExcludedFile   = "excluded_plates.csv"
	FailedFile     = "failed_plates.csv"
	AggregatesFile = "plate_aggregates.csv"
	HitsFile       = "hits.csv"
	HitsWorkbook   = "hits.xlsx"
)

// PlateStatsColumns is the header of the per-plate statistics table
var PlateStatsColumns = []string{
	"barcode", "std_cmpd", "std_pos", "std_neg",
	"mean_cmpd", "mean_pos", "mean_neg", "z_factor", "z_factor_no_outliers",
}

// AggregateColumns is the header of the per-plate aggregate table
var AggregateColumns = []string{
	"group", "barcode", "x",
	"mean", "std", "min", "max",
	"z_score_mean", "z_score_std", "z_score_min", "z_score_max",
}

// Exporter renders pipeline results as files under one directory
type Exporter struct {
	csvWriter *CSVWriter
}

// NewExporter creates an exporter writing to outputDir
func NewExporter(outputDir string) *Exporter {
	return &Exporter{csvWriter: NewCSVWriter(outputDir)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCombinedCSV streams a combined transfer/metric table
func (e *Exporter) WriteCombinedCSV(filePath string, t *combine.Table) error {
	stream, err := e.csvWriter.CreateStreamWriter(filePath, t.Columns())
	if err != nil {
		return err
	}
	for i := range t.Rows {
		if err := stream.WriteRecord(t.Strings(i)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row %d of %s: %w", i, filePath, err)
		}
	}
	return stream.Close()
}

// WriteExceptionsCSV writes the declared transfer exceptions
func (e *Exporter) WriteExceptionsCSV(filePath string, t *transfer.Table) error {
	return e.csvWriter.WriteSimpleCSV(filePath, t.Columns, t.Rows)
}

// WritePlateStatsCSV writes one row of control statistics per plate
func (e *Exporter) WritePlateStatsCSV(filePath string, stats []plate.QualityStats) error {
	records := make([][]string, len(stats))
	for i, s := range stats {
		records[i] = []string{
			s.Barcode,
			formatFloat(s.StdCmpd), formatFloat(s.StdPos), formatFloat(s.StdNeg),
			formatFloat(s.MeanCmpd), formatFloat(s.MeanPos), formatFloat(s.MeanNeg),
			formatFloat(s.ZFactor), formatFloat(s.ZFactorNoOutliers),
		}
	}
	return e.csvWriter.WriteSimpleCSV(filePath, PlateStatsColumns, records)
}

// WriteExcludedCSV writes the plates removed by the quality filter
func (e *Exporter) WriteExcludedCSV(filePath string, excluded []combine.ExcludedPlate) error {
	records := make([][]string, len(excluded))
	for i, ex := range excluded {
		records[i] = []string{ex.Barcode, formatFloat(ex.ZFactor)}
	}
	return e.csvWriter.WriteSimpleCSV(filePath, []string{"barcode", "z_factor"}, records)
}

// WriteFailedCSV writes the plate files the reader rejected, sorted by name.
// Files sharing a name keep their input order.
func (e *Exporter) WriteFailedCSV(filePath string, failed []plate.FileFailure) error {
	sorted := append([]plate.FileFailure(nil), failed...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	records := make([][]string, len(sorted))
	for i, f := range sorted {
		records[i] = []string{f.File, f.Error}
	}
	return e.csvWriter.WriteSimpleCSV(filePath, []string{"file", "error"}, records)
}

// WriteAggregatesCSV writes the per-plate summaries of compounds and controls
func (e *Exporter) WriteAggregatesCSV(filePath string, agg pipeline.Aggregates) error {
	var records [][]string
	add := func(group string, rows []combine.PlateAggregate) {
		for _, a := range rows {
			records = append(records, []string{
				group, a.Barcode, strconv.Itoa(a.X),
				formatFloat(a.Metric.Mean), formatFloat(a.Metric.Std),
				formatFloat(a.Metric.Min), formatFloat(a.Metric.Max),
				formatFloat(a.ZScore.Mean), formatFloat(a.ZScore.Std),
				formatFloat(a.ZScore.Min), formatFloat(a.ZScore.Max),
			})
		}
	}
	add("compounds", agg.Compounds)
	add("positive", agg.Positive)
	add("negative", agg.Negative)
	return e.csvWriter.WriteSimpleCSV(filePath, AggregateColumns, records)
}

// WriteHitsCSV writes hit calls in Columns order
func (e *Exporter) WriteHitsCSV(filePath string, calls []hits.HitCall) error {
	records := make([][]string, len(calls))
	for i, c := range calls {
		records[i] = c.Strings()
	}
	return e.csvWriter.WriteSimpleCSV(filePath, hits.Columns, records)
}

// WriteScreening writes every table of a screening run
func (e *Exporter) WriteScreening(res *pipeline.ScreeningResult) error {
	writes := []struct {
		name string
		fn   func() error
	}{
		{CombinedFile, func() error { return e.WriteCombinedCSV(CombinedFile, res.Combined) }},
		{CompoundsFile, func() error { return e.WriteCombinedCSV(CompoundsFile, res.Compounds) }},
		{PositiveFile, func() error { return e.WriteCombinedCSV(PositiveFile, res.Positive) }},
		{NegativeFile, func() error { return e.WriteCombinedCSV(NegativeFile, res.Negative) }},
		{ExceptionsFile, func() error { return e.WriteExceptionsCSV(ExceptionsFile, res.Transfers.Exceptions) }},
		{PlateStatsFile, func() error { return e.WritePlateStatsCSV(PlateStatsFile, res.Batch.Stats) }},
		{ExcludedFile, func() error { return e.WriteExcludedCSV(ExcludedFile, res.Excluded) }},
		{FailedFile, func() error { return e.WriteFailedCSV(FailedFile, res.Batch.Failed) }},
		{AggregatesFile, func() error { return e.WriteAggregatesCSV(AggregatesFile, res.Aggregates) }},
	}
	for _, w := range writes {
		if err := w.fn(); err != nil {
			return fmt.Errorf("failed to export %s: %w", w.name, err)
		}
	}
	return nil
}

// WriteHits writes hit calls as CSV and as a workbook
func (e *Exporter) WriteHits(res *pipeline.HitResult) error {
	if err := e.WriteHitsCSV(HitsFile, res.Calls); err != nil {
		return fmt.Errorf("failed to export %s: %w", HitsFile, err)
	}
	if err := e.WriteHitWorkbook(HitsWorkbook, res.Calls); err != nil {
		return fmt.Errorf("failed to export %s: %w", HitsWorkbook, err)
	}
	return nil
}
