// Package exporter writes screening and hit-validation results to disk.
//
// CSVWriter is the low-level writer: headers, optional UTF-8 BOM for Excel,
// and a streaming mode for large tables. Exporter renders the pipeline
// tables on top of it:
//
//	exp := exporter.NewExporter("output")
//	err := exp.WriteScreening(result)
//	err = exp.WriteHits(hitResult)
//
// Hit calls are additionally written as an XLSX workbook with a single
// "hits" sheet.
package exporter
