package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"htscreen/internal/exporter"
	"htscreen/internal/files"
	"htscreen/internal/hits"
	"htscreen/internal/infrastructure"
	"htscreen/internal/pipeline"
	"htscreen/internal/validation"
)

func newHitsCmd(a *app) *cobra.Command {
	var pointsFile string

	cmd := &cobra.Command{
		Use:   "hits",
		Short: "Fit dose-response curves and classify compounds",
		Long: `Reads a long-format screening table with EOS, CONCENTRATION and VALUE
columns, fits a four-parameter logistic per compound and writes the hit
calls as CSV and XLSX.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			logger := infrastructure.LoggerWithContext(ctx)

			validator := validation.NewFileValidator(logger)
			if err := validator.ValidateFile(pointsFile); err != nil {
				return err
			}
			if err := validator.ValidateOutputDirectory(a.cfg.Paths.OutputDir); err != nil {
				return err
			}

			content, err := os.ReadFile(pointsFile)
			if err != nil {
				return fmt.Errorf("failed to read screening table: %w", err)
			}
			points, err := hits.ReadPoints(files.Input{Name: filepath.Base(pointsFile), Content: content})
			if err != nil {
				return err
			}

			res, err := pipeline.NewHitValidation(a.cfg.Hits, a.cfg.Analysis.Workers, logger, a.metrics).
				WithTracer(a.tracing.Tracer).
				Run(ctx, points)
			if err != nil {
				return err
			}
			if err := exporter.NewExporter(a.cfg.Paths.OutputDir).WriteHits(res); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", res.RunID)
			printCounts(cmd, res)
			return nil
		}),
	}

	cmd.Flags().StringVar(&pointsFile, "points", "", "long-format CSV with EOS, CONCENTRATION and VALUE columns")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}

func printCounts(cmd *cobra.Command, res *pipeline.HitResult) {
	fmt.Fprintf(cmd.OutOrStdout(), "compounds: %d (active %d, inactive %d, inconclusive %d)\n",
		len(res.Calls),
		res.Counts[hits.ActivityActive],
		res.Counts[hits.ActivityInactive],
		res.Counts[hits.ActivityInconclusive])
}
