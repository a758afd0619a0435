package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	apperrors "htscreen/internal/errors"
	"htscreen/internal/exporter"
	"htscreen/internal/files"
	"htscreen/internal/infrastructure"
	"htscreen/internal/pipeline"
	"htscreen/internal/validation"
)

type screenOptions struct {
	platesDir     string
	platesPattern string
	transfersDir string
	plateMap     string
	withHits     bool
}

func newScreenCmd(a *app) *cobra.Command {
	opts := &screenOptions{}

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Score plates and combine them with transfer logs",
		Long: `Parses every plate export in --plates and every transfer log in
--transfers, drops plates failing the Z-factor threshold, and writes the
combined, compound and control tables with per-plate statistics.

With --hits the compound table is also fitted and classified; this needs
hits.stock_concentration and hits.assay_volume in the configuration.`,
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd, a, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.platesDir, "plates", "", "directory of plate-reader exports (.txt, .csv)")
	cmd.Flags().StringVar(&opts.platesPattern, "plates-pattern", "", "glob inside --plates selecting the exports to read (default: every .txt and .csv)")
	cmd.Flags().StringVar(&opts.transfersDir, "transfers", "", "directory of transfer logs (.csv)")
	cmd.Flags().StringVar(&opts.plateMap, "plate-map", "", "optional plate map (.csv or .xlsx) with Plate, Well, EOS columns")
	cmd.Flags().BoolVar(&opts.withHits, "hits", false, "also run hit validation on the compound table")
	_ = cmd.MarkFlagRequired("plates")
	_ = cmd.MarkFlagRequired("transfers")
	return cmd
}

func runScreen(cmd *cobra.Command, a *app, opts *screenOptions) error {
	ctx := infrastructure.EnsureTraceID(cmd.Context())
	logger := infrastructure.LoggerWithContext(ctx)

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(opts.platesDir, files.PlateExtensions...); err != nil {
		return err
	}
	if err := validator.ValidateInputDirectory(opts.transfersDir, files.TransferExtensions...); err != nil {
		return err
	}
	if opts.plateMap != "" {
		if err := validator.ValidatePlateMap(opts.plateMap); err != nil {
			return err
		}
	}
	if err := validator.ValidateOutputDirectory(a.cfg.Paths.OutputDir); err != nil {
		return err
	}

	discovery := files.NewDiscovery("")
	plates, err := loadPlates(discovery, opts)
	if err != nil {
		return err
	}
	transfers, err := discovery.LoadDir(opts.transfersDir, files.TransferExtensions...)
	if err != nil {
		return err
	}
	logger.Info("inputs discovered",
		slog.Int("plate_files", len(plates)),
		slog.Int("transfer_files", len(transfers)))

	in := pipeline.ScreeningInput{PlateFiles: plates, TransferFiles: transfers}
	if opts.plateMap != "" {
		content, err := os.ReadFile(opts.plateMap)
		if err != nil {
			return fmt.Errorf("failed to read plate map: %w", err)
		}
		in.PlateMap = &files.Input{Name: opts.plateMap, Content: content}
	}

	res, err := pipeline.NewScreening(a.cfg.Analysis, logger, a.metrics).
		WithTracer(a.tracing.Tracer).
		Run(ctx, in)
	if err != nil {
		return err
	}

	exp := exporter.NewExporter(a.cfg.Paths.OutputDir)
	if err := exp.WriteScreening(res); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s\n", res.RunID)
	fmt.Fprintf(out, "plates: %d parsed, %d failed, %d excluded\n",
		res.Batch.PlateCount(), len(res.Batch.Failed), len(res.Excluded))
	fmt.Fprintf(out, "transfers: %d rows, %d exceptions\n",
		res.Transfers.Transfers.Len(), res.Transfers.Exceptions.Len())
	fmt.Fprintf(out, "compounds: %d rows\n", res.Compounds.Len())

	if !opts.withHits {
		return nil
	}

	hv := pipeline.NewHitValidation(a.cfg.Hits, a.cfg.Analysis.Workers, logger, a.metrics).
		WithTracer(a.tracing.Tracer)
	points, err := hv.PointsFromScreening(res)
	if err != nil {
		return err
	}
	hitRes, err := hv.Run(ctx, points)
	if err != nil {
		return err
	}
	if err := exp.WriteHits(hitRes); err != nil {
		return err
	}
	printCounts(cmd, hitRes)
	return nil
}

// loadPlates reads the plate exports, narrowed to --plates-pattern when given
func loadPlates(discovery *files.Discovery, opts *screenOptions) ([]files.Input, error) {
	if opts.platesPattern == "" {
		return discovery.LoadDir(opts.platesDir, files.PlateExtensions...)
	}
	found, err := discovery.FindFilesByPattern(opts.platesDir, opts.platesPattern)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid --plates-pattern", err)
	}
	if len(found) == 0 {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("no plate files in %s match %q", opts.platesDir, opts.platesPattern), nil)
	}
	return files.Load(found)
}
