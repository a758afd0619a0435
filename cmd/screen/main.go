package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"htscreen/internal/config"
	"htscreen/internal/infrastructure"
)

// MetricsFile receives the Prometheus text dump written after each command
const MetricsFile = "metrics.prom"

// app carries what PersistentPreRunE sets up for the subcommands
type app struct {
	configPath string
	outputDir  string
	verbose    bool

	cfg      *config.Config
	logger   *slog.Logger
	provider *infrastructure.MetricsProvider
	metrics  *infrastructure.PipelineMetrics
	tracing  *infrastructure.TracingProvider
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "screen",
		Short: "HTS screening analysis",
		Long: `Turns plate-reader exports and liquid-handler transfer logs into
per-compound activity metrics, then fits dose-response curves and
classifies hits.

Configuration is read from a YAML file (HTS_CONFIG or --config) and
overridden by HTS_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv(config.EnvPrefix+"_CONFIG"), "YAML config file")
	root.PersistentFlags().StringVarP(&a.outputDir, "out", "o", "", "output directory (overrides paths.output_dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newScreenCmd(a), newHitsCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultConfigFile
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if a.outputDir != "" {
		cfg.Paths.OutputDir = a.outputDir
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	a.logger, err = infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.provider, err = infrastructure.InitializeMetrics(cfg.Metrics, a.logger)
	if err != nil {
		return err
	}
	a.metrics, err = infrastructure.NewPipelineMetrics(a.provider.Meter)
	if err != nil {
		return err
	}
	a.tracing, err = infrastructure.InitializeTracing(cfg.Tracing, a.logger)
	if err != nil {
		return err
	}

	a.logger.Debug("configuration loaded",
		slog.String("config_file", path),
		slog.String("output_dir", cfg.Paths.OutputDir),
		slog.Int("workers", cfg.Analysis.Workers))
	return nil
}

// run wraps a subcommand body so teardown also happens when the body fails;
// cobra skips PersistentPostRunE after a RunE error.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		return errors.Join(err, a.teardown(context.WithoutCancel(cmd.Context())))
	}
}

// teardown dumps metrics next to the results and releases resources
func (a *app) teardown(ctx context.Context) error {
	defer infrastructure.CloseLogFile()
	defer a.tracing.Shutdown(ctx)
	if a.provider == nil {
		return nil
	}
	defer a.provider.Shutdown(ctx)

	if a.provider.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(a.cfg.Paths.OutputDir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(a.cfg.Paths.OutputDir, MetricsFile))
	if err != nil {
		return err
	}
	defer f.Close()
	return a.provider.WriteText(f)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
