package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Hits     HitsConfig     `yaml:"hits" envconfig:"HITS"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"eq=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig controls plate quality filtering and metric derivation
type AnalysisConfig struct {
	ZFactorThreshold  float64 `yaml:"z_factor_threshold" envconfig:"Z_FACTOR_THRESHOLD"`
	Workers           int     `yaml:"workers" envconfig:"WORKERS" validate:"gte=1,lte=256"`
	DefaultMode       string  `yaml:"default_mode" envconfig:"DEFAULT_MODE" validate:"oneof=activation inhibition all"`
	ActivationFormula string  `yaml:"activation_formula" envconfig:"ACTIVATION_FORMULA" validate:"oneof=standard without_pos"`
	// Modes overrides DefaultMode per plate barcode
	Modes map[string]string `yaml:"modes" envconfig:"MODES" validate:"dive,oneof=activation inhibition all"`
}

// HitsConfig holds the hit classification thresholds and solver limits.
// Defaults reproduce the reference classification exactly.
type HitsConfig struct {
	AllActiveMin            float64 `yaml:"all_active_min" envconfig:"ALL_ACTIVE_MIN"`
	AllInactiveMax          float64 `yaml:"all_inactive_max" envconfig:"ALL_INACTIVE_MAX"`
	ConcentrationUpperBound float64 `yaml:"concentration_upper_bound" envconfig:"CONCENTRATION_UPPER_BOUND" validate:"gt=0"`
	TopLowerBound           float64 `yaml:"top_lower_bound" envconfig:"TOP_LOWER_BOUND"`
	TopUpperBound           float64 `yaml:"top_upper_bound" envconfig:"TOP_UPPER_BOUND" validate:"gtfield=TopLowerBound"`
	ValueLowerBound         float64 `yaml:"value_lower_bound" envconfig:"VALUE_LOWER_BOUND"`
	MaxEvaluations          int     `yaml:"max_evaluations" envconfig:"MAX_EVALUATIONS" validate:"gte=1"`
	StockConcentration      float64 `yaml:"stock_concentration" envconfig:"STOCK_CONCENTRATION" validate:"gte=0"`
	AssayVolume             float64 `yaml:"assay_volume" envconfig:"ASSAY_VOLUME" validate:"gte=0"`
}

// MetricsConfig controls the OpenTelemetry meter provider
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	Exporter string `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=prometheus none"`
}

// TracingConfig controls span export for pipeline runs. An empty FilePath
// writes spans to stderr.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" envconfig:"ENABLED"`
	Exporter    string  `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=stdout none"`
	FilePath    string  `yaml:"file_path" envconfig:"FILE_PATH"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// Default returns the configuration used when neither a file nor the
// environment overrides a value.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Analysis: AnalysisConfig{
			ZFactorThreshold:  DefaultZFactorThreshold,
			Workers:           DefaultWorkers,
			DefaultMode:       "all",
			ActivationFormula: "standard",
		},
		Hits: HitsConfig{
			AllActiveMin:            DefaultAllActiveMin,
			AllInactiveMax:          DefaultAllInactiveMax,
			ConcentrationUpperBound: DefaultConcentrationUpperBound,
			TopLowerBound:           DefaultTopLowerBound,
			TopUpperBound:           DefaultTopUpperBound,
			ValueLowerBound:         DefaultValueLowerBound,
			MaxEvaluations:          DefaultMaxEvaluations,
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Exporter: "prometheus",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			FilePath:    DefaultTraceFile,
			SampleRatio: 1.0,
		},
		Paths: PathsConfig{
			OutputDir: DefaultOutputDir,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file (if any),
// then environment variables prefixed with HTS. Later sources win.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit config file path. A missing file is not an error.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// Env vars without a default tag leave unset fields untouched
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays a YAML file on cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path of the optional config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigFile
}

// Validate checks the struct tags of every section
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid %s: failed %q (value %v)", first.Namespace(), first.Tag(), first.Value())
		}
		return err
	}
	return nil
}
