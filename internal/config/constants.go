package config

// Application constants
const (
	AppName    = "htscreen"
	AppVersion = "1.0.0"

	// EnvPrefix prefixes every environment variable, e.g. HTS_ANALYSIS_WORKERS
	EnvPrefix = "HTS"

	DefaultConfigFile = "config.yaml"
	DefaultLogFile    = "logs/htscreen.log"
	DefaultTraceFile  = "logs/traces.json"
	DefaultOutputDir  = "output"

	// Plate quality
	DefaultZFactorThreshold = 0.5
	DefaultWorkers          = 4

	// Hit classification
	DefaultAllActiveMin            = 75.0
	DefaultAllInactiveMax          = 30.0
	DefaultConcentrationUpperBound = 10.0
	DefaultTopLowerBound           = 30.0
	DefaultTopUpperBound           = 80.0
	DefaultValueLowerBound         = -100.0
	DefaultMaxEvaluations          = 10000
)
