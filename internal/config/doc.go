// Package config provides centralized configuration management for the
// screening pipeline. It loads configuration from multiple sources, validates
// it, and exposes typed sections to the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml or $HTS_CONFIG)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern HTS_<SECTION>_<FIELD>:
//
//	HTS_LOGGING_LEVEL=debug
//	HTS_ANALYSIS_Z_FACTOR_THRESHOLD=0.4
//	HTS_ANALYSIS_WORKERS=8
//	HTS_ANALYSIS_MODES=PLATE01:activation,PLATE02:inhibition
//	HTS_HITS_CONCENTRATION_UPPER_BOUND=10
//
// # Validation
//
// Every section carries validator/v10 struct tags. Load fails with the first
// violated rule so a bad threshold never reaches the numeric code.
package config
