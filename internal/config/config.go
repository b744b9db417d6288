package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"adpulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathConfig
	LLM       LLMConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Evaluator EvaluatorConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	DataFile   string // CSV or XLSX dataset
	OutDir     string // report/artifact output directory
	Thresholds string // optional YAML thresholds file
}

// LLMConfig holds LLM collaborator settings. An empty APIKey switches the
// pipeline to the heuristic generators.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// DatabaseConfig holds optional Postgres persistence settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds the optional results server settings
type ServerConfig struct {
	Port string // empty disables the server
}

// EvaluatorConfig holds the statistical thresholds. Defaults match the
// documented configuration surface; a thresholds YAML file and environment
// variables may override them.
type EvaluatorConfig struct {
	PValueThreshold              float64 `yaml:"p_value_threshold"`
	CTRDropPctThreshold          float64 `yaml:"ctr_drop_pct_threshold"`
	MinSamplesForTTest           int     `yaml:"min_samples_for_ttest"`
	BootstrapIters               int     `yaml:"bootstrap_iters"`
	BootstrapSeed                int64   `yaml:"bootstrap_seed"`
	RollingWindowDays            int     `yaml:"rolling_window_days"`
	ChangePointRelativeThreshold float64 `yaml:"change_point_relative_threshold"`
}

// DefaultEvaluatorConfig returns the documented defaults.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		PValueThreshold:              0.05,
		CTRDropPctThreshold:          20.0,
		MinSamplesForTTest:           10,
		BootstrapIters:               2000,
		BootstrapSeed:                42,
		RollingWindowDays:            7,
		ChangePointRelativeThreshold: 0.15,
	}
}

// Load reads configuration from environment variables, overlays the
// thresholds file when present, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Paths: PathConfig{
			DataFile:   getEnvOrDefault("DATA_FILE", "data/sample_dataset.csv"),
			OutDir:     getEnvOrDefault("OUT_DIR", "reports"),
			Thresholds: getEnvOrDefault("THRESHOLDS_FILE", ""),
		},
		LLM: LLMConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", ""),
			Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1500),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.0),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", ""),
		},
		Evaluator: DefaultEvaluatorConfig(),
	}

	if cfg.Paths.Thresholds != "" {
		if err := overlayThresholdsFile(cfg.Paths.Thresholds, &cfg.Evaluator); err != nil {
			return nil, errors.Wrap(err, "failed to load thresholds file")
		}
	}
	overlayThresholdsEnv(&cfg.Evaluator)

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// overlayThresholdsFile applies non-zero values from a YAML thresholds
// file on top of the defaults.
func overlayThresholdsFile(path string, ec *EvaluatorConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file struct {
		Thresholds EvaluatorConfig `yaml:"thresholds"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}
	t := file.Thresholds
	if t.PValueThreshold > 0 {
		ec.PValueThreshold = t.PValueThreshold
	}
	if t.CTRDropPctThreshold > 0 {
		ec.CTRDropPctThreshold = t.CTRDropPctThreshold
	}
	if t.MinSamplesForTTest > 0 {
		ec.MinSamplesForTTest = t.MinSamplesForTTest
	}
	if t.BootstrapIters > 0 {
		ec.BootstrapIters = t.BootstrapIters
	}
	if t.BootstrapSeed > 0 {
		ec.BootstrapSeed = t.BootstrapSeed
	}
	if t.RollingWindowDays > 0 {
		ec.RollingWindowDays = t.RollingWindowDays
	}
	if t.ChangePointRelativeThreshold > 0 {
		ec.ChangePointRelativeThreshold = t.ChangePointRelativeThreshold
	}
	return nil
}

func overlayThresholdsEnv(ec *EvaluatorConfig) {
	ec.PValueThreshold = getEnvFloatOrDefault("P_VALUE_THRESHOLD", ec.PValueThreshold)
	ec.CTRDropPctThreshold = getEnvFloatOrDefault("CTR_DROP_PCT_THRESHOLD", ec.CTRDropPctThreshold)
	ec.MinSamplesForTTest = getEnvIntOrDefault("MIN_SAMPLES_FOR_TTEST", ec.MinSamplesForTTest)
	ec.BootstrapIters = getEnvIntOrDefault("BOOTSTRAP_ITERS", ec.BootstrapIters)
	ec.BootstrapSeed = int64(getEnvIntOrDefault("BOOTSTRAP_SEED", int(ec.BootstrapSeed)))
	ec.RollingWindowDays = getEnvIntOrDefault("ROLLING_WINDOW_DAYS", ec.RollingWindowDays)
	ec.ChangePointRelativeThreshold = getEnvFloatOrDefault("CHANGE_POINT_RELATIVE_THRESHOLD", ec.ChangePointRelativeThreshold)
}

func validateConfig(cfg *Config) error {
	if cfg.Paths.DataFile == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	if cfg.Paths.OutDir == "" {
		return errors.ConfigInvalid("OUT_DIR is required")
	}
	ec := cfg.Evaluator
	if ec.PValueThreshold <= 0 || ec.PValueThreshold >= 1 {
		return errors.ConfigInvalid("p_value_threshold must be in (0,1)")
	}
	if ec.MinSamplesForTTest < 2 {
		return errors.ConfigInvalid("min_samples_for_ttest must be >= 2")
	}
	if ec.BootstrapIters < 1 {
		return errors.ConfigInvalid("bootstrap_iters must be >= 1")
	}
	if ec.RollingWindowDays < 1 {
		return errors.ConfigInvalid("rolling_window_days must be >= 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
