package config

import (
	"fmt"
	"os"

	"gold-cycles/src/helpers"
	"gold-cycles/src/models"
	"gold-cycles/src/utils"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills unset analysis and data settings with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Analysis.VolatilityWindow == 0 {
		c.Analysis.VolatilityWindow = utils.DefaultVolatilityWindow
	}
	if c.Analysis.LowPercentile == 0 && c.Analysis.HighPercentile == 0 {
		c.Analysis.LowPercentile = utils.DefaultLowPercentile
		c.Analysis.HighPercentile = utils.DefaultHighPercentile
	}
	if c.Analysis.PatternLength == 0 {
		c.Analysis.PatternLength = utils.DefaultPatternLength
	}
	if c.Analysis.PatternTopN == 0 {
		c.Analysis.PatternTopN = utils.DefaultPatternTopN
	}
	if len(c.Data.Timeframes) == 0 {
		c.Data.Timeframes = append(c.Data.Timeframes, utils.DefaultTimeframes...)
	}
	if c.Data.CalendarMIC == "" {
		c.Data.CalendarMIC = utils.DefaultCalendarMIC
	}
	if c.Storage.SourceType == "" {
		c.Storage.SourceType = "csv"
	}
}

// -----------------------------------------------------------------------------

// Validate performs configuration validation. All rejections here are
// ConfigurationError: they must fail before any computation starts.
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return helpers.NewConfigurationError("application name cannot be empty")
	}
	if c.Host == "" {
		return helpers.NewConfigurationError("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return helpers.NewConfigurationError("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate analysis parameters
	if c.Analysis.VolatilityWindow <= 0 {
		return helpers.NewConfigurationError("volatility window must be positive, got %d", c.Analysis.VolatilityWindow)
	}
	if c.Analysis.LowPercentile < 0 || c.Analysis.LowPercentile > 1 {
		return helpers.NewConfigurationError("low percentile %.2f outside [0,1]", c.Analysis.LowPercentile)
	}
	if c.Analysis.HighPercentile < 0 || c.Analysis.HighPercentile > 1 {
		return helpers.NewConfigurationError("high percentile %.2f outside [0,1]", c.Analysis.HighPercentile)
	}
	if c.Analysis.LowPercentile >= c.Analysis.HighPercentile {
		return helpers.NewConfigurationError("low percentile %.2f must be below high percentile %.2f",
			c.Analysis.LowPercentile, c.Analysis.HighPercentile)
	}
	if c.Analysis.PatternLength < 2 {
		return helpers.NewConfigurationError("pattern length must be at least 2, got %d", c.Analysis.PatternLength)
	}
	if c.Analysis.PatternTopN <= 0 {
		return helpers.NewConfigurationError("pattern top N must be positive, got %d", c.Analysis.PatternTopN)
	}

	// Validate Storage configuration
	switch c.Storage.SourceType {
	case "csv":
		if c.Storage.DataDir == "" {
			return helpers.NewConfigurationError("data directory cannot be empty for csv source")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return helpers.NewConfigurationError("database path cannot be empty for sqlite source")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return helpers.NewConfigurationError("connection string cannot be empty for postgres source")
		}
	default:
		return helpers.NewConfigurationError("unknown source type '%s'", c.Storage.SourceType)
	}

	// Validate timeframes
	for i, tf := range c.Data.Timeframes {
		if tf == "" {
			return helpers.NewConfigurationError("timeframe %d cannot be empty", i)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
