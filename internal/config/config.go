// =============================================================================
// sheet2jpk - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are resolved in
// this order, later sources winning:
//
//   1. Built-in defaults
//   2. The YAML file (sheet2jpk.yaml, or the file given with --config)
//   3. Environment variables (a .env file is loaded by the CLI first)
//   4. Command-line flags (applied by the cmd package)
//
// ENVIRONMENT VARIABLES:
//   JPK_NIP, JPK_NAME, JPK_EMAIL      filing company
//   JPK_SOURCE_DIR, JPK_OUTPUT_DIR    directories
//   LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT logging
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sheet2jpk/internal/logger"
	"github.com/ginjaninja78/sheet2jpk/internal/sheet"
	"github.com/ginjaninja78/sheet2jpk/internal/types"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "sheet2jpk.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// Company identifies the filing company. The NIP and name are required
	// by the convert command, from here or from flags.
	Company Company `yaml:"company"`

	// SourceDir is the directory scanned for workbooks.
	// Default: the working directory
	SourceDir string `yaml:"source_dir"`

	// OutputDir is where documents are written. Empty writes each document
	// next to its source workbook.
	OutputDir string `yaml:"output_dir"`

	// SystemName is written into the document header.
	// Default: "sheet2jpk"
	SystemName string `yaml:"system_name"`

	// Columns maps invoice attributes to sheet header captions.
	//
	// CUSTOMIZATION: Override single captions; the rest keep their defaults.
	Columns types.Columns `yaml:"columns"`

	// Layout names the kind and period columns and the header row.
	Layout sheet.Layout `yaml:"layout"`

	// Log configures logging.
	Log LogSettings `yaml:"log"`
}

// Company holds the filing company's identity.
type Company struct {
	NIP   string `yaml:"nip"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// LogSettings holds the logging section.
type LogSettings struct {
	// Level: trace, debug, info, warn, error. Default: "warn"
	Level string `yaml:"level"`

	// Format: console or json. Default: "console"
	Format string `yaml:"format"`

	// TimeFormat is a Go time layout. Default: RFC 3339
	TimeFormat string `yaml:"time_format"`

	// Output: stderr, stdout, or a file path. Default: "stderr"
	Output string `yaml:"output"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// Load loads the configuration.
//
// PARAMETERS:
//   - configPath: The YAML file to read. Empty skips the file and starts
//     from the defaults.
//
// RETURNS:
//   - The configuration with defaults and environment overrides applied.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&config)
	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnv overrides file values with set environment variables.
func applyEnv(config *Config) {
	config.Company.NIP = getEnv("JPK_NIP", config.Company.NIP)
	config.Company.Name = getEnv("JPK_NAME", config.Company.Name)
	config.Company.Email = getEnv("JPK_EMAIL", config.Company.Email)
	config.SourceDir = getEnv("JPK_SOURCE_DIR", config.SourceDir)
	config.OutputDir = getEnv("JPK_OUTPUT_DIR", config.OutputDir)
	config.Log.Level = getEnv("LOG_LEVEL", config.Log.Level)
	config.Log.Format = getEnv("LOG_FORMAT", config.Log.Format)
	config.Log.Output = getEnv("LOG_OUTPUT", config.Log.Output)
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.SourceDir == "" {
		config.SourceDir = "."
	}
	if config.SystemName == "" {
		config.SystemName = "sheet2jpk"
	}
	config.Columns = config.Columns.WithDefaults()
	config.Layout = config.Layout.WithDefaults()

	d := logger.DefaultConfig()
	if config.Log.Level == "" {
		config.Log.Level = d.Level
	}
	if config.Log.Format == "" {
		config.Log.Format = d.Format
	}
	if config.Log.TimeFormat == "" {
		config.Log.TimeFormat = d.TimeFormat
	}
	if config.Log.Output == "" {
		config.Log.Output = d.Output
	}
}

// validate checks values that defaults cannot repair.
func validate(config *Config) error {
	switch strings.ToLower(config.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log format %q: expected console or json", config.Log.Format)
	}

	switch strings.ToLower(config.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("log level %q is not supported", config.Log.Level)
	}

	if len(config.Layout.SalesMarkers) == 0 || len(config.Layout.PurchaseMarkers) == 0 {
		return fmt.Errorf("layout needs sales and purchase markers")
	}

	return nil
}

// LoggerConfig returns the logger configuration from the log section.
func (c *Config) LoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		TimeFormat: c.Log.TimeFormat,
		Output:     c.Log.Output,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
