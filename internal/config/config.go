// Package config holds the run configuration for media-compress and its
// loading from YAML files and .env.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Quality bounds accepted from the user. Per-file adjustment may go lower
// (see compress.MinQuality) but the configured base must be a valid JPEG quality.
const (
	MinBaseQuality = 1
	MaxBaseQuality = 100

	// DefaultQuality is the base JPEG quality when none is configured.
	DefaultQuality = 30
)

// Config is the immutable configuration of one compression run.
type Config struct {
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	Quality   int    `yaml:"quality"`
	Workers   int    `yaml:"threads"` // 0 = one per logical CPU
	Overwrite bool   `yaml:"overwrite"`

	MaxDepth   int    `yaml:"max_depth"` // 0 = unlimited
	ReportPath string `yaml:"report"`    // optional JSON run report (.json, .json.gz, .json.zst)
	Metrics    bool   `yaml:"metrics"`   // emit a metrics line at the end of the run
	LogLevel   string `yaml:"log_level"`
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() Config {
	return Config{
		Quality:  DefaultQuality,
		LogLevel: "info",
	}
}

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateQuality checks that q is a usable base JPEG quality.
func ValidateQuality(q int) error {
	if q < MinBaseQuality || q > MaxBaseQuality {
		return &ValidationError{
			Field:   "quality",
			Message: fmt.Sprintf("%d is outside %d-%d", q, MinBaseQuality, MaxBaseQuality),
		}
	}
	return nil
}

// Validate checks the configuration and returns the first problem found.
// Values are never clamped here.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return &ValidationError{Field: "input", Message: "path is required"}
	}
	if strings.TrimSpace(c.Output) == "" {
		return &ValidationError{Field: "output", Message: "path is required"}
	}
	if err := ValidateQuality(c.Quality); err != nil {
		return err
	}
	if c.Workers < 0 {
		return &ValidationError{Field: "threads", Message: fmt.Sprintf("%d must not be negative", c.Workers)}
	}
	if c.MaxDepth < 0 {
		return &ValidationError{Field: "max_depth", Message: fmt.Sprintf("%d must not be negative", c.MaxDepth)}
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	return nil
}

// LoadFile reads a YAML config file on top of DefaultConfig.
// Keys missing from the file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file in the working directory when present.
// Variables already set in the environment take precedence.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}
