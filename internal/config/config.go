// Package config loads linecsv CLI settings from the environment. Values may
// also come from a .env file in the working directory; variables already set
// in the process environment take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all CLI configuration.
type Config struct {
	Logging LoggingConfig
	Codec   CodecConfig
	Metrics MetricsConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LINECSV_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LINECSV_LOG_FORMAT" default:"text"`
}

// CodecConfig holds reading and writing settings.
type CodecConfig struct {
	// LineEnding terminates written records: lf or crlf (default: lf)
	LineEnding string `env:"LINECSV_LINE_ENDING" default:"lf"`

	// KeepEmptyLines keeps blank lines as single empty-field records (default: false)
	KeepEmptyLines bool `env:"LINECSV_KEEP_EMPTY_LINES" default:"false"`

	// FieldsPerRecord reports records of a different width when positive (default: 0)
	FieldsPerRecord int `env:"LINECSV_FIELDS_PER_RECORD" default:"0"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// File receives Prometheus text-format metrics after each run; empty disables it
	File string `env:"LINECSV_METRICS_FILE"`
}

// UseCRLF reports whether records should end with \r\n.
func (c *CodecConfig) UseCRLF() bool {
	return strings.EqualFold(c.LineEnding, "crlf")
}

// LoadEnvFiles loads the given .env files (".env" when none are given) into
// the process environment without overriding existing variables. Missing
// files are ignored.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LINECSV_LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LINECSV_LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	validEndings := map[string]bool{"lf": true, "crlf": true}
	if !validEndings[strings.ToLower(c.Codec.LineEnding)] {
		errs = append(errs, fmt.Sprintf("LINECSV_LINE_ENDING (%q) must be one of: lf, crlf", c.Codec.LineEnding))
	}

	if c.Codec.FieldsPerRecord < 0 {
		errs = append(errs, "LINECSV_FIELDS_PER_RECORD must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ", c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("Codec: {LineEnding: %q, KeepEmptyLines: %v, FieldsPerRecord: %d}, ",
		c.Codec.LineEnding, c.Codec.KeepEmptyLines, c.Codec.FieldsPerRecord))
	b.WriteString(fmt.Sprintf("Metrics: {File: %q}", c.Metrics.File))
	b.WriteString("}")
	return b.String()
}
