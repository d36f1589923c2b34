// Package config loads runtime settings from defaults, an optional YAML
// file and command line overrides, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	yaml "go.yaml.in/yaml/v3"

	"github.com/warpdl/knot/pkg/logger"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "knot.yaml"

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// LogLevel is one of debug, info, warning, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is text (prefixed lines) or json (zerolog).
	LogFormat string `yaml:"log_format"`
	// MinInterval is the floor for setInterval periods.
	MinInterval Duration `yaml:"min_interval"`
	// Strict compiles every script in strict mode.
	Strict bool `yaml:"strict"`
	// TraceFile, when set, receives every log line at debug level as JSON
	// in addition to the console output.
	TraceFile string `yaml:"trace_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:    "warning",
		LogFormat:   FormatText,
		MinInterval: Duration(time.Millisecond),
	}
}

// Load reads path from fs on top of Default. A missing file is only an
// error when required is set.
func Load(fs afero.Fs, path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks every field and normalizes the enum-like ones.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "":
		c.LogFormat = FormatText
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: log_format: unknown format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.MinInterval < 0 {
		return fmt.Errorf("%w: min_interval: duration must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c Config) Level() logger.Level {
	l, _ := logger.ParseLevel(c.LogLevel)
	return l
}
