// Package config loads settings shared by the altrace CLI front-ends,
// the way cwdecoder's internal/config loads its settings: viper
// defaults plus an optional config file, unmarshaled into a validated
// struct.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings holds the CLI-facing configuration for altrace-dump and
// altrace-stat.
type Settings struct {
	// TraceFile is the path to the .altrace file to read.
	TraceFile string `mapstructure:"trace_file"`

	// Verbose enables per-event diagnostic logging in addition to the
	// front-end's normal output.
	Verbose bool `mapstructure:"verbose"`

	// MaxEvents stops replay after this many events; zero means
	// unbounded. Mainly useful for sampling very large traces.
	MaxEvents int `mapstructure:"max_events"`
}

// Init wires viper's defaults and config-file search path. It mirrors
// cwdecoder's layering: current directory first, then the user's XDG
// config directory, then built-in defaults.
func Init() error {
	viper.SetDefault("trace_file", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("max_events", 0)

	viper.SetConfigName("altrace")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "altrace"))
	}

	viper.SetEnvPrefix("ALTRACE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Get unmarshals and validates the current settings.
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate aggregates every field-level problem into a single error.
func (s *Settings) Validate() error {
	var errs []error
	if s.MaxEvents < 0 {
		errs = append(errs, fmt.Errorf("max_events must be >= 0, got %d", s.MaxEvents))
	}
	return errors.Join(errs...)
}
