package cliconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/pkg/packet"
)

// Defaults used when neither the config file, the environment nor a flag
// sets a value.
const (
	DefaultDevice      = "/dev/ttyUSB0"
	DefaultBaud        = 9600
	DefaultMode        = "single"
	DefaultPeriodicity = time.Second
	DefaultNumChannels = 4
	DefaultMassFile    = "scales_input.csv"
	DefaultSendTimeout = time.Second
	DefaultLogLevel    = "info"
)

// standardBauds are the line speeds a UNIX serial driver accepts.
var standardBauds = map[int]bool{
	50: true, 75: true, 110: true, 134: true, 150: true, 200: true,
	300: true, 600: true, 1200: true, 1800: true, 2400: true, 4800: true,
	9600: true, 19200: true, 38400: true, 57600: true, 115200: true,
	230400: true, 460800: true,
}

// Config holds CLI configuration for scalesim.
type Config struct {
	Device      string
	Baud        int
	Mode        string
	Periodicity time.Duration
	NumChannels int
	MassFile    string
	SendTimeout time.Duration

	DryRun      bool
	WatchInput  bool
	MonitorAddr string

	LogFile  string
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Device:      DefaultDevice,
		Baud:        DefaultBaud,
		Mode:        DefaultMode,
		Periodicity: DefaultPeriodicity,
		NumChannels: DefaultNumChannels,
		MassFile:    DefaultMassFile,
		SendTimeout: DefaultSendTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// Validate checks the configuration for errors and normalizes the mode.
func (c *Config) Validate() error {
	c.Mode = strings.Trim(strings.TrimSpace(c.Mode), `'"`)

	if !packet.Supported(c.NumChannels) {
		return fmt.Errorf("%w: %d (want 4 or 6)", domain.ErrUnsupportedChannelCount, c.NumChannels)
	}
	if c.MassFile == "" {
		return fmt.Errorf("%w: mass-file is required", domain.ErrInvalidConfig)
	}
	if !c.DryRun {
		if c.Device == "" {
			return fmt.Errorf("%w: dev is required", domain.ErrInvalidConfig)
		}
		if !standardBauds[c.Baud] {
			return fmt.Errorf("%w: baud %d is not a standard rate", domain.ErrInvalidConfig, c.Baud)
		}
	}
	if c.Periodicity < 0 {
		return fmt.Errorf("%w: periodicity must not be negative", domain.ErrInvalidConfig)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", domain.ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log-level: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// Loop reports whether the configured mode replays the input indefinitely.
func (c Config) Loop() bool {
	return c.Mode == "loop"
}

// maxPeriodSeconds is the largest number of seconds a time.Duration holds.
const maxPeriodSeconds = float64(math.MaxInt64 / int64(time.Second))

// ParsePeriodicity accepts a bare number of seconds ("2", "0.5") or a Go
// duration ("250ms").
func ParsePeriodicity(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > maxPeriodSeconds {
			return 0, fmt.Errorf("periodicity %q out of range", value)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(value)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if present and flag not changed. Out-of-range
// values are left for Validate to reject.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setPeriod is setDuration that also takes a bare number of seconds.
func (s *configSetter) setPeriod(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := ParsePeriodicity(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables and legacy config values that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
