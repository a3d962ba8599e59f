package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Periodicity may also be a bare number of seconds. Pointer fields are nil
// when the key is absent.
type FileConfig struct {
	Device      string `toml:"dev"`
	Baud        *int   `toml:"baud"`
	Mode        string `toml:"mode"`
	Periodicity any    `toml:"periodicity"`
	NumChannels *int   `toml:"num_channels"`
	MassFile    string `toml:"mass_file"`
	SendTimeout string `toml:"send_timeout"`
	DryRun      *bool  `toml:"dry_run"`
	WatchInput  *bool  `toml:"watch_input"`
	MonitorAddr string `toml:"monitor_addr"`
	LogFile     string `toml:"log_file"`
	LogLevel    string `toml:"log_level"`
}

// LoadFileConfig reads a config file from the given path. Files ending in
// .cfg or .ini are read in the legacy simulator format, anything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cfg", ".ini":
		return parseLegacyConfig(b)
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.scalesim/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".scalesim", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("dev", fc.Device, &cfg.Device)
	s.setString("mode", fc.Mode, &cfg.Mode)
	s.setString("mass-file", fc.MassFile, &cfg.MassFile)
	s.setString("monitor-addr", fc.MonitorAddr, &cfg.MonitorAddr)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("baud", fc.Baud, &cfg.Baud)
	s.setInt("num-channels", fc.NumChannels, &cfg.NumChannels)

	period, err := periodString(fc.Periodicity)
	if err != nil {
		return err
	}
	if err := s.setPeriod("periodicity", period, &cfg.Periodicity); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.SendTimeout, &cfg.SendTimeout); err != nil {
		return err
	}

	s.setBool("dry-run", fc.DryRun, &cfg.DryRun)
	s.setBool("watch-input", fc.WatchInput, &cfg.WatchInput)

	return nil
}

// periodString normalizes the TOML periodicity value, which may be a number
// of seconds or a duration string.
func periodString(v any) (string, error) {
	switch p := v.(type) {
	case nil:
		return "", nil
	case string:
		return p, nil
	case int64:
		return strconv.FormatInt(p, 10), nil
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("parse periodicity: unsupported value %v", v)
	}
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
