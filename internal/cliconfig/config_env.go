package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (SCALESIM_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("dev", os.Getenv("SCALESIM_DEV"), &cfg.Device)
	s.setString("mode", os.Getenv("SCALESIM_MODE"), &cfg.Mode)
	s.setString("mass-file", os.Getenv("SCALESIM_MASS_FILE"), &cfg.MassFile)
	s.setString("monitor-addr", os.Getenv("SCALESIM_MONITOR_ADDR"), &cfg.MonitorAddr)
	s.setString("log-file", os.Getenv("SCALESIM_LOG_FILE"), &cfg.LogFile)
	s.setString("log-level", os.Getenv("SCALESIM_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("baud", os.Getenv("SCALESIM_BAUD"), &cfg.Baud); err != nil {
		return err
	}
	if err := s.setIntFromString("num-channels", os.Getenv("SCALESIM_NUM_CHANNELS"), &cfg.NumChannels); err != nil {
		return err
	}

	if err := s.setPeriod("periodicity", os.Getenv("SCALESIM_PERIODICITY"), &cfg.Periodicity); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("SCALESIM_SEND_TIMEOUT"), &cfg.SendTimeout); err != nil {
		return err
	}

	s.setBoolFromString("dry-run", os.Getenv("SCALESIM_DRY_RUN"), &cfg.DryRun)
	s.setBoolFromString("watch-input", os.Getenv("SCALESIM_WATCH_INPUT"), &cfg.WatchInput)

	return nil
}
