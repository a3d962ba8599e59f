// Package log provides a logging abstraction for scalesim components.
//
// Library code logs through the [Logger] interface with structured [Field]s.
// A zerolog adapter is provided for the CLI and a no-op logger for tests and
// embedders that do not care about output.
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	logger = log.WithComponent(logger, "player")
//	logger.Info("pass complete", log.Int("pass", 1), log.Int("frames", 3))
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
