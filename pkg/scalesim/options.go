package scalesim

import (
	"io"
	"os"

	"github.com/bft-labs/scalesim/internal/app"
	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/internal/ports"
	"github.com/bft-labs/scalesim/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Re-exported so embedders can supply their own transport or input.
type (
	// FrameSink delivers encoded frames.
	FrameSink = ports.FrameSink

	// ReadingSource supplies the recorded readings.
	ReadingSource = ports.ReadingSource

	// Reading is one recorded row of per-channel masses.
	Reading = domain.Reading

	// Stats is a snapshot of playback counters.
	Stats = app.StatsSnapshot
)

// Option configures optional behavior of a Simulator.
type Option func(*options)

type options struct {
	logger       Logger
	eventHandler EventHandler
	plugins      []Plugin
	sink         FrameSink
	source       ReadingSource
	output       io.Writer
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		output: os.Stdout,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for simulator events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the simulator starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithSink replaces the serial transport. Config.Device and Config.BaudRate
// are then ignored.
func WithSink(sink FrameSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithReadingSource replaces the CSV input. Config.InputFile is still
// reported to plugins.
func WithReadingSource(source ReadingSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithOutput sets where frames are written in dry-run mode. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}
