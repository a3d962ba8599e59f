package scalesim

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/pkg/packet"
)

// ModeLoop selects continuous replay. Any other mode plays the input once.
const ModeLoop = "loop"

// Defaults applied by SetDefaults.
const (
	DefaultBaudRate    = 9600
	DefaultSendTimeout = time.Second
)

// Config holds the configuration for one playback session.
type Config struct {
	// Device is the serial line frames are written to (e.g. /dev/ttyUSB0).
	Device string

	// BaudRate is the serial line speed.
	BaudRate int

	// Mode is "loop" for continuous replay; anything else plays once.
	Mode string

	// Periodicity is the delay after each frame.
	Periodicity time.Duration

	// ChannelCount is 4 or 6.
	ChannelCount int

	// InputFile is the CSV file of recorded readings (header row first).
	InputFile string

	// SendTimeout bounds each frame write.
	SendTimeout time.Duration

	// DryRun writes frames to the configured output instead of the serial line.
	DryRun bool
}

// SetDefaults fills zero-valued fields that have a sensible default.
func (c *Config) SetDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
}

// Loop reports whether the session replays the input indefinitely.
// Quotes around the mode value are ignored.
func (c Config) Loop() bool {
	return strings.Trim(c.Mode, `'"`) == ModeLoop
}

// Validate checks the configuration. A bad channel count is reported as
// ErrUnsupportedChannelCount, everything else as ErrInvalidConfig.
func (c Config) Validate() error {
	if !packet.Supported(c.ChannelCount) {
		return fmt.Errorf("%w: %d (want 4 or 6)", domain.ErrUnsupportedChannelCount, c.ChannelCount)
	}
	if c.InputFile == "" {
		return fmt.Errorf("%w: input file is required", domain.ErrInvalidConfig)
	}
	if !c.DryRun && c.Device == "" {
		return fmt.Errorf("%w: serial device is required", domain.ErrInvalidConfig)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: invalid baud rate %d", domain.ErrInvalidConfig, c.BaudRate)
	}
	if c.Periodicity < 0 {
		return fmt.Errorf("%w: periodicity must not be negative", domain.ErrInvalidConfig)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("%w: send timeout must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
