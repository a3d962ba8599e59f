package domain

import (
	"fmt"
	"time"

	"github.com/bft-labs/scalesim/pkg/packet"
)

// Reading is one row of recorded channel masses, in channel order.
type Reading struct {
	// Line is the 1-based line of the row in its input source (0 if unknown).
	Line int

	// Masses holds one signed mass per channel.
	Masses []int
}

// Total returns the arithmetic sum of the channel masses.
// No clamping is applied; a total may be negative.
func (r Reading) Total() int {
	total := 0
	for _, m := range r.Masses {
		total += m
	}
	return total
}

// Session is everything one playback invocation needs besides its transport.
type Session struct {
	Readings     []Reading
	ChannelCount int
	Period       time.Duration
	Loop         bool
}

// Validate checks the channel count and the arity of every reading.
func (s Session) Validate() error {
	if !packet.Supported(s.ChannelCount) {
		return fmt.Errorf("%w: %d (want 4 or 6)", ErrUnsupportedChannelCount, s.ChannelCount)
	}
	if len(s.Readings) == 0 {
		return ErrNoReadings
	}
	for i, r := range s.Readings {
		if err := r.CheckArity(s.ChannelCount); err != nil {
			return fmt.Errorf("reading %d: %w", i, err)
		}
	}
	if s.Period < 0 {
		return fmt.Errorf("%w: negative period %s", ErrInvalidConfig, s.Period)
	}
	return nil
}

// CheckArity reports ErrMalformedReading unless the reading has exactly n masses.
func (r Reading) CheckArity(n int) error {
	if len(r.Masses) != n {
		return fmt.Errorf("%w: line %d has %d fields, want %d", ErrMalformedReading, r.Line, len(r.Masses), n)
	}
	return nil
}
