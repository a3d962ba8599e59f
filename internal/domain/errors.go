package domain

import (
	"errors"

	"github.com/bft-labs/scalesim/pkg/packet"
)

// Domain errors represent error conditions in the scalesim domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrUnsupportedChannelCount is returned for a channel count other than 4 or 6.
	// It is fatal and reported before any frame is built.
	ErrUnsupportedChannelCount = packet.ErrUnsupportedChannelCount

	// ErrMalformedReading is returned when an input row has the wrong number of
	// fields or a field that is not an integer. It aborts the session.
	ErrMalformedReading = errors.New("malformed reading")

	// ErrNoReadings is returned when the input holds a header but no data rows.
	ErrNoReadings = errors.New("no readings in input")

	// ErrTransportUnavailable is returned when the frame sink cannot be opened.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrTransportSend is returned by a sink when a single frame could not be sent.
	// The player reports it and moves on to the next reading.
	ErrTransportSend = errors.New("transport send failed")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("scalesim: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("scalesim: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("scalesim: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("scalesim: invalid configuration")
)
