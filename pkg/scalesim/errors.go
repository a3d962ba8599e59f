package scalesim

import "github.com/bft-labs/scalesim/internal/domain"

// Errors returned by the simulator. Use errors.Is to test for them.
var (
	ErrUnsupportedChannelCount = domain.ErrUnsupportedChannelCount
	ErrMalformedReading        = domain.ErrMalformedReading
	ErrNoReadings              = domain.ErrNoReadings
	ErrTransportUnavailable    = domain.ErrTransportUnavailable
	ErrTransportSend           = domain.ErrTransportSend
	ErrAlreadyRunning          = domain.ErrAlreadyRunning
	ErrNotRunning              = domain.ErrNotRunning
	ErrShutdownTimeout         = domain.ErrShutdownTimeout
	ErrInvalidConfig           = domain.ErrInvalidConfig
)
