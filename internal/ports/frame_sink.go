package ports

import (
	"context"
	"time"
)

// FrameSink transmits scale frames to the system under test.
// A sink is owned by one player for the whole session: opened once before
// the first frame, reused across loop passes, closed when playback ends.
type FrameSink interface {
	// Open acquires the transport.
	// Errors wrap domain.ErrTransportUnavailable.
	Open(ctx context.Context) error

	// Send writes one frame, giving up after timeout.
	// Errors wrap domain.ErrTransportSend; the caller does not retry.
	Send(ctx context.Context, frame []byte, timeout time.Duration) error

	// Close releases the transport.
	Close() error
}
