package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/internal/ports"
)

// Port is the subset of serial.Port the sink needs.
type Port interface {
	io.Writer
	io.Closer
	Drain() error
	ResetOutputBuffer() error
}

// Opener opens a serial port; tests replace it with a fake.
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenPort opens a real serial port with go.bug.st/serial.
func OpenPort(name string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Mode returns the line settings of the scale: 8 data bits, no parity,
// one stop bit. go.bug.st/serial never enables XON/XOFF.
func Mode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Sink implements ports.FrameSink over a serial line.
type Sink struct {
	device string
	mode   *serial.Mode
	open   Opener
	logger ports.Logger

	// writeMu is held while a write is in flight, including one that timed out.
	writeMu sync.Mutex

	mu   sync.Mutex
	port Port
}

// NewSink creates a sink for device at the given baud rate.
// A nil opener means OpenPort.
func NewSink(device string, baud int, opener Opener, logger ports.Logger) *Sink {
	if opener == nil {
		opener = OpenPort
	}
	return &Sink{
		device: device,
		mode:   Mode(baud),
		open:   opener,
		logger: logger,
	}
}

// Open acquires the serial port and discards anything left in its output buffer.
func (s *Sink) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return nil
	}
	port, err := s.open(s.device, s.mode)
	if err != nil {
		return fmt.Errorf("%w: open %s: %s", domain.ErrTransportUnavailable, s.device, describe(err))
	}
	if err := port.ResetOutputBuffer(); err != nil {
		s.logger.Warn("reset output buffer failed", ports.String("dev", s.device), ports.Err(err))
	}
	s.port = port
	s.logger.Info("serial port open",
		ports.String("dev", s.device),
		ports.Int("baud", s.mode.BaudRate),
	)
	return nil
}

// Send writes frame and waits for it to drain, up to timeout.
func (s *Sink) Send(ctx context.Context, frame []byte, timeout time.Duration) error {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return fmt.Errorf("%w: %s is not open", domain.ErrTransportSend, s.device)
	}

	// A write that outlived its timeout still holds writeMu. The frame is
	// dropped instead of queued behind it.
	if !s.writeMu.TryLock() {
		return fmt.Errorf("%w: write %s: previous write still pending", domain.ErrTransportSend, s.device)
	}

	done := make(chan error, 1)
	go func() {
		defer s.writeMu.Unlock()
		n, err := port.Write(frame)
		if err == nil && n < len(frame) {
			err = io.ErrShortWrite
		}
		if err == nil {
			err = port.Drain()
		}
		done <- err
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: write %s: %s", domain.ErrTransportSend, s.device, describe(err))
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: write %s: timed out after %s", domain.ErrTransportSend, s.device, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the port. Closing an unopened sink is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()

	if port == nil {
		return nil
	}
	if err := port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.device, err)
	}
	s.logger.Info("serial port closed", ports.String("dev", s.device))
	return nil
}

// describe adds the go.bug.st/serial error code name when there is one.
func describe(err error) string {
	var perr *serial.PortError
	if errors.As(err, &perr) {
		switch perr.Code() {
		case serial.PortBusy:
			return "port busy: " + perr.Error()
		case serial.PortNotFound:
			return "port not found: " + perr.Error()
		case serial.PermissionDenied:
			return "permission denied: " + perr.Error()
		case serial.InvalidSpeed:
			return "unsupported baud rate: " + perr.Error()
		}
	}
	return err.Error()
}

var _ ports.FrameSink = (*Sink)(nil)
