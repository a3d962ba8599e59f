// Package writer provides a frame sink that writes to any io.Writer.
// The CLI uses it for --dry-run, sending frames to stdout.
package writer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/internal/ports"
)

// Sink implements ports.FrameSink on top of an io.Writer.
type Sink struct {
	mu   sync.Mutex
	w    io.Writer
	open bool
}

// NewSink creates a sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Open marks the sink ready. It fails when no writer was given.
func (s *Sink) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return fmt.Errorf("%w: no writer", domain.ErrTransportUnavailable)
	}
	s.open = true
	return nil
}

// Send writes frame in one call. The timeout is ignored; writers are
// expected not to block.
func (s *Sink) Send(ctx context.Context, frame []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return fmt.Errorf("%w: writer sink not open", domain.ErrTransportSend)
	}
	if _, err := s.w.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransportSend, err)
	}
	return nil
}

// Close marks the sink closed. The underlying writer is left open.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

var _ ports.FrameSink = (*Sink)(nil)
