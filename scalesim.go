// Package scalesim replays recorded vehicle scale readings as the serial
// output of a Pacific multi-channel scale indicator.
//
// Example usage:
//
//	cfg := scalesim.Config{
//	    Device:       "/dev/ttyUSB0",
//	    BaudRate:     9600,
//	    ChannelCount: 4,
//	    InputFile:    "scales_input.csv",
//	    Periodicity:  time.Second,
//	}
//	if err := scalesim.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For control over the lifecycle, plugins or event callbacks use
// github.com/bft-labs/scalesim/pkg/scalesim directly.
package scalesim

import (
	"context"
	"errors"

	"github.com/bft-labs/scalesim/pkg/scalesim"
)

// Config holds the configuration for a playback session.
type Config = scalesim.Config

// Option configures optional behavior of the simulator.
type Option = scalesim.Option

// Run plays the configured input and blocks until playback completes, the
// context is canceled, or an unrecoverable error occurs. A canceled context
// is a clean stop and returns nil.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	sim, err := scalesim.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := sim.Start(ctx); err != nil {
		return err
	}

	select {
	case <-sim.Done():
		return sim.Err()
	case <-ctx.Done():
		if err := sim.Stop(); err != nil && !errors.Is(err, scalesim.ErrNotRunning) {
			return err
		}
		return sim.Err()
	}
}
