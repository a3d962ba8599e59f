// Package scalesim provides an embeddable simulator for Pacific multi-channel
// vehicle scales.
//
// The simulator replays readings recorded in a CSV file (header row first,
// one column per channel) and writes each one to a serial line as the frame a
// real scale indicator would emit. It can be used through the scalesim CLI or
// embedded in test harnesses for software that consumes scale output.
//
// # Basic Usage
//
//	cfg := scalesim.Config{
//	    Device:       "/dev/ttyUSB0",
//	    BaudRate:     9600,
//	    ChannelCount: 4,
//	    InputFile:    "scales_input.csv",
//	    Periodicity:  time.Second,
//	    Mode:         scalesim.ModeLoop,
//	}
//
//	sim, err := scalesim.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := sim.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	<-sim.Done()
//	if err := sim.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Playback
//
// Each reading is summed into a total, encoded with the packet package and
// sent with Config.SendTimeout as the write bound. The simulator then waits
// Config.Periodicity before the next reading, including after the last one.
// A failed send is reported through [EventHandler.OnSendError] and playback
// moves on; the frame is never retried. Input and transport errors that make
// playback impossible end the session and are returned by [Simulator.Err].
//
// In dry-run mode frames are written to the writer set with [WithOutput]
// instead of a serial port.
//
// # Plugins
//
// Plugins receive a [PluginConfig] on start. Plugins that also implement
// [FrameObserver] see every frame that was sent successfully:
//
//	sim, err := scalesim.New(cfg,
//	    inputwatcher.WithInputWatcher(inputwatcher.DefaultConfig()),
//	    wsmonitor.WithMonitor(wsmonitor.Config{Addr: ":8080"}),
//	)
//
// # Lifecycle States
//
// A Simulator is in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. A single-pass session
// returns to [StateStopped] on its own once the last frame has been sent.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package scalesim
