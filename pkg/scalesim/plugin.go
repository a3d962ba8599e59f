package scalesim

import "context"

// Plugin extends a Simulator. Plugins are initialized in registration order
// when the simulator starts and shut down in reverse order when it stops.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// FrameObserver is implemented by plugins that want every transmitted frame.
// ObserveFrame runs on the playback goroutine and must not block.
type FrameObserver interface {
	ObserveFrame(event FrameEvent)
}

// PluginConfig is handed to plugins at initialization.
type PluginConfig struct {
	InputFile    string
	ChannelCount int
	Loop         bool
	Logger       Logger

	// RequestReload makes the simulator re-read its input before the next pass.
	RequestReload func()

	// Status and Stats report live simulator state.
	Status func() State
	Stats  func() Stats
}
