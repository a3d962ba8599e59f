package scalesim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/scalesim/internal/adapters/fs"
	"github.com/bft-labs/scalesim/internal/adapters/serial"
	"github.com/bft-labs/scalesim/internal/adapters/writer"
	"github.com/bft-labs/scalesim/internal/app"
	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/internal/ports"
	"github.com/bft-labs/scalesim/pkg/log"
	"github.com/bft-labs/scalesim/pkg/packet"
)

// Simulator replays recorded scale readings as Pacific scales frames.
// Use New() to create an instance, then Start() to begin playback.
type Simulator struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	player    *app.Player
	logger    ports.Logger
	plugins   []Plugin
	observers []FrameObserver

	// transMu serializes the lifecycle decisions of Start, Stop and the
	// playback goroutine. mu guards the fields below it.
	transMu sync.Mutex
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// New creates a new Simulator with the given configuration.
// The instance is created in StateStopped; call Start() to begin playback.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	s := &Simulator{
		config:  cfg,
		opts:    o,
		logger:  logger,
		plugins: o.plugins,
	}
	for _, p := range o.plugins {
		if obs, ok := p.(FrameObserver); ok {
			s.observers = append(s.observers, obs)
		}
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler, observers: s.observers}
	s.lifecycle = app.NewLifecycle(logger, emitter)

	source := o.source
	if source == nil {
		source = fs.NewCSVSource(cfg.InputFile, cfg.ChannelCount)
	}

	sink := o.sink
	if sink == nil {
		if cfg.DryRun {
			sink = writer.NewSink(o.output)
		} else {
			sink = serial.NewSink(cfg.Device, cfg.BaudRate, nil, log.WithComponent(logger, "serial"))
		}
	}

	s.player = app.NewPlayer(app.PlayerConfig{
		ChannelCount: cfg.ChannelCount,
		Period:       cfg.Periodicity,
		SendTimeout:  cfg.SendTimeout,
		Loop:         cfg.Loop(),
	}, source, sink, logger, emitter)

	return s, nil
}

// Start begins playback in the background and returns immediately.
// Returns ErrAlreadyRunning if playback is in progress, or the first plugin
// initialization error.
// The provided context bounds the whole session; canceling it stops playback
// just like Stop().
func (s *Simulator) Start(ctx context.Context) error {
	s.transMu.Lock()
	defer s.transMu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.err = nil
	s.mu.Unlock()

	pluginCfg := PluginConfig{
		InputFile:     s.config.InputFile,
		ChannelCount:  s.config.ChannelCount,
		Loop:          s.config.Loop(),
		Logger:        s.logger,
		RequestReload: s.player.RequestReload,
		Status:        s.Status,
		Stats:         s.Stats,
	}
	for i, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			s.shutdownPlugins(s.plugins[:i])
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			s.finish(done, err)
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	s.lifecycle.AddWorker()
	go s.run(runCtx, done)

	return nil
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer s.lifecycle.WorkerDone()

	if err := s.lifecycle.TransitionTo(app.StateRunning, "playback starting"); err != nil {
		// Stop() got in before playback began.
		s.logger.Debug("stopped before running", ports.Err(err))
		s.finish(done, nil)
		return
	}

	err := s.player.Run(ctx)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// The session context ending is a clean stop.
		err = nil
	}

	s.transMu.Lock()
	defer s.transMu.Unlock()

	// Once Stop() has moved us to Stopping it owns the final transition
	// and the plugin shutdown.
	if s.lifecycle.State() != app.StateRunning {
		s.finish(done, err)
		return
	}

	defer s.finish(done, err)
	s.shutdownPlugins(s.plugins)
	if err != nil {
		s.logger.Error("playback failed", ports.Err(err))
		_ = s.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return
	}
	_ = s.lifecycle.TransitionTo(app.StateStopping, "playback finished")
	_ = s.lifecycle.TransitionTo(app.StateStopped, "playback finished")
}

// finish records the session outcome and closes done.
func (s *Simulator) finish(done chan struct{}, err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(done)
}

// Stop cancels playback, waits up to 30 seconds for it to finish and shuts
// plugins down in reverse registration order.
// Returns ErrNotRunning if playback is not in progress, ErrShutdownTimeout if
// it did not finish in time.
func (s *Simulator) Stop() error {
	s.transMu.Lock()
	if !s.lifecycle.CanStop() {
		s.transMu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.transMu.Unlock()
		return err
	}
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.transMu.Unlock()

	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	s.transMu.Lock()
	defer s.transMu.Unlock()
	s.shutdownPlugins(s.plugins)

	switch runErr := s.Err(); {
	case err != nil:
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	case runErr != nil:
		_ = s.lifecycle.TransitionTo(app.StateCrashed, runErr.Error())
	default:
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

func (s *Simulator) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Simulator) Status() State {
	return State(s.lifecycle.State())
}

// Done returns a channel that is closed when playback ends, whether it
// finished, was stopped, or failed. When playback ends on its own the final
// state is already set by the time Done is closed. Returns nil before the
// first Start.
func (s *Simulator) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the fatal error that ended the last session, or nil if it
// completed or was stopped. Only meaningful after Done is closed.
func (s *Simulator) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stats returns the playback counters.
func (s *Simulator) Stats() Stats {
	return s.player.Stats().Snapshot()
}

// Wait blocks until playback ends or ctx is done, then returns Err().
func (s *Simulator) Wait(ctx context.Context) error {
	done := s.Done()
	if done == nil {
		return domain.ErrNotRunning
	}
	select {
	case <-done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// eventEmitterWrapper adapts EventHandler and FrameObservers to the internal
// emitter interfaces.
type eventEmitterWrapper struct {
	handler   EventHandler
	observers []FrameObserver
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: State(previous),
		Current:  State(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnFrame(r app.FrameResult) {
	event := FrameEvent{
		Pass:     r.Pass,
		Row:      r.Row,
		Line:     r.Line,
		Masses:   r.Masses,
		Total:    r.Total,
		Frame:    r.Frame,
		Duration: r.Duration,
	}
	if r.Err != nil {
		if e.handler != nil {
			e.handler.OnSendError(SendErrorEvent{FrameEvent: event, Error: r.Err})
		}
		return
	}
	if e.handler != nil {
		e.handler.OnFrameSent(event)
	}
	for _, o := range e.observers {
		o.ObserveFrame(event)
	}
}

func (e *eventEmitterWrapper) OnPassComplete(pass, frames, failures int) {
	if e.handler == nil {
		return
	}
	e.handler.OnPassComplete(PassCompleteEvent{Pass: pass, Frames: frames, Failures: failures})
}

// validateModuleVersions checks that all module versions are compatible.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"packet": {packet.Version, packet.MinCompatibleVersion},
		"log":    {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}

	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
