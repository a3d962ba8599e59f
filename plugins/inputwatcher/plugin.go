// Package inputwatcher reloads the simulator's input file when it changes.
// In loop mode the new readings take effect at the next pass boundary; a file
// that no longer parses is logged and the previous readings keep playing.
package inputwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/scalesim/pkg/log"
	"github.com/bft-labs/scalesim/pkg/scalesim"
)

// Plugin watches the input CSV and asks the simulator to reload it.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration

	path     string
	reload   func()
	logger   scalesim.Logger
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the input watcher plugin.
type Config struct {
	// DebounceDelay collapses the burst of events an editor or copy produces
	// into one reload.
	// Default: 200 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 200 * time.Millisecond}
}

// New creates a new input watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 200 * time.Millisecond
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "inputwatcher"
}

// Initialize starts watching the input file's directory. Watching is skipped
// for single-pass sessions, which never reload.
func (p *Plugin) Initialize(ctx context.Context, cfg scalesim.PluginConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	logger = log.WithComponent(logger, p.Name())

	if cfg.InputFile == "" || cfg.RequestReload == nil {
		logger.Warn("input watcher disabled: no input file")
		return nil
	}
	if !cfg.Loop {
		logger.Info("input watcher idle: single-pass session")
		return nil
	}

	path, err := filepath.Abs(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("inputwatcher: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inputwatcher: create watcher: %w", err)
	}
	// Watch the directory: editors replace files by rename, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("inputwatcher: watch %s: %w", filepath.Dir(path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.path = path
	p.reload = cfg.RequestReload
	p.logger = logger
	p.watcher = watcher
	p.cancel = cancel
	p.mu.Unlock()

	logger.Info("watching input file", log.String("path", path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	return p.watcher.Close()
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.logger.Info("input changed, reload requested", log.String("path", p.path))
		p.reload()
	})
}
