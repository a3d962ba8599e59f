// Package wsmonitor serves a live view of the simulator over HTTP.
//
// GET /ws streams every transmitted frame to WebSocket clients as JSON.
// GET /status returns the lifecycle state and playback counters.
package wsmonitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/bft-labs/scalesim/pkg/log"
	"github.com/bft-labs/scalesim/pkg/scalesim"
)

// Config holds configuration options for the monitor plugin.
type Config struct {
	// Addr is the listen address, e.g. ":8080". Use "127.0.0.1:0" for an
	// ephemeral port and read it back with Plugin.Addr.
	Addr string

	// ClientBuffer is the number of frames queued per client before the
	// client is dropped.
	// Default: 16
	ClientBuffer int

	// ShutdownTimeout bounds the graceful HTTP shutdown.
	// Default: 5 seconds
	ShutdownTimeout time.Duration
}

// Plugin is the HTTP/WebSocket frame monitor.
type Plugin struct {
	cfg Config

	mu       sync.Mutex
	hub      *Hub
	server   *http.Server
	listener net.Listener
	logger   scalesim.Logger
	status   func() scalesim.State
	stats    func() scalesim.Stats
	info     sessionInfo
	done     chan struct{}
}

type sessionInfo struct {
	InputFile    string `json:"input_file"`
	ChannelCount int    `json:"channel_count"`
	Loop         bool   `json:"loop"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	State   string         `json:"state"`
	Session sessionInfo    `json:"session"`
	Stats   scalesim.Stats `json:"stats"`
	Clients int            `json:"clients"`
}

// FrameMessage is what /ws clients receive for every transmitted frame.
type FrameMessage struct {
	Pass   int    `json:"pass"`
	Line   int    `json:"line"`
	Masses []int  `json:"masses"`
	Total  int    `json:"total"`
	Frame  string `json:"frame"`
	SentAt string `json:"sent_at"`
}

// New creates a monitor plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = 16
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Plugin{cfg: cfg}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "wsmonitor"
}

// Initialize binds the listen address and starts serving.
func (p *Plugin) Initialize(ctx context.Context, cfg scalesim.PluginConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	logger = log.WithComponent(logger, p.Name())

	ln, err := net.Listen("tcp", p.cfg.Addr)
	if err != nil {
		return fmt.Errorf("wsmonitor: listen %s: %w", p.cfg.Addr, err)
	}

	hub := NewHub(p.cfg.ClientBuffer, logger)

	r := mux.NewRouter()
	r.HandleFunc("/ws", hub.HandleWS).Methods(http.MethodGet)
	r.HandleFunc("/status", p.handleStatus).Methods(http.MethodGet, http.MethodOptions)
	r.Use(mux.CORSMethodMiddleware(r))

	server := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.mu.Lock()
	p.hub = hub
	p.server = server
	p.listener = ln
	p.logger = logger
	p.status = cfg.Status
	p.stats = cfg.Stats
	p.info = sessionInfo{
		InputFile:    cfg.InputFile,
		ChannelCount: cfg.ChannelCount,
		Loop:         cfg.Loop,
	}
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("monitor server failed", log.Err(err))
		}
	}()

	logger.Info("monitor listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listen address, or "" before Initialize.
func (p *Plugin) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// ObserveFrame broadcasts a transmitted frame to all WebSocket clients.
func (p *Plugin) ObserveFrame(event scalesim.FrameEvent) {
	p.mu.Lock()
	hub, logger := p.hub, p.logger
	p.mu.Unlock()
	if hub == nil || hub.ClientCount() == 0 {
		return
	}

	msg, err := json.Marshal(FrameMessage{
		Pass:   event.Pass,
		Line:   event.Line,
		Masses: event.Masses,
		Total:  event.Total,
		Frame:  string(event.Frame),
		SentAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		logger.Error("encode frame message", log.Err(err))
		return
	}
	hub.Broadcast(msg)
}

func (p *Plugin) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		return
	}

	p.mu.Lock()
	resp := StatusResponse{State: "Unknown", Session: p.info}
	if p.hub != nil {
		resp.Clients = p.hub.ClientCount()
	}
	status, stats, logger := p.status, p.stats, p.logger
	p.mu.Unlock()

	if status != nil {
		resp.State = status().String()
	}
	if stats != nil {
		resp.Stats = stats()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Debug("write status", log.Err(err))
	}
}

// Shutdown disconnects clients and stops the HTTP server.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	server, hub, done := p.server, p.hub, p.done
	p.server, p.hub, p.listener = nil, nil, nil
	p.mu.Unlock()

	if server == nil {
		return nil
	}

	hub.Close()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.ShutdownTimeout)
	defer cancel()
	err := server.Shutdown(ctx)
	<-done
	return err
}
