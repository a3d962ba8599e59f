package wsmonitor

import "github.com/bft-labs/scalesim/pkg/scalesim"

// WithMonitor returns a scalesim Option that serves /ws and /status on
// cfg.Addr while the simulator runs.
//
// Usage:
//
//	sim, err := scalesim.New(cfg, wsmonitor.WithMonitor(wsmonitor.Config{Addr: ":8080"}))
func WithMonitor(cfg Config) scalesim.Option {
	return scalesim.WithPlugin(New(cfg))
}
