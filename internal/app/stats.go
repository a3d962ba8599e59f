package app

import "sync/atomic"

// Stats counts playback progress. Safe for concurrent reads while the
// player runs.
type Stats struct {
	frames   atomic.Uint64
	failures atomic.Uint64
	passes   atomic.Uint64
	reloads  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	FramesSent   uint64 `json:"frames_sent"`
	SendFailures uint64 `json:"send_failures"`
	Passes       uint64 `json:"passes"`
	Reloads      uint64 `json:"reloads"`
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		FramesSent:   s.frames.Load(),
		SendFailures: s.failures.Load(),
		Passes:       s.passes.Load(),
		Reloads:      s.reloads.Load(),
	}
}
