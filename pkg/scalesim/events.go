package scalesim

import (
	"time"

	"github.com/bft-labs/scalesim/internal/app"
)

// State is the lifecycle state of a Simulator.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

func (s State) String() string {
	return app.State(s).String()
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// FrameEvent describes one transmitted frame.
type FrameEvent struct {
	Pass     int
	Row      int
	Line     int
	Masses   []int
	Total    int
	Frame    []byte
	Duration time.Duration
}

// SendErrorEvent describes a frame the transport failed to send.
// Playback continues with the next reading.
type SendErrorEvent struct {
	FrameEvent
	Error error
}

// PassCompleteEvent is emitted after every reading of the input was played once.
type PassCompleteEvent struct {
	Pass     int
	Frames   int
	Failures int
}

// EventHandler receives simulator events. Calls are made synchronously from
// the playback goroutine; keep them short.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnFrameSent(event FrameEvent)
	OnSendError(event SendErrorEvent)
	OnPassComplete(event PassCompleteEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)   {}
func (BaseEventHandler) OnFrameSent(FrameEvent)           {}
func (BaseEventHandler) OnSendError(SendErrorEvent)       {}
func (BaseEventHandler) OnPassComplete(PassCompleteEvent) {}
