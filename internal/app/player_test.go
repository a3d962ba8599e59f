package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	logAdapter "github.com/bft-labs/scalesim/internal/adapters/log"
	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/pkg/packet"
)

type fakeSource struct {
	mu       sync.Mutex
	readings []domain.Reading
	err      error
	loads    int
}

func (s *fakeSource) Load(ctx context.Context) ([]domain.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Reading(nil), s.readings...), nil
}

func (s *fakeSource) set(readings []domain.Reading, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = readings
	s.err = err
}

type fakeSink struct {
	mu      sync.Mutex
	openErr error
	frames  [][]byte
	fail    map[int]bool // 0-based send index
	sends   int
	opened  int
	closed  int
	onSend  func(n int)
	timeout time.Duration
}

func (s *fakeSink) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.opened++
	return nil
}

func (s *fakeSink) Send(ctx context.Context, frame []byte, timeout time.Duration) error {
	s.mu.Lock()
	n := s.sends
	s.sends++
	s.timeout = timeout
	var err error
	if s.fail[n] {
		err = fmt.Errorf("%w: injected", domain.ErrTransportSend)
	} else {
		s.frames = append(s.frames, frame)
	}
	hook := s.onSend
	s.mu.Unlock()
	if hook != nil {
		hook(n + 1)
	}
	return err
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSink) sentTotals(t *testing.T) []int {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var totals []int
	for _, f := range s.frames {
		p, err := packet.Decode(f)
		if err != nil {
			t.Fatalf("sent frame does not decode: %v", err)
		}
		totals = append(totals, p.Total)
	}
	return totals
}

type recordingEmitter struct {
	mu      sync.Mutex
	results []FrameResult
	passes  []int
}

func (e *recordingEmitter) OnFrame(r FrameResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = append(e.results, r)
}

func (e *recordingEmitter) OnPassComplete(pass, frames, failures int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.passes = append(e.passes, pass)
}

func readings(rows ...[]int) []domain.Reading {
	out := make([]domain.Reading, len(rows))
	for i, r := range rows {
		out[i] = domain.Reading{Line: i + 2, Masses: r}
	}
	return out
}

// instantAfter records requested delays and fires immediately.
func instantAfter(delays *[]time.Duration, mu *sync.Mutex) func(time.Duration) <-chan time.Time {
	return func(d time.Duration) <-chan time.Time {
		mu.Lock()
		*delays = append(*delays, d)
		mu.Unlock()
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
}

func newTestPlayer(cfg PlayerConfig, src *fakeSource, sink *fakeSink) (*Player, *recordingEmitter, *[]time.Duration, *logAdapter.Recorder) {
	em := &recordingEmitter{}
	rec := logAdapter.NewRecorder()
	p := NewPlayer(cfg, src, sink, rec, em)
	var delays []time.Duration
	var mu sync.Mutex
	p.after = instantAfter(&delays, &mu)
	return p, em, &delays, rec
}

func TestPlayer_SinglePass(t *testing.T) {
	src := &fakeSource{readings: readings(
		[]int{10, 20, 30, 40},
		[]int{1, 1, 1, 1},
		[]int{-5, 0, 0, 0},
	)}
	sink := &fakeSink{}
	p, em, delays, _ := newTestPlayer(PlayerConfig{ChannelCount: 4, Period: 2 * time.Second}, src, sink)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := sink.sentTotals(t)
	want := []int{100, 4, -5}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("sent totals = %v, want %v", got, want)
	}
	if len(*delays) != 3 {
		t.Fatalf("delays = %v, want 3", *delays)
	}
	for _, d := range *delays {
		if d != 2*time.Second {
			t.Errorf("delay = %s, want 2s", d)
		}
	}
	if sink.opened != 1 || sink.closed != 1 {
		t.Errorf("opened=%d closed=%d, want 1/1", sink.opened, sink.closed)
	}
	if sink.timeout != DefaultSendTimeout {
		t.Errorf("send timeout = %s, want %s", sink.timeout, DefaultSendTimeout)
	}
	if len(em.passes) != 1 {
		t.Errorf("passes = %v, want [1]", em.passes)
	}

	snap := p.Stats().Snapshot()
	if snap.FramesSent != 3 || snap.SendFailures != 0 || snap.Passes != 1 {
		t.Errorf("stats = %+v", snap)
	}
}

func TestPlayer_FrameBytes(t *testing.T) {
	src := &fakeSource{readings: readings([]int{10, 20, 30, 40})}
	sink := &fakeSink{}
	p, _, _, _ := newTestPlayer(PlayerConfig{ChannelCount: 4}, src, sink)

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want, _ := packet.Encode(4, []int{10, 20, 30, 40}, 100)
	if len(sink.frames) != 1 || string(sink.frames[0]) != string(want) {
		t.Errorf("frames = %q, want %q", sink.frames, want)
	}
}

func TestPlayer_LoopUntilCanceled(t *testing.T) {
	src := &fakeSource{readings: readings(
		[]int{1, 0, 0, 0, 0, 0},
		[]int{2, 0, 0, 0, 0, 0},
	)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &fakeSink{onSend: func(n int) {
		if n == 5 {
			cancel()
		}
	}}
	p, em, _, _ := newTestPlayer(PlayerConfig{ChannelCount: 6, Period: time.Millisecond, Loop: true}, src, sink)

	err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	got := sink.sentTotals(t)
	want := []int{1, 2, 1, 2, 1}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("sent totals = %v, want %v", got, want)
	}
	if len(em.passes) != 2 {
		t.Errorf("completed passes = %v, want 2", em.passes)
	}
	if sink.opened != 1 || sink.closed != 1 {
		t.Errorf("sink should be held across passes: opened=%d closed=%d", sink.opened, sink.closed)
	}
}

func TestPlayer_UnsupportedChannelCount(t *testing.T) {
	src := &fakeSource{readings: readings([]int{1, 2, 3, 4, 5})}
	sink := &fakeSink{}
	p, _, _, _ := newTestPlayer(PlayerConfig{ChannelCount: 5}, src, sink)

	err := p.Run(context.Background())
	if !errors.Is(err, domain.ErrUnsupportedChannelCount) {
		t.Fatalf("Run() error = %v, want ErrUnsupportedChannelCount", err)
	}
	if src.loads != 0 || sink.opened != 0 || sink.sends != 0 {
		t.Errorf("work done before failing: loads=%d opened=%d sends=%d", src.loads, sink.opened, sink.sends)
	}
}

func TestPlayer_MalformedReadingAbortsBeforeSend(t *testing.T) {
	src := &fakeSource{readings: readings(
		[]int{1, 2, 3, 4},
		[]int{1, 2, 3},
	)}
	sink := &fakeSink{}
	p, _, _, _ := newTestPlayer(PlayerConfig{ChannelCount: 4}, src, sink)

	err := p.Run(context.Background())
	if !errors.Is(err, domain.ErrMalformedReading) {
		t.Fatalf("Run() error = %v, want ErrMalformedReading", err)
	}
	if sink.opened != 0 || sink.sends != 0 {
		t.Errorf("sink used: opened=%d sends=%d", sink.opened, sink.sends)
	}
}

func TestPlayer_SourceError(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("%w: line 3", domain.ErrMalformedReading)}
	p, _, _, _ := newTestPlayer(PlayerConfig{ChannelCount: 4}, src, &fakeSink{})

	if err := p.Run(context.Background()); !errors.Is(err, domain.ErrMalformedReading) {
		t.Errorf("Run() error = %v, want ErrMalformedReading", err)
	}
}

func TestPlayer_NoReadings(t *testing.T) {
	p, _, _, _ := newTestPlayer(PlayerConfig{ChannelCount: 4, Loop: true}, &fakeSource{}, &fakeSink{})

	if err := p.Run(context.Background()); !errors.Is(err, domain.ErrNoReadings) {
		t.Errorf("Run() error = %v, want ErrNoReadings", err)
	}
}

func TestPlayer_TransportUnavailable(t *testing.T) {
	src := &fakeSource{readings: readings([]int{1, 2, 3, 4})}
	sink := &fakeSink{openErr: fmt.Errorf("%w: /dev/ttyS9", domain.ErrTransportUnavailable)}
	p, _, _, _ := newTestPlayer(PlayerConfig{ChannelCount: 4}, src, sink)

	if err := p.Run(context.Background()); !errors.Is(err, domain.ErrTransportUnavailable) {
		t.Fatalf("Run() error = %v, want ErrTransportUnavailable", err)
	}
	if sink.sends != 0 {
		t.Errorf("sends = %d, want 0", sink.sends)
	}
}

func TestPlayer_SendFailureContinues(t *testing.T) {
	src := &fakeSource{readings: readings(
		[]int{1, 0, 0, 0},
		[]int{2, 0, 0, 0},
		[]int{3, 0, 0, 0},
	)}
	sink := &fakeSink{fail: map[int]bool{1: true}}
	p, em, delays, rec := newTestPlayer(PlayerConfig{ChannelCount: 4, Period: time.Second}, src, sink)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sink.sends != 3 {
		t.Errorf("send attempts = %d, want 3 (no retry)", sink.sends)
	}
	if got := sink.sentTotals(t); fmt.Sprint(got) != "[1 3]" {
		t.Errorf("delivered totals = %v, want [1 3]", got)
	}
	if len(*delays) != 3 {
		t.Errorf("delays = %d, want 3 (delay after failure too)", len(*delays))
	}
	if len(em.results) != 3 || !errors.Is(em.results[1].Err, domain.ErrTransportSend) || em.results[0].Err != nil {
		t.Errorf("results = %+v", em.results)
	}
	if rec.Count("error", "send failed") != 1 {
		t.Errorf("send failure not logged")
	}
	snap := p.Stats().Snapshot()
	if snap.FramesSent != 2 || snap.SendFailures != 1 {
		t.Errorf("stats = %+v", snap)
	}
}

func TestPlayer_CancelDuringDelay(t *testing.T) {
	src := &fakeSource{readings: readings([]int{1, 0, 0, 0}, []int{2, 0, 0, 0})}
	sink := &fakeSink{}
	p := NewPlayer(PlayerConfig{ChannelCount: 4, Period: time.Hour}, src, sink, logAdapter.NewRecorder(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	sink.onSend = func(int) { cancel() }

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if sink.sends != 1 {
		t.Errorf("sends = %d, want 1", sink.sends)
	}
}

func TestPlayer_ReloadBetweenPasses(t *testing.T) {
	src := &fakeSource{readings: readings([]int{1, 0, 0, 0})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var p *Player
	sink := &fakeSink{}
	sink.onSend = func(n int) {
		switch n {
		case 1:
			src.set(readings([]int{7, 0, 0, 0}, []int{8, 0, 0, 0}), nil)
			p.RequestReload()
		case 2:
			// Broken input must not replace the loaded readings.
			src.set(readings([]int{1, 2}), nil)
			p.RequestReload()
		case 5:
			cancel()
		}
	}
	p, _, _, rec := newTestPlayer(PlayerConfig{ChannelCount: 4, Loop: true}, src, sink)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v", err)
	}

	got := sink.sentTotals(t)
	want := []int{1, 7, 8, 7, 8}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("sent totals = %v, want %v", got, want)
	}
	if rec.Count("warn", "reload failed, keeping previous readings") != 1 {
		t.Error("failed reload not reported")
	}
	if p.Stats().Snapshot().Reloads != 1 {
		t.Errorf("reloads = %d, want 1", p.Stats().Snapshot().Reloads)
	}
}
