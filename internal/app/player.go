package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/scalesim/internal/domain"
	"github.com/bft-labs/scalesim/internal/ports"
	"github.com/bft-labs/scalesim/pkg/packet"
)

// DefaultSendTimeout matches the one-second write timeout of the scale line.
const DefaultSendTimeout = time.Second

// PlayerConfig contains configuration for the playback loop.
type PlayerConfig struct {
	ChannelCount int
	Period       time.Duration
	SendTimeout  time.Duration
	Loop         bool
}

// FrameResult is the outcome of one encode-and-send step.
type FrameResult struct {
	Pass     int
	Row      int
	Line     int
	Masses   []int
	Total    int
	Frame    []byte
	Duration time.Duration

	// Err is nil on success and wraps domain.ErrTransportSend on failure.
	Err error
}

// FrameEventEmitter is called after every send attempt and every completed pass.
type FrameEventEmitter interface {
	OnFrame(result FrameResult)
	OnPassComplete(pass, frames, failures int)
}

// Player replays readings to a frame sink at a fixed cadence.
type Player struct {
	config  PlayerConfig
	source  ports.ReadingSource
	sink    ports.FrameSink
	logger  ports.Logger
	emitter FrameEventEmitter
	stats   *Stats

	// after is time.After; tests replace it.
	after  func(time.Duration) <-chan time.Time
	reload atomic.Bool
}

// NewPlayer creates a new player with the given dependencies.
// emitter may be nil.
func NewPlayer(
	config PlayerConfig,
	source ports.ReadingSource,
	sink ports.FrameSink,
	logger ports.Logger,
	emitter FrameEventEmitter,
) *Player {
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultSendTimeout
	}
	return &Player{
		config:  config,
		source:  source,
		sink:    sink,
		logger:  logger,
		emitter: emitter,
		stats:   &Stats{},
		after:   time.After,
	}
}

// Stats returns the player's counters.
func (p *Player) Stats() *Stats {
	return p.stats
}

// RequestReload asks the player to reload its readings before the next pass.
func (p *Player) RequestReload() {
	p.reload.Store(true)
}

// Run plays the session until the readings are exhausted (single pass),
// the context is canceled, or a fatal error occurs.
//
// Configuration and input errors are returned before the sink is opened.
// Send failures are reported through the logger and emitter and do not stop
// playback.
func (p *Player) Run(ctx context.Context) error {
	if !packet.Supported(p.config.ChannelCount) {
		return fmt.Errorf("%w: %d (want 4 or 6)", domain.ErrUnsupportedChannelCount, p.config.ChannelCount)
	}

	session, err := p.loadSession(ctx)
	if err != nil {
		return err
	}

	if err := p.sink.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := p.sink.Close(); err != nil {
			p.logger.Warn("close sink", ports.Err(err))
		}
	}()

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.reload.Swap(false) {
			session = p.reloadSession(ctx, session)
		}

		frames, failures, err := p.playPass(ctx, session, pass)
		if err != nil {
			return err
		}
		p.stats.passes.Add(1)
		p.logger.Info("pass complete",
			ports.Int("pass", pass),
			ports.Int("frames", frames),
			ports.Int("failures", failures),
		)
		if p.emitter != nil {
			p.emitter.OnPassComplete(pass, frames, failures)
		}

		if !session.Loop {
			return nil
		}
	}
}

// playPass sends every reading once, in order.
func (p *Player) playPass(ctx context.Context, session domain.Session, pass int) (int, int, error) {
	failures := 0
	for row, reading := range session.Readings {
		if err := ctx.Err(); err != nil {
			return row, failures, err
		}

		result, err := p.playReading(ctx, session.ChannelCount, pass, row, reading)
		if err != nil {
			return row, failures, err
		}
		if result.Err != nil {
			failures++
		}

		if err := p.wait(ctx, session.Period); err != nil {
			return row + 1, failures, err
		}
	}
	return len(session.Readings), failures, nil
}

// playReading encodes one reading and hands it to the sink.
// The returned error is fatal; send failures are carried in FrameResult.Err.
func (p *Player) playReading(ctx context.Context, channels, pass, row int, reading domain.Reading) (FrameResult, error) {
	total := reading.Total()
	frame, err := packet.Encode(channels, reading.Masses, total)
	if err != nil {
		return FrameResult{}, fmt.Errorf("line %d: %w: %v", reading.Line, domain.ErrMalformedReading, err)
	}

	result := FrameResult{
		Pass:   pass,
		Row:    row,
		Line:   reading.Line,
		Masses: reading.Masses,
		Total:  total,
		Frame:  frame,
	}

	start := time.Now()
	result.Err = p.sink.Send(ctx, frame, p.config.SendTimeout)
	result.Duration = time.Since(start)

	if result.Err != nil && ctx.Err() != nil {
		return result, ctx.Err()
	}

	if result.Err != nil {
		p.stats.failures.Add(1)
		p.logger.Error("send failed",
			ports.Err(result.Err),
			ports.Int("pass", pass),
			ports.Int("row", row),
			ports.Int("line", reading.Line),
		)
	} else {
		p.stats.frames.Add(1)
		p.logger.Debug("frame sent",
			ports.Int("pass", pass),
			ports.Int("row", row),
			ports.Int("total", total),
			ports.Duration("duration", result.Duration),
		)
	}

	if p.emitter != nil {
		p.emitter.OnFrame(result)
	}
	return result, nil
}

// wait holds for the inter-frame period. Only cancellation cuts it short.
func (p *Player) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.after(d):
		return nil
	}
}

func (p *Player) loadSession(ctx context.Context) (domain.Session, error) {
	readings, err := p.source.Load(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load readings: %w", err)
	}
	session := domain.Session{
		Readings:     readings,
		ChannelCount: p.config.ChannelCount,
		Period:       p.config.Period,
		Loop:         p.config.Loop,
	}
	if err := session.Validate(); err != nil {
		return domain.Session{}, err
	}
	p.logger.Info("readings loaded",
		ports.Int("rows", len(readings)),
		ports.Int("channels", session.ChannelCount),
	)
	return session, nil
}

// reloadSession keeps the current session if the new input does not parse.
func (p *Player) reloadSession(ctx context.Context, current domain.Session) domain.Session {
	next, err := p.loadSession(ctx)
	if err != nil {
		p.logger.Warn("reload failed, keeping previous readings", ports.Err(err))
		return current
	}
	p.stats.reloads.Add(1)
	return next
}
