// Package capture drives source playback through the compositor and into
// an encoder session, producing one finalized clip per run.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/compositor"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
)

// State of a capture session. Failed is terminal and reachable from every
// non-terminal state.
type State string

const (
	StateIdle            State = "idle"
	StateMetadataLoading State = "metadata-loading"
	StateCanvasSetup     State = "canvas-setup"
	StateRecording       State = "recording"
	StateDraining        State = "draining"
	StateFinalized       State = "finalized"
	StateFailed          State = "failed"
)

// Stats describes what one run actually captured. The frame count is
// wall-clock driven, not fixed: it depends on the tick cadence and real
// elapsed time during encoding.
type Stats struct {
	FramesPainted int
	ClipSeconds   float64
}

// Config tunes a session. TickInterval models the display refresh cadence;
// the encoder samples at its own FPS independently of it.
type Config struct {
	TickInterval time.Duration
	FPS          int
	Bitrate      int
	SeekTimeout  time.Duration
}

// DefaultConfig matches the production output contract: 30 fps webm at
// 5 Mbit/s, painted at a 60 Hz refresh cadence.
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second / 60,
		FPS:          30,
		Bitrate:      5_000_000,
		SeekTimeout:  15 * time.Second,
	}
}

// Session runs playback-driven captures. One Run at a time per session;
// concurrent captures of the same source race on its playback position and
// must be serialized by the caller.
type Session struct {
	encoders port.EncoderFactory
	sink     port.NotificationSink
	logger   *zap.Logger
	cfg      Config

	mu    sync.Mutex
	state State
}

func New(encoders port.EncoderFactory, sink port.NotificationSink, logger *zap.Logger, cfg Config) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second / 60
	}
	return &Session{
		encoders: encoders,
		sink:     sink,
		logger:   logger,
		cfg:      cfg,
		state:    StateIdle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run captures the given range of the source into a finalized clip. On any
// failure the encoder session is still finalized (never leaked), no partial
// clip is returned, and the failure is reported through the sink.
func (s *Session) Run(ctx context.Context, src port.VideoSource, rng entity.TimeRange, spec entity.OutputSpec) (entity.Clip, Stats, error) {
	var stats Stats

	s.setState(StateMetadataLoading)
	seekCtx := ctx
	if s.cfg.SeekTimeout > 0 {
		var cancel context.CancelFunc
		seekCtx, cancel = context.WithTimeout(ctx, s.cfg.SeekTimeout)
		defer cancel()
	}
	if err := src.Seek(seekCtx, rng.Start); err != nil {
		return nil, stats, s.fail(ctx, nil, fmt.Errorf("position source at %.3fs: %w", rng.Start, err))
	}
	if w, h := src.Bounds(); w <= 0 || h <= 0 {
		return nil, stats, s.fail(ctx, nil, fmt.Errorf("source reports %dx%d: %w", w, h, entity.ErrSourceLoad))
	}

	s.setState(StateCanvasSetup)
	surf, err := compositor.NewSurface(spec)
	if err != nil {
		return nil, stats, s.fail(ctx, nil, err)
	}

	enc, err := s.encoders.Start(ctx, spec, s.cfg.FPS, s.cfg.Bitrate)
	if err != nil {
		return nil, stats, s.fail(ctx, nil, fmt.Errorf("start encoder: %w", err))
	}

	s.setState(StateRecording)
	src.Play(1.0)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	end := rng.End()
	for src.Position() <= end {
		frame, err := src.Frame(ctx)
		if err != nil {
			src.Pause()
			return nil, stats, s.fail(ctx, enc, fmt.Errorf("read frame: %w", err))
		}
		if err := compositor.Composite(surf, frame, spec); err != nil {
			src.Pause()
			return nil, stats, s.fail(ctx, enc, err)
		}
		if err := enc.WriteFrame(ctx, surf.Image()); err != nil {
			src.Pause()
			return nil, stats, s.fail(ctx, enc, fmt.Errorf("encode frame: %w", err))
		}
		stats.FramesPainted++

		select {
		case <-ctx.Done():
			src.Pause()
			return nil, stats, s.fail(ctx, enc, ctx.Err())
		case <-ticker.C:
		}
	}

	src.Pause()
	stats.ClipSeconds = min(src.Position(), end) - rng.Start

	s.setState(StateDraining)
	clip, err := enc.Stop(ctx)
	if err != nil {
		return nil, stats, s.fail(ctx, nil, fmt.Errorf("finalize clip: %w", err))
	}

	s.setState(StateFinalized)
	s.logger.Info("capture finalized",
		zap.Int("frames_painted", stats.FramesPainted),
		zap.Float64("clip_seconds", stats.ClipSeconds),
		zap.Int("clip_bytes", len(clip)),
	)
	return clip, stats, nil
}

// fail transitions to Failed, finalizing the encoder first when one is
// still open so it is never left leaking.
func (s *Session) fail(ctx context.Context, enc port.EncoderSession, err error) error {
	if enc != nil {
		// Best-effort drain, detached from the (possibly cancelled) run
		// context.
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, stopErr := enc.Stop(stopCtx); stopErr != nil {
			s.logger.Warn("encoder finalize during failure", zap.Error(stopErr))
		}
	}

	s.setState(StateFailed)
	s.logger.Error("capture failed", zap.Error(err))
	if s.sink != nil {
		s.sink.Notify(ctx, port.NotifyError, "Clip capture failed: "+err.Error())
	}
	return err
}
