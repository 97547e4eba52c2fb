package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
)

// Opener probes files and hands out clock-driven sources.
type Opener struct {
	logger *zap.Logger
}

func NewOpener(logger *zap.Logger) *Opener {
	return &Opener{logger: logger}
}

func (o *Opener) Open(ctx context.Context, path string) (port.VideoSource, error) {
	meta, err := ProbeFile(path)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("source opened",
		zap.String("path", path),
		zap.Float64("duration", meta.Duration),
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
	)
	return newClockSource(path, meta), nil
}

// clockSource is a port.VideoSource whose playback position advances with
// the wall clock while playing, matching realtime 1.0x playback semantics.
// Frames are decoded on demand at the current position. Not safe for
// concurrent capture sessions; callers serialize access.
type clockSource struct {
	path string
	meta Metadata
	now  func() time.Time

	mu        sync.Mutex
	pos       float64
	playing   bool
	speed     float64
	playStart time.Time
	frame     image.Image
	frameAt   float64
	closed    bool
}

func newClockSource(path string, meta Metadata) *clockSource {
	return &clockSource{path: path, meta: meta, now: time.Now, speed: 1.0, frameAt: -1}
}

func (s *clockSource) Duration() float64 {
	return s.meta.Duration
}

func (s *clockSource) Bounds() (int, int) {
	return s.meta.Width, s.meta.Height
}

func (s *clockSource) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *clockSource) positionLocked() float64 {
	if !s.playing {
		return s.pos
	}
	pos := s.pos + s.now().Sub(s.playStart).Seconds()*s.speed
	if pos > s.meta.Duration {
		pos = s.meta.Duration
	}
	return pos
}

// Seek decodes the frame at the target timestamp and blocks until decoding
// completes, so a successful return means the seek has settled.
func (s *clockSource) Seek(ctx context.Context, seconds float64) error {
	if seconds < 0 || seconds > s.meta.Duration {
		return fmt.Errorf("seek to %.3fs outside [0, %.3f]: %w", seconds, s.meta.Duration, entity.ErrSeek)
	}

	img, err := s.decodeAt(ctx, seconds)
	if err != nil {
		return fmt.Errorf("seek to %.3fs: %v: %w", seconds, err, entity.ErrSeek)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = seconds
	if s.playing {
		s.playStart = s.now()
	}
	s.frame = img
	s.frameAt = seconds
	return nil
}

// Frame returns the decoded frame at the current position. The frame from
// the last seek is reused when the position has not moved.
func (s *clockSource) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	pos := s.positionLocked()
	if s.frame != nil && pos == s.frameAt {
		img := s.frame
		s.mu.Unlock()
		return img, nil
	}
	s.mu.Unlock()

	img, err := s.decodeAt(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("decode frame at %.3fs: %v: %w", pos, err, entity.ErrSeek)
	}

	s.mu.Lock()
	s.frame = img
	s.frameAt = pos
	s.mu.Unlock()
	return img, nil
}

func (s *clockSource) Play(speed float64) {
	if speed <= 0 {
		speed = 1.0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return
	}
	s.playing = true
	s.speed = speed
	s.playStart = s.now()
}

func (s *clockSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}
	s.pos = s.positionLocked()
	s.playing = false
}

func (s *clockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = nil
	s.closed = true
	return nil
}

// eofBackoff is one frame interval at the minimum supported frame rate.
// An input seek landing exactly at the container duration decodes zero
// frames, so boundary timestamps are nudged back onto the last frame.
const eofBackoff = 1.0 / 30

func clampDecodeTime(seconds, duration float64) float64 {
	limit := duration - eofBackoff
	if limit < 0 {
		limit = 0
	}
	if seconds > limit {
		return limit
	}
	return seconds
}

// decodeAt extracts one PNG frame at the given timestamp. Fast input seek
// (-ss before -i) keeps this cheap enough to call once per tick.
func (s *clockSource) decodeAt(ctx context.Context, seconds float64) (image.Image, error) {
	ts := clampDecodeTime(seconds, s.meta.Duration)
	var buf bytes.Buffer
	cmd := ffmpeg.Input(s.path, ffmpeg.KwArgs{"ss": fmt.Sprintf("%.4f", ts)}).
		Output("pipe:", ffmpeg.KwArgs{
			"vframes": 1,
			"format":  "image2",
			"vcodec":  "png",
		}).
		WithOutput(&buf).
		Silent(true).
		Compile()

	if err := runCmd(ctx, cmd); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// runCmd runs an ffmpeg command honoring context cancellation.
func runCmd(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}
