package media

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"strconv"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
)

// chunkCollector buffers encoder output as an append-only chunk sequence.
// Each Write call becomes one chunk; emission order is preserved.
type chunkCollector struct {
	mu     sync.Mutex
	chunks []entity.EncodedChunk
}

func (c *chunkCollector) Write(p []byte) (int, error) {
	chunk := make(entity.EncodedChunk, len(p))
	copy(chunk, p)
	c.mu.Lock()
	c.chunks = append(c.chunks, chunk)
	c.mu.Unlock()
	return len(p), nil
}

// Chunks returns a snapshot of the sequence so far. The snapshot does not
// alias the collector's backing array.
func (c *chunkCollector) Chunks() []entity.EncodedChunk {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entity.EncodedChunk, len(c.chunks))
	copy(out, c.chunks)
	return out
}

// VP9Factory starts ffmpeg-backed webm/vp9 encode sessions fed with raw
// RGBA surface snapshots.
type VP9Factory struct {
	logger *zap.Logger
}

func NewVP9Factory(logger *zap.Logger) *VP9Factory {
	return &VP9Factory{logger: logger}
}

func (f *VP9Factory) Start(ctx context.Context, spec entity.OutputSpec, fps int, bitrate int) (port.EncoderSession, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps %d must be positive", fps)
	}

	pr, pw := io.Pipe()
	collector := &chunkCollector{}

	cmd := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":     "rawvideo",
		"pix_fmt":    "rgba",
		"video_size": fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"framerate":  fps,
	}).Output("pipe:", ffmpeg.KwArgs{
		"c:v":      "libvpx-vp9",
		"b:v":      strconv.Itoa(bitrate),
		"r":        fps,
		"f":        "webm",
		"deadline": "realtime",
	}).WithInput(pr).WithOutput(collector).Silent(true).Compile()

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("start encoder: %w", err)
	}

	s := &VP9Session{
		spec:      spec,
		input:     pw,
		collector: collector,
		interval:  time.Second / time.Duration(fps),
		now:       time.Now,
		logger:    f.logger,
	}
	s.eg = &errgroup.Group{}
	s.eg.Go(cmd.Wait)

	f.logger.Info("encoder session started",
		zap.Int("width", spec.Width),
		zap.Int("height", spec.Height),
		zap.Int("fps", fps),
		zap.Int("bitrate", bitrate),
	)
	return s, nil
}

// VP9Session streams surface snapshots into a running ffmpeg process and
// collects the emitted webm chunks until Stop.
type VP9Session struct {
	spec      entity.OutputSpec
	input     *io.PipeWriter
	collector *chunkCollector
	eg        *errgroup.Group
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu         sync.Mutex
	nextSample time.Time
	scratch    *image.RGBA
	stopped    bool

	stopOnce sync.Once
	clip     entity.Clip
	stopErr  error
}

// WriteFrame samples the surface at the session's fixed cadence. Frames
// arriving faster than the cadence are dropped so the output stays
// realtime regardless of how often the capture loop paints.
func (s *VP9Session) WriteFrame(ctx context.Context, img image.Image) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("encoder session already stopped")
	}
	now := s.now()
	if now.Before(s.nextSample) {
		s.mu.Unlock()
		return nil
	}
	s.nextSample = now.Add(s.interval)
	pix := s.rgbaPixelsLocked(img)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.input.Write(pix); err != nil {
		return fmt.Errorf("write frame to encoder: %w", err)
	}
	return nil
}

// rgbaPixelsLocked returns tightly packed RGBA bytes matching the session
// dimensions, redrawing into a reusable scratch buffer when needed.
func (s *VP9Session) rgbaPixelsLocked(img image.Image) []byte {
	want := image.Rect(0, 0, s.spec.Width, s.spec.Height)
	if rgba, ok := img.(*image.RGBA); ok &&
		rgba.Bounds() == want && rgba.Stride == 4*s.spec.Width {
		return rgba.Pix
	}
	if s.scratch == nil {
		s.scratch = image.NewRGBA(want)
	}
	draw.Draw(s.scratch, want, img, img.Bounds().Min, draw.Src)
	return s.scratch.Pix
}

// Stop closes the frame stream, waits for the encoder to drain, and
// assembles the chunks into the final clip. Safe to call more than once;
// every call returns the same result.
func (s *VP9Session) Stop(ctx context.Context) (entity.Clip, error) {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.input.Close()

		done := make(chan error, 1)
		go func() { done <- s.eg.Wait() }()
		select {
		case err := <-done:
			if err != nil {
				s.stopErr = fmt.Errorf("encoder exit: %w", err)
				return
			}
		case <-ctx.Done():
			s.stopErr = ctx.Err()
			return
		}

		clip, err := entity.AssembleClip(s.collector.Chunks())
		if err != nil {
			s.stopErr = err
			return
		}
		s.clip = clip
		s.logger.Info("encoder session finalized",
			zap.Int("chunks", len(s.collector.Chunks())),
			zap.Int("clip_bytes", len(clip)),
		)
	})
	return s.clip, s.stopErr
}
