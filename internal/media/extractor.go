package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
)

// Still-image encode quality, the 0-100 equivalent of quality 0.95.
const stillQuality = 95

// StillExtractor produces a single JPEG still from a source at a given
// timestamp, painted at native resolution onto a fresh surface.
type StillExtractor struct {
	logger *zap.Logger
}

func NewStillExtractor(logger *zap.Logger) *StillExtractor {
	return &StillExtractor{logger: logger}
}

func (e *StillExtractor) ExtractFrame(ctx context.Context, src port.VideoSource, seconds float64) ([]byte, error) {
	if seconds < 0 || seconds > src.Duration() {
		return nil, fmt.Errorf("extract at %.3fs outside [0, %.3f]: %w", seconds, src.Duration(), entity.ErrSeek)
	}

	if err := src.Seek(ctx, seconds); err != nil {
		return nil, err
	}

	frame, err := src.Frame(ctx)
	if err != nil {
		return nil, err
	}

	w, h := src.Bounds()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("source reports %dx%d: %w", w, h, entity.ErrSurface)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), frame, frame.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: stillQuality}); err != nil {
		return nil, fmt.Errorf("encode still: %w", err)
	}

	e.logger.Debug("still extracted",
		zap.Float64("seconds", seconds),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}
