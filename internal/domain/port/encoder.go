package port

import (
	"context"
	"image"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

// EncoderSession consumes a live stream of surface snapshots and produces
// one finalized clip. Chunks are emitted and concatenated in strict
// temporal order.
type EncoderSession interface {
	// WriteFrame hands the current surface contents to the encoder. The
	// session samples at its own fixed cadence; frames arriving faster than
	// that are dropped, not queued.
	WriteFrame(ctx context.Context, img image.Image) error

	// Stop signals end-of-stream, waits until all buffered chunks have been
	// emitted, and returns the assembled clip. Stop is idempotent: a second
	// call returns the same clip without duplicating or dropping chunks.
	// Returns entity.ErrEmptyCapture when no chunks were ever emitted.
	Stop(ctx context.Context) (entity.Clip, error)
}

// EncoderFactory opens encode sessions for a given output spec.
type EncoderFactory interface {
	Start(ctx context.Context, spec entity.OutputSpec, fps int, bitrate int) (EncoderSession, error)
}
