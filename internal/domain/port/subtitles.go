package port

import (
	"context"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

// Transcriber is the external speech-recognition service. It may suspend
// for arbitrary latency and fail with entity.ErrTranscriptionUnavailable;
// a failure never aborts an otherwise successful render.
type Transcriber interface {
	// GenerateCues returns timed caption cues for the clip, ordered by
	// start time. Supported languages: "en", "ru".
	GenerateCues(ctx context.Context, clip entity.Clip, language string) ([]entity.SubtitleCue, error)
}

// CaptionBurner composes cues onto a clip. Implementations may return the
// input clip unchanged; callers must not assume visual alteration occurred.
type CaptionBurner interface {
	BurnIn(ctx context.Context, clip entity.Clip, cues []entity.SubtitleCue) (entity.Clip, error)
}
