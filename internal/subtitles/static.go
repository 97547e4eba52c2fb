// Package subtitles implements the external transcription and caption
// burn-in services the render pipeline calls. Both are service stubs by
// contract: cues may be placeholders and burn-in may be an identity
// operation, and callers must not assume otherwise.
package subtitles

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

var placeholderLines = map[string][]string{
	"en": {
		"And here comes the highlight moment.",
		"What a play, absolutely incredible.",
		"The crowd is on its feet.",
		"Replay of the decisive seconds.",
	},
	"ru": {
		"И вот он, момент хайлайта.",
		"Какая игра, просто невероятно.",
		"Трибуны встают.",
		"Повтор решающих секунд.",
	},
}

// StaticTranscriber stands in for the speech-recognition service with a
// deterministic set of timed placeholder cues.
type StaticTranscriber struct {
	segment float64
	logger  *zap.Logger
}

func NewStaticTranscriber(logger *zap.Logger) *StaticTranscriber {
	return &StaticTranscriber{segment: 2.5, logger: logger}
}

func (t *StaticTranscriber) GenerateCues(_ context.Context, clip entity.Clip, language string) ([]entity.SubtitleCue, error) {
	lines, ok := placeholderLines[language]
	if !ok {
		return nil, fmt.Errorf("language %q not supported: %w", language, entity.ErrTranscriptionUnavailable)
	}
	if len(clip) == 0 {
		return nil, fmt.Errorf("empty clip: %w", entity.ErrTranscriptionUnavailable)
	}

	cues := make([]entity.SubtitleCue, 0, len(lines))
	for i, line := range lines {
		start := float64(i) * t.segment
		cues = append(cues, entity.SubtitleCue{
			Start: start,
			End:   start + t.segment,
			Text:  line,
		})
	}

	t.logger.Debug("placeholder cues generated",
		zap.String("language", language),
		zap.Int("count", len(cues)),
	)
	return cues, nil
}
