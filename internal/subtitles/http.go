package subtitles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

// HTTPTranscriber posts clip bytes to an external transcription endpoint
// and decodes the returned cue list. Any transport or service failure maps
// to entity.ErrTranscriptionUnavailable so callers can degrade uniformly.
type HTTPTranscriber struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewHTTPTranscriber(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPTranscriber {
	return &HTTPTranscriber{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (t *HTTPTranscriber) GenerateCues(ctx context.Context, clip entity.Clip, language string) ([]entity.SubtitleCue, error) {
	url := fmt.Sprintf("%s/transcribe?language=%s", t.endpoint, language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(clip))
	if err != nil {
		return nil, fmt.Errorf("build request: %v: %w", err, entity.ErrTranscriptionUnavailable)
	}
	req.Header.Set("Content-Type", "video/webm")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call transcription service: %v: %w", err, entity.ErrTranscriptionUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription service returned %d: %w", resp.StatusCode, entity.ErrTranscriptionUnavailable)
	}

	var cues []entity.SubtitleCue
	if err := json.NewDecoder(resp.Body).Decode(&cues); err != nil {
		return nil, fmt.Errorf("decode cues: %v: %w", err, entity.ErrTranscriptionUnavailable)
	}

	entity.SortCues(cues)
	if err := entity.ValidateCues(cues); err != nil {
		return nil, fmt.Errorf("invalid cues from service: %v: %w", err, entity.ErrTranscriptionUnavailable)
	}

	t.logger.Debug("cues received",
		zap.String("language", language),
		zap.Int("count", len(cues)),
	)
	return cues, nil
}
