package subtitles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

func TestStaticTranscriberRussianCues(t *testing.T) {
	tr := NewStaticTranscriber(zap.NewNop())
	clip := entity.Clip("fake webm bytes")

	cues, err := tr.GenerateCues(context.Background(), clip, "ru")
	require.NoError(t, err)

	assert.NotEmpty(t, cues)
	for i, c := range cues {
		assert.Less(t, c.Start, c.End, "cue %d", i)
		assert.GreaterOrEqual(t, c.Start, 0.0, "cue %d", i)
		if i > 0 {
			assert.LessOrEqual(t, cues[i-1].Start, c.Start, "sorted by start")
		}
	}
	require.NoError(t, entity.ValidateCues(cues))
}

func TestStaticTranscriberEnglishCues(t *testing.T) {
	tr := NewStaticTranscriber(zap.NewNop())

	cues, err := tr.GenerateCues(context.Background(), entity.Clip("x"), "en")
	require.NoError(t, err)
	assert.NotEmpty(t, cues)
}

func TestStaticTranscriberUnsupportedLanguage(t *testing.T) {
	tr := NewStaticTranscriber(zap.NewNop())

	_, err := tr.GenerateCues(context.Background(), entity.Clip("x"), "de")
	assert.ErrorIs(t, err, entity.ErrTranscriptionUnavailable)
}

func TestStaticTranscriberEmptyClip(t *testing.T) {
	tr := NewStaticTranscriber(zap.NewNop())

	_, err := tr.GenerateCues(context.Background(), nil, "en")
	assert.ErrorIs(t, err, entity.ErrTranscriptionUnavailable)
}

func TestHTTPTranscriberSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ru", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		// Deliberately unsorted: the client must sort by start.
		w.Write([]byte(`[
			{"start": 4.0, "end": 6.0, "text": "второй"},
			{"start": 0.0, "end": 2.5, "text": "первый"}
		]`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, time.Second, zap.NewNop())
	cues, err := tr.GenerateCues(context.Background(), entity.Clip("clip"), "ru")
	require.NoError(t, err)

	require.Len(t, cues, 2)
	assert.Equal(t, "первый", cues[0].Text)
	assert.Equal(t, "второй", cues[1].Text)
}

func TestHTTPTranscriberServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, time.Second, zap.NewNop())
	_, err := tr.GenerateCues(context.Background(), entity.Clip("clip"), "en")
	assert.ErrorIs(t, err, entity.ErrTranscriptionUnavailable)
}

func TestHTTPTranscriberBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL, time.Second, zap.NewNop())
	_, err := tr.GenerateCues(context.Background(), entity.Clip("clip"), "en")
	assert.ErrorIs(t, err, entity.ErrTranscriptionUnavailable)
}

func TestHTTPTranscriberUnreachable(t *testing.T) {
	tr := NewHTTPTranscriber("http://127.0.0.1:1", 200*time.Millisecond, zap.NewNop())
	_, err := tr.GenerateCues(context.Background(), entity.Clip("clip"), "en")
	assert.ErrorIs(t, err, entity.ErrTranscriptionUnavailable)
}

func TestIdentityBurnerReturnsClipUnchanged(t *testing.T) {
	b := NewIdentityBurner()
	clip := entity.Clip("original clip bytes")
	cues := []entity.SubtitleCue{{Start: 0, End: 1, Text: "hello"}}

	out, err := b.BurnIn(context.Background(), clip, cues)
	require.NoError(t, err)
	assert.Equal(t, clip, out)
}
