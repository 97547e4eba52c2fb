package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		rng     TimeRange
		source  float64
		wantErr bool
	}{
		{"fits exactly", TimeRange{Start: 0, Duration: 60}, 60, false},
		{"interior segment", TimeRange{Start: 10, Duration: 15}, 60, false},
		{"negative start", TimeRange{Start: -1, Duration: 5}, 60, true},
		{"zero duration", TimeRange{Start: 10, Duration: 0}, 60, true},
		{"past the end", TimeRange{Start: 50, Duration: 30}, 60, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rng.Validate(tt.source)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRangeOutOfBounds)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeRangeClamp(t *testing.T) {
	clamped, changed := TimeRange{Start: 50, Duration: 30}.Clamp(60)
	assert.True(t, changed)
	assert.Equal(t, TimeRange{Start: 50, Duration: 10}, clamped)

	clamped, changed = TimeRange{Start: 10, Duration: 15}.Clamp(60)
	assert.False(t, changed)
	assert.Equal(t, TimeRange{Start: 10, Duration: 15}, clamped)

	// Start beyond the source collapses to a zero-length range at the end.
	clamped, changed = TimeRange{Start: 90, Duration: 5}.Clamp(60)
	assert.True(t, changed)
	assert.Equal(t, 60.0, clamped.Start)
	assert.Equal(t, 0.0, clamped.Duration)
}

func TestOutputSpecValidate(t *testing.T) {
	assert.NoError(t, VerticalOutput().Validate())
	assert.NoError(t, NativeOutput(1920, 1080).Validate())
	assert.ErrorIs(t, OutputSpec{Width: 0, Height: 960, Mode: ModeCoverCrop}.Validate(), ErrSurface)
	assert.Error(t, OutputSpec{Width: 540, Height: 960, Mode: "stretch"}.Validate())
}

func TestVerticalOutputDimensions(t *testing.T) {
	spec := VerticalOutput()
	assert.Equal(t, 540, spec.Width)
	assert.Equal(t, 960, spec.Height)
	assert.Equal(t, ModeCoverCrop, spec.Mode)
}

func TestAssembleClipPreservesEmissionOrder(t *testing.T) {
	clip, err := AssembleClip([]EncodedChunk{
		EncodedChunk("head"),
		EncodedChunk("-mid-"),
		EncodedChunk("tail"),
	})
	require.NoError(t, err)
	assert.Equal(t, Clip("head-mid-tail"), clip)
}

func TestAssembleClipEmptyCapture(t *testing.T) {
	_, err := AssembleClip(nil)
	assert.ErrorIs(t, err, ErrEmptyCapture)

	_, err = AssembleClip([]EncodedChunk{{}, {}})
	assert.ErrorIs(t, err, ErrEmptyCapture, "chunks with no bytes are still an empty capture")
}

func TestSortAndValidateCues(t *testing.T) {
	cues := []SubtitleCue{
		{Start: 5, End: 7.5, Text: "second"},
		{Start: 0, End: 2.5, Text: "first"},
	}
	SortCues(cues)
	require.NoError(t, ValidateCues(cues))
	assert.Equal(t, "first", cues[0].Text)

	assert.Error(t, ValidateCues([]SubtitleCue{{Start: 2, End: 1, Text: "inverted"}}))
	assert.Error(t, ValidateCues([]SubtitleCue{
		{Start: 5, End: 6, Text: "b"},
		{Start: 0, End: 1, Text: "a"},
	}))
}

func TestRenderJobLifecycle(t *testing.T) {
	job := NewRenderJob("user1", "user1/match.mp4", TimeRange{Start: 10, Duration: 15}, 2048, 3)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.True(t, job.CanRetry())

	job.MarkLoading()
	assert.Equal(t, JobStatusLoading, job.Status)
	assert.Equal(t, 1, job.Attempt)

	// A clamped range replaces the requested one once recording starts.
	job.MarkRecording(TimeRange{Start: 10, Duration: 12}, 60)
	assert.Equal(t, JobStatusRecording, job.Status)
	assert.Equal(t, 60.0, job.SourceSeconds)
	assert.Equal(t, 10.0, job.StartSeconds)
	assert.Equal(t, 12.0, job.ClipSeconds)

	job.MarkCompleted("user1/clip_x.webm", "user1/poster_x.jpg", 450, 6, 15)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, 450, job.FrameCount)
	assert.Equal(t, 6, job.CueCount)
	require.NotNil(t, job.CompletedAt)
}

func TestRenderJobRetryExhaustion(t *testing.T) {
	job := NewRenderJob("user1", "user1/match.mp4", TimeRange{Start: 0, Duration: 5}, 0, 2)

	job.MarkLoading()
	job.MarkFailed("encoder crashed")
	assert.True(t, job.CanRetry())

	job.MarkLoading()
	job.MarkFailed("encoder crashed again")
	assert.False(t, job.CanRetry())
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "encoder crashed again", job.ErrorMessage)
}
