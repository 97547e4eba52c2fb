package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusLoading   JobStatus = "LOADING"
	JobStatusRecording JobStatus = "RECORDING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// RenderJob tracks one clip render request through the capture pipeline.
type RenderJob struct {
	ID            uuid.UUID
	UserID        string
	VideoKey      string
	ClipKey       string
	PosterKey     string
	Status        JobStatus
	StartSeconds  float64
	ClipSeconds   float64
	SourceSeconds float64
	FrameCount    int
	CueCount      int
	FileSize      int64
	Attempt       int
	MaxAttempts   int
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

func NewRenderJob(userID, videoKey string, rng TimeRange, fileSize int64, maxAttempts int) *RenderJob {
	now := time.Now().UTC()
	return &RenderJob{
		ID:           uuid.New(),
		UserID:       userID,
		VideoKey:     videoKey,
		Status:       JobStatusPending,
		StartSeconds: rng.Start,
		ClipSeconds:  rng.Duration,
		FileSize:     fileSize,
		Attempt:      0,
		MaxAttempts:  maxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkLoading begins an attempt: the source is being fetched and probed.
func (j *RenderJob) MarkLoading() {
	j.Status = JobStatusLoading
	j.Attempt++
	j.UpdatedAt = time.Now().UTC()
}

// MarkRecording enters the capture phase. The range is re-persisted here
// because it may have been clamped since the job was created; the record
// must describe what is actually being rendered.
func (j *RenderJob) MarkRecording(rng TimeRange, sourceSeconds float64) {
	j.Status = JobStatusRecording
	j.StartSeconds = rng.Start
	j.ClipSeconds = rng.Duration
	j.SourceSeconds = sourceSeconds
	j.UpdatedAt = time.Now().UTC()
}

func (j *RenderJob) MarkCompleted(clipKey, posterKey string, frameCount, cueCount int, clipSeconds float64) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.ClipKey = clipKey
	j.PosterKey = posterKey
	j.FrameCount = frameCount
	j.CueCount = cueCount
	j.ClipSeconds = clipSeconds
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *RenderJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

func (j *RenderJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}
