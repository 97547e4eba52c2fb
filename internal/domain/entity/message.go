package entity

import "github.com/google/uuid"

// ClipRenderMessage is the inbound message from the clip.render queue.
type ClipRenderMessage struct {
	JobID           uuid.UUID `json:"job_id"`
	UserID          string    `json:"user_id"`
	VideoKey        string    `json:"video_key"`
	StartSeconds    float64   `json:"start_seconds"`
	DurationSeconds float64   `json:"duration_seconds"`
	Vertical        bool      `json:"vertical"`
	Language        string    `json:"language,omitempty"`
	FileSize        int64     `json:"file_size"`
	UserEmail       string    `json:"user_email"`
}

// Range returns the requested segment as a TimeRange.
func (m ClipRenderMessage) Range() TimeRange {
	return TimeRange{Start: m.StartSeconds, Duration: m.DurationSeconds}
}

// ClipStatusMessage is the outbound message published to the clip.status
// queue.
type ClipStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	UserID       string    `json:"user_id"`
	Status       JobStatus `json:"status"`
	VideoKey     string    `json:"video_key"`
	ClipKey      string    `json:"clip_key,omitempty"`
	PosterKey    string    `json:"poster_key,omitempty"`
	ClipSeconds  float64   `json:"clip_seconds,omitempty"`
	FrameCount   int       `json:"frame_count,omitempty"`
	CueCount     int       `json:"cue_count,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}
