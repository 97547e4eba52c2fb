package entity

import "errors"

// Failure taxonomy for the render pipeline. Adapters wrap these so callers
// can classify failures with errors.Is regardless of which backend produced
// them.
var (
	// ErrSeek signals that the decoder could not position the source at the
	// requested timestamp.
	ErrSeek = errors.New("seek failed")

	// ErrSourceLoad signals that source metadata (duration, dimensions)
	// could not be loaded.
	ErrSourceLoad = errors.New("source metadata load failed")

	// ErrSurface signals that a drawing surface could not be acquired.
	ErrSurface = errors.New("drawing surface unavailable")

	// ErrEmptyCapture signals that a capture session finished without
	// emitting a single encoded chunk.
	ErrEmptyCapture = errors.New("capture produced no encoded frames")

	// ErrTranscriptionUnavailable signals that the external transcription
	// service could not produce cues. Callers degrade to zero cues.
	ErrTranscriptionUnavailable = errors.New("transcription service unavailable")

	// ErrRangeOutOfBounds signals a requested time range extending past the
	// source duration. Recoverable: callers clamp and report.
	ErrRangeOutOfBounds = errors.New("time range exceeds source duration")
)
