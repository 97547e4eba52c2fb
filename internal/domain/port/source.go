package port

import (
	"context"
	"image"
)

// VideoSource is an opaque decodable handle over one video. At most one
// capture session may drive a source at a time; concurrent use races on the
// playback position and must be serialized by the caller.
type VideoSource interface {
	// Duration returns the total source duration in seconds.
	Duration() float64

	// Bounds returns the intrinsic width and height in pixels.
	Bounds() (width, height int)

	// Seek positions playback at the given timestamp and blocks until the
	// seek has completed. Wraps entity.ErrSeek on failure.
	Seek(ctx context.Context, seconds float64) error

	// Position returns the current playback position in seconds. While
	// playing it advances in real time.
	Position() float64

	// Frame returns the decoded frame at the current position.
	Frame(ctx context.Context) (image.Image, error)

	// Play starts playback at the given speed (1.0 = real time).
	Play(speed float64)

	// Pause stops the playback position from advancing.
	Pause()

	// Close releases the handle. No reads or composites may reference the
	// source afterwards.
	Close() error
}

// SourceOpener creates a VideoSource from a local file, probing its
// metadata. Wraps entity.ErrSourceLoad when metadata cannot be read.
type SourceOpener interface {
	Open(ctx context.Context, path string) (VideoSource, error)
}
