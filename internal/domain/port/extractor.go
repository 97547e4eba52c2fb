package port

import "context"

// FrameExtractor produces a single compressed still image from a source at
// a given timestamp, at the source's native resolution.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, src VideoSource, seconds float64) ([]byte, error)
}
