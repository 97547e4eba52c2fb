package entity

import "fmt"

// TimeRange selects a segment of a source video, in seconds.
type TimeRange struct {
	Start    float64
	Duration float64
}

func (r TimeRange) End() float64 {
	return r.Start + r.Duration
}

// Validate checks the range against the source duration. A range extending
// past the source returns ErrRangeOutOfBounds, which callers may recover
// from via Clamp.
func (r TimeRange) Validate(sourceDuration float64) error {
	if r.Start < 0 {
		return fmt.Errorf("start %.3f: %w", r.Start, ErrRangeOutOfBounds)
	}
	if r.Duration <= 0 {
		return fmt.Errorf("duration %.3f must be positive: %w", r.Duration, ErrRangeOutOfBounds)
	}
	if r.End() > sourceDuration {
		return fmt.Errorf("range ends at %.3fs, source is %.3fs: %w", r.End(), sourceDuration, ErrRangeOutOfBounds)
	}
	return nil
}

// Clamp returns the range trimmed to fit within the source duration, and
// whether any trimming happened.
func (r TimeRange) Clamp(sourceDuration float64) (TimeRange, bool) {
	clamped := r
	changed := false
	if clamped.Start < 0 {
		clamped.Start = 0
		changed = true
	}
	if clamped.Start > sourceDuration {
		clamped.Start = sourceDuration
		changed = true
	}
	if clamped.End() > sourceDuration {
		clamped.Duration = sourceDuration - clamped.Start
		changed = true
	}
	return clamped, changed
}

// ScaleMode selects how a source frame is mapped onto the output surface.
type ScaleMode string

const (
	// ModeCoverCrop scales to fill the output, preserving aspect and
	// cropping overflow.
	ModeCoverCrop ScaleMode = "cover-crop"

	// ModeFitLetterbox scales to fit inside the output, padding with black.
	ModeFitLetterbox ScaleMode = "fit-letterbox"

	// ModeNative draws the source 1:1 with no transform.
	ModeNative ScaleMode = "native"
)

// OutputSpec describes the target surface for a render.
type OutputSpec struct {
	Width  int
	Height int
	Mode   ScaleMode
}

// Vertical output dimensions for "shorts" style clips.
const (
	VerticalWidth  = 540
	VerticalHeight = 960
)

// VerticalOutput is the fixed 540x960 cover-crop spec used for vertical
// clips.
func VerticalOutput() OutputSpec {
	return OutputSpec{Width: VerticalWidth, Height: VerticalHeight, Mode: ModeCoverCrop}
}

// NativeOutput renders at the source's intrinsic size with no transform.
func NativeOutput(width, height int) OutputSpec {
	return OutputSpec{Width: width, Height: height, Mode: ModeNative}
}

func (s OutputSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("output dimensions %dx%d: %w", s.Width, s.Height, ErrSurface)
	}
	switch s.Mode {
	case ModeCoverCrop, ModeFitLetterbox, ModeNative:
		return nil
	default:
		return fmt.Errorf("unknown scale mode %q", s.Mode)
	}
}
