// Package compositor paints decoded source frames onto a fixed-size output
// surface, handling the aspect-ratio math for cover-crop and letterbox
// conversion.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

// Surface is the reusable output pixel buffer for one capture session. It
// is mutated in place once per tick and never persisted individually.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a surface matching the output spec dimensions.
func NewSurface(spec entity.OutputSpec) (*Surface, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))}, nil
}

// Image exposes the surface contents. The returned image is overwritten on
// the next Composite call.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Transform is the draw placement computed for one frame: a uniform scale
// and a centered offset. Offsets may be negative in cover-crop mode; the
// overflow is clipped by the surface boundary.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// ComputeTransform returns the placement for a source of srcW x srcH within
// the given spec. Pure function of its inputs.
func ComputeTransform(srcW, srcH int, spec entity.OutputSpec) Transform {
	outW, outH := float64(spec.Width), float64(spec.Height)
	sw, sh := float64(srcW), float64(srcH)

	var scale float64
	switch spec.Mode {
	case entity.ModeCoverCrop:
		scale = max(outW/sw, outH/sh)
	case entity.ModeFitLetterbox:
		scale = min(outW/sw, outH/sh)
	default: // native
		scale = 1
	}

	return Transform{
		Scale:   scale,
		OffsetX: (outW - sw*scale) / 2,
		OffsetY: (outH - sh*scale) / 2,
	}
}

var black = image.NewUniform(color.RGBA{0, 0, 0, 255})

// Composite paints the frame into the surface per the spec. The surface is
// fully overwritten on every call: cover-crop and letterbox backfill with
// opaque black first so no stale pixels survive between ticks. Carries no
// state between invocations.
func Composite(dst *Surface, frame image.Image, spec entity.OutputSpec) error {
	if dst == nil || dst.img == nil {
		return fmt.Errorf("composite: %w", entity.ErrSurface)
	}
	b := dst.img.Bounds()
	if b.Dx() != spec.Width || b.Dy() != spec.Height {
		return fmt.Errorf("composite: surface %dx%d does not match spec %dx%d: %w",
			b.Dx(), b.Dy(), spec.Width, spec.Height, entity.ErrSurface)
	}

	if spec.Mode == entity.ModeNative {
		draw.Draw(dst.img, b, frame, frame.Bounds().Min, draw.Src)
		return nil
	}

	draw.Draw(dst.img, b, black, image.Point{}, draw.Src)

	sb := frame.Bounds()
	tr := ComputeTransform(sb.Dx(), sb.Dy(), spec)
	target := image.Rect(
		int(tr.OffsetX),
		int(tr.OffsetY),
		int(tr.OffsetX+float64(sb.Dx())*tr.Scale),
		int(tr.OffsetY+float64(sb.Dy())*tr.Scale),
	)

	// ApproxBiLinear clips the target rect against the surface bounds, so
	// negative offsets crop rather than fail.
	xdraw.ApproxBiLinear.Scale(dst.img, target, frame, sb, xdraw.Src, nil)
	return nil
}
