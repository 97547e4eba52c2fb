package subtitles

import (
	"context"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

// IdentityBurner satisfies the burn-in contract without altering the clip.
// Burn-in is a service stub: returning the input unchanged is explicitly
// allowed, and callers must not assume visual alteration occurred.
type IdentityBurner struct{}

func NewIdentityBurner() *IdentityBurner {
	return &IdentityBurner{}
}

func (b *IdentityBurner) BurnIn(_ context.Context, clip entity.Clip, _ []entity.SubtitleCue) (entity.Clip, error) {
	return clip, nil
}
