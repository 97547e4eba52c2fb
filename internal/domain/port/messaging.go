package port

import (
	"context"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

// StatusPublisher announces render job progress to downstream consumers.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg entity.ClipStatusMessage) error
}

// DLQPublisher parks messages that cannot be rendered. The payload stays
// raw bytes because malformed messages must be parkable too.
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg []byte, reason string) error
}
