package port

import (
	"context"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.RenderJob) error
	Update(ctx context.Context, job *entity.RenderJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RenderJob, error)
}
