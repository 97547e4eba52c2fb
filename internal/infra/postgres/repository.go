package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.RenderJob) error {
	query := `
		INSERT INTO render_jobs (
			id, user_id, video_key, clip_key, poster_key, status,
			start_seconds, clip_seconds, source_seconds, frame_count,
			cue_count, file_size, attempt, max_attempts,
			error_message, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.UserID, job.VideoKey, job.ClipKey, job.PosterKey, string(job.Status),
		job.StartSeconds, job.ClipSeconds, job.SourceSeconds, job.FrameCount,
		job.CueCount, job.FileSize, job.Attempt, job.MaxAttempts,
		job.ErrorMessage, job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert render job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.RenderJob) error {
	query := `
		UPDATE render_jobs SET
			status=$2, clip_key=$3, poster_key=$4, clip_seconds=$5,
			source_seconds=$6, frame_count=$7, cue_count=$8, attempt=$9,
			error_message=$10, updated_at=$11, completed_at=$12
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Status), job.ClipKey, job.PosterKey, job.ClipSeconds,
		job.SourceSeconds, job.FrameCount, job.CueCount, job.Attempt,
		job.ErrorMessage, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update render job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RenderJob, error) {
	query := `
		SELECT id, user_id, video_key, clip_key, poster_key, status,
			start_seconds, clip_seconds, source_seconds, frame_count,
			cue_count, file_size, attempt, max_attempts,
			error_message, created_at, updated_at, completed_at
		FROM render_jobs WHERE id=$1`

	job := &entity.RenderJob{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.UserID, &job.VideoKey, &job.ClipKey, &job.PosterKey, &status,
		&job.StartSeconds, &job.ClipSeconds, &job.SourceSeconds, &job.FrameCount,
		&job.CueCount, &job.FileSize, &job.Attempt, &job.MaxAttempts,
		&job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find render job by id: %w", err)
	}
	job.Status = entity.JobStatus(status)
	return job, nil
}
