package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/capture"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/metrics"
)

// ClipRenderer runs one playback-driven capture. Satisfied by
// *capture.Session.
type ClipRenderer interface {
	Run(ctx context.Context, src port.VideoSource, rng entity.TimeRange, spec entity.OutputSpec) (entity.Clip, capture.Stats, error)
}

type RenderClipUseCase struct {
	repo        port.JobRepository
	storage     port.ClipStorage
	opener      port.SourceOpener
	extractor   port.FrameExtractor
	renderer    ClipRenderer
	transcriber port.Transcriber
	burner      port.CaptionBurner
	publisher   port.StatusPublisher
	dlq         port.DLQPublisher
	notifier    port.FailureNotifier
	sink        port.NotificationSink
	logger      *zap.Logger
	tempDir     string
	maxRetry    int
	language    string
}

type RenderClipConfig struct {
	TempDir          string
	MaxRetries       int
	SubtitleLanguage string
}

func NewRenderClipUseCase(
	repo port.JobRepository,
	storage port.ClipStorage,
	opener port.SourceOpener,
	extractor port.FrameExtractor,
	renderer ClipRenderer,
	transcriber port.Transcriber,
	burner port.CaptionBurner,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	sink port.NotificationSink,
	logger *zap.Logger,
	cfg RenderClipConfig,
) *RenderClipUseCase {
	return &RenderClipUseCase{
		repo:        repo,
		storage:     storage,
		opener:      opener,
		extractor:   extractor,
		renderer:    renderer,
		transcriber: transcriber,
		burner:      burner,
		publisher:   publisher,
		dlq:         dlq,
		notifier:    notifier,
		sink:        sink,
		logger:      logger,
		tempDir:     cfg.TempDir,
		maxRetry:    cfg.MaxRetries,
		language:    cfg.SubtitleLanguage,
	}
}

func (uc *RenderClipUseCase) Execute(ctx context.Context, msg entity.ClipRenderMessage) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "RenderClipUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
		attribute.Bool("job.vertical", msg.Vertical),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewRenderJob(msg.UserID, msg.VideoKey, msg.Range(), msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, "max retries exceeded")
		return nil
	}

	job.MarkLoading()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to LOADING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	if err := uc.renderPipeline(ctx, job, msg, log); err != nil {
		return err
	}

	metrics.ClipsRenderedTotal.WithLabelValues("completed").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *RenderClipUseCase) renderPipeline(
	ctx context.Context,
	job *entity.RenderJob,
	msg entity.ClipRenderMessage,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download source from object storage
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_source")
	videoPath := filepath.Join(workDir, "source.mp4")
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download source video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, "download_source: "+err.Error(), log)
	}
	spanDl.End()
	metrics.StageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Probe metadata and open the playback source
	ctx3, spanProbe := tracer.Start(ctx, "probe_source")
	src, err := uc.opener.Open(ctx3, videoPath)
	if err != nil {
		spanProbe.End()
		log.Error("failed to load source metadata", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, "probe_source: "+err.Error(), log)
	}
	spanProbe.End()
	defer src.Close()

	// Clamp the requested range to the source. Out-of-bounds is
	// recoverable: trim, tell the user, carry on.
	rng := msg.Range()
	if err := rng.Validate(src.Duration()); err != nil {
		if !errors.Is(err, entity.ErrRangeOutOfBounds) {
			return uc.handleRetryableFailure(ctx, job, msg, "validate_range: "+err.Error(), log)
		}
		clamped, _ := rng.Clamp(src.Duration())
		uc.sink.Notify(ctx, port.NotifyWarning,
			fmt.Sprintf("Selected segment trimmed to fit the video (%.1fs available)", src.Duration()))
		log.Warn("time range clamped",
			zap.Float64("requested_start", rng.Start),
			zap.Float64("requested_duration", rng.Duration),
			zap.Float64("clamped_duration", clamped.Duration),
		)
		rng = clamped
	}
	if rng.Duration <= 0 {
		_ = uc.handlePermanentFailure(ctx, job, msg, "selected range lies outside the source video")
		return nil
	}

	spec := entity.VerticalOutput()
	if !msg.Vertical {
		w, h := src.Bounds()
		spec = entity.NativeOutput(w, h)
	}

	job.MarkRecording(rng, src.Duration())
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to RECORDING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	// Capture the clip
	capStart := time.Now()
	ctx4, spanCap := tracer.Start(ctx, "capture_clip")
	metrics.ActiveSessions.Inc()
	clip, stats, err := uc.renderer.Run(ctx4, src, rng, spec)
	metrics.ActiveSessions.Dec()
	spanCap.End()
	if err != nil {
		log.Error("capture failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, "capture_clip: "+err.Error(), log)
	}
	metrics.StageDuration.WithLabelValues("capture").Observe(time.Since(capStart).Seconds())
	metrics.FramesCapturedTotal.Add(float64(stats.FramesPainted))

	// Subtitle cues: a transcription failure degrades to zero cues and
	// never aborts a successful capture. The request may name a language;
	// otherwise the configured default applies.
	language := msg.Language
	if language == "" {
		language = uc.language
	}
	var cues []entity.SubtitleCue
	if language != "" {
		ctx5, spanCues := tracer.Start(ctx, "generate_cues")
		cues, err = uc.transcriber.GenerateCues(ctx5, clip, language)
		spanCues.End()
		if err != nil {
			log.Warn("cue generation unavailable, continuing without subtitles", zap.Error(err))
			uc.sink.Notify(ctx, port.NotifyWarning, "Subtitles are unavailable for this clip")
			cues = nil
		}
	}

	if len(cues) > 0 {
		ctx6, spanBurn := tracer.Start(ctx, "burn_in_cues")
		burned, err := uc.burner.BurnIn(ctx6, clip, cues)
		spanBurn.End()
		if err != nil {
			log.Warn("caption burn-in failed, delivering clip without burned captions", zap.Error(err))
		} else {
			clip = burned
		}
		metrics.CuesGeneratedTotal.Add(float64(len(cues)))
	}

	// Upload the finalized clip
	upStart := time.Now()
	ctx7, spanUp := tracer.Start(ctx, "upload_clip")
	clipKey := fmt.Sprintf("%s/clip_%s.webm", msg.UserID, job.ID.String())
	if err := uc.storage.UploadClip(ctx7, clipKey, bytes.NewReader(clip), int64(len(clip))); err != nil {
		spanUp.End()
		log.Error("clip upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, "upload_clip: "+err.Error(), log)
	}
	spanUp.End()
	metrics.StageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	// Poster still at the clip start. Best effort: a missing poster never
	// fails the render.
	posterKey := ""
	ctx8, spanPoster := tracer.Start(ctx, "poster_still")
	still, err := uc.extractor.ExtractFrame(ctx8, src, rng.Start)
	if err != nil {
		log.Warn("poster extraction failed", zap.Error(err))
	} else {
		posterKey = fmt.Sprintf("%s/poster_%s.jpg", msg.UserID, job.ID.String())
		if err := uc.storage.UploadPoster(ctx8, posterKey, bytes.NewReader(still), int64(len(still))); err != nil {
			log.Warn("poster upload failed", zap.Error(err))
			posterKey = ""
		}
	}
	spanPoster.End()

	job.MarkCompleted(clipKey, posterKey, stats.FramesPainted, len(cues), stats.ClipSeconds)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("clip rendered successfully",
		zap.Int("frame_count", stats.FramesPainted),
		zap.Float64("clip_seconds", stats.ClipSeconds),
		zap.Int("cue_count", len(cues)),
		zap.String("clip_key", clipKey),
	)

	return nil
}

func (uc *RenderClipUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.RenderJob,
	msg entity.ClipRenderMessage,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *RenderClipUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.RenderJob,
	msg entity.ClipRenderMessage,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	raw, _ := json.Marshal(msg)
	_ = uc.dlq.PublishToDLQ(ctx, raw, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.ClipsRenderedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *RenderClipUseCase) publishStatus(ctx context.Context, job *entity.RenderJob, log *zap.Logger) {
	statusMsg := entity.ClipStatusMessage{
		JobID:        job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		VideoKey:     job.VideoKey,
		ClipKey:      job.ClipKey,
		PosterKey:    job.PosterKey,
		ClipSeconds:  job.ClipSeconds,
		FrameCount:   job.FrameCount,
		CueCount:     job.CueCount,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	if err := uc.publisher.PublishStatus(ctx, statusMsg); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
