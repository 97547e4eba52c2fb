package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/capture"
	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/config"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/email"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/metrics"
	miniostorage "github.com/amytsuki/highlight-hero-creator/internal/infra/minio"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/notify"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/postgres"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/rabbitmq"
	"github.com/amytsuki/highlight-hero-creator/internal/infra/tracing"
	"github.com/amytsuki/highlight-hero-creator/internal/media"
	"github.com/amytsuki/highlight-hero-creator/internal/subtitles"
	"github.com/amytsuki/highlight-hero-creator/internal/usecase"
	"github.com/amytsuki/highlight-hero-creator/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting highlight-render-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hostname, _ := os.Hostname()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, tracing.Config{
		Endpoint:    cfg.JaegerEndpoint,
		ServiceName: "highlight-render-service",
		WorkerID:    hostname,
	})
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// Migrations
	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		UploadBucket: cfg.MinIOUploadBucket,
		ClipBucket:   cfg.MinIOClipBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	opener := media.NewOpener(log)
	extractor := media.NewStillExtractor(log)
	encoders := media.NewVP9Factory(log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)
	sink := notify.NewLogSink(log)
	burner := subtitles.NewIdentityBurner()

	var transcriber port.Transcriber = subtitles.NewStaticTranscriber(log)
	if cfg.TranscriberEndpoint != "" {
		transcriber = subtitles.NewHTTPTranscriber(cfg.TranscriberEndpoint, cfg.TranscriberTimeout, log)
	}

	// Capture session
	renderer := capture.New(encoders, sink, log, capture.Config{
		TickInterval: time.Second / time.Duration(cfg.CaptureTickHz),
		FPS:          cfg.CaptureFPS,
		Bitrate:      cfg.CaptureBitrate,
		SeekTimeout:  cfg.CaptureSeekTimeout,
	})

	// Use case
	uc := usecase.NewRenderClipUseCase(
		repo, storage, opener, extractor,
		renderer, transcriber, burner,
		statusPub, dlqPub, notifier, sink,
		log,
		usecase.RenderClipConfig{
			TempDir:          cfg.TempDir,
			MaxRetries:       cfg.MaxRetries,
			SubtitleLanguage: cfg.SubtitleLanguage,
		},
	)

	// Metrics server with readiness checks for the render dependencies
	checks := map[string]metrics.HealthCheck{
		"postgres": pool.Ping,
		"rabbitmq": func(context.Context) error {
			if rmqConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		},
	}
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, checks, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQRenderQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, dlqPub, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("highlight-render-service started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("highlight-render-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
