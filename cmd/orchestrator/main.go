package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"viralclip/internal/config"
	"viralclip/internal/database"
	"viralclip/internal/logger"
	"viralclip/internal/media"
	"viralclip/internal/orchestrator/render"
	"viralclip/internal/pgmq"
	"viralclip/internal/pubsub"
	"viralclip/internal/repository"
	"viralclip/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Parse mode flag
	mode := flag.String("mode", "render", "Orchestrator mode: render")
	workDir := flag.String("workdir", filepath.Join(os.TempDir(), "viralclip"), "Scratch directory for media files")
	flag.Parse()

	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Queue and dead-letter store go through lib/pq, repositories through pgx.
	db, err := database.OpenSQL(ctx, cfg, database.DriverPQ)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
	}
	defer db.Close()

	pool, err := database.OpenPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB pool: %v", err)
	}
	defer pool.Close()
	logger.Info().Msg("Database connection established")

	pgmqClient := pgmq.New(db)
	logger.Info().Msg("PGMQ client initialized")

	switch *mode {
	case "render":
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		logger.Fatal().Msgf("Failed to create work dir: %v", err)
	}

	if err := cfg.ValidateStorage(); err != nil {
		logger.Fatal().Err(err).Msg("Render worker requires S3 storage")
	}
	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to create S3 client: %v", err)
	}
	store := storage.NewClipStore(s3Client, cfg.S3URL, cfg.S3Bucket)

	mediaTimeout := time.Duration(cfg.MediaTimeoutSec) * time.Second
	ff := media.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath, mediaTimeout, cfg.MediaMaxConcurrency)
	dl := media.NewDownloader(&http.Client{Timeout: mediaTimeout}, *workDir)
	processor := media.NewProcessor(ff, dl, store, *workDir, logger)

	events := pubsub.NewEventPublisher(pubsub.NopPublisher{}, "")
	if cfg.EventsEnabled() {
		pub, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			logger.Fatal().Msgf("Failed to create Pub/Sub publisher: %v", err)
		}
		defer pub.Close()
		events = pubsub.NewEventPublisher(pub, cfg.PubSubClipTopic)
	}

	worker := render.NewWorker(render.Deps{
		Queue:   pgmqClient,
		Clips:   repository.NewClipRepo(pool),
		Renders: repository.NewRenderRepo(pool),
		DLQ:     repository.NewDLQRepository(db),
		Media:   processor,
		Events:  events,
	}, render.SettingsFromConfig(cfg), logger)

	if err := worker.Run(ctx); err != nil {
		logger.Fatal().Msgf("%s orchestrator failed: %v", *mode, err)
	}

	logger.Info().Msgf("%s orchestrator stopped gracefully", *mode)
}
