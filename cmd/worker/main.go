package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/dharsanguruparan/docmill/internal/blobstore"
	"github.com/dharsanguruparan/docmill/internal/config"
	"github.com/dharsanguruparan/docmill/internal/database"
	"github.com/dharsanguruparan/docmill/internal/extract"
	"github.com/dharsanguruparan/docmill/internal/logging"
	"github.com/dharsanguruparan/docmill/internal/repository"
	"github.com/dharsanguruparan/docmill/internal/search"
	"github.com/dharsanguruparan/docmill/internal/summarize"
	"github.com/dharsanguruparan/docmill/internal/worker"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, "docmill-worker")

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}
	repo := repository.NewDocumentRepository(pool)

	blobs, err := blobstore.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init blob store")
	}

	indexer, err := search.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init search indexer")
	}

	extractor := extract.NewService(
		extract.NewFitzRasterizer(cfg.OcrDPI, log),
		extract.NewTesseract(cfg.OcrLanguage, log),
		cfg.MinEmbeddedText,
		log,
	)
	summarizer := summarize.NewClient(summarize.Options{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		Endpoint:        cfg.GeminiEndpoint,
		MaxRetries:      cfg.MaxRetries,
		Timeout:         cfg.Timeout,
		MaxPromptLength: cfg.MaxPromptLength,
	}, log)

	pipeline := worker.NewPipeline(worker.PipelineOptions{
		Blobs:           blobs,
		Extractor:       extractor,
		Summarizer:      summarizer,
		Sink:            repo,
		Docs:            repo,
		Index:           indexer,
		MaxPromptLength: cfg.MaxPromptLength,
	}, log)
	consumer := worker.NewConsumer(pipeline, log)

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.QueueName: 1},
	})

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Info().Str("queue", cfg.QueueName).Int("concurrency", cfg.Concurrency).Msg("worker starting")
	if err := server.Run(consumer.Mux()); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}
