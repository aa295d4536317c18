package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"deckgen/internal/adapter/repo"
	"deckgen/internal/deck"
	"deckgen/internal/domain"
	"deckgen/internal/imagegen"
	"deckgen/internal/infra"
	"deckgen/internal/providers/genai"
	"deckgen/internal/providers/text"
	"deckgen/internal/spell"
	"deckgen/internal/storage"
)

// deckWorker polls the job queue and runs the full pipeline for each claimed
// job: text generation first, then per-slide images. A job only fails when
// the pipeline cannot produce a deck at all; image gaps are part of the
// result, not a failure.
type deckWorker struct {
	ctx          context.Context
	jobs         domain.JobRepository
	decks        *deck.Orchestrator
	images       *imagegen.Orchestrator
	logger       infra.Logger
	pollInterval time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "deckgen-worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	completer, err := newCompleter(cfg, httpClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure text provider")
	}

	textPolicy := domain.RetryPolicy{
		MaxAttempts: cfg.TextMaxAttempts,
		Delay:       cfg.TextRetryDelay,
	}
	deckOrchestrator := deck.NewOrchestrator(completer, spell.Passthrough{}, textPolicy, logger)

	genaiClient := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: httpClient,
	})
	validator := imagegen.NewSafetyValidator(genaiClient, cfg.ValidatorModel, logger)
	imageStore := imagegen.NewStore(fileStore, repo.NewImageRepository(runner), cfg.StorageBaseURL)
	imageOrchestrator := imagegen.NewOrchestrator(imagegen.Options{
		Generator: genaiClient,
		Validator: validator,
		Store:     imageStore,
		Models:    cfg.ImageModels,
		Policy: domain.RetryPolicy{
			MaxAttempts: cfg.ImageMaxRetries,
			Delay:       cfg.ImagePacing,
		},
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})

	worker := &deckWorker{
		ctx:          ctx,
		jobs:         repo.NewJobRepository(runner),
		decks:        deckOrchestrator,
		images:       imageOrchestrator,
		logger:       logger,
		pollInterval: cfg.JobPollInterval,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func newCompleter(cfg *infra.Config, httpClient *http.Client) (text.Completer, error) {
	switch cfg.TextProvider {
	case "openai":
		return text.NewOpenAICompleter(text.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   httpClient,
		})
	default:
		return text.NewGeminiCompleter(text.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
		})
	}
}

func (w *deckWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		job, err := w.jobs.Claim(w.ctx)
		if err != nil {
			if w.ctx.Err() != nil {
				return w.ctx.Err()
			}
			if !errors.Is(err, domain.ErrNoJob) {
				w.logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			if err := w.idle(); err != nil {
				return err
			}
			continue
		}

		w.handleJob(job)
	}
}

// idle waits one poll interval, returning early when shutdown is requested.
func (w *deckWorker) idle() error {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()
	select {
	case <-w.ctx.Done():
		return w.ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w *deckWorker) handleJob(job domain.DeckJob) {
	w.logger.Info().
		Str("job_id", job.ID).
		Str("presentation_id", job.PresentationID).
		Int("slide_count", job.Request.DesiredSlideCount).
		Msg("worker: picked job")

	result, err := w.process(job)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: job failed")
		if markErr := w.jobs.MarkFailed(w.ctx, job.ID, err.Error()); markErr != nil {
			w.logger.Error().Err(markErr).Str("job_id", job.ID).Msg("worker: mark failed failed")
		}
		return
	}
	if err := w.jobs.MarkSucceeded(w.ctx, job.ID, result); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: mark succeeded failed")
	}
}

func (w *deckWorker) process(job domain.DeckJob) (domain.DeckResult, error) {
	slides, err := w.decks.Generate(w.ctx, job.Request)
	if err != nil {
		return domain.DeckResult{}, err
	}

	images, err := w.images.GenerateForPresentation(w.ctx, job.PresentationID, slides)
	if err != nil {
		return domain.DeckResult{}, err
	}

	return domain.DeckResult{Slides: slides, Images: images}, nil
}
