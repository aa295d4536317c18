package imagegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deckgen/internal/domain"
	"deckgen/internal/infra"
	"deckgen/internal/providers/genai"
)

const defaultCallTimeout = 60 * time.Second

// Generator is the slice of the model client the orchestrator needs.
type Generator interface {
	GenerateImage(ctx context.Context, model, prompt string) (genai.ImagePayload, error)
}

// Validator classifies a candidate image.
type Validator interface {
	Validate(ctx context.Context, candidate domain.ImageCandidate) Verdict
}

// Sink persists accepted images.
type Sink interface {
	StoreForSlide(ctx context.Context, presentationID string, img domain.GeneratedImage) (domain.ImageRecord, error)
	DeleteForPresentation(ctx context.Context, presentationID string) error
}

// Orchestrator produces at most one illustration per slide. Each slide runs
// an ordered model fallback chain and a bounded validation retry loop; slide
// failures are recorded, never escalated. Slides are handled one at a time
// with pacing so upstream rate limits stay predictable.
type Orchestrator struct {
	generator Generator
	validator Validator
	store     Sink
	models    []string
	policy    domain.RetryPolicy
	timeout   time.Duration
	logger    infra.Logger
}

type Options struct {
	Generator Generator
	Validator Validator
	Store     Sink
	Models    []string
	Policy    domain.RetryPolicy
	Timeout   time.Duration
	Logger    infra.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Orchestrator{
		generator: opts.Generator,
		validator: opts.Validator,
		store:     opts.Store,
		models:    opts.Models,
		policy:    opts.Policy.Normalize(),
		timeout:   timeout,
		logger:    opts.Logger,
	}
}

// GenerateForPresentation regenerates all images for one presentation. Prior
// records are dropped up front, then every slide is attempted independently.
// Partial success is the expected outcome; the per-slide failures are
// enumerated in the result, and only context cancellation aborts the run.
func (o *Orchestrator) GenerateForPresentation(ctx context.Context, presentationID string, slides []domain.Slide) (domain.ImageGenerationResult, error) {
	result := domain.ImageGenerationResult{}

	if err := o.store.DeleteForPresentation(ctx, presentationID); err != nil {
		return result, fmt.Errorf("clear prior images: %w", err)
	}

	for i, slide := range slides {
		rec, err := o.generateForSlide(ctx, presentationID, slide)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			o.logger.Warn().
				Err(err).
				Str("presentation_id", presentationID).
				Int("slide", slide.Index).
				Msg("imagegen: slide failed")
			result.Errors = append(result.Errors, domain.SlideError{
				SlideIndex: slide.Index,
				Message:    domain.Excerpt(err.Error()),
			})
		} else {
			result.Accepted = append(result.Accepted, rec)
		}

		if i < len(slides)-1 {
			if err := sleepContext(ctx, o.policy.Delay); err != nil {
				return result, err
			}
		}
	}

	o.logger.Info().
		Str("presentation_id", presentationID).
		Int("accepted", len(result.Accepted)).
		Int("failed", len(result.Errors)).
		Msg("imagegen: presentation complete")
	return result, nil
}

func (o *Orchestrator) generateForSlide(ctx context.Context, presentationID string, slide domain.Slide) (domain.ImageRecord, error) {
	prompt := BuildIllustrationPrompt(slide)

	for attempt := 1; attempt <= o.policy.MaxAttempts; attempt++ {
		candidate, err := o.nextCandidate(ctx, slide.Index, prompt)
		if err != nil {
			return domain.ImageRecord{}, err
		}

		verdict := o.validator.Validate(ctx, candidate)
		switch verdict {
		case VerdictClear, VerdictSkipped, VerdictError:
			// VerdictError fails open: the validator is advisory and its
			// unavailability must not block the deck.
			return o.accept(ctx, presentationID, candidate)
		case VerdictTextDetected, VerdictUnknown:
			o.logger.Debug().
				Int("slide", slide.Index).
				Int("attempt", attempt).
				Str("verdict", verdict.String()).
				Str("model", candidate.ModelUsed).
				Msg("imagegen: candidate rejected")
			if attempt < o.policy.MaxAttempts {
				if err := sleepContext(ctx, o.policy.Delay); err != nil {
					return domain.ImageRecord{}, err
				}
			}
		}
	}

	return domain.ImageRecord{}, fmt.Errorf("no text-free image after %d attempts", o.policy.MaxAttempts)
}

// nextCandidate walks the model fallback chain until one call yields an image
// payload. Retryable failures advance the chain; anything else aborts the
// slide.
func (o *Orchestrator) nextCandidate(ctx context.Context, slideIndex int, prompt string) (domain.ImageCandidate, error) {
	var lastErr error
	for _, model := range o.models {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		payload, err := o.generator.GenerateImage(callCtx, model, prompt)
		cancel()
		if err == nil {
			return domain.ImageCandidate{
				SlideIndex: slideIndex,
				Data:       payload.Data,
				MIMEType:   payload.MIMEType,
				ModelUsed:  model,
			}, nil
		}
		if ctx.Err() != nil {
			return domain.ImageCandidate{}, ctx.Err()
		}

		var modelErr *domain.ImageModelError
		if errors.As(err, &modelErr) && !modelErr.Retryable() {
			return domain.ImageCandidate{}, err
		}

		// Retryable rejection, retired model, per-call timeout, or an empty
		// payload: the next model may still deliver.
		lastErr = err
		o.logger.Warn().
			Err(err).
			Int("slide", slideIndex).
			Str("model", model).
			Msg("imagegen: model failed, advancing fallback chain")
	}
	if lastErr == nil {
		lastErr = domain.ErrNoImagePayload
	}
	return domain.ImageCandidate{}, fmt.Errorf("all image models failed: %w", lastErr)
}

func (o *Orchestrator) accept(ctx context.Context, presentationID string, candidate domain.ImageCandidate) (domain.ImageRecord, error) {
	data, mimeType, err := NormalizeImage(candidate.Data)
	if err != nil {
		return domain.ImageRecord{}, fmt.Errorf("normalize image: %w", err)
	}
	return o.store.StoreForSlide(ctx, presentationID, domain.GeneratedImage{
		SlideIndex: candidate.SlideIndex,
		Data:       data,
		MIMEType:   mimeType,
		ModelUsed:  candidate.ModelUsed,
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
