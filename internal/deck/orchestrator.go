package deck

import (
	"context"
	"time"

	"deckgen/internal/domain"
	"deckgen/internal/infra"
	"deckgen/internal/providers/text"
	"deckgen/internal/spell"
)

const (
	completionTemperature = 0.4
	completionMaxTokens   = 4096
)

// Orchestrator drives compose → request → parse → normalize with a bounded
// retry budget against the text-completion service. It never returns zero
// slides: when the budget is exhausted it degrades to a single synthetic
// slide carrying the last diagnostic, and the count invariant is enforced on
// every exit path.
type Orchestrator struct {
	completer text.Completer
	corrector spell.Corrector
	policy    domain.RetryPolicy
	logger    infra.Logger
}

func NewOrchestrator(completer text.Completer, corrector spell.Corrector, policy domain.RetryPolicy, logger infra.Logger) *Orchestrator {
	if corrector == nil {
		corrector = spell.Passthrough{}
	}
	return &Orchestrator{
		completer: completer,
		corrector: corrector,
		policy:    policy.Normalize(),
		logger:    logger,
	}
}

// Generate produces exactly req.DesiredSlideCount slides. The only error it
// returns is context cancellation; upstream failures degrade, they do not
// propagate.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.Slide, error) {
	prompt := ComposePrompt(req)
	lastDiagnostic := "no attempts made"

	for attempt := 1; attempt <= o.policy.MaxAttempts; attempt++ {
		raw, err := o.completer.Complete(ctx, text.CompletionRequest{
			Prompt:      prompt,
			Temperature: completionTemperature,
			MaxTokens:   completionMaxTokens,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastDiagnostic = domain.Excerpt(err.Error())
			o.logger.Warn().
				Int("attempt", attempt).
				Int("max_attempts", o.policy.MaxAttempts).
				Str("diagnostic", lastDiagnostic).
				Msg("deck: completion request failed")
			if err := o.pause(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		raws, err := ParseSlidePayload(raw)
		if err != nil {
			lastDiagnostic = domain.Excerpt(err.Error())
			o.logger.Warn().
				Int("attempt", attempt).
				Int("max_attempts", o.policy.MaxAttempts).
				Str("diagnostic", lastDiagnostic).
				Msg("deck: completion response unusable")
			if err := o.pause(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		slides := NormalizeSlides(raws, o.corrector)
		o.logger.Info().
			Int("attempt", attempt).
			Int("slides", len(slides)).
			Int("desired", req.DesiredSlideCount).
			Msg("deck: slides generated")
		return EnforceCount(slides, req), nil
	}

	o.logger.Error().
		Err(domain.ErrGenerationExhausted).
		Int("attempts", o.policy.MaxAttempts).
		Str("diagnostic", lastDiagnostic).
		Msg("deck: degrading to synthetic deck")
	return EnforceCount(o.degradedSlides(req, lastDiagnostic), req), nil
}

// pause sleeps the configured delay between attempts. No sleep after the
// final attempt.
func (o *Orchestrator) pause(ctx context.Context, attempt int) error {
	if attempt >= o.policy.MaxAttempts {
		return nil
	}
	return sleepContext(ctx, o.policy.Delay)
}

// degradedSlides is the only path where upstream failure reaches the caller
// as content: one slide titled after the request carrying the diagnostic.
func (o *Orchestrator) degradedSlides(req domain.GenerationRequest, diagnostic string) []domain.Slide {
	title := collapseWhitespace(req.Title)
	if title == "" {
		title = "Presentation"
	}
	return []domain.Slide{{
		Index:     1,
		Title:     title,
		Bullets:   []string{finishFragment(diagnostic)},
		Narrative: []string{finishFragment(diagnostic)},
	}}
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
