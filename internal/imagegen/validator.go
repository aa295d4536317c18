package imagegen

import (
	"context"
	"strings"

	"deckgen/internal/domain"
	"deckgen/internal/infra"
)

// Verdict is the outcome of one content-safety check.
type Verdict int

const (
	// VerdictClear: no visible text detected, accept.
	VerdictClear Verdict = iota
	// VerdictTextDetected: visible text found, discard and retry.
	VerdictTextDetected
	// VerdictUnknown: the validator answered but ambiguously. Treated as
	// retryable, distinct from a validator failure.
	VerdictUnknown
	// VerdictSkipped: validation not configured, accept.
	VerdictSkipped
	// VerdictError: the validator itself failed. The check is advisory, so
	// this fails open and the candidate is accepted.
	VerdictError
)

func (v Verdict) String() string {
	switch v {
	case VerdictClear:
		return "clear"
	case VerdictTextDetected:
		return "text_detected"
	case VerdictUnknown:
		return "unknown"
	case VerdictSkipped:
		return "skipped"
	case VerdictError:
		return "error"
	}
	return "invalid"
}

const validatorInstruction = "Inspect this image. Does it contain any visible text, letters, numbers, " +
	"typography, or watermarks? Answer with exactly one word: TEXT if any is visible, NO_TEXT otherwise."

// ImageClassifier is the slice of the model client the validator needs.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, model, instruction string, data []byte, mimeType string) (string, error)
}

// SafetyValidator asks a secondary text-capable model whether a candidate
// image carries visible text.
type SafetyValidator struct {
	classifier ImageClassifier
	model      string
	logger     infra.Logger
}

func NewSafetyValidator(classifier ImageClassifier, model string, logger infra.Logger) *SafetyValidator {
	return &SafetyValidator{classifier: classifier, model: strings.TrimSpace(model), logger: logger}
}

// Validate classifies one candidate. It never returns an error: validator
// failures are a named verdict so the caller applies the fail-open policy
// explicitly.
func (v *SafetyValidator) Validate(ctx context.Context, candidate domain.ImageCandidate) Verdict {
	if v == nil || v.classifier == nil || v.model == "" {
		return VerdictSkipped
	}

	answer, err := v.classifier.ClassifyImage(ctx, v.model, validatorInstruction, candidate.Data, candidate.MIMEType)
	if err != nil {
		v.logger.Warn().
			Err(err).
			Int("slide", candidate.SlideIndex).
			Str("model", v.model).
			Msg("imagegen: safety validator unavailable, accepting candidate")
		return VerdictError
	}
	return parseVerdict(answer)
}

// parseVerdict maps the model's short answer onto a verdict. NO_TEXT must be
// checked before TEXT since it contains it.
func parseVerdict(answer string) Verdict {
	normalized := strings.ToUpper(strings.TrimSpace(answer))
	switch {
	case strings.Contains(normalized, "NO_TEXT"), strings.Contains(normalized, "NO TEXT"):
		return VerdictClear
	case strings.Contains(normalized, "TEXT"):
		return VerdictTextDetected
	default:
		return VerdictUnknown
	}
}
