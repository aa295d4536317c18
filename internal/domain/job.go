package domain

import "context"

// Deck job lifecycle states.
const (
	JobStatusQueued    = "QUEUED"
	JobStatusRunning   = "RUNNING"
	JobStatusSucceeded = "SUCCEEDED"
	JobStatusFailed    = "FAILED"
)

// DeckJob is one queued request to build a presentation.
type DeckJob struct {
	ID             string
	PresentationID string
	Request        GenerationRequest
}

// DeckResult is what a finished job stores: the final slides plus the
// per-slide image outcome.
type DeckResult struct {
	Slides []Slide               `json:"slides"`
	Images ImageGenerationResult `json:"images"`
}

// JobRepository manages the deck job queue. Claim returns ErrNoJob when the
// queue is empty.
type JobRepository interface {
	Enqueue(ctx context.Context, presentationID string, req GenerationRequest) (string, error)
	Claim(ctx context.Context) (DeckJob, error)
	MarkSucceeded(ctx context.Context, jobID string, result DeckResult) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
}
