package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"deckgen/internal/domain"
	"deckgen/internal/infra"
	"deckgen/internal/outline"
	"deckgen/internal/sqlinline"
)

// jobRequestWire is the stored payload shape. Outline stays raw so the
// sanitizer can absorb whatever JSON the client originally sent.
type jobRequestWire struct {
	Title       string          `json:"title"`
	Outline     json.RawMessage `json:"outline"`
	SlideCount  int             `json:"slide_count"`
	Language    string          `json:"language"`
	DetailLevel string          `json:"detail_level"`
	Style       string          `json:"style"`
}

// JobRepositoryPG implements domain.JobRepository using PostgreSQL.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

func (r *JobRepositoryPG) Enqueue(ctx context.Context, presentationID string, req domain.GenerationRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	var id string
	if err := r.db.QueryRow(ctx, sqlinline.QJobEnqueue, presentationID, domain.JobStatusQueued, payload).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Claim pops the oldest queued job, or domain.ErrNoJob if the queue is empty.
func (r *JobRepositoryPG) Claim(ctx context.Context) (domain.DeckJob, error) {
	var (
		job     domain.DeckJob
		payload []byte
	)
	err := r.db.QueryRow(ctx, sqlinline.QJobClaim, domain.JobStatusQueued, domain.JobStatusRunning).Scan(&job.ID, &job.PresentationID, &payload)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.DeckJob{}, domain.ErrNoJob
		}
		return domain.DeckJob{}, err
	}
	var wire jobRequestWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return domain.DeckJob{}, fmt.Errorf("decode request for job %s: %w", job.ID, err)
	}
	job.Request = domain.GenerationRequest{
		PresentationID:    job.PresentationID,
		Title:             wire.Title,
		OutlineSections:   outline.SanitizeJSON(wire.Outline),
		DesiredSlideCount: domain.ClampSlideCount(wire.SlideCount),
		Language:          wire.Language,
		DetailLevel:       domain.DetailLevel(wire.DetailLevel),
		Style:             domain.Style(wire.Style),
	}
	return job, nil
}

func (r *JobRepositoryPG) MarkSucceeded(ctx context.Context, jobID string, result domain.DeckResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = r.db.Exec(ctx, sqlinline.QJobMarkSucceeded, jobID, domain.JobStatusSucceeded, payload)
	return err
}

func (r *JobRepositoryPG) MarkFailed(ctx context.Context, jobID string, reason string) error {
	_, err := r.db.Exec(ctx, sqlinline.QJobMarkFailed, jobID, domain.JobStatusFailed, domain.Excerpt(reason))
	return err
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
