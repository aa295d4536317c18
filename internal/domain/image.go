package domain

import (
	"context"
	"time"
)

// ImageCandidate is a freshly generated illustration that has not passed
// content-safety validation yet. It lives only inside one validation attempt.
type ImageCandidate struct {
	SlideIndex int
	Data       []byte
	MIMEType   string
	ModelUsed  string
}

// GeneratedImage is an accepted, normalized illustration ready to persist.
type GeneratedImage struct {
	SlideIndex int
	Data       []byte
	MIMEType   string
	ModelUsed  string
}

// ImageRecord is the persisted form of a generated image. At most one record
// exists per (PresentationID, SlideIndex).
type ImageRecord struct {
	ID             string    `json:"id"`
	PresentationID string    `json:"presentation_id"`
	SlideIndex     int       `json:"slide_index"`
	URL            string    `json:"url"`
	CreatedAt      time.Time `json:"created_at"`
}

// SlideError records an image-generation failure for a single slide.
type SlideError struct {
	SlideIndex int    `json:"slide_index"`
	Message    string `json:"message"`
}

// ImageGenerationResult reports the per-slide outcome for one presentation.
// Partial success is the normal case: slides missing an image are enumerated
// in Errors, never hidden.
type ImageGenerationResult struct {
	Accepted []ImageRecord `json:"accepted"`
	Errors   []SlideError  `json:"errors"`
}

// ImageRepository persists image records. Replace removes any prior record for
// the same (presentation, slide index) before inserting, so a slide never
// exposes two images at once.
type ImageRepository interface {
	Replace(ctx context.Context, rec ImageRecord) (ImageRecord, error)
	DeleteForPresentation(ctx context.Context, presentationID string) error
	ListForPresentation(ctx context.Context, presentationID string) ([]ImageRecord, error)
}
