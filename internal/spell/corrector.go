// Package spell is the boundary to the external spelling-correction service.
// The pipeline consumes it as two pure functions; the dictionary itself lives
// elsewhere.
package spell

// Corrector fixes spelling in generated copy before it reaches the renderer.
type Corrector interface {
	CorrectText(text string) string
	CorrectList(items []string) []string
}

// Passthrough is the no-op corrector used when no dictionary service is wired.
type Passthrough struct{}

func (Passthrough) CorrectText(text string) string { return text }

func (Passthrough) CorrectList(items []string) []string { return items }

var _ Corrector = Passthrough{}
