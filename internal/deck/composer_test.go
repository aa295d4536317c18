package deck

import (
	"strings"
	"testing"

	"deckgen/internal/domain"
)

func TestComposePrompt(t *testing.T) {
	req := domain.GenerationRequest{
		Title:             "History of Go",
		DesiredSlideCount: 5,
		Language:          "de",
		DetailLevel:       domain.DetailBrief,
		Style:             domain.StyleAcademic,
		OutlineSections: []domain.OutlineSection{
			{Title: "Origins", Bullets: []string{"Bell Labs heritage"}},
			{Title: "Adoption"},
		},
	}
	prompt := ComposePrompt(req)

	for _, want := range []string{
		"exactly 5 slides in de",
		`"History of Go"`,
		"Detail level: brief",
		"Tone: academic",
		"1. Origins.",
		"key points: Bell Labs heritage",
		"2. Adoption.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestComposePromptDefaults(t *testing.T) {
	prompt := ComposePrompt(domain.GenerationRequest{Title: "T", DesiredSlideCount: 50})
	if !strings.Contains(prompt, "exactly 20 slides in en") {
		t.Fatalf("count not clamped or language not defaulted:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Detail level: medium") || !strings.Contains(prompt, "Tone: professional") {
		t.Fatalf("defaults not applied:\n%s", prompt)
	}
}

func TestComposePromptStableAcrossCalls(t *testing.T) {
	req := domain.GenerationRequest{Title: "T", DesiredSlideCount: 3}
	if ComposePrompt(req) != ComposePrompt(req) {
		t.Fatal("prompt must be deterministic for the same request")
	}
}
