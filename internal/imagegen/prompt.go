// Package imagegen drives per-slide illustration generation: prompt building,
// the model fallback chain, content-safety validation, normalization, and
// persistence. Slides are processed sequentially to keep upstream load and
// pacing predictable.
package imagegen

import (
	"fmt"
	"strings"

	"deckgen/internal/domain"
)

// TargetAspectRatio is the deck's fixed illustration aspect ratio.
const TargetAspectRatio = "16:9"

const excerptWordLimit = 40

// BuildIllustrationPrompt derives the illustration prompt for one slide from
// its title and narrative, encoding the aspect ratio and the hard no-text
// constraint.
func BuildIllustrationPrompt(slide domain.Slide) string {
	var lines []string

	title := strings.TrimSpace(slide.Title)
	if title != "" {
		lines = append(lines, fmt.Sprintf("Create a clean presentation illustration for a slide titled %q.", title))
	} else {
		lines = append(lines, "Create a clean presentation illustration for a slide.")
	}

	if excerpt := contentExcerpt(slide); excerpt != "" {
		lines = append(lines, "Slide content: "+excerpt)
	}

	lines = append(lines, fmt.Sprintf("Aspect ratio: %s.", TargetAspectRatio))
	lines = append(lines, "Strictly no text, letters, numbers, logos, or watermarks anywhere in the image.")
	lines = append(lines, "Use a modern, uncluttered visual style suitable as a slide background illustration.")

	return strings.Join(lines, "\n")
}

// contentExcerpt prefers narrative paragraphs over bullets and caps the
// excerpt length so prompts stay small.
func contentExcerpt(slide domain.Slide) string {
	source := strings.Join(slide.Narrative, " ")
	if strings.TrimSpace(source) == "" {
		source = strings.Join(slide.Bullets, " ")
	}
	words := strings.Fields(source)
	if len(words) > excerptWordLimit {
		words = words[:excerptWordLimit]
	}
	return strings.Join(words, " ")
}
