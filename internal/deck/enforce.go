package deck

import (
	"fmt"

	"deckgen/internal/domain"
)

// EnforceCount trims or pads slides to exactly the requested count. Padding
// synthesizes deterministic fallback slides from the original outline: the
// same request with the same upstream failure always yields the same deck.
// Indices are reassigned 1..count on the way out.
func EnforceCount(slides []domain.Slide, req domain.GenerationRequest) []domain.Slide {
	count := domain.ClampSlideCount(req.DesiredSlideCount)
	if len(slides) > count {
		slides = slides[:count]
	}
	for len(slides) < count {
		slides = append(slides, fallbackSlide(req, len(slides)+1))
	}
	for i := range slides {
		slides[i].Index = i + 1
		if len(slides[i].Bullets) == 0 {
			slides[i].Bullets = []string{finishFragment(slides[i].Title)}
		}
	}
	return slides
}

// fallbackSlide builds the slide for one missing position. The outline section
// at that position is used when it exists; positions beyond the outline get a
// generic placeholder. Outline entries are never cycled.
func fallbackSlide(req domain.GenerationRequest, position int) domain.Slide {
	placeholder := fmt.Sprintf("%s — Section %d", collapseWhitespace(req.Title), position)

	if position > len(req.OutlineSections) {
		return domain.Slide{
			Index:   position,
			Title:   placeholder,
			Bullets: []string{finishFragment(placeholder)},
		}
	}

	sec := req.OutlineSections[position-1]
	title := collapseWhitespace(sec.Title)
	if title == "" {
		title = placeholder
	}
	bullets := make([]string, 0, len(sec.Bullets))
	for _, b := range sec.Bullets {
		if finished := finishFragment(b); finished != "" {
			bullets = append(bullets, finished)
		}
	}
	bullets = dedupeFold(bullets)
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}
	if len(bullets) == 0 {
		bullets = []string{finishFragment(title)}
	}
	return domain.Slide{
		Index:   position,
		Title:   title,
		Bullets: bullets,
	}
}
