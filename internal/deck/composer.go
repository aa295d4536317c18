// Package deck turns an outline into a guaranteed-shaped sequence of slides.
// It owns the text half of the pipeline: prompt composition, parsing and
// repair of model output, normalization, and the exact-count guarantee.
package deck

import (
	"fmt"
	"strings"

	"deckgen/internal/domain"
)

// ComposePrompt builds the single structured instruction sent to the
// text-completion service. The same prompt is reused verbatim across retries.
func ComposePrompt(req domain.GenerationRequest) string {
	count := domain.ClampSlideCount(req.DesiredSlideCount)
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "en"
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a presentation author. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"slides":[{"title":string,"bullets":string[],"content":string}]}`)
	fmt.Fprintf(sb, ". Produce exactly %d slides in %s.", count, language)
	fmt.Fprintf(sb, " Presentation title: %q.", req.Title)
	fmt.Fprintf(sb, " Detail level: %s. Tone: %s.", detailLevelOrDefault(req.DetailLevel), styleOrDefault(req.Style))
	sb.WriteString(" Each slide needs a short title, 3 to 5 concise bullets, and a content paragraph expanding on them.")
	sb.WriteString(" Do not wrap the JSON in markdown fences or add commentary.")

	if len(req.OutlineSections) > 0 {
		sb.WriteString(" Cover these sections in order:")
		for i, sec := range req.OutlineSections {
			fmt.Fprintf(sb, " %d. %s.", i+1, sec.Title)
			if len(sec.Bullets) > 0 {
				fmt.Fprintf(sb, " (key points: %s)", strings.Join(sec.Bullets, "; "))
			}
		}
	}
	return sb.String()
}

func detailLevelOrDefault(level domain.DetailLevel) domain.DetailLevel {
	switch level {
	case domain.DetailBrief, domain.DetailMedium, domain.DetailDetailed:
		return level
	default:
		return domain.DetailMedium
	}
}

func styleOrDefault(style domain.Style) domain.Style {
	switch style {
	case domain.StyleProfessional, domain.StyleCasual, domain.StyleAcademic:
		return style
	default:
		return domain.StyleProfessional
	}
}
