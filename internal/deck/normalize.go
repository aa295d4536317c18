package deck

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"deckgen/internal/domain"
	"deckgen/internal/spell"
)

// MaxBullets caps bullets per slide after deduplication.
const MaxBullets = 5

const bulletGlyphs = "•‣▪◦"

var (
	titleCaser = cases.Title(language.Und, cases.NoLower)

	// Leading dash/number list markers at line starts.
	listPrefixPattern = regexp.MustCompile(`(?m)^\s*(?:[-*–]|\d+[.)])\s+`)

	// A lowercase letter or digit glued to an uppercase letter marks a
	// boundary the model dropped the punctuation for.
	caseTransitionPattern = regexp.MustCompile(`(\p{Ll}|\d)(\p{Lu})`)

	paragraphBreakPattern = regexp.MustCompile(`\n\s*\n`)
)

// NormalizeSlides converts raw slide entries into renderer-ready slides:
// collapsed, capitalized titles with positional fallbacks, 1..5 deduplicated
// terminated bullets, and optional narrative paragraphs. Slide indices are
// assigned here and never reordered afterwards.
func NormalizeSlides(raws []RawSlide, corrector spell.Corrector) []domain.Slide {
	if corrector == nil {
		corrector = spell.Passthrough{}
	}
	slides := make([]domain.Slide, 0, len(raws))
	for i, raw := range raws {
		slides = append(slides, normalizeSlide(raw, i+1, corrector))
	}
	return slides
}

func normalizeSlide(raw RawSlide, index int, corrector spell.Corrector) domain.Slide {
	title := collapseWhitespace(raw.Title)
	if title == "" {
		title = fmt.Sprintf("Section %d", index)
	} else {
		title = titleCaser.String(corrector.CorrectText(title))
	}

	var fragments []string
	if len(raw.Bullets) > 0 {
		for _, b := range raw.Bullets {
			fragments = append(fragments, segmentFragments(b)...)
		}
	} else {
		fragments = segmentFragments(raw.Content)
	}
	bullets := make([]string, 0, len(fragments))
	for _, frag := range fragments {
		if finished := finishFragment(frag); finished != "" {
			bullets = append(bullets, finished)
		}
	}
	bullets = dedupeFold(corrector.CorrectList(bullets))
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}
	if len(bullets) == 0 {
		bullets = []string{finishFragment(title)}
	}

	return domain.Slide{
		Index:     index,
		Title:     title,
		Bullets:   bullets,
		Narrative: normalizeNarrative(raw.Content, corrector),
	}
}

// segmentFragments splits free text into bullet-sized fragments. Explicit
// bullet glyphs win; otherwise line breaks, list prefixes, and case-transition
// boundaries are used.
func segmentFragments(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.ContainsAny(text, bulletGlyphs) {
		return splitNonEmpty(text, func(r rune) bool {
			return strings.ContainsRune(bulletGlyphs, r)
		})
	}
	text = listPrefixPattern.ReplaceAllString(text, "\n")
	text = caseTransitionPattern.ReplaceAllString(text, "$1\n$2")
	return splitNonEmpty(text, func(r rune) bool { return r == '\n' })
}

// finishFragment trims, capitalizes, and terminates one bullet fragment.
func finishFragment(s string) string {
	s = collapseWhitespace(s)
	if s == "" {
		return ""
	}
	s = upperFirst(s)
	if !hasTerminalPunctuation(s) {
		s += "."
	}
	return s
}

// normalizeNarrative splits content into paragraphs on blank lines, restores
// dropped sentence boundaries, and closes each paragraph with punctuation.
func normalizeNarrative(content string, corrector spell.Corrector) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	var paragraphs []string
	for _, block := range paragraphBreakPattern.Split(content, -1) {
		p := collapseWhitespace(block)
		if p == "" {
			continue
		}
		p = caseTransitionPattern.ReplaceAllString(p, "$1. $2")
		p = upperFirst(corrector.CorrectText(p))
		if !hasTerminalPunctuation(p) {
			p += "."
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// dedupeFold removes case-insensitive duplicates preserving first-seen order.
func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var result []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}
	return result
}

func splitNonEmpty(text string, sep func(rune) bool) []string {
	var parts []string
	for _, part := range strings.FieldsFunc(text, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func hasTerminalPunctuation(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '.', '!', '?', ':', ';', '…':
		return true
	}
	return false
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
