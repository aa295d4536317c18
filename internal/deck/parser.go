package deck

import (
	"encoding/json"
	"strings"

	"deckgen/internal/domain"
)

// RawSlide is one slide-like entry extracted from the completion response.
// Every field is optional; downstream normalization fills the gaps.
type RawSlide struct {
	Title   string
	Bullets []string
	Content string
}

// Array fields probed for the slide list, in priority order.
var slideArrayKeys = []string{"slides", "sections", "pages", "items"}

// repairPasses are pure transforms tried in order, each on the output of the
// previous one, until the text parses. No pass ever raises.
var repairPasses = []struct {
	name string
	fn   func(string) string
}{
	{"trailing_commas", removeTrailingCommas},
	{"control_chars", escapeControlChars},
	{"balance", balanceDelimiters},
}

// ParseSlidePayload extracts a slide array from raw completion text. The raw
// payload never escapes this boundary: on failure the returned error carries
// only a bounded excerpt of the cleaned text.
func ParseSlidePayload(raw string) ([]RawSlide, error) {
	cleaned := trimToStructure(stripCodeFence(raw))
	if cleaned == "" {
		return nil, &domain.ParseError{Excerpt: domain.Excerpt(raw), Err: domain.ErrEmptySlideArray}
	}

	value, parseErr := parsePayload(cleaned)
	if parseErr != nil {
		text := cleaned
		repaired := false
		for _, pass := range repairPasses {
			text = pass.fn(text)
			if v, err := parsePayload(text); err == nil {
				value = v
				repaired = true
				break
			}
		}
		if !repaired {
			return nil, &domain.ParseError{Excerpt: domain.Excerpt(cleaned), Err: parseErr}
		}
	}

	slides := extractSlides(value)
	if len(slides) == 0 {
		return nil, &domain.StructureError{Excerpt: domain.Excerpt(cleaned), Reason: "no slide array"}
	}
	return slides, nil
}

func parsePayload(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}
	return value, nil
}

func extractSlides(value any) []RawSlide {
	switch v := value.(type) {
	case []any:
		return slidesFromArray(v)
	case map[string]any:
		for _, key := range slideArrayKeys {
			if arr, ok := v[key].([]any); ok {
				if slides := slidesFromArray(arr); len(slides) > 0 {
					return slides
				}
			}
		}
		// Any array-of-objects field qualifies when none of the known
		// names are present.
		for _, field := range v {
			arr, ok := field.([]any)
			if !ok {
				continue
			}
			if slides := slidesFromArray(arr); len(slides) > 0 {
				return slides
			}
		}
	}
	return nil
}

func slidesFromArray(arr []any) []RawSlide {
	var slides []RawSlide
	for _, entry := range arr {
		switch e := entry.(type) {
		case map[string]any:
			slides = append(slides, slideFromObject(e))
		case string:
			if text := strings.TrimSpace(e); text != "" {
				slides = append(slides, RawSlide{Content: text})
			}
		}
	}
	return slides
}

// slideFromObject tolerates missing fields independently; a slide entry with
// nothing usable still occupies its position.
func slideFromObject(obj map[string]any) RawSlide {
	var slide RawSlide
	for _, key := range []string{"title", "heading", "name"} {
		if text, ok := obj[key].(string); ok && strings.TrimSpace(text) != "" {
			slide.Title = text
			break
		}
	}
	switch v := obj["bullets"].(type) {
	case []any:
		for _, item := range v {
			if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
				slide.Bullets = append(slide.Bullets, text)
			}
		}
	case string:
		slide.Bullets = append(slide.Bullets, v)
	}
	if len(slide.Bullets) == 0 {
		if arr, ok := obj["points"].([]any); ok {
			for _, item := range arr {
				if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
					slide.Bullets = append(slide.Bullets, text)
				}
			}
		}
	}
	for _, key := range []string{"content", "text", "body", "narrative", "description"} {
		if text, ok := obj[key].(string); ok && strings.TrimSpace(text) != "" {
			slide.Content = text
			break
		}
	}
	return slide
}

// stripCodeFence unwraps a fenced response. Only a leading fence counts: a
// fence in the middle of surrounding prose must not cut the payload off.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// trimToStructure narrows the text to the outermost JSON object, falling back
// to the outermost array when no object span exists.
func trimToStructure(text string) string {
	text = strings.TrimSpace(text)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		return text[start : end+1]
	}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// removeTrailingCommas drops commas that directly precede a closing brace or
// bracket, ignoring comma characters inside string literals.
func removeTrailingCommas(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	inString := false
	escaped := false
	pendingComma := -1
	for _, r := range text {
		if inString {
			sb.WriteRune(r)
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			pendingComma = -1
			sb.WriteRune(r)
		case ',':
			pendingComma = sb.Len()
			sb.WriteRune(r)
		case '}', ']':
			if pendingComma >= 0 {
				trimmed := strings.TrimRight(sb.String()[:pendingComma], " \t\r\n") + sb.String()[pendingComma+1:]
				sb.Reset()
				sb.WriteString(trimmed)
			}
			pendingComma = -1
			sb.WriteRune(r)
		default:
			if pendingComma >= 0 && !isJSONSpace(r) {
				pendingComma = -1
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// escapeControlChars replaces raw newlines and tabs inside string literals
// with their escaped forms. Models frequently emit unescaped line breaks in
// long content fields.
func escapeControlChars(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			if escaped {
				escaped = false
				sb.WriteRune(r)
				continue
			}
			switch r {
			case '\\':
				escaped = true
				sb.WriteRune(r)
			case '"':
				inString = false
				sb.WriteRune(r)
			case '\n':
				sb.WriteString(`\n`)
			case '\r':
				sb.WriteString(`\r`)
			case '\t':
				sb.WriteString(`\t`)
			default:
				sb.WriteRune(r)
			}
			continue
		}
		if r == '"' {
			inString = true
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// balanceDelimiters closes an unterminated string literal and appends missing
// closing braces/brackets in nesting order. It only appends; nothing already
// present is altered.
func balanceDelimiters(text string) string {
	var stack []rune
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, r)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}
	var sb strings.Builder
	sb.WriteString(text)
	if inString {
		sb.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			sb.WriteByte('}')
		} else {
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

func isJSONSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
