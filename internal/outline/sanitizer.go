// Package outline normalizes arbitrary user-supplied outline data into an
// ordered sequence of plain-text section descriptors. Outlines arrive as
// whatever JSON shape the client sent: a string, an array of strings, nested
// arrays, or objects with loosely named fields. Nothing here does I/O.
package outline

import (
	"encoding/json"
	"fmt"
	"strings"

	"deckgen/internal/domain"
)

// Field names probed on object-shaped sections, in priority order. The first
// populated title-like field wins; bullet-like fields are merged in order.
var (
	titleKeys  = []string{"title", "heading", "name", "section", "topic"}
	bulletKeys = []string{"bullets", "points", "items", "details", "content"}
)

// Sanitize converts a decoded JSON-like value into ordered outline sections.
// Unusable entries are dropped; the result may be empty but never nil-panics.
func Sanitize(raw any) []domain.OutlineSection {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		return sectionsFromText(v)
	case []any:
		sections := make([]domain.OutlineSection, 0, len(v))
		for _, entry := range v {
			if sec, ok := sanitizeEntry(entry); ok {
				sections = append(sections, sec)
			}
		}
		return sections
	default:
		if sec, ok := sanitizeEntry(raw); ok {
			return []domain.OutlineSection{sec}
		}
		return nil
	}
}

// SanitizeJSON decodes raw JSON and sanitizes the result. Invalid JSON is
// treated as plain text, one section per non-empty line.
func SanitizeJSON(raw []byte) []domain.OutlineSection {
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return sectionsFromText(string(raw))
	}
	return Sanitize(decoded)
}

func sanitizeEntry(entry any) (domain.OutlineSection, bool) {
	switch v := entry.(type) {
	case string:
		text := collapseWhitespace(v)
		if text == "" {
			return domain.OutlineSection{}, false
		}
		return domain.OutlineSection{Title: text}, true
	case []any:
		items := stringItems(v)
		if len(items) == 0 {
			return domain.OutlineSection{}, false
		}
		return domain.OutlineSection{Title: items[0], Bullets: items}, true
	case map[string]any:
		return sanitizeObject(v)
	case float64, bool, json.Number:
		return domain.OutlineSection{Title: fmt.Sprintf("%v", v)}, true
	default:
		return domain.OutlineSection{}, false
	}
}

func sanitizeObject(obj map[string]any) (domain.OutlineSection, bool) {
	var sec domain.OutlineSection
	for _, key := range titleKeys {
		if text, ok := obj[key].(string); ok {
			if text = collapseWhitespace(text); text != "" {
				sec.Title = text
				break
			}
		}
	}
	for _, key := range bulletKeys {
		switch v := obj[key].(type) {
		case []any:
			sec.Bullets = append(sec.Bullets, stringItems(v)...)
		case string:
			if text := collapseWhitespace(v); text != "" {
				sec.Bullets = append(sec.Bullets, text)
			}
		}
	}
	if sec.Title == "" && len(sec.Bullets) > 0 {
		sec.Title = sec.Bullets[0]
	}
	if sec.Title == "" {
		return domain.OutlineSection{}, false
	}
	return sec, true
}

func sectionsFromText(text string) []domain.OutlineSection {
	var sections []domain.OutlineSection
	for _, line := range strings.Split(text, "\n") {
		line = collapseWhitespace(strings.TrimLeft(line, "-*•\t "))
		if line == "" {
			continue
		}
		sections = append(sections, domain.OutlineSection{Title: line})
	}
	return sections
}

func stringItems(values []any) []string {
	var items []string
	for _, v := range values {
		text, ok := v.(string)
		if !ok {
			continue
		}
		if text = collapseWhitespace(text); text != "" {
			items = append(items, text)
		}
	}
	return items
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
