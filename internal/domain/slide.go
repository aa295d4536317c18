package domain

// DetailLevel controls how much narrative the text model is asked to produce.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailMedium   DetailLevel = "medium"
	DetailDetailed DetailLevel = "detailed"
)

// Style selects the overall tone of the generated copy.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleCasual       Style = "casual"
	StyleAcademic     Style = "academic"
)

// MinSlideCount and MaxSlideCount bound the slide count a request may ask for.
const (
	MinSlideCount = 1
	MaxSlideCount = 20
)

// OutlineSection is one sanitized entry of the user-supplied outline. Title is
// always plain text; Bullets carries the non-empty list items when the raw
// entry was a list or an object with bullet-like fields.
type OutlineSection struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets,omitempty"`
}

// GenerationRequest describes one deck-generation invocation. It is built once
// and never mutated afterwards.
type GenerationRequest struct {
	PresentationID    string           `json:"presentation_id"`
	Title             string           `json:"title"`
	OutlineSections   []OutlineSection `json:"outline,omitempty"`
	DesiredSlideCount int              `json:"slide_count"`
	Language          string           `json:"language,omitempty"`
	DetailLevel       DetailLevel      `json:"detail_level,omitempty"`
	Style             Style            `json:"style,omitempty"`
}

// ClampSlideCount forces a requested count into the supported range.
func ClampSlideCount(n int) int {
	if n < MinSlideCount {
		return MinSlideCount
	}
	if n > MaxSlideCount {
		return MaxSlideCount
	}
	return n
}

// Slide is the normalized unit of output handed to the renderer. Index is
// 1-based, Title is never empty, and Bullets always holds at least one
// non-empty entry.
type Slide struct {
	Index     int      `json:"index"`
	Title     string   `json:"title"`
	Bullets   []string `json:"bullets"`
	Narrative []string `json:"narrative,omitempty"`
}
