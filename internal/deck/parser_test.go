package deck

import (
	"errors"
	"strings"
	"testing"

	"deckgen/internal/domain"
)

func TestParseSlidePayloadClean(t *testing.T) {
	raw := `{"slides":[{"title":"Intro","bullets":["First","Second"],"content":"Opening words."},{"title":"Close","bullets":["Done"]}]}`
	slides, err := ParseSlidePayload(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}
	if slides[0].Title != "Intro" || slides[0].Content != "Opening words." {
		t.Fatalf("unexpected first slide: %#v", slides[0])
	}
	if len(slides[0].Bullets) != 2 || slides[0].Bullets[1] != "Second" {
		t.Fatalf("unexpected bullets: %#v", slides[0].Bullets)
	}
}

func TestParseSlidePayloadEquivalentForms(t *testing.T) {
	clean := `{"slides":[{"title":"Intro","bullets":["First"]}]}`
	variants := []struct {
		name string
		raw  string
	}{
		{"code fence", "```json\n" + clean + "\n```"},
		{"surrounding prose", "Here is your deck:\n" + clean + "\nHope it helps!"},
		{"fence inside prose before payload", "see below ``` " + clean},
		{"trailing comma", `{"slides":[{"title":"Intro","bullets":["First",],}]}`},
		{"raw newline in string", "{\"slides\":[{\"title\":\"In\ntro\",\"bullets\":[\"First\"]}]}"},
		{"truncated payload", `{"slides":[{"title":"Intro","bullets":["First"`},
	}

	for _, tc := range variants {
		t.Run(tc.name, func(t *testing.T) {
			slides, err := ParseSlidePayload(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(slides) != 1 {
				t.Fatalf("expected 1 slide, got %d", len(slides))
			}
			if len(slides[0].Bullets) != 1 || slides[0].Bullets[0] != "First" {
				t.Fatalf("unexpected bullets: %#v", slides[0].Bullets)
			}
		})
	}
}

func TestParseSlidePayloadBareArray(t *testing.T) {
	slides, err := ParseSlidePayload(`[{"title":"One"},{"title":"Two"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slides) != 2 || slides[1].Title != "Two" {
		t.Fatalf("unexpected slides: %#v", slides)
	}
}

func TestParseSlidePayloadAlternateArrayKey(t *testing.T) {
	slides, err := ParseSlidePayload(`{"pages":[{"heading":"One","points":["a"]}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slides) != 1 || slides[0].Title != "One" {
		t.Fatalf("unexpected slides: %#v", slides)
	}
}

func TestParseSlidePayloadUnparseable(t *testing.T) {
	_, err := ParseSlidePayload(`{"slides": not json at all ::}`)
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Excerpt == "" {
		t.Fatal("expected a diagnostic excerpt")
	}
}

func TestParseSlidePayloadNoSlideArray(t *testing.T) {
	_, err := ParseSlidePayload(`{"message":"I could not generate slides"}`)
	var structErr *domain.StructureError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected StructureError, got %v", err)
	}
}

func TestParseSlidePayloadExcerptBounded(t *testing.T) {
	raw := `{"slides": [` + strings.Repeat("x", 5000)
	_, err := ParseSlidePayload(raw)
	if err == nil {
		t.Fatal("expected an error")
	}
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if len(parseErr.Excerpt) > domain.DiagnosticLimit {
		t.Fatalf("excerpt length %d exceeds limit %d", len(parseErr.Excerpt), domain.DiagnosticLimit)
	}
}

func TestRemoveTrailingCommasKeepsStrings(t *testing.T) {
	in := `{"a":"1,2,","b":[1,2,],}`
	want := `{"a":"1,2,","b":[1,2]}`
	if got := removeTrailingCommas(in); got != want {
		t.Fatalf("removeTrailingCommas(%q) = %q, want %q", in, got, want)
	}
}

func TestBalanceDelimiters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":[1,2`, `{"a":[1,2]}`},
		{`{"a":"unterminated`, `{"a":"unterminated"}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tc := range cases {
		if got := balanceDelimiters(tc.in); got != tc.want {
			t.Errorf("balanceDelimiters(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
