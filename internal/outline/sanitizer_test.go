package outline

import (
	"reflect"
	"testing"

	"deckgen/internal/domain"
)

func TestSanitizeJSONShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []domain.OutlineSection
	}{
		{
			name: "array of strings",
			raw:  `["History", "Impact", "Future"]`,
			want: []domain.OutlineSection{{Title: "History"}, {Title: "Impact"}, {Title: "Future"}},
		},
		{
			name: "single string with lines",
			raw:  `"- History\n- Impact\n\n- Future"`,
			want: []domain.OutlineSection{{Title: "History"}, {Title: "Impact"}, {Title: "Future"}},
		},
		{
			name: "objects with loose field names",
			raw:  `[{"heading":"Intro","points":["a","b"]},{"title":"Close","bullets":["c"]}]`,
			want: []domain.OutlineSection{
				{Title: "Intro", Bullets: []string{"a", "b"}},
				{Title: "Close", Bullets: []string{"c"}},
			},
		},
		{
			name: "nested arrays",
			raw:  `[["First point", "Second point"]]`,
			want: []domain.OutlineSection{{Title: "First point", Bullets: []string{"First point", "Second point"}}},
		},
		{
			name: "whitespace collapsed",
			raw:  `["  History   of\t Go  "]`,
			want: []domain.OutlineSection{{Title: "History of Go"}},
		},
		{
			name: "empty entries dropped",
			raw:  `["", "   ", "Kept"]`,
			want: []domain.OutlineSection{{Title: "Kept"}},
		},
		{
			name: "title from first bullet when missing",
			raw:  `[{"bullets":["Only bullet"]}]`,
			want: []domain.OutlineSection{{Title: "Only bullet", Bullets: []string{"Only bullet"}}},
		},
		{
			name: "invalid json treated as plain text",
			raw:  "History\nImpact",
			want: []domain.OutlineSection{{Title: "History"}, {Title: "Impact"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeJSON([]byte(tc.raw))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SanitizeJSON(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSanitizeJSONEmpty(t *testing.T) {
	if got := SanitizeJSON(nil); got != nil {
		t.Fatalf("expected nil sections, got %#v", got)
	}
	if got := SanitizeJSON([]byte(`[]`)); len(got) != 0 {
		t.Fatalf("expected no sections, got %#v", got)
	}
	if got := SanitizeJSON([]byte(`null`)); got != nil {
		t.Fatalf("expected nil sections for null, got %#v", got)
	}
}

func TestSanitizeScalarEntries(t *testing.T) {
	got := Sanitize([]any{float64(42), true, map[string]any{}})
	want := []domain.OutlineSection{{Title: "42"}, {Title: "true"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sanitize scalars = %#v, want %#v", got, want)
	}
}
