package backend

import (
	"strings"
	"testing"
)

func TestSearchHit_Text(t *testing.T) {
	tests := []struct {
		name string
		hit  SearchHit
		want string
	}{
		{
			name: "prefers content field",
			hit:  SearchHit{Content: map[string]any{"content": "the body", "title": "the title"}},
			want: "the body",
		},
		{
			name: "falls back to title",
			hit:  SearchHit{Content: map[string]any{"title": "the title", "category": "docs"}},
			want: "the title",
		},
		{
			name: "empty content falls back to title",
			hit:  SearchHit{Content: map[string]any{"content": "", "title": "the title"}},
			want: "the title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hit.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchHit_TextStringified(t *testing.T) {
	hit := SearchHit{Content: map[string]any{"category": "docs"}}

	got := hit.Text()
	if !strings.Contains(got, "docs") {
		t.Errorf("Text() = %q, want stringified content mentioning docs", got)
	}
}

func TestPointID_Stable(t *testing.T) {
	a := pointID("DOC-0001")
	b := pointID("DOC-0001")
	c := pointID("DOC-0002")

	if a != b {
		t.Errorf("pointID not deterministic: %d != %d", a, b)
	}
	if a == c {
		t.Errorf("pointID collision for distinct ids: %d", a)
	}
}

func TestParseBulkResponse(t *testing.T) {
	body := `{
  "errors": true,
  "items": [
    {"index": {"status": 201}},
    {"index": {"status": 200}},
    {"index": {"status": 400}}
  ]
}`

	success, failed, err := parseBulkResponse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseBulkResponse() error = %v", err)
	}
	if success != 2 {
		t.Errorf("success = %d, want 2", success)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}
