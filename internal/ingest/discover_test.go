package ingest

import "testing"

func TestDiscoverSlugs(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name: "Relative anchors",
			html: `<a href="./projects/alpha-bot">Alpha</a> <a href="./projects/beta-bot">Beta</a>`,
			expected: []string{"alpha-bot", "beta-bot"},
		},
		{
			name: "Absolute anchors",
			html: `<a href="/agent-hackathon/projects/gamma-bot">Gamma</a>`,
			expected: []string{"gamma-bot"},
		},
		{
			name: "Duplicates collapse",
			html: `<a href="./projects/alpha-bot">x</a><a href="./projects/alpha-bot">y</a>`,
			expected: []string{"alpha-bot"},
		},
		{
			name: "Fallback pattern when anchors change shape",
			html: `<div data-link="https://colosseum.com/projects/delta-bot"></div>`,
			expected: []string{"delta-bot"},
		},
		{
			name:     "No links means empty, not error",
			html:     `<html><body>Nothing here</body></html>`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscoverSlugs(tt.html)
			if len(got) != len(tt.expected) {
				t.Fatalf("DiscoverSlugs found %d slugs, want %d: %v", len(got), len(tt.expected), got)
			}
			for _, slug := range tt.expected {
				if _, ok := got[slug]; !ok {
					t.Errorf("missing slug %q in %v", slug, got)
				}
			}
		})
	}
}

func TestDiscoverSlugsPrefersPrimaryPattern(t *testing.T) {
	// When primary anchors are present, the loose fallback must not add
	// extra noise slugs.
	html := `<a href="./projects/alpha-bot">a</a> <span>/projects/should-not-appear</span>`
	got := DiscoverSlugs(html)
	if _, ok := got["should-not-appear"]; ok {
		t.Error("fallback pattern leaked into primary results")
	}
	if _, ok := got["alpha-bot"]; !ok {
		t.Errorf("primary slug missing: %v", got)
	}
}
