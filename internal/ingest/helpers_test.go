package ingest

import "testing"

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "Simple title",
			title:    "My Cool Project",
			expected: "my-cool-project",
		},
		{
			name:     "Punctuation stripped",
			title:    "Solana: The $Bot!",
			expected: "solana-the-bot",
		},
		{
			name:     "Underscores collapse to dashes",
			title:    "agent_scout_v2",
			expected: "agent-scout-v2",
		},
		{
			name:     "Repeated separators collapse",
			title:    "a  -  b",
			expected: "a-b",
		},
		{
			name:     "Leading and trailing dashes trimmed",
			title:    "--trim me--",
			expected: "trim-me",
		},
		{
			name:     "Already clean",
			title:    "alpha-bot",
			expected: "alpha-bot",
		},
		{
			name:     "Empty",
			title:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSlug(tt.title); got != tt.expected {
				t.Errorf("GenerateSlug(%q) = %q, want %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "Entities decoded",
			in:       "Fish &amp; Chips &#39;fresh&#39;",
			expected: "Fish & Chips 'fresh'",
		},
		{
			name:     "Whitespace collapsed",
			in:       "  a \n\t b  ",
			expected: "a b",
		},
		{
			name:     "Nbsp becomes space",
			in:       "a&nbsp;b",
			expected: "a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.expected {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags(`<p>Hello <b>world</b></p><script>alert(1)</script>`)
	if got != "Hello world" {
		t.Errorf("stripTags = %q, want %q", got, "Hello world")
	}
}

func TestAppendUnique(t *testing.T) {
	list := appendUnique(nil, "AI")
	list = appendUnique(list, "ai")
	list = appendUnique(list, "  ")
	list = appendUnique(list, "DeFi")

	if len(list) != 2 || list[0] != "AI" || list[1] != "DeFi" {
		t.Errorf("appendUnique produced %v, want [AI DeFi]", list)
	}
}
