package ingest

import (
	"strings"
	"testing"
)

const sampleDetailPage = `<!DOCTYPE html>
<html>
<head><title>Alpha Trading Bot | Colosseum</title></head>
<body>
<article>
<h1>Alpha Trading Bot</h1>
<p>Submitted by team_alpha </p>
<h2>Description</h2>
<p>An autonomous AI trading agent that routes DeFi orders across Solana venues with on-chain settlement.</p>
<h2>Links</h2>
<a href="https://github.com/team-alpha/alpha-bot">Source</a>
<h3>Technical Demo</h3>
<a href="https://demo.example.com/alpha">Watch</a>
<p>$ALPHA: 48BbwbZHWc8QJBiuGJTQZD5aWZdP3i6xrDw5N9EHpump</p>
<h2>Team Members</h2>
<div>alice_votes Joined 8/15/2025</div>
<div>bob-codes Joined 9/1/2025</div>
<div class="votes">12 7 19</div>
<div class="votes">12 7 19</div>
</article>
</body>
</html>`

func TestParseProjectPage(t *testing.T) {
	p, err := ParseProjectPage(sampleDetailPage, "alpha-trading-bot", "https://colosseum.com/agent-hackathon/projects")
	if err != nil {
		t.Fatalf("ParseProjectPage failed: %v", err)
	}

	if p.Title != "Alpha Trading Bot" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Slug != "alpha-trading-bot" {
		t.Errorf("Slug = %q", p.Slug)
	}
	if p.ColosseumProjectID != "alpha-trading-bot" {
		t.Errorf("ColosseumProjectID = %q", p.ColosseumProjectID)
	}
	if p.ColosseumURL != "https://colosseum.com/agent-hackathon/projects/alpha-trading-bot" {
		t.Errorf("ColosseumURL = %q", p.ColosseumURL)
	}
	if !strings.HasPrefix(p.Description, "An autonomous AI trading agent") {
		t.Errorf("Description = %q", p.Description)
	}
	if p.Status != StatusPublished {
		t.Errorf("Status = %q", p.Status)
	}
	if p.HumanVotes != 12 || p.AgentVotes != 7 {
		t.Errorf("votes = %d/%d, want 12/7", p.HumanVotes, p.AgentVotes)
	}
	if p.TotalVotes != 19 {
		t.Errorf("TotalVotes = %d, want 19", p.TotalVotes)
	}
	if p.RepositoryURL != "https://github.com/team-alpha/alpha-bot" {
		t.Errorf("RepositoryURL = %q", p.RepositoryURL)
	}
	if p.DemoURL != "https://demo.example.com/alpha" {
		t.Errorf("DemoURL = %q", p.DemoURL)
	}
	if p.TokenAddress != "$ALPHA: 48BbwbZHWc8QJBiuGJTQZD5aWZdP3i6xrDw5N9EHpump" {
		t.Errorf("TokenAddress = %q", p.TokenAddress)
	}
	if len(p.TeamMembers) != 2 || p.TeamMembers[0] != "alice_votes — Joined 8/15/2025" {
		t.Errorf("TeamMembers = %v", p.TeamMembers)
	}

	wantCategories := map[string]bool{"Trading": true, "DeFi": true, "AI": true}
	for _, c := range p.Categories {
		if !wantCategories[c] {
			t.Errorf("unexpected category %q", c)
		}
		delete(wantCategories, c)
	}
	for missing := range wantCategories {
		t.Errorf("missing category %q", missing)
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "Title tag with brand suffix",
			html:     `<title>My Cool Project | Colosseum</title>`,
			expected: "My Cool Project",
		},
		{
			name:     "Agent Hackathon suffix",
			html:     `<title>Beta Bot | Agent Hackathon</title>`,
			expected: "Beta Bot",
		},
		{
			name:     "Placeholder title falls through to h1",
			html:     `<title>Project | Something</title><h1>Real Name</h1>`,
			expected: "Real Name",
		},
		{
			name:     "Overlong h1 rejected",
			html:     `<h1>` + strings.Repeat("x", 90) + `</h1><h1>Short Name</h1>`,
			expected: "Short Name",
		},
		{
			name:     "No title anywhere falls back to slug",
			html:     `<body>nothing</body>`,
			expected: "some-slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.html, "some-slug"); got != tt.expected {
				t.Errorf("extractTitle = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractDescription(t *testing.T) {
	longText := "This description easily clears the minimum length threshold for acceptance."

	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "Heading-bounded block",
			html:     `<h2>Description</h2><p>` + longText + `</p><h2>Links</h2>`,
			expected: longText,
		},
		{
			name:     "Div fallback",
			html:     `<h2>Description</h2><div>` + longText + `</div>`,
			expected: longText,
		},
		{
			name:     "Paragraph fallback",
			html:     `<span>Description</span><section><p>` + longText + `</p></section>`,
			expected: longText,
		},
		{
			name:     "Too short yields sentinel",
			html:     `<h2>Description</h2><p>tiny</p><h2>Links</h2>`,
			expected: NoDescription,
		},
		{
			name:     "No description section yields sentinel",
			html:     `<h2>About</h2><p>` + longText + `</p>`,
			expected: NoDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractDescription(tt.html); got != tt.expected {
				t.Errorf("extractDescription = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractTeamName(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "by pattern",
			html:     `<p>by team_alpha</p>`,
			expected: "team_alpha",
		},
		{
			name:     "Team label pattern",
			html:     `<p>Team: night-owls</p>`,
			expected: "night-owls",
		},
		{
			name:     "Nothing yields sentinel",
			html:     `<p>no attribution here</p>`,
			expected: UnknownTeam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTeamName(tt.html); got != tt.expected {
				t.Errorf("extractTeamName = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractVotes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		human int
		agent int
		total int
	}{
		{
			name:  "Single triple",
			text:  "upvotes 3 5 8 footer",
			human: 3, agent: 5, total: 8,
		},
		{
			name:  "Last triple wins",
			text:  "1 2 3 then later 10 20 30",
			human: 10, agent: 20, total: 30,
		},
		{
			name:  "Duplicate rendering collapses with max total",
			text:  "3 5 8 3 5 8",
			human: 3, agent: 5, total: 8,
		},
		{
			name:  "Values over 1000 ignored",
			text:  "2025 1920 1080 and real 4 6 10",
			human: 4, agent: 6, total: 10,
		},
		{
			name:  "No triples",
			text:  "no numbers worth counting",
			human: 0, agent: 0, total: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, a, total := extractVotes(tt.text)
			if h != tt.human || a != tt.agent || total != tt.total {
				t.Errorf("extractVotes = %d/%d/%d, want %d/%d/%d",
					h, a, total, tt.human, tt.agent, tt.total)
			}
		})
	}
}

func TestExtractStatus(t *testing.T) {
	if got := extractStatus(`<span class="badge">Draft</span>`); got != StatusDraft {
		t.Errorf("draft badge: got %q", got)
	}
	if got := extractStatus(`<span class="badge">Live</span>`); got != StatusPublished {
		t.Errorf("no draft marker: got %q", got)
	}
}

func TestExtractDemoURLBothOrders(t *testing.T) {
	labelFirst := `<h3>Technical Demo</h3><a href="https://demo.example.com/a">Watch</a>`
	if got := extractDemoURL(labelFirst); got != "https://demo.example.com/a" {
		t.Errorf("label-first: got %q", got)
	}

	linkFirst := `<a href="https://demo.example.com/b">Technical Demo</a>`
	if got := extractDemoURL(linkFirst); got != "https://demo.example.com/b" {
		t.Errorf("link-first: got %q", got)
	}

	if got := extractDemoURL(`<a href="https://example.com">Docs</a>`); got != "" {
		t.Errorf("no demo label: got %q", got)
	}
}

func TestExtractTeamMembersFallback(t *testing.T) {
	// No joined fragments: the team name stands in.
	members := extractTeamMembers(`<p>no roster</p>`, "team_alpha")
	if len(members) != 1 || members[0] != "team_alpha" {
		t.Errorf("fallback members = %v", members)
	}

	// Unknown team falls all the way to empty.
	members = extractTeamMembers(`<p>no roster</p>`, UnknownTeam)
	if len(members) != 0 {
		t.Errorf("sentinel team produced members: %v", members)
	}
}

func TestParseProjectPageDraftStatus(t *testing.T) {
	html := `<title>Beta | Colosseum</title><body><p>This project is a draft entry.</p></body>`
	p, err := ParseProjectPage(html, "beta", "https://colosseum.com/agent-hackathon/projects")
	if err != nil {
		t.Fatalf("ParseProjectPage failed: %v", err)
	}
	if p.Status != StatusDraft {
		t.Errorf("Status = %q, want %q", p.Status, StatusDraft)
	}
	if p.Description != NoDescription {
		t.Errorf("Description = %q, want sentinel", p.Description)
	}
	if p.TeamName != UnknownTeam {
		t.Errorf("TeamName = %q, want sentinel", p.TeamName)
	}
}
