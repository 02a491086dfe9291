package ingest

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Project status values as stored in the database.
const (
	StatusPublished = "Published"
	StatusDraft     = "Draft"
)

// Sentinel values used when a field cannot be extracted from the source.
const (
	NoDescription = "No description available"
	UnknownTeam   = "Unknown Team"
)

// Project is the canonical record produced by either scraping strategy
// (API or HTML). ColosseumProjectID is the source's stable key and the
// join key for reconciliation; records without it never reach the store.
type Project struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	TeamName           string   `json:"teamName"`
	Status             string   `json:"status"`
	HumanVotes         int      `json:"humanVotes"`
	AgentVotes         int      `json:"agentVotes"`
	TotalVotes         int      `json:"totalVotes"`
	ColosseumURL       string   `json:"colosseumUrl"`
	ColosseumProjectID string   `json:"colosseumProjectId"`
	Slug               string   `json:"slug"`
	Categories         []string `json:"categories,omitempty"`
	RepositoryURL      string   `json:"repositoryUrl,omitempty"`
	DemoURL            string   `json:"demoUrl,omitempty"`
	TeamMembers        []string `json:"teamMembers,omitempty"`
	TokenAddress       string   `json:"tokenAddress,omitempty"`
}

// FetchedDocument represents the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// FetchError marks a network or HTTP-level failure. The orchestrator
// treats a FetchError from the API client as "API unavailable" and
// falls back to HTML scraping.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UpsertStats reports the outcome of one reconciliation batch. Counts
// reflect only records that fully succeeded.
type UpsertStats struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
}

// RefreshResult is the aggregate outcome reported by triggers (HTTP and
// scheduled) after a full scrape-and-upsert run.
type RefreshResult struct {
	Success bool   `json:"success"`
	New     int    `json:"new"`
	Updated int    `json:"updated"`
	Error   string `json:"error,omitempty"`
}
