package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
)

// Scraper runs the two-tier scraping strategy: the structured projects API
// first, the HTML pages only when the API is unavailable. Both strategies
// produce the same canonical Project shape.
type Scraper struct {
	API     *APIClient
	Fetcher Fetcher
	SiteURL string
}

// NewScraper wires a scraper from the source configuration with the default
// colly-backed page fetcher.
func NewScraper(cfg *Config) *Scraper {
	return &Scraper{
		API:     NewAPIClient(cfg),
		Fetcher: NewCollyFetcher(cfg.Fetch),
		SiteURL: cfg.Source.SiteBaseURL,
	}
}

// ScrapeProjects fetches every discoverable project. An API failure is not
// fatal: it is logged and the HTML path takes over. An error is returned
// only when both strategies fail.
func (s *Scraper) ScrapeProjects(ctx context.Context) ([]Project, error) {
	projects, err := s.API.FetchAll(ctx)
	if err == nil {
		return projects, nil
	}

	log.Printf("[Scraper] API fetch failed, falling back to HTML: %v", err)

	projects, htmlErr := s.scrapeHTML(ctx)
	if htmlErr != nil {
		return nil, fmt.Errorf("api fetch failed (%v); html fallback failed: %w", err, htmlErr)
	}

	return projects, nil
}

// scrapeHTML fetches the listing page, discovers project slugs, then fetches
// and parses each detail page sequentially. A failed detail page is logged
// and skipped so one broken project never sinks the batch.
func (s *Scraper) scrapeHTML(ctx context.Context) ([]Project, error) {
	html, err := s.fetchPage(ctx, s.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing page: %w", err)
	}

	slugSet := DiscoverSlugs(html)

	// Stable iteration order keeps runs reproducible and logs readable.
	slugs := make([]string, 0, len(slugSet))
	for slug := range slugSet {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	log.Printf("[Scraper] Discovered %d project links", len(slugs))

	var projects []Project
	for _, slug := range slugs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p, err := s.ScrapeOne(ctx, slug)
		if err != nil {
			log.Printf("[Scraper] Skipping %s: %v", slug, err)
			continue
		}
		projects = append(projects, p)
	}

	log.Printf("[Scraper] HTML scrape complete: %d/%d projects", len(projects), len(slugs))
	return projects, nil
}

// ScrapeOne fetches and parses a single project detail page by slug.
func (s *Scraper) ScrapeOne(ctx context.Context, slug string) (Project, error) {
	pageURL := fmt.Sprintf("%s/%s", s.SiteURL, slug)

	html, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return Project{}, err
	}

	return ParseProjectPage(html, slug, s.SiteURL)
}

func (s *Scraper) fetchPage(ctx context.Context, url string) (string, error) {
	doc, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer doc.Body.Close()

	body, err := io.ReadAll(doc.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	return string(body), nil
}
