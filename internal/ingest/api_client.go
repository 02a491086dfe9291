package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// APIClient fetches projects from the Colosseum projects API. This is the
// preferred strategy: it returns every project with full details and needs
// no HTML parsing.
type APIClient struct {
	Client  *http.Client
	BaseURL string
	SiteURL string

	PageSize      int
	SortBy        string
	IncludeDrafts bool
	UserAgent     string
}

func NewAPIClient(cfg *Config) *APIClient {
	timeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second

	return &APIClient{
		Client:        &http.Client{Timeout: timeout},
		BaseURL:       cfg.Source.APIBaseURL,
		SiteURL:       cfg.Source.SiteBaseURL,
		PageSize:      cfg.Source.PageSize,
		SortBy:        cfg.Source.SortBy,
		IncludeDrafts: cfg.Source.IncludeDrafts,
		UserAgent:     cfg.Fetch.UserAgent,
	}
}

// apiProject matches one item of the projects API response schema.
type apiProject struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Description      string `json:"description"`
	RepoLink         string `json:"repoLink"`
	PresentationLink string `json:"presentationLink"`
	HumanUpvotes     int    `json:"humanUpvotes"`
	AgentUpvotes     int    `json:"agentUpvotes"`
	OwnerAgentName   string `json:"ownerAgentName"`
	TeamName         string `json:"teamName"`
	Status           string `json:"status"`
}

// apiResponse is one page of the paginated projects API.
type apiResponse struct {
	Projects   []apiProject `json:"projects"`
	TotalCount int          `json:"totalCount"`
	HasMore    bool         `json:"hasMore"`
}

// FetchAll paginates the projects API from offset 0 and maps every item to a
// canonical Project. Pagination stops when the source reports no more pages
// or a page comes back short. A non-success HTTP status on any page aborts
// the whole fetch with a FetchError; there is no partial-result return.
func (c *APIClient) FetchAll(ctx context.Context) ([]Project, error) {
	limit := c.PageSize
	offset := 0
	hasMore := true

	var all []Project

	log.Printf("[API] Fetching projects from %s", c.BaseURL)

	for hasMore {
		url := fmt.Sprintf("%s?sortBy=%s&limit=%d&offset=%d&includeDrafts=%t",
			c.BaseURL, c.SortBy, limit, offset, c.IncludeDrafts)

		page, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for _, p := range page.Projects {
			all = append(all, c.mapProject(p))
		}

		log.Printf("[API] Page offset %d: %d projects (total so far: %d)",
			offset, len(page.Projects), len(all))

		offset += limit
		hasMore = page.HasMore && len(page.Projects) >= limit
	}

	log.Printf("[API] Fetch complete: %d projects", len(all))
	return all, nil
}

func (c *APIClient) fetchPage(ctx context.Context, url string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	var page apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return &page, nil
}

// mapProject converts one API item into the canonical shape. The source's
// own slug becomes the external ID; the stored slug is re-derived from the
// display name so both strategies slug identically.
func (c *APIClient) mapProject(p apiProject) Project {
	title := p.Name
	if title == "" {
		title = p.Slug
	}

	description := p.Description
	if description == "" {
		description = NoDescription
	}

	teamName := p.TeamName
	if teamName == "" {
		teamName = p.OwnerAgentName
	}
	if teamName == "" {
		teamName = UnknownTeam
	}

	status := StatusDraft
	if p.Status == "submitted" {
		status = StatusPublished
	}

	var members []string
	if p.OwnerAgentName != "" {
		members = []string{p.OwnerAgentName}
	}

	return Project{
		Title:              title,
		Description:        description,
		TeamName:           teamName,
		Status:             status,
		HumanVotes:         p.HumanUpvotes,
		AgentVotes:         p.AgentUpvotes,
		TotalVotes:         p.HumanUpvotes + p.AgentUpvotes,
		ColosseumURL:       fmt.Sprintf("%s/%s", c.SiteURL, p.Slug),
		ColosseumProjectID: p.Slug,
		Slug:               GenerateSlug(title),
		RepositoryURL:      p.RepoLink,
		DemoURL:            p.PresentationLink,
		TeamMembers:        members,
	}
}
