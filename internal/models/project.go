package models

import "time"

// AgentProject is a stored hackathon project row as served by the read API.
type AgentProject struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	TeamName           string    `json:"teamName"`
	Status             string    `json:"status"`
	HumanVotes         int       `json:"humanVotes"`
	AgentVotes         int       `json:"agentVotes"`
	TotalVotes         int       `json:"totalVotes"`
	ColosseumURL       string    `json:"colosseumUrl"`
	ColosseumProjectID string    `json:"colosseumProjectId"`
	Slug               string    `json:"slug"`
	Categories         []string  `json:"categories"`
	RepositoryURL      string    `json:"repositoryUrl,omitempty"`
	DemoURL            string    `json:"demoUrl,omitempty"`
	TeamMembers        []string  `json:"teamMembers"`
	TokenAddress       string    `json:"tokenAddress,omitempty"`
	ScrapedAt          time.Time `json:"scrapedAt"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
