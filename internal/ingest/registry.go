package ingest

import (
	"embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed config/colosseum.yaml
var sourceYAML embed.FS

// SourceConfig describes the upstream listing source: the structured API
// endpoint and the HTML pages used when the API is down.
type SourceConfig struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	APIBaseURL    string `yaml:"api_base_url"`
	SiteBaseURL   string `yaml:"site_base_url"`
	PageSize      int    `yaml:"page_size"`
	SortBy        string `yaml:"sort_by"`
	IncludeDrafts bool   `yaml:"include_drafts"`
	Schedule      string `yaml:"schedule"`
}

// FetchConfig defines HTTP fetching configuration.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // Default: 3
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // Requests per second, default: 1.0
	UserAgent      string  `yaml:"user_agent,omitempty"`
}

// Config is the full ingestion configuration loaded from the embedded YAML.
type Config struct {
	Source SourceConfig `yaml:"source"`
	Fetch  FetchConfig  `yaml:"fetch"`
}

// ScheduleInterval parses the configured refresh cadence, defaulting to 6h.
func (c *Config) ScheduleInterval() time.Duration {
	if c.Source.Schedule != "" {
		if d, err := time.ParseDuration(c.Source.Schedule); err == nil && d > 0 {
			return d
		}
	}
	return 6 * time.Hour
}

// LoadConfig reads the embedded source configuration. The path parameter
// allows a filesystem override for local development and is otherwise ignored.
func LoadConfig(path string) (*Config, error) {
	data, err := sourceYAML.ReadFile("config/colosseum.yaml")
	if err != nil && path != "" {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading source config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing source config: %w", err)
	}

	if cfg.Source.PageSize <= 0 {
		cfg.Source.PageSize = 100
	}
	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "Mozilla/5.0 (compatible; SparkBot/1.0)"
	}

	return &cfg, nil
}
