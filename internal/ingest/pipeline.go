package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pipeline is the full refresh path: scrape everything, reconcile into the
// store, report counts. It is what both the HTTP trigger and the scheduler
// invoke.
type Pipeline struct {
	Scraper    *Scraper
	Reconciler *Reconciler
}

func NewPipeline(cfg *Config, pool *pgxpool.Pool) *Pipeline {
	return &Pipeline{
		Scraper:    NewScraper(cfg),
		Reconciler: NewReconciler(pool),
	}
}

// UpdateProjects runs one complete refresh. A scrape failure aborts before
// any write; reconciliation failures on individual records do not.
func (p *Pipeline) UpdateProjects(ctx context.Context) RefreshResult {
	start := time.Now()
	log.Printf("[Pipeline] Refresh starting")

	projects, err := p.Scraper.ScrapeProjects(ctx)
	if err != nil {
		log.Printf("[Pipeline] Refresh failed: %v", err)
		return RefreshResult{Success: false, Error: err.Error()}
	}

	stats, err := p.Reconciler.Upsert(ctx, projects)
	if err != nil {
		log.Printf("[Pipeline] Refresh failed: %v", err)
		return RefreshResult{Success: false, Error: err.Error()}
	}

	log.Printf("[Pipeline] Refresh done in %s: %d new, %d updated",
		time.Since(start).Round(time.Millisecond), stats.New, stats.Updated)

	return RefreshResult{Success: true, New: stats.New, Updated: stats.Updated}
}

// UpdateOne refreshes a single project by its source slug and returns the
// scraped record alongside the counts so callers can inspect what was seen.
func (p *Pipeline) UpdateOne(ctx context.Context, slug string) (Project, RefreshResult) {
	project, err := p.Scraper.ScrapeOne(ctx, slug)
	if err != nil {
		return Project{}, RefreshResult{Success: false, Error: fmt.Sprintf("scraping %s: %v", slug, err)}
	}

	stats, err := p.Reconciler.Upsert(ctx, []Project{project})
	if err != nil {
		return Project{}, RefreshResult{Success: false, Error: err.Error()}
	}

	return project, RefreshResult{Success: true, New: stats.New, Updated: stats.Updated}
}
