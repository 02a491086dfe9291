package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/spark-labs/agent-scout/internal/db"
	"github.com/spark-labs/agent-scout/internal/ingest"
)

// Runs the scraper directly, bypassing the HTTP trigger. Without -save the
// results are printed as JSON and nothing touches the database.
func main() {
	slug := flag.String("slug", "", "scrape a single project by slug")
	save := flag.Bool("save", false, "upsert results into the database")
	plain := flag.Bool("plain", false, "use the plain HTTP fetcher instead of colly")
	flag.Parse()

	ctx := context.Background()

	cfg, err := ingest.LoadConfig(os.Getenv("SOURCE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load source config: %v", err)
	}

	scraper := ingest.NewScraper(cfg)
	if *plain {
		scraper.Fetcher = ingest.NewHTTPFetcher(cfg.Fetch)
	}

	var projects []ingest.Project
	if *slug != "" {
		p, err := scraper.ScrapeOne(ctx, *slug)
		if err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		projects = []ingest.Project{p}
	} else {
		projects, err = scraper.ScrapeProjects(ctx)
		if err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
	}

	if !*save {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(projects); err != nil {
			log.Fatalf("Encoding failed: %v", err)
		}
		return
	}

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	stats, err := ingest.NewReconciler(pool).Upsert(ctx, projects)
	if err != nil {
		log.Fatalf("Upsert failed: %v", err)
	}

	log.Printf("Done: %d new, %d updated", stats.New, stats.Updated)
}
