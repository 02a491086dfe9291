package main

import (
	"context"
	"log"
	"os"

	"github.com/spark-labs/agent-scout/internal/api"
	"github.com/spark-labs/agent-scout/internal/db"
	"github.com/spark-labs/agent-scout/internal/ingest"
	"github.com/spark-labs/agent-scout/internal/scheduler"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()

	cfg, err := ingest.LoadConfig(os.Getenv("SOURCE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load source config: %v", err)
	}

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	pipeline := ingest.NewPipeline(cfg, pool)

	if os.Getenv("DISABLE_SCHEDULER") == "" {
		go scheduler.New(pipeline, cfg.ScheduleInterval()).Run(ctx)
	}

	srv := api.NewServer(pool, pipeline)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
