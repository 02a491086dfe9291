package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/spark-labs/agent-scout/internal/ingest"
)

// Scheduler runs the refresh pipeline on a fixed cadence. One run fires
// immediately on start so a fresh deployment is never empty until the
// first tick.
type Scheduler struct {
	Pipeline *ingest.Pipeline
	Interval time.Duration
}

func New(pipeline *ingest.Pipeline, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{Pipeline: pipeline, Interval: interval}
}

// Run blocks until ctx is cancelled. Failed runs are logged and the ticker
// keeps going; a refresh failure is never fatal to the process.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[Scheduler] Refreshing every %s", s.Interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Scheduler] Stopping: %v", ctx.Err())
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result := s.Pipeline.UpdateProjects(ctx)
	if !result.Success {
		log.Printf("[Scheduler] Scheduled refresh failed: %s", result.Error)
		return
	}
	log.Printf("[Scheduler] Scheduled refresh: %d new, %d updated", result.New, result.Updated)
}
