package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spark-labs/agent-scout/internal/db"
)

// Reconciler folds scraped projects into the agent_projects table. Matching
// is by colosseum_project_id only; the slug is a derived display key and is
// never used for identity. Each statement exists in a full variant and a
// base-columns variant so a database that has not applied the metadata
// migration yet stays writable.
type Reconciler struct {
	Pool *pgxpool.Pool
}

func NewReconciler(pool *pgxpool.Pool) *Reconciler {
	return &Reconciler{Pool: pool}
}

// Updates leave title, team, status and slug as first observed; only the
// fields that drift between scrapes are refreshed.
const fullUpdate = `
	UPDATE agent_projects SET
		description = $2,
		human_votes = $3, agent_votes = $4, total_votes = $5,
		categories = $6, repository_url = $7, demo_url = $8,
		team_members = $9, token_address = $10,
		scraped_at = NOW(), updated_at = NOW()
	WHERE colosseum_project_id = $1`

const baseUpdate = `
	UPDATE agent_projects SET
		description = $2,
		human_votes = $3, agent_votes = $4, total_votes = $5,
		scraped_at = NOW(), updated_at = NOW()
	WHERE colosseum_project_id = $1`

const fullInsert = `
	INSERT INTO agent_projects (
		id, colosseum_project_id, slug,
		title, description, team_name, status,
		human_votes, agent_votes, total_votes, colosseum_url,
		categories, repository_url, demo_url, team_members, token_address
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const baseInsert = `
	INSERT INTO agent_projects (
		id, colosseum_project_id, slug,
		title, description, team_name, status,
		human_votes, agent_votes, total_votes, colosseum_url
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Upsert reconciles a scraped batch against the store. Records without an
// external ID are dropped before touching the database. A failure on one
// record is logged and skipped; the returned counts cover only records that
// fully succeeded, so re-running the same batch yields (0 new, N updated).
func (r *Reconciler) Upsert(ctx context.Context, projects []Project) (UpsertStats, error) {
	var stats UpsertStats

	for _, p := range projects {
		if p.ColosseumProjectID == "" {
			log.Printf("[Reconcile] Dropping %q: no external project id", p.Title)
			continue
		}

		created, err := r.upsertOne(ctx, sanitizeProject(p))
		if err != nil {
			log.Printf("[Reconcile] Failed to upsert %s: %v", p.ColosseumProjectID, err)
			continue
		}
		if created {
			stats.New++
		} else {
			stats.Updated++
		}
	}

	log.Printf("[Reconcile] Batch complete: %d new, %d updated", stats.New, stats.Updated)
	return stats, nil
}

func (r *Reconciler) upsertOne(ctx context.Context, p Project) (created bool, err error) {
	var existingID string
	err = r.Pool.QueryRow(ctx,
		"SELECT id FROM agent_projects WHERE colosseum_project_id = $1",
		p.ColosseumProjectID).Scan(&existingID)

	switch {
	case err == nil:
		return false, r.update(ctx, p)
	case db.IsNotFound(err):
		return true, r.insert(ctx, p)
	default:
		return false, fmt.Errorf("looking up %s: %w", p.ColosseumProjectID, err)
	}
}

func (r *Reconciler) update(ctx context.Context, p Project) error {
	_, err := r.Pool.Exec(ctx, fullUpdate,
		p.ColosseumProjectID,
		p.Description,
		p.HumanVotes, p.AgentVotes, p.TotalVotes,
		p.Categories, p.RepositoryURL, p.DemoURL, p.TeamMembers, p.TokenAddress,
	)
	if err != nil && db.IsSchemaDrift(err) {
		log.Printf("[Reconcile] Metadata columns missing, updating %s with base columns", p.ColosseumProjectID)
		_, err = r.Pool.Exec(ctx, baseUpdate,
			p.ColosseumProjectID,
			p.Description,
			p.HumanVotes, p.AgentVotes, p.TotalVotes,
		)
	}
	if err != nil {
		return fmt.Errorf("updating %s: %w", p.ColosseumProjectID, err)
	}
	return nil
}

func (r *Reconciler) insert(ctx context.Context, p Project) error {
	slug, err := r.uniqueSlug(ctx, p.Slug)
	if err != nil {
		return err
	}

	id := uuid.NewString()

	_, err = r.Pool.Exec(ctx, fullInsert,
		id, p.ColosseumProjectID, slug,
		p.Title, p.Description, p.TeamName, p.Status,
		p.HumanVotes, p.AgentVotes, p.TotalVotes, p.ColosseumURL,
		p.Categories, p.RepositoryURL, p.DemoURL, p.TeamMembers, p.TokenAddress,
	)
	if err != nil && db.IsSchemaDrift(err) {
		log.Printf("[Reconcile] Metadata columns missing, inserting %s with base columns", p.ColosseumProjectID)
		_, err = r.Pool.Exec(ctx, baseInsert,
			id, p.ColosseumProjectID, slug,
			p.Title, p.Description, p.TeamName, p.Status,
			p.HumanVotes, p.AgentVotes, p.TotalVotes, p.ColosseumURL,
		)
	}
	if err != nil {
		return fmt.Errorf("inserting %s: %w", p.ColosseumProjectID, err)
	}
	return nil
}

// uniqueSlug resolves slug collisions between distinct projects by numeric
// suffix: taken slugs yield candidate-1, candidate-2, and so on.
func (r *Reconciler) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "project"
	}

	candidate := base
	for i := 1; ; i++ {
		var taken bool
		err := r.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM agent_projects WHERE slug = $1)",
			candidate).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("checking slug %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// sanitizeProject strips invalid UTF-8 from every text field before it
// reaches Postgres.
func sanitizeProject(p Project) Project {
	p.Title = sanitizeUTF8(p.Title)
	p.Description = sanitizeUTF8(p.Description)
	p.TeamName = sanitizeUTF8(p.TeamName)
	for i, c := range p.Categories {
		p.Categories[i] = sanitizeUTF8(c)
	}
	for i, m := range p.TeamMembers {
		p.TeamMembers[i] = sanitizeUTF8(m)
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.TeamMembers == nil {
		p.TeamMembers = []string{}
	}
	return p
}
