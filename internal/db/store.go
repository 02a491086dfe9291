package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spark-labs/agent-scout/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query    string
	Status   string // "Published", "Draft", or "" for all
	Category string
	SortBy   string // "votes" (default), "recent", "title"
	Limit    int
	Offset   int
}

type ListResult struct {
	Projects []models.AgentProject `json:"projects"`
	Total    int                   `json:"total"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

const selectCols = `id, title, description, team_name, status,
	human_votes, agent_votes, total_votes,
	colosseum_url, colosseum_project_id, slug,
	categories, repository_url, demo_url, team_members, token_address,
	scraped_at, created_at, updated_at`

func scanProject(scan func(dest ...interface{}) error) (models.AgentProject, error) {
	var p models.AgentProject
	err := scan(
		&p.ID, &p.Title, &p.Description, &p.TeamName, &p.Status,
		&p.HumanVotes, &p.AgentVotes, &p.TotalVotes,
		&p.ColosseumURL, &p.ColosseumProjectID, &p.Slug,
		&p.Categories, &p.RepositoryURL, &p.DemoURL, &p.TeamMembers, &p.TokenAddress,
		&p.ScrapedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (s *Store) ListProjects(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Status != "" {
		conds = append(conds, "status = "+arg(params.Status))
	}
	if params.Category != "" {
		conds = append(conds, arg(params.Category)+" = ANY(categories)")
	}
	if params.Query != "" {
		placeholder := arg("%" + params.Query + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR team_name ILIKE %s)",
			placeholder, placeholder, placeholder))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	orderBy := "total_votes DESC, title ASC"
	switch params.SortBy {
	case "recent":
		orderBy = "updated_at DESC"
	case "title":
		orderBy = "title ASC"
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM agent_projects"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting projects: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM agent_projects%s ORDER BY %s LIMIT %s OFFSET %s",
		selectCols, where, orderBy, arg(params.Limit), arg(params.Offset))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []models.AgentProject{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResult{
		Projects: projects,
		Total:    total,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}, nil
}

func (s *Store) GetProjectBySlug(ctx context.Context, slug string) (*models.AgentProject, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+selectCols+" FROM agent_projects WHERE slug = $1", slug)
	p, err := scanProject(row.Scan)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProjectByExternalID(ctx context.Context, externalID string) (*models.AgentProject, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+selectCols+" FROM agent_projects WHERE colosseum_project_id = $1", externalID)
	p, err := scanProject(row.Scan)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total, published, drafts, totalVotes int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'Published'),
		       COUNT(*) FILTER (WHERE status = 'Draft'),
		       COALESCE(SUM(total_votes), 0)
		FROM agent_projects
	`).Scan(&total, &published, &drafts, &totalVotes)
	if err != nil {
		return nil, fmt.Errorf("aggregating project stats: %w", err)
	}

	stats["total"] = total
	stats["published"] = published
	stats["drafts"] = drafts
	stats["totalVotes"] = totalVotes

	rows, err := s.pool.Query(ctx, `
		SELECT unnest(categories) AS category, COUNT(*)
		FROM agent_projects
		GROUP BY category
		ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregating categories: %w", err)
	}
	defer rows.Close()

	categories := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		categories[name] = count
	}
	stats["byCategory"] = categories

	return stats, nil
}
