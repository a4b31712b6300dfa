package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientRepo stores clients of a workspace. Every method is scoped by workspace id.
type ClientRepo interface {
	Create(ctx context.Context, c dom.Client) (dom.Client, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.Client, error)
	List(ctx context.Context, workspaceID string, f dom.ClientFilter) ([]dom.Client, error)
	Update(ctx context.Context, c dom.Client) (dom.Client, error)
	Delete(ctx context.Context, workspaceID, id string) error
	Analytics(ctx context.Context, workspaceID, id string) (dom.ClientAnalytics, error)
}

type PGClientRepo struct {
	db *pgxpool.Pool
}

func NewPGClientRepo(db *pgxpool.Pool) *PGClientRepo {
	return &PGClientRepo{db: db}
}

const clientColumns = `c.id::text, c.workspace_id::text, c.name, c.company, c.email, c.phone, c.website,
	c.source, c.status, c.notes, c.social_links, c.custom_fields, c.created_by_id::text,
	(SELECT count(*) FROM projects p WHERE p.client_id = c.id)::int,
	c.created_at, c.updated_at`

func scanClient(row rowScanner) (dom.Client, error) {
	var c dom.Client
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Website,
		&c.Source, &c.Status, &c.Notes, &c.SocialLinks, &c.CustomFields, &c.CreatedByID,
		&c.ProjectCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func clientJSON(c dom.Client) ([]dom.SocialLink, map[string]any) {
	links, fields := c.SocialLinks, c.CustomFields
	if links == nil {
		links = []dom.SocialLink{}
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return links, fields
}

func (r *PGClientRepo) Create(ctx context.Context, c dom.Client) (dom.Client, error) {
	links, fields := clientJSON(c)
	query := `
		INSERT INTO clients AS c (workspace_id, name, company, email, phone, website, source, status,
			notes, social_links, custom_fields, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + clientColumns
	return scanClient(r.db.QueryRow(ctx, query, c.WorkspaceID, c.Name, c.Company, c.Email, c.Phone,
		c.Website, c.Source, c.Status, c.Notes, links, fields, c.CreatedByID))
}

func (r *PGClientRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.Client, error) {
	return scanClient(r.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients c WHERE c.workspace_id = $1 AND c.id = $2`, workspaceID, id))
}

func (r *PGClientRepo) List(ctx context.Context, workspaceID string, f dom.ClientFilter) ([]dom.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients c
		WHERE c.workspace_id = $1
		  AND ($2 = '' OR c.status = $2)
		  AND ($3 = '' OR c.name ILIKE $4 OR c.company ILIKE $4 OR c.email ILIKE $4)
		ORDER BY c.created_at DESC`
	rows, err := r.db.Query(ctx, query, workspaceID, string(f.Status), f.Query, utils.LikePattern(f.Query))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanClient)
}

func (r *PGClientRepo) Update(ctx context.Context, c dom.Client) (dom.Client, error) {
	links, fields := clientJSON(c)
	query := `
		UPDATE clients AS c SET name = $3, company = $4, email = $5, phone = $6, website = $7,
			source = $8, status = $9, notes = $10, social_links = $11, custom_fields = $12, updated_at = NOW()
		WHERE c.workspace_id = $1 AND c.id = $2
		RETURNING ` + clientColumns
	return scanClient(r.db.QueryRow(ctx, query, c.WorkspaceID, c.ID, c.Name, c.Company, c.Email, c.Phone,
		c.Website, c.Source, c.Status, c.Notes, links, fields))
}

func (r *PGClientRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM clients WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

// Analytics aggregates the client's projects and the tasks under them.
func (r *PGClientRepo) Analytics(ctx context.Context, workspaceID, id string) (dom.ClientAnalytics, error) {
	a := dom.ClientAnalytics{ClientID: id, ProjectsByStatus: map[dom.ProjectStatus]int{}}
	rows, err := r.db.Query(ctx, `
		SELECT status, count(*)::int, COALESCE(sum(budget), 0)::float8
		FROM projects WHERE workspace_id = $1 AND client_id = $2
		GROUP BY status`, workspaceID, id)
	if err != nil {
		return a, err
	}
	defer rows.Close()
	for rows.Next() {
		var status dom.ProjectStatus
		var n int
		var budget float64
		if err := rows.Scan(&status, &n, &budget); err != nil {
			return a, err
		}
		a.ProjectsByStatus[status] = n
		a.TotalBudget += budget
	}
	if err := rows.Err(); err != nil {
		return a, err
	}
	err = r.db.QueryRow(ctx, `
		SELECT count(*)::int, (count(*) FILTER (WHERE t.status = 'COMPLETED'))::int
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE p.workspace_id = $1 AND p.client_id = $2`, workspaceID, id).Scan(&a.TasksTotal, &a.TasksCompleted)
	return a, err
}
