package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepo interface {
	Create(ctx context.Context, p dom.Project) (dom.Project, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.Project, error)
	List(ctx context.Context, workspaceID string, f dom.ProjectFilter) ([]dom.Project, error)
	Update(ctx context.Context, p dom.Project) (dom.Project, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

type PGProjectRepo struct {
	db *pgxpool.Pool
}

func NewPGProjectRepo(db *pgxpool.Pool) *PGProjectRepo {
	return &PGProjectRepo{db: db}
}

const projectColumns = `p.id::text, p.workspace_id::text, p.client_id::text,
	COALESCE((SELECT c.name FROM clients c WHERE c.id = p.client_id), ''),
	p.name, p.description, p.type, p.status, p.priority, p.budget::float8, p.start_date, p.end_date_plan,
	p.pain_description, p.created_by_id::text,
	(SELECT count(*) FROM tasks t WHERE t.project_id = p.id AND NOT t.is_archived)::int,
	p.created_at, p.updated_at`

func scanProject(row rowScanner) (dom.Project, error) {
	var p dom.Project
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.ClientID, &p.ClientName, &p.Name, &p.Description,
		&p.Type, &p.Status, &p.Priority, &p.Budget, &p.StartDate, &p.EndDatePlan,
		&p.PainDescription, &p.CreatedByID, &p.TaskCount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PGProjectRepo) Create(ctx context.Context, p dom.Project) (dom.Project, error) {
	query := `
		INSERT INTO projects AS p (workspace_id, client_id, name, description, type, status, priority,
			budget, start_date, end_date_plan, pain_description, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + projectColumns
	return scanProject(r.db.QueryRow(ctx, query, p.WorkspaceID, p.ClientID, p.Name, p.Description,
		p.Type, p.Status, p.Priority, p.Budget, p.StartDate, p.EndDatePlan, p.PainDescription, p.CreatedByID))
}

func (r *PGProjectRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.Project, error) {
	return scanProject(r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.workspace_id = $1 AND p.id = $2`, workspaceID, id))
}

func (r *PGProjectRepo) List(ctx context.Context, workspaceID string, f dom.ProjectFilter) ([]dom.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		WHERE p.workspace_id = $1
		  AND ($2 = '' OR p.status = $2)
		  AND ($3 = '' OR p.type = $3)
		  AND ($4 = '' OR p.client_id::text = $4)
		ORDER BY p.created_at DESC`
	rows, err := r.db.Query(ctx, query, workspaceID, string(f.Status), string(f.Type), f.ClientID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProject)
}

func (r *PGProjectRepo) Update(ctx context.Context, p dom.Project) (dom.Project, error) {
	query := `
		UPDATE projects AS p SET client_id = $3, name = $4, description = $5, type = $6, status = $7,
			priority = $8, budget = $9, start_date = $10, end_date_plan = $11, pain_description = $12,
			updated_at = NOW()
		WHERE p.workspace_id = $1 AND p.id = $2
		RETURNING ` + projectColumns
	return scanProject(r.db.QueryRow(ctx, query, p.WorkspaceID, p.ID, p.ClientID, p.Name, p.Description,
		p.Type, p.Status, p.Priority, p.Budget, p.StartDate, p.EndDatePlan, p.PainDescription))
}

func (r *PGProjectRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM projects WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}
