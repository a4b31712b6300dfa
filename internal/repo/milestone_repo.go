package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MilestoneRepo interface {
	Create(ctx context.Context, m dom.Milestone) (dom.Milestone, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.Milestone, error)
	ListByProject(ctx context.Context, workspaceID, projectID string) ([]dom.Milestone, error)
	Update(ctx context.Context, m dom.Milestone) (dom.Milestone, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

type PGMilestoneRepo struct {
	db *pgxpool.Pool
}

func NewPGMilestoneRepo(db *pgxpool.Pool) *PGMilestoneRepo {
	return &PGMilestoneRepo{db: db}
}

const milestoneColumns = `m.id::text, m.workspace_id::text, m.project_id::text, m.title, m.description,
	m.due_date, m.position, m.status, m.created_at, m.updated_at`

func scanMilestone(row rowScanner) (dom.Milestone, error) {
	var m dom.Milestone
	err := row.Scan(&m.ID, &m.WorkspaceID, &m.ProjectID, &m.Title, &m.Description,
		&m.DueDate, &m.Order, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create appends m after the last milestone of its project when m.Order is zero.
func (r *PGMilestoneRepo) Create(ctx context.Context, m dom.Milestone) (dom.Milestone, error) {
	return scanMilestone(r.db.QueryRow(ctx, `
		INSERT INTO milestones AS m (workspace_id, project_id, title, description, due_date, position, status)
		VALUES ($1, $2, $3, $4, $5,
			CASE WHEN $6::int > 0 THEN $6::int
			     ELSE (SELECT COALESCE(MAX(position), 0) + 1 FROM milestones WHERE project_id = $2) END,
			$7)
		RETURNING `+milestoneColumns,
		m.WorkspaceID, m.ProjectID, m.Title, m.Description, m.DueDate, m.Order, m.Status))
}

func (r *PGMilestoneRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.Milestone, error) {
	return scanMilestone(r.db.QueryRow(ctx,
		`SELECT `+milestoneColumns+` FROM milestones m WHERE m.workspace_id = $1 AND m.id = $2`, workspaceID, id))
}

func (r *PGMilestoneRepo) ListByProject(ctx context.Context, workspaceID, projectID string) ([]dom.Milestone, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+milestoneColumns+` FROM milestones m
		WHERE m.workspace_id = $1 AND m.project_id = $2
		ORDER BY m.position, m.created_at`, workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMilestone)
}

func (r *PGMilestoneRepo) Update(ctx context.Context, m dom.Milestone) (dom.Milestone, error) {
	return scanMilestone(r.db.QueryRow(ctx, `
		UPDATE milestones AS m SET title = $3, description = $4, due_date = $5, position = $6, status = $7,
			updated_at = NOW()
		WHERE m.workspace_id = $1 AND m.id = $2
		RETURNING `+milestoneColumns,
		m.WorkspaceID, m.ID, m.Title, m.Description, m.DueDate, m.Order, m.Status))
}

func (r *PGMilestoneRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM milestones WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}
