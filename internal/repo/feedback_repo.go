package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedbackRepo interface {
	Create(ctx context.Context, f dom.Feedback) (dom.Feedback, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.Feedback, error)
	List(ctx context.Context, workspaceID string) ([]dom.Feedback, error)
	UpdateStatus(ctx context.Context, workspaceID, id string, status dom.FeedbackStatus) (dom.Feedback, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

type PGFeedbackRepo struct {
	db *pgxpool.Pool
}

func NewPGFeedbackRepo(db *pgxpool.Pool) *PGFeedbackRepo {
	return &PGFeedbackRepo{db: db}
}

const feedbackColumns = `f.id::text, f.workspace_id::text, f.type, f.title, f.description, f.priority, f.status,
	f.created_by_id::text, COALESCE((SELECT u.name FROM users u WHERE u.id = f.created_by_id), ''),
	f.created_at, f.updated_at`

func scanFeedback(row rowScanner) (dom.Feedback, error) {
	var f dom.Feedback
	err := row.Scan(&f.ID, &f.WorkspaceID, &f.Type, &f.Title, &f.Description, &f.Priority, &f.Status,
		&f.CreatedByID, &f.CreatedByName, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *PGFeedbackRepo) Create(ctx context.Context, f dom.Feedback) (dom.Feedback, error) {
	return scanFeedback(r.db.QueryRow(ctx, `
		INSERT INTO feedback AS f (workspace_id, type, title, description, priority, status, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+feedbackColumns,
		f.WorkspaceID, f.Type, f.Title, f.Description, f.Priority, f.Status, f.CreatedByID))
}

func (r *PGFeedbackRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.Feedback, error) {
	return scanFeedback(r.db.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback f WHERE f.workspace_id = $1 AND f.id = $2`, workspaceID, id))
}

func (r *PGFeedbackRepo) List(ctx context.Context, workspaceID string) ([]dom.Feedback, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+feedbackColumns+` FROM feedback f WHERE f.workspace_id = $1 ORDER BY f.created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFeedback)
}

func (r *PGFeedbackRepo) UpdateStatus(ctx context.Context, workspaceID, id string, status dom.FeedbackStatus) (dom.Feedback, error) {
	return scanFeedback(r.db.QueryRow(ctx, `
		UPDATE feedback AS f SET status = $3, updated_at = NOW()
		WHERE f.workspace_id = $1 AND f.id = $2
		RETURNING `+feedbackColumns, workspaceID, id, status))
}

func (r *PGFeedbackRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM feedback WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}
