package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepo interface {
	Create(ctx context.Context, a dom.Activity) (dom.Activity, error)
	// List returns one page of matching activities and the total match count.
	List(ctx context.Context, workspaceID string, f dom.ActivityFilter) ([]dom.Activity, int, error)
}

type PGActivityRepo struct {
	db *pgxpool.Pool
}

func NewPGActivityRepo(db *pgxpool.Pool) *PGActivityRepo {
	return &PGActivityRepo{db: db}
}

const activityColumns = `a.id::text, a.workspace_id::text, a.user_id::text,
	COALESCE((SELECT u.name FROM users u WHERE u.id = a.user_id), ''),
	a.project_id::text, a.type, a.entity_type, a.entity_id, a.action, a.old_value, a.new_value, a.created_at`

func scanActivity(row rowScanner) (dom.Activity, error) {
	var a dom.Activity
	var oldValue, newValue []byte
	err := row.Scan(&a.ID, &a.WorkspaceID, &a.UserID, &a.UserName, &a.ProjectID, &a.Type, &a.EntityType,
		&a.EntityID, &a.Action, &oldValue, &newValue, &a.CreatedAt)
	a.OldValue, a.NewValue = oldValue, newValue
	return a, err
}

func (r *PGActivityRepo) Create(ctx context.Context, a dom.Activity) (dom.Activity, error) {
	var oldValue, newValue []byte
	if len(a.OldValue) > 0 {
		oldValue = a.OldValue
	}
	if len(a.NewValue) > 0 {
		newValue = a.NewValue
	}
	return scanActivity(r.db.QueryRow(ctx, `
		INSERT INTO activities AS a (workspace_id, user_id, project_id, type, entity_type, entity_id, action,
			old_value, new_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+activityColumns,
		a.WorkspaceID, a.UserID, a.ProjectID, a.Type, a.EntityType, a.EntityID, a.Action, oldValue, newValue))
}

func (r *PGActivityRepo) List(ctx context.Context, workspaceID string, f dom.ActivityFilter) ([]dom.Activity, int, error) {
	where := `
		WHERE a.workspace_id = $1
		  AND ($2 = '' OR a.type = $2)
		  AND ($3 = '' OR a.entity_type = $3)
		  AND ($4 = '' OR a.user_id::text = $4)
		  AND ($5::timestamptz IS NULL OR a.created_at >= $5)
		  AND ($6::timestamptz IS NULL OR a.created_at <= $6)`
	args := []any{workspaceID, string(f.Type), f.EntityType, f.UserID, f.From, f.To}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*)::int FROM activities a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+activityColumns+` FROM activities a`+where+`
		ORDER BY a.created_at DESC LIMIT $7 OFFSET $8`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	list, err := collect(rows, scanActivity)
	return list, total, err
}
