package repo

import (
	"context"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo interface {
	Create(ctx context.Context, e dom.Event) (dom.Event, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.Event, error)
	List(ctx context.Context, workspaceID string, f dom.EventFilter) ([]dom.Event, error)
	Update(ctx context.Context, e dom.Event) (dom.Event, error)
	Delete(ctx context.Context, workspaceID, id string) error
	Between(ctx context.Context, workspaceID string, from, to time.Time) ([]dom.Event, error)
}

type PGEventRepo struct {
	db *pgxpool.Pool
}

func NewPGEventRepo(db *pgxpool.Pool) *PGEventRepo {
	return &PGEventRepo{db: db}
}

const eventColumns = `id::text, workspace_id::text, title, description, type, start_date, end_date, all_day,
	project_id::text, task_id::text, client_id::text, created_by_id::text, created_at, updated_at`

func scanEvent(row rowScanner) (dom.Event, error) {
	var e dom.Event
	err := row.Scan(&e.ID, &e.WorkspaceID, &e.Title, &e.Description, &e.Type, &e.StartDate, &e.EndDate,
		&e.AllDay, &e.ProjectID, &e.TaskID, &e.ClientID, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *PGEventRepo) Create(ctx context.Context, e dom.Event) (dom.Event, error) {
	return scanEvent(r.db.QueryRow(ctx, `
		INSERT INTO events (workspace_id, title, description, type, start_date, end_date, all_day,
			project_id, task_id, client_id, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+eventColumns,
		e.WorkspaceID, e.Title, e.Description, e.Type, e.StartDate, e.EndDate, e.AllDay,
		e.ProjectID, e.TaskID, e.ClientID, e.CreatedByID))
}

func (r *PGEventRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.Event, error) {
	return scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

func (r *PGEventRepo) List(ctx context.Context, workspaceID string, f dom.EventFilter) ([]dom.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE workspace_id = $1
		  AND ($2::timestamptz IS NULL OR start_date >= $2)
		  AND ($3::timestamptz IS NULL OR start_date <= $3)
		  AND ($4 = '' OR type = $4)
		ORDER BY start_date ASC`, workspaceID, f.From, f.To, string(f.Type))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

func (r *PGEventRepo) Update(ctx context.Context, e dom.Event) (dom.Event, error) {
	return scanEvent(r.db.QueryRow(ctx, `
		UPDATE events SET title = $3, description = $4, type = $5, start_date = $6, end_date = $7,
			all_day = $8, project_id = $9, task_id = $10, client_id = $11, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+eventColumns,
		e.WorkspaceID, e.ID, e.Title, e.Description, e.Type, e.StartDate, e.EndDate, e.AllDay,
		e.ProjectID, e.TaskID, e.ClientID))
}

func (r *PGEventRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM events WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

// Between lists events starting in [from, to).
func (r *PGEventRepo) Between(ctx context.Context, workspaceID string, from, to time.Time) ([]dom.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE workspace_id = $1 AND start_date >= $2 AND start_date < $3
		ORDER BY start_date ASC`, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}
