package repo

import (
	"context"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.Task, error)
	List(ctx context.Context, workspaceID string, f dom.TaskFilter) ([]dom.Task, error)
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, workspaceID, id string) error
	SetArchived(ctx context.Context, workspaceID, id string, archived bool, at time.Time) (dom.Task, error)
	BulkUpdate(ctx context.Context, workspaceID string, ids []string, patch dom.TaskPatch, now time.Time) (int, error)
	BulkDelete(ctx context.Context, workspaceID string, ids []string) ([]dom.Task, error)
	ArchiveCompletedBefore(ctx context.Context, before, now time.Time) ([]dom.Task, error)
	// OpenDue lists open, unarchived tasks with from <= due_date < to; a nil from means no lower bound.
	OpenDue(ctx context.Context, workspaceID string, from *time.Time, to time.Time) ([]dom.Task, error)
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `t.id::text, t.workspace_id::text, t.project_id::text,
	COALESCE((SELECT p.name FROM projects p WHERE p.id = t.project_id), ''),
	t.parent_id::text, t.title, t.description, t.status, t.priority, t.assignee_id::text,
	COALESCE((SELECT u.name FROM users u WHERE u.id = t.assignee_id), ''),
	t.due_date, t.completed_at, t.is_archived, t.archived_at, t.created_by_id::text, t.created_at, t.updated_at`

const priorityRank = `CASE t.priority WHEN 'URGENT' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END`

func scanTask(row rowScanner) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.WorkspaceID, &t.ProjectID, &t.ProjectName, &t.ParentID, &t.Title,
		&t.Description, &t.Status, &t.Priority, &t.AssigneeID, &t.AssigneeName, &t.DueDate,
		&t.CompletedAt, &t.IsArchived, &t.ArchivedAt, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks AS t (workspace_id, project_id, parent_id, title, description, status, priority,
			assignee_id, due_date, completed_at, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, t.WorkspaceID, t.ProjectID, t.ParentID, t.Title, t.Description,
		t.Status, t.Priority, t.AssigneeID, t.DueDate, t.CompletedAt, t.CreatedByID))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.Task, error) {
	return scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.workspace_id = $1 AND t.id = $2`, workspaceID, id))
}

func (r *PGTaskRepo) List(ctx context.Context, workspaceID string, f dom.TaskFilter) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		WHERE t.workspace_id = $1
		  AND t.is_archived = $2
		  AND ($3 = '' OR t.project_id::text = $3)
		  AND ($4 = '' OR t.assignee_id::text = $4)
		  AND ($5 = '' OR t.status = $5)
		ORDER BY t.due_date ASC NULLS LAST, t.created_at DESC`
	rows, err := r.db.Query(ctx, query, workspaceID, f.Archived, f.ProjectID, f.AssigneeID, string(f.Status))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks AS t SET project_id = $3, parent_id = $4, title = $5, description = $6, status = $7,
			priority = $8, assignee_id = $9, due_date = $10, completed_at = $11, updated_at = NOW()
		WHERE t.workspace_id = $1 AND t.id = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, t.WorkspaceID, t.ID, t.ProjectID, t.ParentID, t.Title,
		t.Description, t.Status, t.Priority, t.AssigneeID, t.DueDate, t.CompletedAt))
}

func (r *PGTaskRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM tasks WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

func (r *PGTaskRepo) SetArchived(ctx context.Context, workspaceID, id string, archived bool, at time.Time) (dom.Task, error) {
	query := `
		UPDATE tasks AS t
		SET is_archived = $3, archived_at = CASE WHEN $3 THEN $4::timestamptz ELSE NULL END, updated_at = NOW()
		WHERE t.workspace_id = $1 AND t.id = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, workspaceID, id, archived, at))
}

// BulkUpdate applies the non-nil fields of patch to ids inside workspaceID and
// returns the number of rows changed. completed_at follows the new status.
func (r *PGTaskRepo) BulkUpdate(ctx context.Context, workspaceID string, ids []string, patch dom.TaskPatch, now time.Time) (int, error) {
	var status, priority *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks SET
			status = COALESCE($3::text, status),
			priority = COALESCE($4::text, priority),
			assignee_id = CASE WHEN $5::boolean THEN $6::uuid ELSE assignee_id END,
			completed_at = CASE
				WHEN $3::text IS NULL THEN completed_at
				WHEN $3::text = 'COMPLETED' THEN COALESCE(completed_at, $7::timestamptz)
				ELSE NULL END,
			updated_at = NOW()
		WHERE workspace_id = $1 AND id::text = ANY($2)`,
		workspaceID, ids, status, priority, patch.AssigneeID != nil, nullIfEmpty(deref(patch.AssigneeID)), now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// BulkDelete removes ids inside workspaceID and returns what was deleted.
// Subtasks go with their parent.
func (r *PGTaskRepo) BulkDelete(ctx context.Context, workspaceID string, ids []string) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, `
		DELETE FROM tasks WHERE workspace_id = $1 AND id::text = ANY($2)
		RETURNING id::text, title`, workspaceID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (dom.Task, error) {
		var t dom.Task
		err := row.Scan(&t.ID, &t.Title)
		return t, err
	})
}

// ArchiveCompletedBefore archives every COMPLETED task finished at or before
// before, across all workspaces, and returns what it archived.
func (r *PGTaskRepo) ArchiveCompletedBefore(ctx context.Context, before, now time.Time) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE tasks SET is_archived = TRUE, archived_at = $2, updated_at = NOW()
		WHERE status = 'COMPLETED' AND NOT is_archived AND completed_at <= $1
		RETURNING id::text, title`, before, now)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (dom.Task, error) {
		var t dom.Task
		err := row.Scan(&t.ID, &t.Title)
		return t, err
	})
}

func (r *PGTaskRepo) OpenDue(ctx context.Context, workspaceID string, from *time.Time, to time.Time) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		WHERE t.workspace_id = $1
		  AND t.due_date IS NOT NULL
		  AND ($2::timestamptz IS NULL OR t.due_date >= $2)
		  AND t.due_date < $3
		  AND t.status NOT IN ('COMPLETED', 'CANCELLED')
		  AND NOT t.is_archived
		ORDER BY ` + priorityRank + ` DESC, t.due_date ASC`
	rows, err := r.db.Query(ctx, query, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
