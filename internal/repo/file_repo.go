package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FileRepo stores metadata of project attachments; the bytes live in object storage.
type FileRepo interface {
	Create(ctx context.Context, f dom.ProjectFile) (dom.ProjectFile, error)
	List(ctx context.Context, workspaceID, projectID string) ([]dom.ProjectFile, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.ProjectFile, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

type PGFileRepo struct {
	db *pgxpool.Pool
}

func NewPGFileRepo(db *pgxpool.Pool) *PGFileRepo {
	return &PGFileRepo{db: db}
}

const fileColumns = `id::text, workspace_id::text, project_id::text, name, object_key, content_type, size,
	uploaded_by_id::text, created_at`

func scanFile(row rowScanner) (dom.ProjectFile, error) {
	var f dom.ProjectFile
	err := row.Scan(&f.ID, &f.WorkspaceID, &f.ProjectID, &f.Name, &f.ObjectKey, &f.ContentType, &f.Size,
		&f.UploadedByID, &f.CreatedAt)
	return f, err
}

func (r *PGFileRepo) Create(ctx context.Context, f dom.ProjectFile) (dom.ProjectFile, error) {
	return scanFile(r.db.QueryRow(ctx, `
		INSERT INTO project_files (workspace_id, project_id, name, object_key, content_type, size, uploaded_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+fileColumns,
		f.WorkspaceID, f.ProjectID, f.Name, f.ObjectKey, f.ContentType, f.Size, f.UploadedByID))
}

func (r *PGFileRepo) List(ctx context.Context, workspaceID, projectID string) ([]dom.ProjectFile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+fileColumns+` FROM project_files
		WHERE workspace_id = $1 AND project_id = $2
		ORDER BY created_at DESC`, workspaceID, projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFile)
}

func (r *PGFileRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.ProjectFile, error) {
	return scanFile(r.db.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM project_files WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

func (r *PGFileRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM project_files WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}
