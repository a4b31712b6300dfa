package repo

import (
	"context"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TouchRepo interface {
	Create(ctx context.Context, t dom.Touch) (dom.Touch, error)
	GetByID(ctx context.Context, workspaceID, id string) (dom.Touch, error)
	List(ctx context.Context, workspaceID string, status dom.TouchStatus) ([]dom.Touch, error)
	Update(ctx context.Context, t dom.Touch) (dom.Touch, error)
	Delete(ctx context.Context, workspaceID, id string) error
	// ConvertToClient inserts client and marks the touch CONVERTED in one transaction.
	// pgx.ErrNoRows means the touch is missing or already converted.
	ConvertToClient(ctx context.Context, workspaceID, touchID string, client dom.Client, at time.Time) (dom.Touch, dom.Client, error)
	// FollowUps lists touches with from <= follow_up_at < to whose status is not in exclude.
	FollowUps(ctx context.Context, workspaceID string, from *time.Time, to time.Time, exclude []dom.TouchStatus) ([]dom.Touch, error)
}

type PGTouchRepo struct {
	db *pgxpool.Pool
}

func NewPGTouchRepo(db *pgxpool.Pool) *PGTouchRepo {
	return &PGTouchRepo{db: db}
}

const touchColumns = `t.id::text, t.workspace_id::text, t.contact_name, t.contact_email, t.contact_phone,
	t.contact_company, t.contact_position, t.industry, t.social_media, t.source, t.description, t.sent_message,
	t.status, t.follow_up_at, t.assignee_id::text,
	COALESCE((SELECT u.name FROM users u WHERE u.id = t.assignee_id), ''),
	t.converted_to_client_id::text, t.converted_at, t.created_by_id::text,
	COALESCE((SELECT u.name FROM users u WHERE u.id = t.created_by_id), ''),
	t.created_at, t.updated_at`

func scanTouch(row rowScanner) (dom.Touch, error) {
	var t dom.Touch
	err := row.Scan(&t.ID, &t.WorkspaceID, &t.ContactName, &t.ContactEmail, &t.ContactPhone,
		&t.ContactCompany, &t.ContactPosition, &t.Industry, &t.SocialMedia, &t.Source, &t.Description,
		&t.SentMessage, &t.Status, &t.FollowUpAt, &t.AssigneeID, &t.AssigneeName,
		&t.ConvertedToClientID, &t.ConvertedAt, &t.CreatedByID, &t.CreatedByName, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGTouchRepo) Create(ctx context.Context, t dom.Touch) (dom.Touch, error) {
	return scanTouch(r.db.QueryRow(ctx, `
		INSERT INTO touches AS t (workspace_id, contact_name, contact_email, contact_phone, contact_company,
			contact_position, industry, social_media, source, description, sent_message, status,
			follow_up_at, assignee_id, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+touchColumns,
		t.WorkspaceID, t.ContactName, t.ContactEmail, t.ContactPhone, t.ContactCompany, t.ContactPosition,
		t.Industry, t.SocialMedia, t.Source, t.Description, t.SentMessage, t.Status, t.FollowUpAt,
		t.AssigneeID, t.CreatedByID))
}

func (r *PGTouchRepo) GetByID(ctx context.Context, workspaceID, id string) (dom.Touch, error) {
	return scanTouch(r.db.QueryRow(ctx,
		`SELECT `+touchColumns+` FROM touches t WHERE t.workspace_id = $1 AND t.id = $2`, workspaceID, id))
}

// List returns touches of the workspace; an empty status means all.
func (r *PGTouchRepo) List(ctx context.Context, workspaceID string, status dom.TouchStatus) ([]dom.Touch, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+touchColumns+` FROM touches t
		WHERE t.workspace_id = $1 AND ($2 = '' OR t.status = $2)
		ORDER BY t.created_at DESC`, workspaceID, string(status))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTouch)
}

func (r *PGTouchRepo) Update(ctx context.Context, t dom.Touch) (dom.Touch, error) {
	return scanTouch(r.db.QueryRow(ctx, `
		UPDATE touches AS t SET contact_name = $3, contact_email = $4, contact_phone = $5, contact_company = $6,
			contact_position = $7, industry = $8, social_media = $9, source = $10, description = $11,
			sent_message = $12, status = $13, follow_up_at = $14, assignee_id = $15, updated_at = NOW()
		WHERE t.workspace_id = $1 AND t.id = $2
		RETURNING `+touchColumns,
		t.WorkspaceID, t.ID, t.ContactName, t.ContactEmail, t.ContactPhone, t.ContactCompany,
		t.ContactPosition, t.Industry, t.SocialMedia, t.Source, t.Description, t.SentMessage, t.Status,
		t.FollowUpAt, t.AssigneeID))
}

func (r *PGTouchRepo) Delete(ctx context.Context, workspaceID, id string) error {
	return affected(r.db.Exec(ctx, `DELETE FROM touches WHERE workspace_id = $1 AND id = $2`, workspaceID, id))
}

func (r *PGTouchRepo) ConvertToClient(ctx context.Context, workspaceID, touchID string, client dom.Client, at time.Time) (dom.Touch, dom.Client, error) {
	var touch dom.Touch
	var created dom.Client
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var status dom.TouchStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM touches WHERE workspace_id = $1 AND id = $2 FOR UPDATE`,
			workspaceID, touchID).Scan(&status)
		if err != nil {
			return err
		}
		if status == dom.TouchConverted {
			return pgx.ErrNoRows
		}
		links, fields := clientJSON(client)
		created, err = scanClient(tx.QueryRow(ctx, `
			INSERT INTO clients AS c (workspace_id, name, company, email, phone, source, status, notes,
				social_links, custom_fields, created_by_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+clientColumns,
			workspaceID, client.Name, client.Company, client.Email, client.Phone, client.Source,
			client.Status, client.Notes, links, fields, client.CreatedByID))
		if err != nil {
			return err
		}
		touch, err = scanTouch(tx.QueryRow(ctx, `
			UPDATE touches AS t SET status = 'CONVERTED', converted_to_client_id = $3, converted_at = $4,
				updated_at = NOW()
			WHERE t.workspace_id = $1 AND t.id = $2
			RETURNING `+touchColumns, workspaceID, touchID, created.ID, at))
		return err
	})
	return touch, created, err
}

func (r *PGTouchRepo) FollowUps(ctx context.Context, workspaceID string, from *time.Time, to time.Time, exclude []dom.TouchStatus) ([]dom.Touch, error) {
	statuses := make([]string, len(exclude))
	for i, s := range exclude {
		statuses[i] = string(s)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+touchColumns+` FROM touches t
		WHERE t.workspace_id = $1
		  AND t.follow_up_at IS NOT NULL
		  AND ($2::timestamptz IS NULL OR t.follow_up_at >= $2)
		  AND t.follow_up_at < $3
		  AND NOT (t.status = ANY($4))
		ORDER BY t.follow_up_at ASC`, workspaceID, from, to, statuses)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTouch)
}
