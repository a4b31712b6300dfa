package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepo interface {
	Create(ctx context.Context, n dom.Notification) (dom.Notification, error)
	List(ctx context.Context, workspaceID, userID string, unreadOnly bool, limit int) ([]dom.Notification, error)
	CountUnread(ctx context.Context, workspaceID, userID string) (int, error)
	MarkRead(ctx context.Context, workspaceID, userID, id string) error
	MarkAllRead(ctx context.Context, workspaceID, userID string) (int, error)
}

type PGNotificationRepo struct {
	db *pgxpool.Pool
}

func NewPGNotificationRepo(db *pgxpool.Pool) *PGNotificationRepo {
	return &PGNotificationRepo{db: db}
}

const notificationColumns = `id::text, workspace_id::text, user_id::text, title, body, link, is_read, created_at`

func scanNotification(row rowScanner) (dom.Notification, error) {
	var n dom.Notification
	err := row.Scan(&n.ID, &n.WorkspaceID, &n.UserID, &n.Title, &n.Body, &n.Link, &n.IsRead, &n.CreatedAt)
	return n, err
}

func (r *PGNotificationRepo) Create(ctx context.Context, n dom.Notification) (dom.Notification, error) {
	return scanNotification(r.db.QueryRow(ctx, `
		INSERT INTO notifications (workspace_id, user_id, title, body, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns, n.WorkspaceID, n.UserID, n.Title, n.Body, n.Link))
}

func (r *PGNotificationRepo) List(ctx context.Context, workspaceID, userID string, unreadOnly bool, limit int) ([]dom.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE workspace_id = $1 AND user_id = $2 AND (NOT $3 OR NOT is_read)
		ORDER BY created_at DESC LIMIT $4`, workspaceID, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotification)
}

func (r *PGNotificationRepo) CountUnread(ctx context.Context, workspaceID, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*)::int FROM notifications WHERE workspace_id = $1 AND user_id = $2 AND NOT is_read`,
		workspaceID, userID).Scan(&n)
	return n, err
}

func (r *PGNotificationRepo) MarkRead(ctx context.Context, workspaceID, userID, id string) error {
	return affected(r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE workspace_id = $1 AND user_id = $2 AND id = $3`,
		workspaceID, userID, id))
}

func (r *PGNotificationRepo) MarkAllRead(ctx context.Context, workspaceID, userID string) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE workspace_id = $1 AND user_id = $2 AND NOT is_read`,
		workspaceID, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
