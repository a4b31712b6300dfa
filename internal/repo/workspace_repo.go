package repo

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkspaceRepo stores workspaces and their members.
type WorkspaceRepo interface {
	CreateWithOwner(ctx context.Context, name, ownerID string) (dom.Workspace, error)
	GetByID(ctx context.Context, id string) (dom.Workspace, error)
	ListForUser(ctx context.Context, userID string) ([]dom.Membership, error)
	GetMember(ctx context.Context, workspaceID, userID string) (dom.Member, error)
	ListMembers(ctx context.Context, workspaceID string) ([]dom.Member, error)
	UpdateMemberRole(ctx context.Context, workspaceID, userID string, role dom.Role) error
	RemoveMember(ctx context.Context, workspaceID, userID string) error
	TransferOwnership(ctx context.Context, workspaceID, fromUserID, toUserID string) error
	UpdateTelegram(ctx context.Context, workspaceID string, botToken, chatID *string, settings dom.NotificationSettings) (dom.Workspace, error)
	ListWithTelegram(ctx context.Context) ([]dom.Workspace, error)
	List(ctx context.Context) ([]dom.Workspace, error)
}

type PGWorkspaceRepo struct {
	db *pgxpool.Pool
}

func NewPGWorkspaceRepo(db *pgxpool.Pool) *PGWorkspaceRepo {
	return &PGWorkspaceRepo{db: db}
}

const workspaceColumns = `w.id::text, w.name, w.owner_id::text, w.telegram_bot_token, w.telegram_chat_id,
	w.notification_settings, w.created_at`

func scanWorkspace(row rowScanner, extra ...any) (dom.Workspace, error) {
	var w dom.Workspace
	dest := append([]any{&w.ID, &w.Name, &w.OwnerID, &w.TelegramBotToken, &w.TelegramChatID,
		&w.NotificationSettings, &w.CreatedAt}, extra...)
	err := row.Scan(dest...)
	if w.NotificationSettings.Events == nil {
		w.NotificationSettings.Events = map[dom.GroupEvent]bool{}
	}
	return w, err
}

// CreateWithOwner creates a workspace and makes ownerID its OWNER in one transaction.
func (r *PGWorkspaceRepo) CreateWithOwner(ctx context.Context, name, ownerID string) (dom.Workspace, error) {
	var out dom.Workspace
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		w, err := scanWorkspace(tx.QueryRow(ctx, `
			INSERT INTO workspaces AS w (name, owner_id, notification_settings)
			VALUES ($1, $2, $3)
			RETURNING `+workspaceColumns,
			name, ownerID, dom.DefaultNotificationSettings()))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO workspace_members (workspace_id, user_id, role) VALUES ($1, $2, $3)`,
			w.ID, ownerID, dom.RoleOwner); err != nil {
			return err
		}
		out = w
		return nil
	})
	return out, err
}

func (r *PGWorkspaceRepo) GetByID(ctx context.Context, id string) (dom.Workspace, error) {
	return scanWorkspace(r.db.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id))
}

// ListForUser returns the workspaces userID belongs to, oldest membership first.
func (r *PGWorkspaceRepo) ListForUser(ctx context.Context, userID string) ([]dom.Membership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+workspaceColumns+`, m.role
		FROM workspaces w JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (dom.Membership, error) {
		var m dom.Membership
		w, err := scanWorkspace(row, &m.Role)
		m.Workspace = w
		return m, err
	})
}

const memberColumns = `m.workspace_id::text, m.user_id::text, m.role, u.name, u.email, m.joined_at`

func scanMember(row rowScanner) (dom.Member, error) {
	var m dom.Member
	err := row.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.UserName, &m.UserEmail, &m.JoinedAt)
	return m, err
}

func (r *PGWorkspaceRepo) GetMember(ctx context.Context, workspaceID, userID string) (dom.Member, error) {
	return scanMember(r.db.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM workspace_members m JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1 AND m.user_id = $2`, workspaceID, userID))
}

func (r *PGWorkspaceRepo) ListMembers(ctx context.Context, workspaceID string) ([]dom.Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+memberColumns+`
		FROM workspace_members m JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY u.name ASC`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMember)
}

func (r *PGWorkspaceRepo) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role dom.Role) error {
	return affected(r.db.Exec(ctx,
		`UPDATE workspace_members SET role = $3 WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID, role))
}

func (r *PGWorkspaceRepo) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	return affected(r.db.Exec(ctx,
		`DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`, workspaceID, userID))
}

// TransferOwnership promotes toUserID to OWNER and demotes fromUserID to ADMIN atomically.
// pgx.ErrNoRows means toUserID is not a member.
func (r *PGWorkspaceRepo) TransferOwnership(ctx context.Context, workspaceID, fromUserID, toUserID string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := affected(tx.Exec(ctx,
			`UPDATE workspace_members SET role = 'OWNER' WHERE workspace_id = $1 AND user_id = $2`,
			workspaceID, toUserID)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE workspace_members SET role = 'ADMIN' WHERE workspace_id = $1 AND user_id = $2`,
			workspaceID, fromUserID); err != nil {
			return err
		}
		return affected(tx.Exec(ctx, `UPDATE workspaces SET owner_id = $2 WHERE id = $1`, workspaceID, toUserID))
	})
}

func (r *PGWorkspaceRepo) UpdateTelegram(ctx context.Context, workspaceID string, botToken, chatID *string, settings dom.NotificationSettings) (dom.Workspace, error) {
	return scanWorkspace(r.db.QueryRow(ctx, `
		UPDATE workspaces AS w
		SET telegram_bot_token = $2, telegram_chat_id = $3, notification_settings = $4
		WHERE w.id = $1
		RETURNING `+workspaceColumns,
		workspaceID, botToken, chatID, settings))
}

// ListWithTelegram returns workspaces that have both a bot token and a chat id.
func (r *PGWorkspaceRepo) ListWithTelegram(ctx context.Context) ([]dom.Workspace, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+workspaceColumns+` FROM workspaces w
		WHERE w.telegram_bot_token IS NOT NULL AND w.telegram_bot_token <> ''
		  AND w.telegram_chat_id IS NOT NULL AND w.telegram_chat_id <> ''
		ORDER BY w.created_at ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (dom.Workspace, error) { return scanWorkspace(row) })
}

// List returns every workspace, oldest first.
func (r *PGWorkspaceRepo) List(ctx context.Context) ([]dom.Workspace, error) {
	rows, err := r.db.Query(ctx, `SELECT `+workspaceColumns+` FROM workspaces w ORDER BY w.created_at ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (dom.Workspace, error) { return scanWorkspace(row) })
}
