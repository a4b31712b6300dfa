package repo

import (
	"context"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InviteRepo interface {
	Create(ctx context.Context, inv dom.Invite) (dom.Invite, error)
	GetByID(ctx context.Context, id string) (dom.Invite, error)
	// Accept marks the invite used and adds userID to the workspace with the invite's role.
	Accept(ctx context.Context, inviteID, userID string, at time.Time) error
}

type PGInviteRepo struct {
	db *pgxpool.Pool
}

func NewPGInviteRepo(db *pgxpool.Pool) *PGInviteRepo {
	return &PGInviteRepo{db: db}
}

const inviteColumns = `id::text, workspace_id::text, email, role, invited_by_id::text, expires_at, accepted_at, created_at`

func scanInvite(row rowScanner) (dom.Invite, error) {
	var i dom.Invite
	err := row.Scan(&i.ID, &i.WorkspaceID, &i.Email, &i.Role, &i.InvitedByID, &i.ExpiresAt, &i.AcceptedAt, &i.CreatedAt)
	return i, err
}

func (r *PGInviteRepo) Create(ctx context.Context, inv dom.Invite) (dom.Invite, error) {
	return scanInvite(r.db.QueryRow(ctx, `
		INSERT INTO invites (id, workspace_id, email, role, invited_by_id, expires_at)
		VALUES ($1, $2, lower($3), $4, $5, $6)
		RETURNING `+inviteColumns,
		inv.ID, inv.WorkspaceID, inv.Email, inv.Role, inv.InvitedByID, inv.ExpiresAt))
}

func (r *PGInviteRepo) GetByID(ctx context.Context, id string) (dom.Invite, error) {
	return scanInvite(r.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = $1`, id))
}

// Accept returns pgx.ErrNoRows when the invite is already used.
func (r *PGInviteRepo) Accept(ctx context.Context, inviteID, userID string, at time.Time) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var workspaceID string
		var role dom.Role
		err := tx.QueryRow(ctx, `
			UPDATE invites SET accepted_at = $2
			WHERE id = $1 AND accepted_at IS NULL
			RETURNING workspace_id::text, role`, inviteID, at).Scan(&workspaceID, &role)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO workspace_members (workspace_id, user_id, role) VALUES ($1, $2, $3)`,
			workspaceID, userID, role)
		return err
	})
}
