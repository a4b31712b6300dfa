package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

var (
	ErrInvalidInvite = errors.New("invalid invite")
	ErrInviteExpired = errors.New("invite expired")
	ErrInviteUsed    = errors.New("invite already used")
)

// InvitePreview is what an invitee sees before accepting.
type InvitePreview struct {
	Invite        dom.Invite
	WorkspaceName string
}

// WorkspaceService covers membership, team management, invites and Telegram settings.
type WorkspaceService struct {
	repo      repo.WorkspaceRepo
	users     repo.UserRepo
	invites   repo.InviteRepo
	signer    *auth.InviteSigner
	inviteTTL time.Duration
	hooks     Hooks
	now       func() time.Time
}

// NewWorkspaceService returns a new WorkspaceService.
func NewWorkspaceService(r repo.WorkspaceRepo, users repo.UserRepo, invites repo.InviteRepo,
	signer *auth.InviteSigner, inviteTTL time.Duration, hooks Hooks) *WorkspaceService {
	if inviteTTL <= 0 {
		inviteTTL = 7 * 24 * time.Hour
	}
	return &WorkspaceService{
		repo:      r,
		users:     users,
		invites:   invites,
		signer:    signer,
		inviteTTL: inviteTTL,
		hooks:     hooks,
		now:       time.Now,
	}
}

// ResolveMember implements auth.MemberResolver. An empty workspaceID picks the
// user's first workspace.
func (s *WorkspaceService) ResolveMember(ctx context.Context, userID, workspaceID string) (dom.Member, bool, error) {
	if userID == "" {
		return dom.Member{}, false, nil
	}
	if workspaceID == "" {
		list, err := s.repo.ListForUser(ctx, userID)
		if err != nil {
			return dom.Member{}, false, err
		}
		if len(list) == 0 {
			return dom.Member{}, false, nil
		}
		return dom.Member{WorkspaceID: list[0].Workspace.ID, UserID: userID, Role: list[0].Role}, true, nil
	}
	if _, err := uuid.Parse(workspaceID); err != nil {
		return dom.Member{}, false, nil
	}
	m, err := s.repo.GetMember(ctx, workspaceID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Member{}, false, nil
	}
	if err != nil {
		return dom.Member{}, false, err
	}
	return m, true, nil
}

func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]dom.Membership, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *WorkspaceService) Get(ctx context.Context, workspaceID string) (dom.Workspace, error) {
	ws, err := s.repo.GetByID(ctx, workspaceID)
	return ws, storeErr(err)
}

func (s *WorkspaceService) Team(ctx context.Context, workspaceID string) ([]dom.Member, error) {
	return s.repo.ListMembers(ctx, workspaceID)
}

// ChangeRole sets the role of targetID. The owner cannot be demoted here and
// only the owner hands out or takes away ADMIN.
func (s *WorkspaceService) ChangeRole(ctx context.Context, workspaceID, actorID string, actorRole dom.Role, targetID string, role dom.Role) (dom.Member, error) {
	if !role.Valid() {
		return dom.Member{}, invalid("invalid role")
	}
	if role == dom.RoleOwner {
		return dom.Member{}, invalid("use ownership transfer to assign OWNER")
	}
	target, err := s.repo.GetMember(ctx, workspaceID, targetID)
	if err != nil {
		return dom.Member{}, storeErr(err)
	}
	if target.Role == dom.RoleOwner {
		return dom.Member{}, forbidden("cannot change the owner's role")
	}
	if (role == dom.RoleAdmin || target.Role == dom.RoleAdmin) && actorRole != dom.RoleOwner {
		return dom.Member{}, forbidden("only the owner can manage admins")
	}
	if err := s.repo.UpdateMemberRole(ctx, workspaceID, targetID, role); err != nil {
		return dom.Member{}, storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityUpdate,
		EntityType:  "member",
		EntityID:    targetID,
		Action:      "changed role",
		OldValue:    jsonValue(map[string]dom.Role{"role": target.Role}),
		NewValue:    jsonValue(map[string]dom.Role{"role": role}),
	})
	target.Role = role
	return target, nil
}

// RemoveMember removes targetID from the workspace.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, actorID string, actorRole dom.Role, targetID string) error {
	if targetID == actorID {
		return invalid("cannot remove yourself")
	}
	target, err := s.repo.GetMember(ctx, workspaceID, targetID)
	if err != nil {
		return storeErr(err)
	}
	if target.Role == dom.RoleOwner {
		return forbidden("cannot remove the owner")
	}
	if target.Role == dom.RoleAdmin && actorRole != dom.RoleOwner {
		return forbidden("only the owner can remove admins")
	}
	if err := s.repo.RemoveMember(ctx, workspaceID, targetID); err != nil {
		return storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityDelete,
		EntityType:  "member",
		EntityID:    targetID,
		Action:      "removed member " + target.UserName,
	})
	return nil
}

// TransferOwnership makes toUserID the owner; the previous owner becomes ADMIN.
func (s *WorkspaceService) TransferOwnership(ctx context.Context, workspaceID, actorID string, actorRole dom.Role, toUserID string) error {
	if actorRole != dom.RoleOwner {
		return forbidden("only the owner can transfer ownership")
	}
	if toUserID == "" || toUserID == actorID {
		return invalid("choose another member as the new owner")
	}
	if err := s.repo.TransferOwnership(ctx, workspaceID, actorID, toUserID); err != nil {
		return storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityUpdate,
		EntityType:  "workspace",
		EntityID:    workspaceID,
		Action:      "transferred ownership",
		NewValue:    jsonValue(map[string]string{"ownerId": toUserID}),
	})
	return nil
}

// CreateInvite stores an invite and returns it with its signed token.
func (s *WorkspaceService) CreateInvite(ctx context.Context, workspaceID, actorID string, actorRole dom.Role, email string, role dom.Role) (dom.Invite, string, error) {
	if role == "" {
		role = dom.RoleMember
	}
	if !role.Valid() {
		return dom.Invite{}, "", invalid("invalid role")
	}
	if role == dom.RoleOwner {
		return dom.Invite{}, "", invalid("Cannot create invite for OWNER role")
	}
	if role == dom.RoleAdmin && actorRole != dom.RoleOwner {
		return dom.Invite{}, "", forbidden("Only OWNER can invite ADMIN users")
	}
	email = normalizeEmail(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return dom.Invite{}, "", invalid("invalid email")
		}
	}
	now := s.now().UTC()
	inv, err := s.invites.Create(ctx, dom.Invite{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Email:       email,
		Role:        role,
		InvitedByID: actorID,
		ExpiresAt:   now.Add(s.inviteTTL),
		CreatedAt:   now,
	})
	if err != nil {
		return dom.Invite{}, "", storeErr(err)
	}
	inv.CreatedAt = now
	token, err := s.signer.Sign(inv)
	if err != nil {
		return dom.Invite{}, "", err
	}
	return inv, token, nil
}

func (s *WorkspaceService) loadInvite(ctx context.Context, token string) (dom.Invite, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrInviteExpired) {
			return dom.Invite{}, ErrInviteExpired
		}
		return dom.Invite{}, ErrInvalidInvite
	}
	inv, err := s.invites.GetByID(ctx, claims.InviteID)
	if err != nil {
		return dom.Invite{}, storeErr(err)
	}
	if inv.AcceptedAt != nil {
		return dom.Invite{}, ErrInviteUsed
	}
	if s.now().After(inv.ExpiresAt) {
		return dom.Invite{}, ErrInviteExpired
	}
	return inv, nil
}

// PreviewInvite validates token and describes the invite.
func (s *WorkspaceService) PreviewInvite(ctx context.Context, token string) (InvitePreview, error) {
	inv, err := s.loadInvite(ctx, token)
	if err != nil {
		return InvitePreview{}, err
	}
	ws, err := s.repo.GetByID(ctx, inv.WorkspaceID)
	if err != nil {
		return InvitePreview{}, storeErr(err)
	}
	return InvitePreview{Invite: inv, WorkspaceName: ws.Name}, nil
}

// AcceptInvite adds userID to the invite's workspace.
func (s *WorkspaceService) AcceptInvite(ctx context.Context, token, userID string) (dom.Invite, error) {
	inv, err := s.loadInvite(ctx, token)
	if err != nil {
		return dom.Invite{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dom.Invite{}, storeErr(err)
	}
	if inv.Email != "" && !strings.EqualFold(inv.Email, u.Email) {
		return dom.Invite{}, forbidden("This invite is for a different email address")
	}
	if _, err := s.repo.GetMember(ctx, inv.WorkspaceID, userID); err == nil {
		return dom.Invite{}, ErrConflict
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return dom.Invite{}, err
	}
	if err := s.invites.Accept(ctx, inv.ID, userID, s.now().UTC()); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return dom.Invite{}, ErrInviteUsed
		case utils.IsPGUniqueViolation(err):
			return dom.Invite{}, ErrConflict
		}
		return dom.Invite{}, err
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: inv.WorkspaceID,
		UserID:      userID,
		Type:        dom.ActivityCreate,
		EntityType:  "member",
		EntityID:    userID,
		Action:      "joined workspace as " + string(inv.Role),
	})
	return inv, nil
}

// TelegramSettings is a partial update; nil fields keep their value and an
// empty string clears a field.
type TelegramSettings struct {
	BotToken *string
	ChatID   *string
	Settings *dom.NotificationSettings
}

func (s *WorkspaceService) UpdateTelegram(ctx context.Context, workspaceID, actorID string, in TelegramSettings) (dom.Workspace, error) {
	ws, err := s.repo.GetByID(ctx, workspaceID)
	if err != nil {
		return dom.Workspace{}, storeErr(err)
	}
	botToken, chatID, settings := ws.TelegramBotToken, ws.TelegramChatID, ws.NotificationSettings
	if in.BotToken != nil {
		botToken = strPtr(strings.TrimSpace(*in.BotToken))
	}
	if in.ChatID != nil {
		chatID = strPtr(strings.TrimSpace(*in.ChatID))
	}
	if in.Settings != nil {
		settings = *in.Settings
		for ev := range settings.Events {
			if !validGroupEvent(ev) {
				return dom.Workspace{}, invalid("unknown notification event " + string(ev))
			}
		}
	}
	if settings.Events == nil {
		settings.Events = map[dom.GroupEvent]bool{}
	}
	updated, err := s.repo.UpdateTelegram(ctx, workspaceID, botToken, chatID, settings)
	if err != nil {
		return dom.Workspace{}, storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityUpdate,
		EntityType:  "workspace",
		EntityID:    workspaceID,
		Action:      "updated telegram settings",
	})
	return updated, nil
}

func validGroupEvent(ev dom.GroupEvent) bool {
	switch ev {
	case dom.EventTaskCreated, dom.EventTaskStatusChanged, dom.EventTaskAssigned, dom.EventTaskDeleted,
		dom.EventProjectCreated, dom.EventProjectStatusChanged, dom.EventProjectDeleted,
		dom.EventClientCreated, dom.EventClientUpdated, dom.EventClientDeleted,
		dom.EventCommentAdded, dom.EventFeedbackSubmitted, dom.EventCalendarCreated:
		return true
	}
	return false
}

// LinkTelegram stores the personal chat id of userID; an empty chatID unlinks.
func (s *WorkspaceService) LinkTelegram(ctx context.Context, userID, chatID string) error {
	return storeErr(s.users.SetTelegramChatID(ctx, userID, strPtr(strings.TrimSpace(chatID))))
}

// SendTestMessage sends a greeting to the user's linked chat.
func (s *WorkspaceService) SendTestMessage(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeErr(err)
	}
	if u.TelegramChatID == nil || *u.TelegramChatID == "" {
		return invalid("Telegram chat is not linked")
	}
	if s.hooks.Notifier == nil {
		return errors.New("telegram is not configured")
	}
	return s.hooks.Notifier.Personal(ctx, *u.TelegramChatID, telegram.TestMessage(u.Name))
}
