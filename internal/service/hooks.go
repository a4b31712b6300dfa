package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

// ActivityLogger records an activity. Failures must not fail the caller.
type ActivityLogger interface {
	Log(ctx context.Context, a dom.Activity)
}

// Notifier delivers Telegram messages; *telegram.Notifier implements it.
type Notifier interface {
	Group(ctx context.Context, ws dom.Workspace, ev dom.GroupEvent, data telegram.GroupEventData)
	Personal(ctx context.Context, chatID, text string) error
	AppURL() string
}

// ResultCache keeps per-workspace read models; *cache.WorkspaceCache implements it.
type ResultCache interface {
	Get(ctx context.Context, workspaceID, kind, sub string, dst any) (bool, error)
	Set(ctx context.Context, workspaceID, kind, sub string, v any) error
	Invalidate(ctx context.Context, workspaceID string) error
}

// Hooks are the side effects shared by the entity services. Nil fields are skipped.
type Hooks struct {
	Activity   ActivityLogger
	Notifier   Notifier
	Workspaces repo.WorkspaceRepo
	Users      repo.UserRepo
	Cache      ResultCache
	Log        *zap.Logger
}

func (h Hooks) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func (h Hooks) activity(ctx context.Context, a dom.Activity) {
	if h.Activity != nil {
		h.Activity.Log(ctx, a)
	}
}

// announce posts ev to the workspace group chat on behalf of actorID.
func (h Hooks) announce(ctx context.Context, workspaceID, actorID string, ev dom.GroupEvent, data telegram.GroupEventData) {
	if h.Notifier == nil || h.Workspaces == nil {
		return
	}
	ws, err := h.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		h.logger().Warn("load workspace for notification", zap.String("workspace", workspaceID), zap.Error(err))
		return
	}
	if !ws.HasTelegram() || !ws.NotificationSettings.Allows(ev) {
		return
	}
	if data.UserName == "" {
		data.UserName = h.userName(ctx, actorID)
	}
	h.Notifier.Group(ctx, ws, ev, data)
}

// notifyUser sends text to the personal chat of userID when one is linked.
func (h Hooks) notifyUser(ctx context.Context, userID, text string) {
	if h.Notifier == nil || h.Users == nil || userID == "" {
		return
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || u.TelegramChatID == nil || *u.TelegramChatID == "" {
		return
	}
	// Personal logs its own failures.
	_ = h.Notifier.Personal(ctx, *u.TelegramChatID, text)
}

func (h Hooks) userName(ctx context.Context, userID string) string {
	if h.Users == nil || userID == "" {
		return ""
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Name
}

// invalidate drops cached search and dashboard results of the workspace.
func (h Hooks) invalidate(ctx context.Context, workspaceID string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx, workspaceID); err != nil {
		h.logger().Debug("cache invalidate", zap.String("workspace", workspaceID), zap.Error(err))
	}
}

func jsonValue(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
