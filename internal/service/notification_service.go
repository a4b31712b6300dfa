package service

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
)

const notificationPage = 50

// NotificationService manages the in-app notification inbox of a user.
type NotificationService struct {
	repo repo.NotificationRepo
}

func NewNotificationService(r repo.NotificationRepo) *NotificationService {
	return &NotificationService{repo: r}
}

func (s *NotificationService) List(ctx context.Context, workspaceID, userID string, unreadOnly bool) ([]dom.Notification, error) {
	return s.repo.List(ctx, workspaceID, userID, unreadOnly, notificationPage)
}

func (s *NotificationService) CountUnread(ctx context.Context, workspaceID, userID string) (int, error) {
	return s.repo.CountUnread(ctx, workspaceID, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, workspaceID, userID, id string) error {
	return storeErr(s.repo.MarkRead(ctx, workspaceID, userID, id))
}

func (s *NotificationService) MarkAllRead(ctx context.Context, workspaceID, userID string) (int, error) {
	return s.repo.MarkAllRead(ctx, workspaceID, userID)
}
