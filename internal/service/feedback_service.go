package service

import (
	"context"
	"strings"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

type FeedbackService struct {
	repo  repo.FeedbackRepo
	hooks Hooks
}

func NewFeedbackService(r repo.FeedbackRepo, hooks Hooks) *FeedbackService {
	return &FeedbackService{repo: r, hooks: hooks}
}

func (s *FeedbackService) Create(ctx context.Context, workspaceID, actorID string, f dom.Feedback) (dom.Feedback, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if !f.Type.Valid() {
		return dom.Feedback{}, invalid("type must be BUG, FEATURE or IMPROVEMENT")
	}
	if f.Title == "" || f.Description == "" {
		return dom.Feedback{}, invalid("title and description are required")
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return dom.Feedback{}, invalid("invalid priority")
	}
	f.WorkspaceID = workspaceID
	f.CreatedByID = actorID
	f.Status = dom.FeedbackOpen
	created, err := s.repo.Create(ctx, f)
	if err != nil {
		return dom.Feedback{}, storeErr(err)
	}
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventFeedbackSubmitted, telegram.GroupEventData{
		EntityID:     created.ID,
		Title:        created.Title,
		FeedbackType: string(created.Type),
	})
	return created, nil
}

func (s *FeedbackService) List(ctx context.Context, workspaceID string) ([]dom.Feedback, error) {
	return s.repo.List(ctx, workspaceID)
}

func (s *FeedbackService) UpdateStatus(ctx context.Context, workspaceID, id string, status dom.FeedbackStatus) (dom.Feedback, error) {
	if !status.Valid() {
		return dom.Feedback{}, invalid("invalid feedback status")
	}
	f, err := s.repo.UpdateStatus(ctx, workspaceID, id, status)
	return f, storeErr(err)
}

// Delete removes feedback; only its author or an admin may do so.
func (s *FeedbackService) Delete(ctx context.Context, workspaceID, actorID string, actorRole dom.Role, id string) error {
	f, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return storeErr(err)
	}
	if f.CreatedByID != actorID && !actorRole.AtLeast(dom.RoleAdmin) {
		return forbidden("only the author or an admin can delete feedback")
	}
	return storeErr(s.repo.Delete(ctx, workspaceID, id))
}
