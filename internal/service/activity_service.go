package service

import (
	"context"

	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/events"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityService writes the audit log and mirrors it to the event stream.
type ActivityService struct {
	repo repo.ActivityRepo
	pub  events.Publisher
	log  *zap.Logger
}

// NewActivityService returns an ActivityService. A nil publisher disables streaming.
func NewActivityService(r repo.ActivityRepo, pub events.Publisher, log *zap.Logger) *ActivityService {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityService{repo: r, pub: pub, log: log}
}

// Log stores a and publishes it. Errors are logged only.
func (s *ActivityService) Log(ctx context.Context, a dom.Activity) {
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		s.log.Warn("activity log failed",
			zap.String("workspace", a.WorkspaceID),
			zap.String("entity", a.EntityType),
			zap.String("action", a.Action),
			zap.Error(err))
		return
	}
	if err := s.pub.PublishActivity(ctx, created); err != nil {
		s.log.Warn("activity publish failed", zap.String("activity", created.ID), zap.Error(err))
	}
}

// List returns a page of the workspace log and the total number of matches.
func (s *ActivityService) List(ctx context.Context, workspaceID string, f dom.ActivityFilter) ([]dom.Activity, int, error) {
	if f.Type != "" && !validActivityType(f.Type) {
		return nil, 0, invalid("invalid activity type")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, 0, invalid("dateTo must not be before dateFrom")
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultActivityLimit
	case f.Limit > maxActivityLimit:
		f.Limit = maxActivityLimit
	}
	f.Offset = max(f.Offset, 0)
	return s.repo.List(ctx, workspaceID, f)
}

func validActivityType(t dom.ActivityType) bool {
	switch t {
	case dom.ActivityCreate, dom.ActivityUpdate, dom.ActivityDelete,
		dom.ActivityStatusChange, dom.ActivityComment, dom.ActivityAssign:
		return true
	}
	return false
}
