package service

import (
	"context"
	"errors"
	"strings"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
)

// MilestonePatch is a partial milestone update; nil fields stay unchanged.
type MilestonePatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Order        *int
	Status       *dom.MilestoneStatus
}

type MilestoneService struct {
	repo     repo.MilestoneRepo
	projects repo.ProjectRepo
	hooks    Hooks
}

func NewMilestoneService(r repo.MilestoneRepo, projects repo.ProjectRepo, hooks Hooks) *MilestoneService {
	return &MilestoneService{repo: r, projects: projects, hooks: hooks}
}

// Create adds a PENDING milestone. A zero Order places it after the last one.
func (s *MilestoneService) Create(ctx context.Context, workspaceID, actorID string, m dom.Milestone) (dom.Milestone, error) {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	if m.ProjectID == "" || m.Title == "" {
		return dom.Milestone{}, invalid("projectId and title are required")
	}
	if m.Order < 0 {
		return dom.Milestone{}, invalid("order must be positive")
	}
	p, err := s.projects.GetByID(ctx, workspaceID, m.ProjectID)
	if err != nil {
		if errors.Is(storeErr(err), ErrNotFound) {
			return dom.Milestone{}, invalid("project not found in this workspace")
		}
		return dom.Milestone{}, err
	}
	m.WorkspaceID = workspaceID
	m.Status = dom.MilestonePending
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return dom.Milestone{}, storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   &p.ID,
		Type:        dom.ActivityCreate,
		EntityType:  "milestone",
		EntityID:    created.ID,
		Action:      "created milestone " + created.Title,
	})
	return created, nil
}

// List returns the project's milestones in order.
func (s *MilestoneService) List(ctx context.Context, workspaceID, projectID string) ([]dom.Milestone, error) {
	if _, err := s.projects.GetByID(ctx, workspaceID, projectID); err != nil {
		return nil, storeErr(err)
	}
	return s.repo.ListByProject(ctx, workspaceID, projectID)
}

func (s *MilestoneService) Update(ctx context.Context, workspaceID, actorID, id string, patch MilestonePatch) (dom.Milestone, error) {
	existing, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return dom.Milestone{}, storeErr(err)
	}
	m := existing
	if patch.Title != nil {
		m.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		m.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ClearDueDate {
		m.DueDate = nil
	} else if patch.DueDate != nil {
		m.DueDate = patch.DueDate
	}
	if patch.Order != nil {
		m.Order = *patch.Order
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	switch {
	case m.Title == "":
		return dom.Milestone{}, invalid("title must not be empty")
	case m.Order < 1:
		return dom.Milestone{}, invalid("order must be positive")
	case !m.Status.Valid():
		return dom.Milestone{}, invalid("invalid milestone status")
	}

	updated, err := s.repo.Update(ctx, m)
	if err != nil {
		return dom.Milestone{}, storeErr(err)
	}
	a := dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   &updated.ProjectID,
		Type:        dom.ActivityUpdate,
		EntityType:  "milestone",
		EntityID:    updated.ID,
		Action:      "updated milestone " + updated.Title,
	}
	if updated.Status != existing.Status {
		a.Type = dom.ActivityStatusChange
		a.Action = "changed milestone status " + updated.Title
		a.OldValue = jsonValue(map[string]dom.MilestoneStatus{"status": existing.Status})
		a.NewValue = jsonValue(map[string]dom.MilestoneStatus{"status": updated.Status})
	}
	s.hooks.activity(ctx, a)
	return updated, nil
}

func (s *MilestoneService) Delete(ctx context.Context, workspaceID, actorID, id string) error {
	m, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return storeErr(err)
	}
	if err := s.repo.Delete(ctx, workspaceID, id); err != nil {
		return storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   &m.ProjectID,
		Type:        dom.ActivityDelete,
		EntityType:  "milestone",
		EntityID:    id,
		Action:      "deleted milestone " + m.Title,
	})
	return nil
}
