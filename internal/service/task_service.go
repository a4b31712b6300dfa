package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

const maxBulkTasks = 100

// TaskPatch is a partial task update; nil fields stay unchanged and the
// Clear* flags reset optional references.
type TaskPatch struct {
	Title         *string
	Description   *string
	ProjectID     *string
	ClearProject  bool
	ParentID      *string
	ClearParent   bool
	Status        *dom.TaskStatus
	Priority      *dom.Priority
	AssigneeID    *string
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

type TaskService struct {
	repo          repo.TaskRepo
	projects      repo.ProjectRepo
	members       repo.WorkspaceRepo
	notifications repo.NotificationRepo
	hooks         Hooks
	now           func() time.Time
}

func NewTaskService(r repo.TaskRepo, projects repo.ProjectRepo, members repo.WorkspaceRepo,
	notifications repo.NotificationRepo, hooks Hooks) *TaskService {
	return &TaskService{
		repo:          r,
		projects:      projects,
		members:       members,
		notifications: notifications,
		hooks:         hooks,
		now:           time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, workspaceID, actorID string, t dom.Task) (dom.Task, error) {
	t.WorkspaceID = workspaceID
	t.CreatedByID = actorID
	if t.Status == "" {
		t.Status = dom.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = dom.PriorityMedium
	}
	if t.Status == dom.TaskCompleted {
		now := s.now().UTC()
		t.CompletedAt = &now
	}
	if err := s.validate(ctx, &t); err != nil {
		return dom.Task{}, err
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return dom.Task{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   created.ProjectID,
		Type:        dom.ActivityCreate,
		EntityType:  "task",
		EntityID:    created.ID,
		Action:      "created task " + created.Title,
	})
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventTaskCreated, telegram.GroupEventData{
		EntityID:    created.ID,
		Title:       created.Title,
		ProjectName: created.ProjectName,
	})
	if created.AssigneeID != nil {
		s.assigned(ctx, actorID, created)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, workspaceID, id string) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, workspaceID, id)
	return t, storeErr(err)
}

func (s *TaskService) List(ctx context.Context, workspaceID string, f dom.TaskFilter) ([]dom.Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("invalid task status")
	}
	return s.repo.List(ctx, workspaceID, f)
}

func (s *TaskService) Update(ctx context.Context, workspaceID, actorID, id string, p TaskPatch) (dom.Task, error) {
	existing, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return dom.Task{}, storeErr(err)
	}
	t := existing
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	switch {
	case p.ClearProject:
		t.ProjectID = nil
	case p.ProjectID != nil:
		t.ProjectID = strPtr(*p.ProjectID)
	}
	switch {
	case p.ClearParent:
		t.ParentID = nil
	case p.ParentID != nil:
		t.ParentID = strPtr(*p.ParentID)
	}
	switch {
	case p.ClearAssignee:
		t.AssigneeID = nil
	case p.AssigneeID != nil:
		t.AssigneeID = strPtr(*p.AssigneeID)
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		t.DueDate = p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	applyCompletion(&t, existing.Status, s.now().UTC())
	if err := s.validate(ctx, &t); err != nil {
		return dom.Task{}, err
	}
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return dom.Task{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)

	if existing.Status != updated.Status {
		s.hooks.activity(ctx, dom.Activity{
			WorkspaceID: workspaceID,
			UserID:      actorID,
			ProjectID:   updated.ProjectID,
			Type:        dom.ActivityStatusChange,
			EntityType:  "task",
			EntityID:    updated.ID,
			Action:      "changed task status",
			OldValue:    jsonValue(map[string]dom.TaskStatus{"status": existing.Status}),
			NewValue:    jsonValue(map[string]dom.TaskStatus{"status": updated.Status}),
		})
		s.hooks.announce(ctx, workspaceID, actorID, dom.EventTaskStatusChanged, telegram.GroupEventData{
			EntityID:  updated.ID,
			Title:     updated.Title,
			OldStatus: string(existing.Status),
			NewStatus: string(updated.Status),
		})
	} else {
		s.hooks.activity(ctx, dom.Activity{
			WorkspaceID: workspaceID,
			UserID:      actorID,
			ProjectID:   updated.ProjectID,
			Type:        dom.ActivityUpdate,
			EntityType:  "task",
			EntityID:    updated.ID,
			Action:      "updated task " + updated.Title,
		})
	}
	if updated.AssigneeID != nil && deref(existing.AssigneeID) != *updated.AssigneeID {
		s.assigned(ctx, actorID, updated)
	}
	return updated, nil
}

// applyCompletion stamps completed_at when t enters COMPLETED and clears it when t leaves.
func applyCompletion(t *dom.Task, previous dom.TaskStatus, now time.Time) {
	switch {
	case t.Status == dom.TaskCompleted && previous != dom.TaskCompleted:
		t.CompletedAt = &now
	case t.Status != dom.TaskCompleted:
		t.CompletedAt = nil
	}
}

func (s *TaskService) Delete(ctx context.Context, workspaceID, actorID, id string) error {
	t, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return storeErr(err)
	}
	if err := s.repo.Delete(ctx, workspaceID, id); err != nil {
		return storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   t.ProjectID,
		Type:        dom.ActivityDelete,
		EntityType:  "task",
		EntityID:    id,
		Action:      "deleted task " + t.Title,
	})
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventTaskDeleted, telegram.GroupEventData{Title: t.Title})
	return nil
}

// SetArchived archives or restores a task.
func (s *TaskService) SetArchived(ctx context.Context, workspaceID, actorID, id string, archived bool) (dom.Task, error) {
	t, err := s.repo.SetArchived(ctx, workspaceID, id, archived, s.now().UTC())
	if err != nil {
		return dom.Task{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	action := "archived task "
	if !archived {
		action = "restored task "
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   t.ProjectID,
		Type:        dom.ActivityUpdate,
		EntityType:  "task",
		EntityID:    id,
		Action:      action + t.Title,
	})
	return t, nil
}

// BulkUpdate applies patch to up to 100 tasks of the workspace and returns how many changed.
func (s *TaskService) BulkUpdate(ctx context.Context, workspaceID, actorID string, ids []string, patch dom.TaskPatch) (int, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return 0, invalid("taskIds must not be empty")
	}
	if len(ids) > maxBulkTasks {
		return 0, invalid(fmt.Sprintf("at most %d tasks per request", maxBulkTasks))
	}
	if patch.Status == nil && patch.Priority == nil && patch.AssigneeID == nil {
		return 0, invalid("nothing to update")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return 0, invalid("invalid task status")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return 0, invalid("invalid priority")
	}
	if patch.AssigneeID != nil && *patch.AssigneeID != "" {
		if err := s.checkMember(ctx, workspaceID, *patch.AssigneeID); err != nil {
			return 0, err
		}
	}
	n, err := s.repo.BulkUpdate(ctx, workspaceID, ids, patch, s.now().UTC())
	if err != nil {
		return 0, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityUpdate,
		EntityType:  "task",
		EntityID:    ids[0],
		Action:      fmt.Sprintf("bulk updated %d tasks", n),
		NewValue:    jsonValue(patch),
	})
	return n, nil
}

// BulkDelete removes up to 100 tasks of the workspace. Ids of other
// workspaces are ignored; ErrNotFound when none matched.
func (s *TaskService) BulkDelete(ctx context.Context, workspaceID, actorID string, ids []string) (int, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return 0, invalid("taskIds must not be empty")
	}
	if len(ids) > maxBulkTasks {
		return 0, invalid(fmt.Sprintf("at most %d tasks per request", maxBulkTasks))
	}
	deleted, err := s.repo.BulkDelete(ctx, workspaceID, ids)
	if err != nil {
		return 0, storeErr(err)
	}
	if len(deleted) == 0 {
		return 0, ErrNotFound
	}
	s.hooks.invalidate(ctx, workspaceID)
	for _, t := range deleted {
		s.hooks.activity(ctx, dom.Activity{
			WorkspaceID: workspaceID,
			UserID:      actorID,
			Type:        dom.ActivityDelete,
			EntityType:  "task",
			EntityID:    t.ID,
			Action:      "deleted task " + t.Title,
		})
	}
	return len(deleted), nil
}

func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *TaskService) validate(ctx context.Context, t *dom.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return invalid("title is required")
	}
	if !t.Status.Valid() {
		return invalid("invalid task status")
	}
	if !t.Priority.Valid() {
		return invalid("invalid priority")
	}
	if t.ProjectID != nil {
		p, err := s.projects.GetByID(ctx, t.WorkspaceID, *t.ProjectID)
		if err != nil {
			if errors.Is(storeErr(err), ErrNotFound) {
				return invalid("project not found in this workspace")
			}
			return err
		}
		t.ProjectName = p.Name
	}
	if t.ParentID != nil {
		if *t.ParentID == t.ID {
			return invalid("a task cannot be its own parent")
		}
		if _, err := s.repo.GetByID(ctx, t.WorkspaceID, *t.ParentID); err != nil {
			if errors.Is(storeErr(err), ErrNotFound) {
				return invalid("parent task not found in this workspace")
			}
			return err
		}
	}
	if t.AssigneeID != nil {
		if err := s.checkMember(ctx, t.WorkspaceID, *t.AssigneeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) checkMember(ctx context.Context, workspaceID, userID string) error {
	if _, err := s.members.GetMember(ctx, workspaceID, userID); err != nil {
		if errors.Is(storeErr(err), ErrNotFound) {
			return invalid("assignee is not a member of this workspace")
		}
		return err
	}
	return nil
}

// assigned records and announces that t got a new assignee.
func (s *TaskService) assigned(ctx context.Context, actorID string, t dom.Task) {
	assignee := *t.AssigneeID
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: t.WorkspaceID,
		UserID:      actorID,
		ProjectID:   t.ProjectID,
		Type:        dom.ActivityAssign,
		EntityType:  "task",
		EntityID:    t.ID,
		Action:      "assigned task " + t.Title,
		NewValue:    jsonValue(map[string]string{"assigneeId": assignee}),
	})
	s.hooks.announce(ctx, t.WorkspaceID, actorID, dom.EventTaskAssigned, telegram.GroupEventData{
		EntityID:     t.ID,
		Title:        t.Title,
		AssigneeName: t.AssigneeName,
	})
	if assignee == actorID {
		return
	}
	if s.notifications != nil {
		if _, err := s.notifications.Create(ctx, dom.Notification{
			WorkspaceID: t.WorkspaceID,
			UserID:      assignee,
			Title:       "Новая задача назначена",
			Body:        t.Title,
			Link:        "/tasks/" + t.ID,
		}); err != nil {
			s.hooks.logger().Warn("create notification", zap.String("task", t.ID), zap.Error(err))
		}
	}
	s.hooks.notifyUser(ctx, assignee, telegram.TaskAssigned(t.Title, t.ProjectName, t.DueDate))
}
