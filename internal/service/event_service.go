package service

import (
	"context"
	"errors"
	"strings"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

// EventPatch is a partial calendar event update; nil fields stay unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Type        *dom.EventType
	StartDate   *time.Time
	EndDate     *time.Time
	ClearEnd    bool
	AllDay      *bool
	ProjectID   *string
	TaskID      *string
	ClientID    *string
}

type EventService struct {
	repo     repo.EventRepo
	projects repo.ProjectRepo
	tasks    repo.TaskRepo
	clients  repo.ClientRepo
	hooks    Hooks
	loc      *time.Location
}

// NewEventService returns an EventService; loc formats dates in announcements.
func NewEventService(r repo.EventRepo, projects repo.ProjectRepo, tasks repo.TaskRepo, clients repo.ClientRepo,
	hooks Hooks, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{repo: r, projects: projects, tasks: tasks, clients: clients, hooks: hooks, loc: loc}
}

func (s *EventService) Create(ctx context.Context, workspaceID, actorID string, e dom.Event) (dom.Event, error) {
	e.WorkspaceID = workspaceID
	e.CreatedByID = actorID
	if e.Type == "" {
		e.Type = dom.EventMeeting
	}
	if err := s.validate(ctx, &e); err != nil {
		return dom.Event{}, err
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return dom.Event{}, storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   created.ProjectID,
		Type:        dom.ActivityCreate,
		EntityType:  "event",
		EntityID:    created.ID,
		Action:      "created event " + created.Title,
	})
	start := created.StartDate.In(s.loc)
	startLabel := start.Format("02.01.2006")
	if !created.AllDay {
		startLabel = start.Format("02.01.2006 15:04")
	}
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventCalendarCreated, telegram.GroupEventData{
		EntityID:  created.ID,
		Title:     created.Title,
		EventType: created.Type,
		StartDate: startLabel,
	})
	return created, nil
}

func (s *EventService) Get(ctx context.Context, workspaceID, id string) (dom.Event, error) {
	e, err := s.repo.GetByID(ctx, workspaceID, id)
	return e, storeErr(err)
}

func (s *EventService) List(ctx context.Context, workspaceID string, f dom.EventFilter) ([]dom.Event, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, invalid("invalid event type")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, invalid("to must not be before from")
	}
	return s.repo.List(ctx, workspaceID, f)
}

func (s *EventService) Update(ctx context.Context, workspaceID, actorID, id string, p EventPatch) (dom.Event, error) {
	e, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return dom.Event{}, storeErr(err)
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.ClearEnd {
		e.EndDate = nil
	} else if p.EndDate != nil {
		e.EndDate = p.EndDate
	}
	if p.AllDay != nil {
		e.AllDay = *p.AllDay
	}
	if p.ProjectID != nil {
		e.ProjectID = strPtr(*p.ProjectID)
	}
	if p.TaskID != nil {
		e.TaskID = strPtr(*p.TaskID)
	}
	if p.ClientID != nil {
		e.ClientID = strPtr(*p.ClientID)
	}
	if err := s.validate(ctx, &e); err != nil {
		return dom.Event{}, err
	}
	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return dom.Event{}, storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   updated.ProjectID,
		Type:        dom.ActivityUpdate,
		EntityType:  "event",
		EntityID:    updated.ID,
		Action:      "updated event " + updated.Title,
	})
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, workspaceID, actorID, id string) error {
	e, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return storeErr(err)
	}
	if err := s.repo.Delete(ctx, workspaceID, id); err != nil {
		return storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   e.ProjectID,
		Type:        dom.ActivityDelete,
		EntityType:  "event",
		EntityID:    id,
		Action:      "deleted event " + e.Title,
	})
	return nil
}

func (s *EventService) validate(ctx context.Context, e *dom.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return invalid("title is required")
	}
	if !e.Type.Valid() {
		return invalid("invalid event type")
	}
	if e.StartDate.IsZero() {
		return invalid("startDate is required")
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return invalid("endDate must not be before startDate")
	}
	if err := linked(e.ProjectID, "project", func(id string) error {
		_, err := s.projects.GetByID(ctx, e.WorkspaceID, id)
		return err
	}); err != nil {
		return err
	}
	if err := linked(e.TaskID, "task", func(id string) error {
		_, err := s.tasks.GetByID(ctx, e.WorkspaceID, id)
		return err
	}); err != nil {
		return err
	}
	return linked(e.ClientID, "client", func(id string) error {
		_, err := s.clients.GetByID(ctx, e.WorkspaceID, id)
		return err
	})
}

// linked checks that an optional reference points into the same workspace.
func linked(id *string, what string, get func(string) error) error {
	if id == nil {
		return nil
	}
	if err := get(*id); err != nil {
		if errors.Is(storeErr(err), ErrNotFound) {
			return invalid(what + " not found in this workspace")
		}
		return err
	}
	return nil
}
