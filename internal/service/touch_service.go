package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
)

var ErrAlreadyConverted = errors.New("touch already converted")

// TouchPatch is a partial touch update; nil fields stay unchanged.
type TouchPatch struct {
	ContactName     *string
	ContactEmail    *string
	ContactPhone    *string
	ContactCompany  *string
	ContactPosition *string
	Industry        *string
	SocialMedia     *string
	Source          *string
	Description     *string
	SentMessage     *string
	Status          *dom.TouchStatus
	FollowUpAt      *time.Time
	ClearFollowUp   bool
	AssigneeID      *string
}

type TouchService struct {
	repo    repo.TouchRepo
	members repo.WorkspaceRepo
	hooks   Hooks
	now     func() time.Time
}

func NewTouchService(r repo.TouchRepo, members repo.WorkspaceRepo, hooks Hooks) *TouchService {
	return &TouchService{repo: r, members: members, hooks: hooks, now: time.Now}
}

func (s *TouchService) Create(ctx context.Context, workspaceID, actorID string, t dom.Touch) (dom.Touch, error) {
	t.WorkspaceID = workspaceID
	t.CreatedByID = actorID
	if t.Status == "" {
		t.Status = dom.TouchSent
	}
	if t.Status == dom.TouchConverted {
		return dom.Touch{}, invalid("use convert to mark a touch converted")
	}
	if err := s.validate(ctx, &t); err != nil {
		return dom.Touch{}, err
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return dom.Touch{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityCreate,
		EntityType:  "touch",
		EntityID:    created.ID,
		Action:      "logged touch with " + created.ContactName,
	})
	return created, nil
}

func (s *TouchService) Get(ctx context.Context, workspaceID, id string) (dom.Touch, error) {
	t, err := s.repo.GetByID(ctx, workspaceID, id)
	return t, storeErr(err)
}

// List filters by status; "" and "all" list every touch.
func (s *TouchService) List(ctx context.Context, workspaceID, status string) ([]dom.Touch, error) {
	st := dom.TouchStatus(strings.ToUpper(strings.TrimSpace(status)))
	if st == "ALL" {
		st = ""
	}
	if st != "" && !st.Valid() {
		return nil, invalid("invalid touch status")
	}
	return s.repo.List(ctx, workspaceID, st)
}

func (s *TouchService) Update(ctx context.Context, workspaceID, actorID, id string, p TouchPatch) (dom.Touch, error) {
	existing, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return dom.Touch{}, storeErr(err)
	}
	t := existing
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&t.ContactName, p.ContactName)
	set(&t.ContactEmail, p.ContactEmail)
	set(&t.ContactPhone, p.ContactPhone)
	set(&t.ContactCompany, p.ContactCompany)
	set(&t.ContactPosition, p.ContactPosition)
	set(&t.Industry, p.Industry)
	set(&t.SocialMedia, p.SocialMedia)
	set(&t.Source, p.Source)
	set(&t.Description, p.Description)
	set(&t.SentMessage, p.SentMessage)
	if p.Status != nil {
		if *p.Status == dom.TouchConverted && existing.Status != dom.TouchConverted {
			return dom.Touch{}, invalid("use convert to mark a touch converted")
		}
		t.Status = *p.Status
	}
	if p.ClearFollowUp {
		t.FollowUpAt = nil
	} else if p.FollowUpAt != nil {
		t.FollowUpAt = p.FollowUpAt
	}
	if p.AssigneeID != nil {
		t.AssigneeID = strPtr(*p.AssigneeID)
	}
	if err := s.validate(ctx, &t); err != nil {
		return dom.Touch{}, err
	}
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return dom.Touch{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	a := dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityUpdate,
		EntityType:  "touch",
		EntityID:    id,
		Action:      "updated touch with " + updated.ContactName,
	}
	if existing.Status != updated.Status {
		a.Type = dom.ActivityStatusChange
		a.Action = "changed touch status"
		a.OldValue = jsonValue(map[string]dom.TouchStatus{"status": existing.Status})
		a.NewValue = jsonValue(map[string]dom.TouchStatus{"status": updated.Status})
	}
	s.hooks.activity(ctx, a)
	return updated, nil
}

func (s *TouchService) Delete(ctx context.Context, workspaceID, actorID, id string) error {
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
		Type:        dom.ActivityDelete,
		EntityType:  "touch",
		EntityID:    id,
		Action:      "deleted touch with " + t.ContactName,
	})
	return nil
}

// Convert turns the touch into a client and marks it CONVERTED.
func (s *TouchService) Convert(ctx context.Context, workspaceID, actorID, id string) (dom.Touch, dom.Client, error) {
	t, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return dom.Touch{}, dom.Client{}, storeErr(err)
	}
	if t.Status == dom.TouchConverted {
		return dom.Touch{}, dom.Client{}, ErrAlreadyConverted
	}
	c := dom.Client{
		WorkspaceID:  workspaceID,
		Name:         t.ContactName,
		Company:      t.ContactCompany,
		Email:        t.ContactEmail,
		Phone:        t.ContactPhone,
		Source:       dom.ClientSourceCold,
		Status:       dom.ClientActive,
		SocialLinks:  []dom.SocialLink{},
		CustomFields: map[string]any{},
		CreatedByID:  actorID,
	}
	if t.Description != "" {
		c.Notes = "From touch: " + t.Description
	}
	touch, client, err := s.repo.ConvertToClient(ctx, workspaceID, id, c, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Touch{}, dom.Client{}, ErrAlreadyConverted
		}
		return dom.Touch{}, dom.Client{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityStatusChange,
		EntityType:  "touch",
		EntityID:    id,
		Action:      "converted touch to client " + client.Name,
		OldValue:    jsonValue(map[string]dom.TouchStatus{"status": t.Status}),
		NewValue:    jsonValue(map[string]string{"status": string(dom.TouchConverted), "clientId": client.ID}),
	})
	return touch, client, nil
}

func (s *TouchService) validate(ctx context.Context, t *dom.Touch) error {
	t.ContactName = strings.TrimSpace(t.ContactName)
	if t.ContactName == "" {
		return invalid("contactName is required")
	}
	if !t.Status.Valid() {
		return invalid("invalid touch status")
	}
	if t.AssigneeID != nil && s.members != nil {
		if _, err := s.members.GetMember(ctx, t.WorkspaceID, *t.AssigneeID); err != nil {
			if errors.Is(storeErr(err), ErrNotFound) {
				return invalid("assignee is not a member of this workspace")
			}
			return err
		}
	}
	return nil
}
