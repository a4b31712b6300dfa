package service

import (
	"context"
	"strings"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

// ClientPatch is a partial client update; nil fields stay unchanged.
type ClientPatch struct {
	Name         *string
	Company      *string
	Email        *string
	Phone        *string
	Website      *string
	Source       *dom.ClientSource
	Status       *dom.ClientStatus
	Notes        *string
	SocialLinks  *[]dom.SocialLink
	CustomFields *map[string]any
}

type ClientService struct {
	repo  repo.ClientRepo
	hooks Hooks
}

func NewClientService(r repo.ClientRepo, hooks Hooks) *ClientService {
	return &ClientService{repo: r, hooks: hooks}
}

func (s *ClientService) Create(ctx context.Context, workspaceID, actorID string, c dom.Client) (dom.Client, error) {
	c.WorkspaceID = workspaceID
	c.CreatedByID = actorID
	if c.Source == "" {
		c.Source = dom.ClientSourceOther
	}
	if c.Status == "" {
		c.Status = dom.ClientActive
	}
	if err := validateClient(&c); err != nil {
		return dom.Client{}, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return dom.Client{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityCreate,
		EntityType:  "client",
		EntityID:    created.ID,
		Action:      "created client " + created.Name,
	})
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventClientCreated, telegram.GroupEventData{
		EntityID: created.ID,
		Title:    created.Name,
		Company:  created.Company,
	})
	return created, nil
}

func (s *ClientService) Get(ctx context.Context, workspaceID, id string) (dom.Client, error) {
	c, err := s.repo.GetByID(ctx, workspaceID, id)
	return c, storeErr(err)
}

func (s *ClientService) List(ctx context.Context, workspaceID string, f dom.ClientFilter) ([]dom.Client, error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("invalid client status")
	}
	return s.repo.List(ctx, workspaceID, f)
}

func (s *ClientService) Update(ctx context.Context, workspaceID, actorID, id string, p ClientPatch) (dom.Client, error) {
	existing, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return dom.Client{}, storeErr(err)
	}
	c := existing
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Website != nil {
		c.Website = *p.Website
	}
	if p.Source != nil {
		c.Source = *p.Source
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.SocialLinks != nil {
		c.SocialLinks = *p.SocialLinks
	}
	if p.CustomFields != nil {
		c.CustomFields = *p.CustomFields
	}
	if err := validateClient(&c); err != nil {
		return dom.Client{}, err
	}
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return dom.Client{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)

	a := dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityUpdate,
		EntityType:  "client",
		EntityID:    id,
		Action:      "updated client " + updated.Name,
	}
	if existing.Status != updated.Status {
		a.Type = dom.ActivityStatusChange
		a.Action = "changed client status"
		a.OldValue = jsonValue(map[string]dom.ClientStatus{"status": existing.Status})
		a.NewValue = jsonValue(map[string]dom.ClientStatus{"status": updated.Status})
	}
	s.hooks.activity(ctx, a)
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventClientUpdated, telegram.GroupEventData{
		EntityID: updated.ID,
		Title:    updated.Name,
		Company:  updated.Company,
		Changes:  clientChanges(existing, updated),
	})
	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, workspaceID, actorID, id string) error {
	c, err := s.repo.GetByID(ctx, workspaceID, id)
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
		EntityType:  "client",
		EntityID:    id,
		Action:      "deleted client " + c.Name,
	})
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventClientDeleted, telegram.GroupEventData{Title: c.Name})
	return nil
}

func (s *ClientService) Analytics(ctx context.Context, workspaceID, id string) (dom.ClientAnalytics, error) {
	if _, err := s.repo.GetByID(ctx, workspaceID, id); err != nil {
		return dom.ClientAnalytics{}, storeErr(err)
	}
	a, err := s.repo.Analytics(ctx, workspaceID, id)
	return a, storeErr(err)
}

func validateClient(c *dom.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return invalid("name is required")
	}
	if !c.Source.Valid() {
		return invalid("invalid client source")
	}
	if !c.Status.Valid() {
		return invalid("invalid client status")
	}
	if c.SocialLinks == nil {
		c.SocialLinks = []dom.SocialLink{}
	}
	if c.CustomFields == nil {
		c.CustomFields = map[string]any{}
	}
	return nil
}

// clientChanges lists the names of the fields that differ, for announcements.
func clientChanges(old, cur dom.Client) string {
	var changed []string
	add := func(name string, differ bool) {
		if differ {
			changed = append(changed, name)
		}
	}
	add("имя", old.Name != cur.Name)
	add("компания", old.Company != cur.Company)
	add("email", old.Email != cur.Email)
	add("телефон", old.Phone != cur.Phone)
	add("статус", old.Status != cur.Status)
	add("заметки", old.Notes != cur.Notes)
	return strings.Join(changed, ", ")
}
