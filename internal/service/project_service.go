package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

// MaxFileSize caps a single project attachment.
const MaxFileSize = 25 << 20

const downloadURLExpiry = 15 * time.Minute

var ErrStorageDisabled = errors.New("file storage is not configured")

// ObjectStore is where attachments live; *storage.Store implements it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	PresignGet(ctx context.Context, key, fileName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// ProjectPatch is a partial project update; nil fields stay unchanged.
// ClearClient detaches the client.
type ProjectPatch struct {
	Name            *string
	Description     *string
	ClientID        *string
	ClearClient     bool
	Type            *dom.ProjectType
	Status          *dom.ProjectStatus
	Priority        *dom.Priority
	Budget          *float64
	StartDate       *time.Time
	EndDatePlan     *time.Time
	PainDescription *string
}

// Upload is an incoming attachment.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type ProjectService struct {
	repo    repo.ProjectRepo
	clients repo.ClientRepo
	files   repo.FileRepo
	store   ObjectStore
	hooks   Hooks
}

// NewProjectService returns a ProjectService. A nil store disables attachments.
func NewProjectService(r repo.ProjectRepo, clients repo.ClientRepo, files repo.FileRepo, store ObjectStore, hooks Hooks) *ProjectService {
	return &ProjectService{repo: r, clients: clients, files: files, store: store, hooks: hooks}
}

func (s *ProjectService) Create(ctx context.Context, workspaceID, actorID string, p dom.Project) (dom.Project, error) {
	p.WorkspaceID = workspaceID
	p.CreatedByID = actorID
	if p.Type == "" {
		p.Type = dom.ProjectOther
	}
	if p.Status == "" {
		p.Status = dom.ProjectLead
	}
	if p.Priority == "" {
		p.Priority = dom.PriorityMedium
	}
	if err := s.validate(ctx, &p); err != nil {
		return dom.Project{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return dom.Project{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   &created.ID,
		Type:        dom.ActivityCreate,
		EntityType:  "project",
		EntityID:    created.ID,
		Action:      "created project " + created.Name,
	})
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventProjectCreated, telegram.GroupEventData{
		EntityID:   created.ID,
		Title:      created.Name,
		ClientName: created.ClientName,
	})
	return created, nil
}

func (s *ProjectService) Get(ctx context.Context, workspaceID, id string) (dom.Project, error) {
	p, err := s.repo.GetByID(ctx, workspaceID, id)
	return p, storeErr(err)
}

func (s *ProjectService) List(ctx context.Context, workspaceID string, f dom.ProjectFilter) ([]dom.Project, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("invalid project status")
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, invalid("invalid project type")
	}
	return s.repo.List(ctx, workspaceID, f)
}

func (s *ProjectService) Update(ctx context.Context, workspaceID, actorID, id string, patch ProjectPatch) (dom.Project, error) {
	existing, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return dom.Project{}, storeErr(err)
	}
	p := existing
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.ClearClient {
		p.ClientID = nil
	} else if patch.ClientID != nil {
		p.ClientID = strPtr(*patch.ClientID)
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Priority != nil {
		p.Priority = *patch.Priority
	}
	if patch.Budget != nil {
		p.Budget = patch.Budget
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.EndDatePlan != nil {
		p.EndDatePlan = patch.EndDatePlan
	}
	if patch.PainDescription != nil {
		p.PainDescription = *patch.PainDescription
	}
	if err := s.validate(ctx, &p); err != nil {
		return dom.Project{}, err
	}
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return dom.Project{}, storeErr(err)
	}
	s.hooks.invalidate(ctx, workspaceID)

	if existing.Status == updated.Status {
		s.hooks.activity(ctx, dom.Activity{
			WorkspaceID: workspaceID,
			UserID:      actorID,
			ProjectID:   &updated.ID,
			Type:        dom.ActivityUpdate,
			EntityType:  "project",
			EntityID:    updated.ID,
			Action:      "updated project " + updated.Name,
		})
		return updated, nil
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   &updated.ID,
		Type:        dom.ActivityStatusChange,
		EntityType:  "project",
		EntityID:    updated.ID,
		Action:      "changed project status",
		OldValue:    jsonValue(map[string]dom.ProjectStatus{"status": existing.Status}),
		NewValue:    jsonValue(map[string]dom.ProjectStatus{"status": updated.Status}),
	})
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventProjectStatusChanged, telegram.GroupEventData{
		EntityID:  updated.ID,
		Title:     updated.Name,
		OldStatus: string(existing.Status),
		NewStatus: string(updated.Status),
	})
	if updated.CreatedByID != actorID {
		s.hooks.notifyUser(ctx, updated.CreatedByID,
			telegram.ProjectStatusChanged(updated.Name, string(existing.Status), string(updated.Status)))
	}
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, workspaceID, actorID, id string) error {
	p, err := s.repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return storeErr(err)
	}
	files, err := s.files.List(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, workspaceID, id); err != nil {
		return storeErr(err)
	}
	for _, f := range files {
		s.removeObject(ctx, f.ObjectKey)
	}
	s.hooks.invalidate(ctx, workspaceID)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityDelete,
		EntityType:  "project",
		EntityID:    id,
		Action:      "deleted project " + p.Name,
	})
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventProjectDeleted, telegram.GroupEventData{Title: p.Name})
	return nil
}

func (s *ProjectService) validate(ctx context.Context, p *dom.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name is required")
	}
	if !p.Type.Valid() {
		return invalid("invalid project type")
	}
	if !p.Status.Valid() {
		return invalid("invalid project status")
	}
	if !p.Priority.Valid() {
		return invalid("invalid priority")
	}
	if p.Budget != nil && *p.Budget < 0 {
		return invalid("budget must not be negative")
	}
	if p.StartDate != nil && p.EndDatePlan != nil && p.EndDatePlan.Before(*p.StartDate) {
		return invalid("end date must not be before start date")
	}
	if p.ClientID != nil {
		c, err := s.clients.GetByID(ctx, p.WorkspaceID, *p.ClientID)
		if err != nil {
			if errors.Is(storeErr(err), ErrNotFound) {
				return invalid("client not found in this workspace")
			}
			return err
		}
		p.ClientName = c.Name
	}
	return nil
}

// files

// ObjectKey is where an attachment of a project is stored.
func ObjectKey(workspaceID, projectID, fileName string) string {
	return "workspaces/" + workspaceID + "/projects/" + projectID + "/" + uuid.NewString() + "-" + fileName
}

func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func (s *ProjectService) UploadFile(ctx context.Context, workspaceID, actorID, projectID string, up Upload) (dom.ProjectFile, error) {
	if s.store == nil {
		return dom.ProjectFile{}, ErrStorageDisabled
	}
	name := cleanFileName(up.Name)
	if name == "" {
		return dom.ProjectFile{}, invalid("file name is required")
	}
	if up.Size <= 0 {
		return dom.ProjectFile{}, invalid("file is empty")
	}
	if up.Size > MaxFileSize {
		return dom.ProjectFile{}, invalid("file exceeds 25 MB")
	}
	if _, err := s.repo.GetByID(ctx, workspaceID, projectID); err != nil {
		return dom.ProjectFile{}, storeErr(err)
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := ObjectKey(workspaceID, projectID, name)
	if err := s.store.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		return dom.ProjectFile{}, err
	}
	f, err := s.files.Create(ctx, dom.ProjectFile{
		WorkspaceID:  workspaceID,
		ProjectID:    projectID,
		Name:         name,
		ObjectKey:    key,
		ContentType:  contentType,
		Size:         up.Size,
		UploadedByID: actorID,
	})
	if err != nil {
		s.removeObject(ctx, key)
		return dom.ProjectFile{}, storeErr(err)
	}
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   &projectID,
		Type:        dom.ActivityCreate,
		EntityType:  "file",
		EntityID:    f.ID,
		Action:      "uploaded file " + f.Name,
	})
	return f, nil
}

func (s *ProjectService) ListFiles(ctx context.Context, workspaceID, projectID string) ([]dom.ProjectFile, error) {
	if _, err := s.repo.GetByID(ctx, workspaceID, projectID); err != nil {
		return nil, storeErr(err)
	}
	return s.files.List(ctx, workspaceID, projectID)
}

// DownloadURL returns a short-lived presigned link to the file.
func (s *ProjectService) DownloadURL(ctx context.Context, workspaceID, fileID string) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	f, err := s.files.GetByID(ctx, workspaceID, fileID)
	if err != nil {
		return "", storeErr(err)
	}
	return s.store.PresignGet(ctx, f.ObjectKey, f.Name, downloadURLExpiry)
}

func (s *ProjectService) DeleteFile(ctx context.Context, workspaceID, actorID, fileID string) error {
	f, err := s.files.GetByID(ctx, workspaceID, fileID)
	if err != nil {
		return storeErr(err)
	}
	if err := s.files.Delete(ctx, workspaceID, fileID); err != nil {
		return storeErr(err)
	}
	s.removeObject(ctx, f.ObjectKey)
	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   &f.ProjectID,
		Type:        dom.ActivityDelete,
		EntityType:  "file",
		EntityID:    fileID,
		Action:      "deleted file " + f.Name,
	})
	return nil
}

// removeObject deletes a stored object; an orphaned object is only logged.
func (s *ProjectService) removeObject(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.hooks.logger().Warn("delete stored file", zap.String("key", key), zap.Error(err))
	}
}
