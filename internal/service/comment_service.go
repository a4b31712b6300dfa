package service

import (
	"context"
	"strings"
	"unicode/utf8"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

const maxCommentLen = 5000

// CommentService stores comments on tasks and projects as COMMENT activities
// and tells the people responsible for the entity.
type CommentService struct {
	tasks    repo.TaskRepo
	projects repo.ProjectRepo
	hooks    Hooks
}

func NewCommentService(tasks repo.TaskRepo, projects repo.ProjectRepo, hooks Hooks) *CommentService {
	return &CommentService{tasks: tasks, projects: projects, hooks: hooks}
}

// Add comments on a "task" or "project".
func (s *CommentService) Add(ctx context.Context, workspaceID, actorID, entityType, entityID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalid("comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return invalid("comment is too long")
	}

	var (
		name      string
		projectID *string
		notify    []string
		link      string
	)
	switch entityType {
	case "task":
		t, err := s.tasks.GetByID(ctx, workspaceID, entityID)
		if err != nil {
			return storeErr(err)
		}
		name, projectID, link = t.Title, t.ProjectID, "/tasks/"+t.ID
		notify = append(notify, t.CreatedByID)
		if t.AssigneeID != nil {
			notify = append(notify, *t.AssigneeID)
		}
	case "project":
		p, err := s.projects.GetByID(ctx, workspaceID, entityID)
		if err != nil {
			return storeErr(err)
		}
		name, projectID, link = p.Name, &p.ID, "/projects/"+p.ID
		notify = append(notify, p.CreatedByID)
	default:
		return invalid("entityType must be task or project")
	}

	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		ProjectID:   projectID,
		Type:        dom.ActivityComment,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      "commented",
		NewValue:    jsonValue(map[string]string{"text": text, "link": link}),
	})
	author := s.hooks.userName(ctx, actorID)
	s.hooks.announce(ctx, workspaceID, actorID, dom.EventCommentAdded, telegram.GroupEventData{
		EntityID:   entityID,
		EntityType: entityType,
		Title:      name,
		UserName:   author,
		Comment:    text,
	})
	msg := telegram.NewComment(author, entityType, name, text)
	for _, userID := range compactIDs(notify) {
		if userID != actorID {
			s.hooks.notifyUser(ctx, userID, msg)
		}
	}
	return nil
}
