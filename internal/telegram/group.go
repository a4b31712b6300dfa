package telegram

import (
	"fmt"
	"strings"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

// GroupEventData carries what a group announcement needs. Fields irrelevant
// to an event are left empty.
type GroupEventData struct {
	EntityID     string
	Title        string
	ProjectName  string
	ClientName   string
	Company      string
	UserName     string
	AssigneeName string
	OldStatus    string
	NewStatus    string
	Changes      string
	// EntityType is "project" or "task" for comments.
	EntityType   string
	Comment      string
	FeedbackType string
	EventType    dom.EventType
	StartDate    string
}

// GroupMessage renders a MarkdownV2 announcement of ev for the workspace group chat.
func GroupMessage(appURL string, ev dom.GroupEvent, d GroupEventData) string {
	e := EscapeMarkdownV2
	var b strings.Builder
	link := func(path string) {
		fmt.Fprintf(&b, "\n\n[Открыть в CRM](%s%s)", appURL, path)
	}

	switch ev {
	case dom.EventTaskCreated:
		fmt.Fprintf(&b, "📋 *Новая задача*\n\n*%s*\n", e(d.Title))
		if d.ProjectName != "" {
			fmt.Fprintf(&b, "Проект: %s\n", e(d.ProjectName))
		}
		fmt.Fprintf(&b, "Создал: %s", e(d.UserName))
		link("/tasks/" + d.EntityID)
	case dom.EventTaskStatusChanged:
		fmt.Fprintf(&b, "🔄 *Статус задачи изменён*\n\n*%s*\n%s → *%s*\nИзменил: %s",
			e(d.Title), e(label(taskStatusLabels, d.OldStatus)), e(label(taskStatusLabels, d.NewStatus)), e(d.UserName))
		link("/tasks/" + d.EntityID)
	case dom.EventTaskAssigned:
		assignee := d.AssigneeName
		if assignee == "" {
			assignee = "Не назначен"
		}
		fmt.Fprintf(&b, "👤 *Задача назначена*\n\n*%s*\nИсполнитель: %s\nНазначил: %s",
			e(d.Title), e(assignee), e(d.UserName))
		link("/tasks/" + d.EntityID)
	case dom.EventTaskDeleted:
		fmt.Fprintf(&b, "🗑 *Задача удалена*\n\n*%s*\nУдалил: %s", e(d.Title), e(d.UserName))
	case dom.EventProjectCreated:
		fmt.Fprintf(&b, "📁 *Новый проект*\n\n*%s*\n", e(d.Title))
		if d.ClientName != "" {
			fmt.Fprintf(&b, "Клиент: %s\n", e(d.ClientName))
		}
		fmt.Fprintf(&b, "Создал: %s", e(d.UserName))
		link("/projects/" + d.EntityID)
	case dom.EventProjectStatusChanged:
		fmt.Fprintf(&b, "🔄 *Статус проекта изменён*\n\n*%s*\n%s → *%s*\nИзменил: %s",
			e(d.Title), e(label(projectStatusLabels, d.OldStatus)), e(label(projectStatusLabels, d.NewStatus)), e(d.UserName))
		link("/projects/" + d.EntityID)
	case dom.EventProjectDeleted:
		fmt.Fprintf(&b, "🗑 *Проект удалён*\n\n*%s*\nУдалил: %s", e(d.Title), e(d.UserName))
	case dom.EventClientCreated:
		fmt.Fprintf(&b, "🏢 *Новый клиент*\n\n*%s*\n", e(d.Title))
		if d.Company != "" {
			fmt.Fprintf(&b, "Компания: %s\n", e(d.Company))
		}
		fmt.Fprintf(&b, "Создал: %s", e(d.UserName))
		link("/clients/" + d.EntityID)
	case dom.EventClientUpdated:
		fmt.Fprintf(&b, "✏️ *Клиент обновлён*\n\n*%s*\n", e(d.Title))
		if d.Changes != "" {
			fmt.Fprintf(&b, "Изменения: %s\n", e(d.Changes))
		}
		fmt.Fprintf(&b, "Изменил: %s", e(d.UserName))
		link("/clients/" + d.EntityID)
	case dom.EventClientDeleted:
		fmt.Fprintf(&b, "🗑 *Клиент удалён*\n\n*%s*\nУдалил: %s", e(d.Title), e(d.UserName))
	case dom.EventCommentAdded:
		target, path := "задаче", "/tasks/"
		if d.EntityType == "project" {
			target, path = "проекту", "/projects/"
		}
		fmt.Fprintf(&b, "💬 *Новый комментарий*\n\nК %s: *%s*\nАвтор: %s\n\n\"%s\"",
			target, e(d.Title), e(d.UserName), e(utils.Ellipsize(d.Comment, 200)))
		link(path + d.EntityID)
	case dom.EventFeedbackSubmitted:
		fmt.Fprintf(&b, "📝 *Новая обратная связь*\n\nТип: %s\n*%s*\nОт: %s",
			e(label(feedbackLabels, d.FeedbackType)), e(d.Title), e(d.UserName))
		link("/feedback")
	case dom.EventCalendarCreated:
		icon, ok := eventLabels[d.EventType]
		if !ok {
			icon = "📅 Событие"
		}
		fmt.Fprintf(&b, "%s\n\n*%s*\n📅 %s\n", icon, e(d.Title), e(d.StartDate))
		if d.ProjectName != "" {
			fmt.Fprintf(&b, "Проект: %s\n", e(d.ProjectName))
		}
		if d.ClientName != "" {
			fmt.Fprintf(&b, "Клиент: %s\n", e(d.ClientName))
		}
		fmt.Fprintf(&b, "Создал: %s", e(d.UserName))
		link("/calendar")
	default:
		return "🔔 Новое событие в CRM"
	}
	return b.String()
}
