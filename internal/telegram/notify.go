package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

// Personal notifications use legacy Markdown, where only these characters are special.
var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

// ProjectStatusChanged tells a member that a project moved between statuses.
func ProjectStatusChanged(projectName, oldStatus, newStatus string) string {
	return fmt.Sprintf("🔔 *Изменение статуса проекта*\n\nПроект: *%s*\n%s → *%s*",
		escapeMarkdown(projectName),
		escapeMarkdown(label(projectStatusLabels, oldStatus)),
		escapeMarkdown(label(projectStatusLabels, newStatus)))
}

// TaskAssigned tells the assignee about a new task. A nil due date is omitted.
func TaskAssigned(taskTitle, projectName string, due *time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Новая задача назначена*\n\nЗадача: *%s*", escapeMarkdown(taskTitle))
	if projectName == "" {
		projectName = "без проекта"
	}
	fmt.Fprintf(&b, "\nПроект: %s", escapeMarkdown(projectName))
	if due != nil {
		fmt.Fprintf(&b, "\nСрок: %s", numericDate(*due))
	}
	return b.String()
}

func TaskDueSoon(taskTitle string, due time.Time) string {
	return fmt.Sprintf("⏰ *Напоминание о задаче*\n\nЗадача: *%s*\nСрок: %s\n\nЗадача должна быть выполнена скоро!",
		escapeMarkdown(taskTitle), numericDate(due))
}

// NewComment announces a comment; the preview is cut to 100 characters.
func NewComment(authorName, entityType, entityName, preview string) string {
	target := "задаче"
	if entityType == "project" {
		target = "проекту"
	}
	return fmt.Sprintf("💬 *Новый комментарий*\n\n*%s* оставил комментарий к %s:\n*%s*\n\n%s",
		escapeMarkdown(authorName), target, escapeMarkdown(entityName),
		escapeMarkdown(utils.Ellipsize(preview, 100)))
}

// ProjectDeadline warns about an approaching project end date.
func ProjectDeadline(projectName string, end time.Time, daysLeft int) string {
	emoji := "📅"
	switch {
	case daysLeft <= 1:
		emoji = "🚨"
	case daysLeft <= 3:
		emoji = "⚠️"
	}
	return fmt.Sprintf("%s *Приближается дедлайн проекта*\n\nПроект: *%s*\nСрок: %s\nОсталось дней: %d",
		emoji, escapeMarkdown(projectName), numericDate(end), daysLeft)
}

// TestMessage confirms that a personal chat is linked.
func TestMessage(userName string) string {
	return fmt.Sprintf("✅ *Telegram подключён*\n\n%s, уведомления CRM будут приходить в этот чат.", escapeMarkdown(userName))
}
