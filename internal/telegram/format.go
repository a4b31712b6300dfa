package telegram

import (
	"fmt"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

var (
	monthsGenitive = [...]string{"января", "февраля", "марта", "апреля", "мая", "июня", "июля",
		"августа", "сентября", "октября", "ноября", "декабря"}
	monthsShort = [...]string{"янв.", "февр.", "мар.", "апр.", "мая", "июн.", "июл.",
		"авг.", "сент.", "окт.", "нояб.", "дек."}
	weekdaysLower = [...]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"}
	weekdaysTitle = [...]string{"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"}
)

// longDate renders "понедельник, 19 октября".
func longDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s", weekdaysLower[t.Weekday()], t.Day(), monthsGenitive[t.Month()-1])
}

// dayMonth renders "19 октября".
func dayMonth(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), monthsGenitive[t.Month()-1])
}

// shortDate renders "19 окт.".
func shortDate(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), monthsShort[t.Month()-1])
}

// numericDate renders "19.10.2026".
func numericDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

var priorityEmoji = map[dom.Priority]string{
	dom.PriorityLow:    "🟢",
	dom.PriorityMedium: "🟡",
	dom.PriorityHigh:   "🟠",
	dom.PriorityUrgent: "🔴",
}

func priorityIcon(p dom.Priority) string {
	if e, ok := priorityEmoji[p]; ok {
		return e
	}
	return "⚪"
}

var eventEmoji = map[dom.EventType]string{
	dom.EventMeeting:   "👥",
	dom.EventCall:      "📞",
	dom.EventReminder:  "🔔",
	dom.EventDeadline:  "⏰",
	dom.EventTaskDue:   "📋",
	dom.EventMilestone: "🎯",
}

func eventIcon(t dom.EventType) string {
	if e, ok := eventEmoji[t]; ok {
		return e
	}
	return "📌"
}

var eventLabels = map[dom.EventType]string{
	dom.EventMeeting:   "👥 Встреча",
	dom.EventCall:      "📞 Созвон",
	dom.EventReminder:  "🔔 Напоминание",
	dom.EventDeadline:  "⏰ Дедлайн",
	dom.EventTaskDue:   "📋 Срок задачи",
	dom.EventMilestone: "🎯 Веха",
}

var taskStatusLabels = map[string]string{
	"TODO":        "К выполнению",
	"IN_PROGRESS": "В работе",
	"IN_REVIEW":   "На проверке",
	"COMPLETED":   "Завершена",
	"BLOCKED":     "Заблокирована",
	"CANCELLED":   "Отменена",
}

var projectStatusLabels = map[string]string{
	"LEAD":          "Лид",
	"QUALIFICATION": "Квалификация",
	"BRIEFING":      "Брифинг",
	"IN_PROGRESS":   "В работе",
	"ON_HOLD":       "На паузе",
	"COMPLETED":     "Завершён",
	"REJECTED":      "Отклонён",
	"ARCHIVED":      "Архив",
}

var feedbackLabels = map[string]string{
	"BUG":         "🐛 Баг",
	"FEATURE":     "💡 Предложение",
	"IMPROVEMENT": "✨ Улучшение",
}

func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}
