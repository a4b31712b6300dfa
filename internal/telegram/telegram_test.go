package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `a\_b\*c \[x\]\(y\) 1\.5\! \-`, EscapeMarkdownV2("a_b*c [x](y) 1.5! -"))
	assert.Equal(t, `\\`, EscapeMarkdownV2(`\`))
	assert.Equal(t, "Привет", EscapeMarkdownV2("Привет"))
}

func TestNotifyMessages(t *testing.T) {
	msg := ProjectStatusChanged("Site_v2", "LEAD", "IN_PROGRESS")
	assert.Contains(t, msg, `Site\_v2`)
	assert.Contains(t, msg, "Лид → *В работе*")

	due := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	msg = TaskAssigned("Fix", "", &due)
	assert.Contains(t, msg, "Проект: без проекта")
	assert.Contains(t, msg, "Срок: 19.10.2026")
	assert.NotContains(t, TaskAssigned("Fix", "CRM", nil), "Срок")

	long := strings.Repeat("я", 150)
	msg = NewComment("Anna", "project", "CRM", long)
	assert.Contains(t, msg, "к проекту")
	assert.Contains(t, msg, strings.Repeat("я", 100)+"...")

	assert.True(t, strings.HasPrefix(ProjectDeadline("CRM", due, 1), "🚨"))
	assert.True(t, strings.HasPrefix(ProjectDeadline("CRM", due, 3), "⚠️"))
	assert.True(t, strings.HasPrefix(ProjectDeadline("CRM", due, 7), "📅"))
}

func TestGroupMessage(t *testing.T) {
	msg := GroupMessage("https://crm.test", dom.EventTaskStatusChanged, GroupEventData{
		EntityID: "t1", Title: "Deploy v1.2", OldStatus: "TODO", NewStatus: "COMPLETED", UserName: "Ivan",
	})
	assert.Contains(t, msg, `*Deploy v1\.2*`)
	assert.Contains(t, msg, "К выполнению → *Завершена*")
	assert.True(t, strings.HasSuffix(msg, "[Открыть в CRM](https://crm.test/tasks/t1)"))

	msg = GroupMessage("https://crm.test", dom.EventCommentAdded, GroupEventData{
		EntityID: "p1", EntityType: "project", Title: "CRM", Comment: strings.Repeat("a", 250),
	})
	assert.Contains(t, msg, "К проекту")
	assert.Contains(t, msg, strings.Repeat("a", 200)+`\.\.\.`)
	assert.Contains(t, msg, "/projects/p1")

	msg = GroupMessage("https://crm.test", dom.EventTaskDeleted, GroupEventData{Title: "x"})
	assert.NotContains(t, msg, "Открыть в CRM")

	assert.Equal(t, "🔔 Новое событие в CRM", GroupMessage("https://crm.test", dom.GroupEvent("unknown"), GroupEventData{}))
}

func TestFormatDailyDigest(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)
	overdue := day.AddDate(0, 0, -2)
	follow := day.AddDate(0, 0, -1)

	d := DailyDigest{
		Date: day,
		Events: []dom.Event{
			{Title: "Standup", Type: dom.EventMeeting, StartDate: day.Add(10 * time.Hour)},
			{Title: "Release", Type: dom.EventDeadline, StartDate: day, AllDay: true},
		},
		Tasks:          []dom.Task{{Title: "Write docs", Priority: dom.PriorityHigh, ProjectName: "CRM", AssigneeID: ptr("u-boris"), AssigneeName: "Boris"}},
		OverdueTasks:   []dom.Task{{Title: "Invoice", Priority: dom.PriorityUrgent, DueDate: &overdue}},
		Touches:        []dom.Touch{{ContactName: "Olga", ContactCompany: "Acme", AssigneeID: ptr("u-anna"), AssigneeName: "Anna"}},
		OverdueTouches: []dom.Touch{{ContactName: "Petr", FollowUpAt: &follow, AssigneeID: ptr("u-boris"), AssigneeName: "Boris"}},
	}
	require.False(t, d.Empty())

	msg := FormatDailyDigest(d, "https://crm.test", loc)
	assert.True(t, strings.HasPrefix(msg, "📅 *понедельник, 19 октября*"))
	assert.Contains(t, msg, "📆 *СОБЫТИЯ НА СЕГОДНЯ:*\n👥 10:00 Standup\n⏰ 🕐 Release\n")
	assert.Contains(t, msg, "  🔴 Invoice \\(17 окт\\.\\)")
	assert.Contains(t, msg, "  🟠 Write docs \\[CRM\\]")
	assert.Contains(t, msg, "  📱 Olga \\(Acme\\)")
	assert.Contains(t, msg, "  📱 Petr — 18 окт\\.")
	assert.True(t, strings.HasSuffix(msg, "[Открыть CRM](https://crm.test)"))

	anna := strings.Index(msg, "👤 *Anna*")
	boris := strings.Index(msg, "👤 *Boris*")
	nobody := strings.Index(msg, "👤 *Не назначено*")
	require.True(t, anna >= 0 && boris >= 0 && nobody >= 0)
	assert.Less(t, anna, boris)
	assert.Less(t, boris, nobody)

	assert.True(t, DailyDigest{Date: day}.Empty())
}

func TestDigestGroupsByAssigneeID(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)
	d := DailyDigest{
		Date: day,
		Tasks: []dom.Task{
			{Title: "First", Priority: dom.PriorityLow, AssigneeID: ptr("u1"), AssigneeName: "Anna"},
			{Title: "Second", Priority: dom.PriorityLow, AssigneeID: ptr("u2"), AssigneeName: "Anna"},
			{Title: "Named", Priority: dom.PriorityLow, AssigneeID: ptr("u3"), AssigneeName: "Не назначено"},
			{Title: "Nobody", Priority: dom.PriorityLow},
		},
	}
	msg := FormatDailyDigest(d, "https://crm.test", loc)
	assert.Equal(t, 2, strings.Count(msg, "👤 *Anna*"))
	assert.Equal(t, 2, strings.Count(msg, "👤 *Не назначено*"))

	named := strings.Index(msg, "Named")
	nobody := strings.Index(msg, "Nobody")
	require.True(t, named >= 0 && nobody >= 0)
	assert.Less(t, named, nobody, "the unassigned section comes last")
	assert.Less(t, strings.Index(msg, "First"), strings.Index(msg, "Second"))

	week := FormatWeeklyDigest(WeeklyDigest{Start: day, Tasks: d.Tasks}, "https://crm.test", loc)
	assert.Equal(t, 2, strings.Count(week, "Anna: 1 задач, 0 касаний\n"))
	assert.Equal(t, 2, strings.Count(week, "Не назначено: 1 задач, 0 касаний\n"))
}

func TestFormatWeeklyDigest(t *testing.T) {
	loc := time.UTC
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)
	tue := start.AddDate(0, 0, 1).Add(15 * time.Hour)
	thu := start.AddDate(0, 0, 3)

	d := WeeklyDigest{
		Start: start,
		Tasks: []dom.Task{
			{Title: "Deploy", Priority: dom.PriorityMedium, DueDate: &tue, AssigneeID: ptr("u-anna"), AssigneeName: "Anna"},
			{Title: "Review", Priority: dom.PriorityLow, DueDate: &thu},
		},
		Events:  []dom.Event{{Title: "Demo", Type: dom.EventCall, StartDate: tue}},
		Touches: []dom.Touch{{ContactName: "Olga", FollowUpAt: &thu, AssigneeID: ptr("u-anna"), AssigneeName: "Anna"}},
	}
	msg := FormatWeeklyDigest(d, "https://crm.test", loc)

	assert.Contains(t, msg, "📊 *План на неделю*\n19 октября \\- 25 октября\n")
	assert.Contains(t, msg, "• Задач: 2\n• Событий: 1\n• Касаний: 1\n")
	assert.Contains(t, msg, "Anna: 1 задач, 1 касаний\n")
	assert.Contains(t, msg, "Не назначено: 1 задач, 0 касаний\n")
	assert.Contains(t, msg, "*Вторник, 20 окт\\.*\n  🟡 Deploy \\(Anna\\)\n  📞 15:00 Demo\n")
	assert.Contains(t, msg, "*Четверг, 22 окт\\.*\n  🟢 Review \\(не назначено\\)\n  🤝 Olga \\(Anna\\)\n")
	assert.Less(t, strings.Index(msg, "Вторник"), strings.Index(msg, "Четверг"))
}

func TestClientSendMessage(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	err := c.SendMessage(context.Background(), "TOKEN", Message{ChatID: "-100", Text: "hi", ParseMode: ParseMarkdownV2})
	require.NoError(t, err)
	assert.Equal(t, "-100", got.ChatID)
	assert.Equal(t, ParseMarkdownV2, got.ParseMode)
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).SendMessage(context.Background(), "T", Message{ChatID: "1", Text: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Description, "chat not found")

	assert.Error(t, NewClient(srv.URL, nil).SendMessage(context.Background(), "", Message{}))
}

func TestClientErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	const token = "123456:SECRET-TOKEN"
	err := NewClient(addr, nil).SendMessage(context.Background(), token, Message{ChatID: "1", Text: "x"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-TOKEN")
	assert.NotContains(t, err.Error(), "/bot")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewClient(addr, nil).SendMessage(ctx, token, Message{ChatID: "1", Text: "x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "SECRET-TOKEN")
}

func TestNotifierGroupRespectsSettings(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var m Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		assert.True(t, m.DisableWebPagePreview)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier(NewClient(srv.URL, srv.Client()), "", "https://crm.test", nil)
	ws := dom.Workspace{
		ID:                   "w1",
		TelegramBotToken:     ptr("T"),
		TelegramChatID:       ptr("-1"),
		NotificationSettings: dom.NotificationSettings{Enabled: true, Events: map[dom.GroupEvent]bool{dom.EventTaskDeleted: false}},
	}
	n.Group(context.Background(), ws, dom.EventTaskCreated, GroupEventData{Title: "a"})
	n.Group(context.Background(), ws, dom.EventTaskDeleted, GroupEventData{Title: "a"})
	assert.Equal(t, 1, calls)

	ws.NotificationSettings.Enabled = false
	n.Group(context.Background(), ws, dom.EventTaskCreated, GroupEventData{Title: "a"})
	assert.Equal(t, 1, calls)

	require.NoError(t, n.Personal(context.Background(), "42", "hi"))
	assert.Equal(t, 1, calls)
}
