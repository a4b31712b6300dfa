package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

// Completed tasks stay visible this long before the archive job hides them.
const archiveAfter = 12 * time.Hour

const deadlineWarnDays = 3

// DigestSender delivers digests and reminders; *telegram.Notifier implements it.
type DigestSender interface {
	Workspace(ctx context.Context, ws dom.Workspace, kind, text string) error
	Personal(ctx context.Context, chatID, text string) error
	AppURL() string
}

// WorkspaceDigest is the outcome of a digest for one workspace.
type WorkspaceDigest struct {
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// DigestReport summarises a digest run.
type DigestReport struct {
	Sent       int               `json:"sent"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	Workspaces []WorkspaceDigest `json:"workspaces"`
}

// ReminderReport summarises a reminder run.
type ReminderReport struct {
	TaskReminders     int `json:"taskReminders"`
	DeadlineReminders int `json:"deadlineReminders"`
}

// DigestService runs the scheduled jobs: daily and weekly digests, deadline
// reminders and archiving of completed tasks.
type DigestService struct {
	workspaces repo.WorkspaceRepo
	users      repo.UserRepo
	tasks      repo.TaskRepo
	projects   repo.ProjectRepo
	events     repo.EventRepo
	touches    repo.TouchRepo
	sender     DigestSender
	loc        *time.Location
	log        *zap.Logger
	now        func() time.Time
}

func NewDigestService(workspaces repo.WorkspaceRepo, users repo.UserRepo, tasks repo.TaskRepo, projects repo.ProjectRepo,
	events repo.EventRepo, touches repo.TouchRepo, sender DigestSender, loc *time.Location, log *zap.Logger) *DigestService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DigestService{
		workspaces: workspaces,
		users:      users,
		tasks:      tasks,
		projects:   projects,
		events:     events,
		touches:    touches,
		sender:     sender,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}
}

// startOfDay is local midnight of t in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Daily sends today's plan to every workspace group chat that has something to report.
func (s *DigestService) Daily(ctx context.Context) (DigestReport, error) {
	return s.run(ctx, "daily", func(ctx context.Context, ws dom.Workspace) (string, error) {
		d, err := s.daily(ctx, ws.ID)
		if err != nil || d.Empty() {
			return "", err
		}
		return telegram.FormatDailyDigest(d, s.sender.AppURL(), s.loc), nil
	})
}

func (s *DigestService) daily(ctx context.Context, workspaceID string) (telegram.DailyDigest, error) {
	now := s.now()
	today := startOfDay(now, s.loc)
	tomorrow := today.AddDate(0, 0, 1)
	d := telegram.DailyDigest{Date: now.In(s.loc)}
	var err error
	if d.Events, err = s.events.Between(ctx, workspaceID, today, tomorrow); err != nil {
		return d, err
	}
	if d.Tasks, err = s.tasks.OpenDue(ctx, workspaceID, &today, tomorrow); err != nil {
		return d, err
	}
	if d.OverdueTasks, err = s.tasks.OpenDue(ctx, workspaceID, nil, today); err != nil {
		return d, err
	}
	if d.Touches, err = s.touches.FollowUps(ctx, workspaceID, &today, tomorrow,
		[]dom.TouchStatus{dom.TouchConverted}); err != nil {
		return d, err
	}
	d.OverdueTouches, err = s.touches.FollowUps(ctx, workspaceID, nil, today,
		[]dom.TouchStatus{dom.TouchConverted, dom.TouchResponded, dom.TouchNoResponse})
	return d, err
}

// Weekly sends the plan for the next seven days.
func (s *DigestService) Weekly(ctx context.Context) (DigestReport, error) {
	return s.run(ctx, "weekly", func(ctx context.Context, ws dom.Workspace) (string, error) {
		start := startOfDay(s.now(), s.loc)
		end := start.AddDate(0, 0, 7)
		d := telegram.WeeklyDigest{Start: start}
		var err error
		if d.Tasks, err = s.tasks.OpenDue(ctx, ws.ID, &start, end); err != nil {
			return "", err
		}
		if d.Events, err = s.events.Between(ctx, ws.ID, start, end); err != nil {
			return "", err
		}
		if d.Touches, err = s.touches.FollowUps(ctx, ws.ID, &start, end,
			[]dom.TouchStatus{dom.TouchConverted}); err != nil {
			return "", err
		}
		if d.Empty() {
			return "", nil
		}
		return telegram.FormatWeeklyDigest(d, s.sender.AppURL(), s.loc), nil
	})
}

// run builds a message per Telegram-enabled workspace and sends it. An empty
// message skips the workspace; one failing workspace does not stop the rest.
func (s *DigestService) run(ctx context.Context, kind string, build func(context.Context, dom.Workspace) (string, error)) (DigestReport, error) {
	list, err := s.workspaces.ListWithTelegram(ctx)
	if err != nil {
		return DigestReport{}, err
	}
	report := DigestReport{Workspaces: make([]WorkspaceDigest, 0, len(list))}
	for _, ws := range list {
		res := WorkspaceDigest{WorkspaceID: ws.ID, Name: ws.Name}
		text, err := build(ctx, ws)
		switch {
		case err != nil:
			res.Status, res.Error = "failed", err.Error()
			report.Failed++
		case text == "":
			res.Status = "skipped"
			report.Skipped++
		default:
			if err := s.sender.Workspace(ctx, ws, kind, text); err != nil {
				res.Status, res.Error = "failed", err.Error()
				report.Failed++
			} else {
				res.Status = "sent"
				report.Sent++
			}
		}
		if res.Error != "" {
			s.log.Warn("digest failed", zap.String("kind", kind), zap.String("workspace", ws.ID), zap.String("error", res.Error))
		}
		report.Workspaces = append(report.Workspaces, res)
	}
	s.log.Info("digest done", zap.String("kind", kind),
		zap.Int("sent", report.Sent), zap.Int("skipped", report.Skipped), zap.Int("failed", report.Failed))
	return report, nil
}

// ArchiveCompleted archives tasks completed more than twelve hours ago.
func (s *DigestService) ArchiveCompleted(ctx context.Context) ([]dom.TaskRef, error) {
	now := s.now().UTC()
	refs, err := s.tasks.ArchiveCompletedBefore(ctx, now.Add(-archiveAfter), now)
	if err != nil {
		return nil, err
	}
	s.log.Info("archived completed tasks", zap.Int("count", len(refs)))
	return refs, nil
}

// Reminders sends personal messages about tasks due within a day and project
// deadlines within three days.
func (s *DigestService) Reminders(ctx context.Context) (ReminderReport, error) {
	list, err := s.workspaces.List(ctx)
	if err != nil {
		return ReminderReport{}, err
	}
	now := s.now()
	chats := map[string]string{}
	chatOf := func(userID string) string {
		if chat, ok := chats[userID]; ok {
			return chat
		}
		u, err := s.users.GetByID(ctx, userID)
		chats[userID] = ""
		if err == nil && u.TelegramChatID != nil {
			chats[userID] = *u.TelegramChatID
		}
		return chats[userID]
	}

	var report ReminderReport
	for _, ws := range list {
		tasks, err := s.tasks.OpenDue(ctx, ws.ID, &now, now.Add(24*time.Hour))
		if err != nil {
			return report, err
		}
		for _, t := range tasks {
			if t.AssigneeID == nil {
				continue
			}
			if chat := chatOf(*t.AssigneeID); chat != "" && s.sender.Personal(ctx, chat, telegram.TaskDueSoon(t.Title, t.DueDate.In(s.loc))) == nil {
				report.TaskReminders++
			}
		}

		projects, err := s.projects.List(ctx, ws.ID, dom.ProjectFilter{})
		if err != nil {
			return report, err
		}
		today := startOfDay(now, s.loc)
		for _, p := range projects {
			if p.EndDatePlan == nil || !projectActive(p.Status) {
				continue
			}
			days := int(startOfDay(*p.EndDatePlan, s.loc).Sub(today).Hours() / 24)
			if days < 0 || days > deadlineWarnDays {
				continue
			}
			if chat := chatOf(p.CreatedByID); chat != "" && s.sender.Personal(ctx, chat, telegram.ProjectDeadline(p.Name, p.EndDatePlan.In(s.loc), days)) == nil {
				report.DeadlineReminders++
			}
		}
	}
	return report, nil
}

func projectActive(st dom.ProjectStatus) bool {
	switch st {
	case dom.ProjectCompleted, dom.ProjectRejected, dom.ProjectArchived:
		return false
	}
	return true
}
