package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

type stubJobs struct {
	calls []string
	err   error
}

func (j *stubJobs) Daily(context.Context) (service.DigestReport, error) {
	j.calls = append(j.calls, "daily")
	return service.DigestReport{Sent: 2, Skipped: 1}, j.err
}

func (j *stubJobs) Weekly(context.Context) (service.DigestReport, error) {
	j.calls = append(j.calls, "weekly")
	return service.DigestReport{Sent: 1}, j.err
}

func (j *stubJobs) ArchiveCompleted(context.Context) ([]dom.TaskRef, error) {
	j.calls = append(j.calls, "archive")
	return []dom.TaskRef{{ID: "t1", Title: "Ship it"}}, j.err
}

func (j *stubJobs) Reminders(context.Context) (service.ReminderReport, error) {
	j.calls = append(j.calls, "reminders")
	return service.ReminderReport{TaskReminders: 3}, j.err
}

func newCronRouter(jobs Jobs, secret string, production bool) *gin.Engine {
	h := NewCronHandler(jobs)
	r := gin.New()
	g := r.Group("/cron", auth.RequireCronSecret(secret, production))
	for path, fn := range map[string]gin.HandlerFunc{
		"/daily-digest":  h.DailyDigest,
		"/weekly-digest": h.WeeklyDigest,
		"/archive-tasks": h.ArchiveTasks,
		"/reminders":     h.Reminders,
	} {
		g.GET(path, fn)
		g.POST(path, fn)
	}
	return r
}

func cronRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCronRequiresSecret(t *testing.T) {
	jobs := &stubJobs{}
	r := newCronRouter(jobs, "s3cret", true)

	assert.Equal(t, http.StatusUnauthorized, cronRequest(r, http.MethodPost, "/cron/daily-digest", "").Code)
	assert.Equal(t, http.StatusUnauthorized, cronRequest(r, http.MethodPost, "/cron/daily-digest", "wrong").Code)
	assert.Empty(t, jobs.calls)

	w := cronRequest(r, http.MethodGet, "/cron/daily-digest", "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sent":2,"skipped":1,"failed":0,"workspaces":null}`, w.Body.String())
}

func TestCronWithoutSecret(t *testing.T) {
	jobs := &stubJobs{}
	assert.Equal(t, http.StatusOK, cronRequest(newCronRouter(jobs, "", false), http.MethodPost, "/cron/reminders", "").Code)
	assert.Equal(t, http.StatusUnauthorized, cronRequest(newCronRouter(jobs, "", true), http.MethodPost, "/cron/reminders", "").Code)
	assert.Equal(t, []string{"reminders"}, jobs.calls)
}

func TestCronJobs(t *testing.T) {
	jobs := &stubJobs{}
	r := newCronRouter(jobs, "", false)

	w := cronRequest(r, http.MethodPost, "/cron/archive-tasks", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"archived":1,"tasks":[{"id":"t1","title":"Ship it"}]}`, w.Body.String())

	w = cronRequest(r, http.MethodPost, "/cron/weekly-digest", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"archive", "weekly"}, jobs.calls)

	jobs.err = errors.New("db down")
	w = cronRequest(r, http.MethodPost, "/cron/daily-digest", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"daily digest failed"}`, w.Body.String())
}
