package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

func TestCreateMilestoneValidatesBody(t *testing.T) {
	r := gin.New()
	r.POST("/milestones", NewMilestoneHandler(nil).Create)

	for _, body := range []string{
		`{"title":"Design"}`,
		`{"projectId":"p1"}`,
		`{"projectId":"p1","title":"Design","order":-1}`,
		`{"projectId":"p1","title":"Design","dueDate":"next week"}`,
	} {
		w := doJSON(r, http.MethodPost, "/milestones", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestUpdateMilestoneValidatesBody(t *testing.T) {
	r := gin.New()
	r.PATCH("/milestones/:id", NewMilestoneHandler(nil).Update)

	w := doJSON(r, http.MethodPatch, "/milestones/m1", `{"order":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(r, http.MethodPatch, "/milestones/m1", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMilestoneToResponse(t *testing.T) {
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	resp := milestoneToResponse(dom.Milestone{ID: "m1", ProjectID: "p1", Title: "Launch", DueDate: &due, Order: 2, Status: dom.MilestoneInProgress})
	assert.Equal(t, "IN_PROGRESS", resp.Status)
	assert.Equal(t, 2, resp.Order)
	assert.Equal(t, &due, resp.DueDate)
}
