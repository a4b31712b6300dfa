package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// WorkspaceHandler serves workspaces, the team, invites and Telegram settings.
type WorkspaceHandler struct {
	svc    *service.WorkspaceService
	appURL string
}

func NewWorkspaceHandler(svc *service.WorkspaceService, appURL string) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, appURL: strings.TrimRight(appURL, "/")}
}

// List godoc
// @Summary      Workspaces of the current user
// @Tags         workspaces
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListWorkspacesResponse
// @Router       /workspaces [get]
func (h *WorkspaceHandler) List(c *gin.Context) {
	list, err := h.svc.ListForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to list workspaces")
		return
	}
	items := make([]dto.WorkspaceResponse, len(list))
	for i, m := range list {
		items[i] = workspaceToResponse(m.Workspace, m.Role)
	}
	c.JSON(http.StatusOK, dto.ListWorkspacesResponse{Items: items})
}

// Current godoc
// @Summary      Current workspace
// @Tags         workspaces
// @Produce      json
// @Security     CookieAuth
// @Param        X-Workspace-ID  header  string  false  "Workspace ID"
// @Success      200  {object}  dto.WorkspaceResponse
// @Router       /workspaces/current [get]
func (h *WorkspaceHandler) Current(c *gin.Context) {
	w, err := h.svc.Get(c.Request.Context(), currentWorkspace(c))
	if err != nil {
		writeError(c, err, "failed to load workspace")
		return
	}
	c.JSON(http.StatusOK, workspaceToResponse(w, auth.RoleFromContext(c)))
}

// Team godoc
// @Summary      Members of the workspace
// @Tags         team
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListMembersResponse
// @Router       /team [get]
func (h *WorkspaceHandler) Team(c *gin.Context) {
	list, err := h.svc.Team(c.Request.Context(), currentWorkspace(c))
	if err != nil {
		writeError(c, err, "failed to list team")
		return
	}
	items := make([]dto.MemberResponse, len(list))
	for i, m := range list {
		items[i] = memberToResponse(m)
	}
	c.JSON(http.StatusOK, dto.ListMembersResponse{Items: items})
}

// ChangeRole godoc
// @Summary      Change a member's role
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        userId  path  string                 true  "User ID"
// @Param        body    body  dto.ChangeRoleRequest  true  "New role"
// @Success      200  {object}  dto.MemberResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /team/{userId} [patch]
func (h *WorkspaceHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.ChangeRole(c.Request.Context(), currentWorkspace(c), currentUser(c), auth.RoleFromContext(c),
		c.Param("userId"), dom.Role(strings.ToUpper(req.Role)))
	if err != nil {
		writeError(c, err, "failed to change role")
		return
	}
	c.JSON(http.StatusOK, memberToResponse(m))
}

// RemoveMember godoc
// @Summary      Remove a member
// @Tags         team
// @Security     CookieAuth
// @Param        userId  path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /team/{userId} [delete]
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	err := h.svc.RemoveMember(c.Request.Context(), currentWorkspace(c), currentUser(c), auth.RoleFromContext(c), c.Param("userId"))
	if err != nil {
		writeError(c, err, "failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

// TransferOwnership godoc
// @Summary      Transfer workspace ownership
// @Tags         team
// @Accept       json
// @Security     CookieAuth
// @Param        body  body  dto.TransferOwnershipRequest  true  "New owner"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /admin/transfer-ownership [post]
func (h *WorkspaceHandler) TransferOwnership(c *gin.Context) {
	var req dto.TransferOwnershipRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.svc.TransferOwnership(c.Request.Context(), currentWorkspace(c), currentUser(c), auth.RoleFromContext(c), req.UserID)
	if err != nil {
		writeError(c, err, "failed to transfer ownership")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateInvite godoc
// @Summary      Invite someone into the workspace
// @Tags         invites
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateInviteRequest  true  "Invite"
// @Success      201  {object}  dto.InviteResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /invites [post]
func (h *WorkspaceHandler) CreateInvite(c *gin.Context) {
	var req dto.CreateInviteRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, token, err := h.svc.CreateInvite(c.Request.Context(), currentWorkspace(c), currentUser(c), auth.RoleFromContext(c),
		req.Email, dom.Role(strings.ToUpper(req.Role)))
	if err != nil {
		writeError(c, err, "failed to create invite")
		return
	}
	resp := inviteToResponse(inv, "")
	resp.Token = token
	resp.URL = h.appURL + "/invite/" + token
	c.JSON(http.StatusCreated, resp)
}

// PreviewInvite godoc
// @Summary      Describe an invite
// @Tags         invites
// @Produce      json
// @Param        token  path  string  true  "Invite token"
// @Success      200  {object}  dto.InviteResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /invites/{token} [get]
func (h *WorkspaceHandler) PreviewInvite(c *gin.Context) {
	p, err := h.svc.PreviewInvite(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err, "failed to load invite")
		return
	}
	c.JSON(http.StatusOK, inviteToResponse(p.Invite, p.WorkspaceName))
}

// AcceptInvite godoc
// @Summary      Join a workspace
// @Tags         invites
// @Produce      json
// @Security     CookieAuth
// @Param        token  path  string  true  "Invite token"
// @Success      200  {object}  dto.InviteResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /invites/{token}/accept [post]
func (h *WorkspaceHandler) AcceptInvite(c *gin.Context) {
	inv, err := h.svc.AcceptInvite(c.Request.Context(), c.Param("token"), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to accept invite")
		return
	}
	c.JSON(http.StatusOK, inviteToResponse(inv, ""))
}

// UpdateTelegram godoc
// @Summary      Workspace Telegram settings
// @Tags         telegram
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.TelegramSettingsRequest  true  "Settings"
// @Success      200  {object}  dto.WorkspaceResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /workspaces/settings/telegram [put]
func (h *WorkspaceHandler) UpdateTelegram(c *gin.Context) {
	var req dto.TelegramSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	in := service.TelegramSettings{BotToken: req.BotToken, ChatID: req.ChatID}
	if req.NotificationSettings != nil {
		s := dom.NotificationSettings{Enabled: req.NotificationSettings.Enabled, Events: map[dom.GroupEvent]bool{}}
		for ev, on := range req.NotificationSettings.Events {
			s.Events[dom.GroupEvent(ev)] = on
		}
		in.Settings = &s
	}
	w, err := h.svc.UpdateTelegram(c.Request.Context(), currentWorkspace(c), currentUser(c), in)
	if err != nil {
		writeError(c, err, "failed to update telegram settings")
		return
	}
	c.JSON(http.StatusOK, workspaceToResponse(w, auth.RoleFromContext(c)))
}

// LinkTelegram godoc
// @Summary      Link the personal Telegram chat
// @Tags         telegram
// @Accept       json
// @Security     CookieAuth
// @Param        body  body  dto.LinkTelegramRequest  true  "Chat"
// @Success      204
// @Router       /profile/telegram [put]
func (h *WorkspaceHandler) LinkTelegram(c *gin.Context) {
	var req dto.LinkTelegramRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.LinkTelegram(c.Request.Context(), currentUser(c), req.ChatID); err != nil {
		writeError(c, err, "failed to link telegram")
		return
	}
	c.Status(http.StatusNoContent)
}

// TestTelegram godoc
// @Summary      Send a test message to the linked chat
// @Tags         telegram
// @Security     CookieAuth
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /telegram/test [post]
func (h *WorkspaceHandler) TestTelegram(c *gin.Context) {
	if err := h.svc.SendTestMessage(c.Request.Context(), currentUser(c)); err != nil {
		writeError(c, err, "failed to send test message")
		return
	}
	c.Status(http.StatusNoContent)
}

func workspaceToResponse(w dom.Workspace, role dom.Role) dto.WorkspaceResponse {
	events := make(map[string]bool, len(w.NotificationSettings.Events))
	for ev, on := range w.NotificationSettings.Events {
		events[string(ev)] = on
	}
	return dto.WorkspaceResponse{
		ID:                   w.ID,
		Name:                 w.Name,
		OwnerID:              w.OwnerID,
		Role:                 string(role),
		TelegramConfigured:   w.HasTelegram(),
		TelegramChatID:       w.TelegramChatID,
		NotificationSettings: dto.NotificationSettings{Enabled: w.NotificationSettings.Enabled, Events: events},
		CreatedAt:            w.CreatedAt,
	}
}

func memberToResponse(m dom.Member) dto.MemberResponse {
	return dto.MemberResponse{UserID: m.UserID, Name: m.UserName, Email: m.UserEmail, Role: string(m.Role), JoinedAt: m.JoinedAt}
}

func inviteToResponse(inv dom.Invite, workspaceName string) dto.InviteResponse {
	return dto.InviteResponse{
		ID:            inv.ID,
		WorkspaceID:   inv.WorkspaceID,
		WorkspaceName: workspaceName,
		Email:         inv.Email,
		Role:          string(inv.Role),
		ExpiresAt:     inv.ExpiresAt,
		AcceptedAt:    inv.AcceptedAt,
	}
}
