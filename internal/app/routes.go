package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/config"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/handlers"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, svc *Services) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(svc.Sessions, svc.Users, cfg.Auth.CookieSecure)
	workspaceHandler := handlers.NewWorkspaceHandler(svc.Workspaces, cfg.App.URL)
	registerAuthRoutes(api, authHandler)
	api.GET("/invites/:token", workspaceHandler.PreviewInvite)

	cron := api.Group("/cron", auth.RequireCronSecret(cfg.Auth.CronSecret, cfg.App.IsProduction()))
	registerCronRoutes(cron, handlers.NewCronHandler(svc.Digest))

	// Session-only routes work before a workspace is chosen.
	session := api.Group("", auth.RequireSession(svc.Sessions))
	session.GET("/auth/me", authHandler.Me)
	session.GET("/workspaces", workspaceHandler.List)
	session.POST("/invites/:token/accept", workspaceHandler.AcceptInvite)
	session.PUT("/profile/telegram", workspaceHandler.LinkTelegram)
	session.POST("/telegram/test", workspaceHandler.TestTelegram)

	ws := session.Group("", auth.RequireWorkspace(svc.Workspaces))
	admin := ws.Group("", auth.RequireRole(dom.RoleAdmin))
	registerWorkspaceRoutes(ws, admin, workspaceHandler)
	registerClientRoutes(ws, handlers.NewClientHandler(svc.Clients))
	registerProjectRoutes(ws, handlers.NewProjectHandler(svc.Projects))
	registerTaskRoutes(ws, handlers.NewTaskHandler(svc.Tasks))
	registerEventRoutes(ws, handlers.NewEventHandler(svc.Events))
	registerMilestoneRoutes(ws, handlers.NewMilestoneHandler(svc.Milestones))
	registerTouchRoutes(ws, handlers.NewTouchHandler(svc.Touches))
	registerFeedbackRoutes(ws, admin, handlers.NewFeedbackHandler(svc.Feedback))
	registerActivityRoutes(ws, handlers.NewActivityHandler(svc.Activity, svc.Comments))
	registerNotificationRoutes(ws, handlers.NewNotificationHandler(svc.Notifications))
	registerSearchRoutes(ws, handlers.NewSearchHandler(svc.Search, svc.Dashboard))
	registerPainRadarRoutes(ws, handlers.NewPainRadarHandler(svc.PainRadar))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "PASEKA IT CRM API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"metrics": "/metrics",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}

func registerCronRoutes(g *gin.RouterGroup, h *handlers.CronHandler) {
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		g.Handle(m, "/daily-digest", h.DailyDigest)
		g.Handle(m, "/weekly-digest", h.WeeklyDigest)
		g.Handle(m, "/archive-tasks", h.ArchiveTasks)
		g.Handle(m, "/reminders", h.Reminders)
	}
}

func registerWorkspaceRoutes(api, admin *gin.RouterGroup, h *handlers.WorkspaceHandler) {
	api.GET("/workspaces/current", h.Current)
	api.GET("/team", h.Team)
	admin.PATCH("/team/:userId", h.ChangeRole)
	admin.DELETE("/team/:userId", h.RemoveMember)
	admin.POST("/invites", h.CreateInvite)
	admin.PUT("/workspaces/settings/telegram", h.UpdateTelegram)
	// Ownership is checked in the service; admins pass here and get 403 there.
	admin.POST("/admin/transfer-ownership", h.TransferOwnership)
}

func registerClientRoutes(api *gin.RouterGroup, h *handlers.ClientHandler) {
	api.POST("/clients", h.Create)
	api.GET("/clients", h.List)
	api.GET("/clients/:id", h.Get)
	api.PATCH("/clients/:id", h.Update)
	api.DELETE("/clients/:id", h.Delete)
	api.GET("/clients/:id/analytics", h.Analytics)
}

func registerProjectRoutes(api *gin.RouterGroup, h *handlers.ProjectHandler) {
	api.POST("/projects", h.Create)
	api.GET("/projects", h.List)
	api.GET("/projects/:id", h.Get)
	api.PATCH("/projects/:id", h.Update)
	api.DELETE("/projects/:id", h.Delete)
	api.POST("/projects/:id/files", h.UploadFile)
	api.GET("/projects/:id/files", h.ListFiles)
	api.GET("/files/:fileId/download", h.DownloadFile)
	api.DELETE("/files/:fileId", h.DeleteFile)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.PATCH("/tasks/bulk", h.BulkUpdate)
	api.DELETE("/tasks/bulk", h.BulkDelete)
	api.GET("/tasks/:id", h.Get)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	api.POST("/tasks/:id/archive", h.Archive)
	api.DELETE("/tasks/:id/archive", h.Unarchive)
}

func registerMilestoneRoutes(api *gin.RouterGroup, h *handlers.MilestoneHandler) {
	api.POST("/milestones", h.Create)
	api.GET("/projects/:id/milestones", h.List)
	api.PATCH("/milestones/:id", h.Update)
	api.DELETE("/milestones/:id", h.Delete)
}

func registerEventRoutes(api *gin.RouterGroup, h *handlers.EventHandler) {
	api.POST("/events", h.Create)
	api.GET("/events", h.List)
	api.GET("/events/:id", h.Get)
	api.PATCH("/events/:id", h.Update)
	api.DELETE("/events/:id", h.Delete)
}

func registerTouchRoutes(api *gin.RouterGroup, h *handlers.TouchHandler) {
	api.POST("/touches", h.Create)
	api.GET("/touches", h.List)
	api.GET("/touches/:id", h.Get)
	api.PATCH("/touches/:id", h.Update)
	api.DELETE("/touches/:id", h.Delete)
	api.POST("/touches/:id/convert", h.Convert)
}

func registerFeedbackRoutes(api, admin *gin.RouterGroup, h *handlers.FeedbackHandler) {
	api.POST("/feedback", h.Create)
	api.GET("/feedback", h.List)
	admin.PATCH("/feedback/:id/status", h.UpdateStatus)
	api.DELETE("/feedback/:id", h.Delete)
}

func registerActivityRoutes(api *gin.RouterGroup, h *handlers.ActivityHandler) {
	api.GET("/activity", h.List)
	api.POST("/comments", h.Comment)
}

func registerNotificationRoutes(api *gin.RouterGroup, h *handlers.NotificationHandler) {
	api.GET("/notifications", h.List)
	api.GET("/notifications/count", h.Count)
	api.PATCH("/notifications/:id", h.MarkRead)
	api.POST("/notifications/read-all", h.MarkAllRead)
}

func registerSearchRoutes(api *gin.RouterGroup, h *handlers.SearchHandler) {
	api.GET("/search", h.Search)
	api.GET("/dashboard/metrics", h.Dashboard)
}

func registerPainRadarRoutes(api *gin.RouterGroup, h *handlers.PainRadarHandler) {
	pr := api.Group("/pain-radar")
	pr.POST("/keywords", h.CreateKeyword)
	pr.GET("/keywords", h.ListKeywords)
	pr.PATCH("/keywords/:id", h.UpdateKeyword)
	pr.DELETE("/keywords/:id", h.DeleteKeyword)
	pr.POST("/scan", h.StartScan)
	pr.GET("/scan/:id", h.GetScan)
	pr.GET("/posts", h.ListPosts)
	pr.POST("/analyze", h.Analyze)
	pr.GET("/pains", h.ListPains)
	pr.GET("/pains/:id", h.GetPain)
	pr.DELETE("/pains/:id", h.DeletePain)
	pr.POST("/pains/:id/match-projects", h.MatchProjects)
	pr.POST("/generate-message", h.GenerateMessage)
	pr.GET("/dashboard", h.Dashboard)
	pr.POST("/quick-search", h.QuickSearch)
	pr.POST("/niche", h.Niche)
}
