package handler

import (
	"net/http"

	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const Version = "1.0.0"

// Handlers is every route group of the API.
type Handlers struct {
	Auth     *AuthHandler
	Admin    *AdminHandler
	Sprint   *SprintHandler
	Project  *ProjectHandler
	Chat     *ChatHandler
	Analysis *AnalysisHandler
}

// Register mounts the API on r. The identity middleware must already be in
// r's chain.
func Register(r *gin.Engine, db *gorm.DB, h Handlers) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Sprint Retrospective API", "version": Version, "status": "running"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			logger.Error("healthz.failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	admin := middleware.RequireAdmin()
	user := middleware.RequireUser()

	api.POST("/admin/login", h.Auth.AdminLogin)
	api.POST("/admin/logout", h.Auth.Logout)
	api.GET("/admin/dashboard", admin, h.Admin.Dashboard)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)

	sp := api.Group("/sprint")
	sp.POST("/create", admin, h.Sprint.Create)
	sp.GET("/list", admin, h.Sprint.List)
	sp.GET("/my-sprints", user, h.Sprint.MySprints)
	sp.GET("/:id", admin, h.Sprint.Get)
	sp.GET("/:id/details", admin, h.Sprint.Details)
	sp.GET("/:id/status", admin, h.Sprint.Status)
	sp.PATCH("/:id/close", admin, h.Sprint.Close)
	sp.GET("/:id/goals", admin, h.Sprint.Goals)
	sp.PUT("/:id/goals", admin, h.Sprint.ReplaceGoals)
	sp.GET("/:id/outcomes", admin, h.Sprint.Outcomes)
	sp.PUT("/:id/outcomes", admin, h.Sprint.UpsertOutcomes)
	sp.GET("/:id/members", admin, h.Sprint.Members)
	sp.POST("/:id/members", admin, h.Sprint.AddMembers)
	sp.POST("/:id/members/codes", admin, h.Sprint.GenerateCodes)
	sp.POST("/:id/invites", admin, h.Sprint.Invites)
	sp.POST("/:id/analyze", admin, h.Analysis.Analyze)
	sp.GET("/:id/report", admin, h.Analysis.Report)
	sp.GET("/:id/report/export", admin, h.Analysis.Export)
	sp.POST("/:id/compare/:previous_id", admin, h.Analysis.Compare)
	sp.GET("/:id/action-items", admin, h.Analysis.ActionItems)

	api.POST("/action-items", admin, h.Analysis.CreateActionItem)
	api.PATCH("/action-items/:id", admin, h.Analysis.UpdateActionItem)

	pr := api.Group("/project")
	pr.GET("/roles", h.Project.Roles)
	pr.POST("/create", admin, h.Project.Create)
	pr.GET("/list", admin, h.Project.List)
	pr.GET("/:id", admin, h.Project.Get)
	pr.PUT("/:id", admin, h.Project.Update)
	pr.GET("/:id/sprints", admin, h.Project.Sprints)
	pr.GET("/:id/team", admin, h.Project.Team)

	chat := api.Group("/chat")
	chat.GET("/validate/:token", h.Chat.ValidateToken)
	chat.POST("/validate-code", h.Chat.ValidateCode)
	chat.POST("/start-session", user, h.Chat.StartSession)
	chat.GET("/session", h.Chat.Session)
	chat.POST("/message", h.Chat.Message)
	chat.GET("/:session_token/history", h.Chat.History)

	api.POST("/response/submit", h.Chat.Submit)
}
