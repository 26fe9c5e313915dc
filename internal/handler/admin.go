package handler

import (
	"net/http"

	"github.com/Lavindu17/ai-project-l2/internal/middleware"
	"github.com/Lavindu17/ai-project-l2/internal/model"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type AdminHandler struct {
	sprints  *service.SprintService
	projects *service.ProjectService
}

func NewAdminHandler(sprints *service.SprintService, projects *service.ProjectService) *AdminHandler {
	return &AdminHandler{sprints: sprints, projects: projects}
}

// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var (
		sprints  []model.Sprint
		projects []model.Project
	)
	owner := middleware.IdentityFrom(c).UserID
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		sprints, err = h.sprints.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = h.projects.List(ctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, "dashboard", err)
		return
	}
	if sprints == nil {
		sprints = []model.Sprint{}
	}
	if projects == nil {
		projects = []model.Project{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sprints":  sprints,
		"projects": projects,
		"stats":    service.CountByStatus(sprints),
	})
}
