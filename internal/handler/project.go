package handler

import (
	"net/http"

	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/middleware"
	"github.com/Lavindu17/ai-project-l2/internal/model"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projects *service.ProjectService
	sprints  *service.SprintService
	team     *service.TeamService
}

func NewProjectHandler(projects *service.ProjectService, sprints *service.SprintService, team *service.TeamService) *ProjectHandler {
	return &ProjectHandler{projects: projects, sprints: sprints, team: team}
}

// GET /api/project/roles
func (h *ProjectHandler) Roles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": model.TeamRoles})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req model.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	owner := middleware.IdentityFrom(c).UserID
	p, err := h.projects.Create(c.Request.Context(), owner, req)
	if err != nil {
		respondError(c, "project.create", err)
		return
	}
	logger.Info("project.created", "project_id", p.ID, "owner", owner)
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		respondError(c, "project.list", err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.projects.Owned(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c).UserID)
	if err != nil {
		respondError(c, "project.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req model.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.projects.Update(c.Request.Context(), c.Param("id"), middleware.IdentityFrom(c).UserID, req)
	if err != nil {
		respondError(c, "project.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

// GET /api/project/:id/sprints
func (h *ProjectHandler) Sprints(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.projects.Owned(ctx, c.Param("id"), middleware.IdentityFrom(c).UserID); err != nil {
		respondError(c, "project.sprints", err)
		return
	}
	sprints, err := h.sprints.ListByProject(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "project.sprints", err)
		return
	}
	if sprints == nil {
		sprints = []model.Sprint{}
	}
	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

// GET /api/project/:id/team lists everyone who served on the project's sprints.
func (h *ProjectHandler) Team(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.projects.Owned(ctx, c.Param("id"), middleware.IdentityFrom(c).UserID); err != nil {
		respondError(c, "project.team", err)
		return
	}
	team, err := h.team.ProjectTeam(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "project.team", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team_members": team})
}
