package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/middleware"
	"github.com/Lavindu17/ai-project-l2/internal/model"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-gonic/gin"
)

type SprintHandler struct {
	sprints   *service.SprintService
	team      *service.TeamService
	publicURL string
}

func NewSprintHandler(sprints *service.SprintService, team *service.TeamService, publicURL string) *SprintHandler {
	return &SprintHandler{sprints: sprints, team: team, publicURL: strings.TrimRight(publicURL, "/")}
}

// POST /api/sprint/create
func (h *SprintHandler) Create(c *gin.Context) {
	var req model.CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	id := middleware.IdentityFrom(c)
	sp, members, err := h.sprints.Create(c.Request.Context(), id.UserID, req)
	if err != nil {
		respondError(c, "sprint.create", err)
		return
	}
	if members == nil {
		members = []model.TeamMember{}
	}
	logger.Info("sprint.created", "sprint_id", sp.ID, "name", sp.Name, "members", len(members), "by", id.UserID)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"sprint_id":    sp.ID,
		"share_token":  sp.ShareToken,
		"share_url":    fmt.Sprintf("%s/chat/%s", h.publicURL, sp.ShareToken),
		"sprint":       sp,
		"team_members": members,
	})
}

// GET /api/sprint/list
func (h *SprintHandler) List(c *gin.Context) {
	sprints, err := h.sprints.List(c.Request.Context())
	if err != nil {
		respondError(c, "sprint.list", err)
		return
	}
	if sprints == nil {
		sprints = []model.Sprint{}
	}
	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

// GET /api/sprint/my-sprints
func (h *SprintHandler) MySprints(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if id.Email == "" {
		c.JSON(http.StatusOK, gin.H{"sprints": []model.MemberSprint{}})
		return
	}
	sprints, err := h.sprints.ListForEmail(c.Request.Context(), id.Email)
	if err != nil {
		respondError(c, "sprint.mine", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

func (h *SprintHandler) Get(c *gin.Context) {
	sp, err := h.sprints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "sprint.get", err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

func (h *SprintHandler) Details(c *gin.Context) {
	d, err := h.sprints.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "sprint.details", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *SprintHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.sprints.Get(ctx, c.Param("id")); err != nil {
		respondError(c, "sprint.status", err)
		return
	}
	st, err := h.sprints.Status(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "sprint.status", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PATCH /api/sprint/:id/close
func (h *SprintHandler) Close(c *gin.Context) {
	if err := h.sprints.Close(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "sprint.close", err)
		return
	}
	logger.Info("sprint.closed", "sprint_id", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sprint closed"})
}

func (h *SprintHandler) Goals(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.sprints.Get(ctx, c.Param("id")); err != nil {
		respondError(c, "sprint.goals", err)
		return
	}
	goals, err := h.sprints.Goals(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "sprint.goals", err)
		return
	}
	if goals == nil {
		goals = []model.SprintGoal{}
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// PUT /api/sprint/:id/goals replaces every goal.
func (h *SprintHandler) ReplaceGoals(c *gin.Context) {
	var req model.GoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	goals, err := h.sprints.ReplaceGoals(c.Request.Context(), c.Param("id"), req.Goals)
	if err != nil {
		respondError(c, "sprint.goals", err)
		return
	}
	if goals == nil {
		goals = []model.SprintGoal{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "goals": goals})
}

func (h *SprintHandler) Outcomes(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.sprints.Get(ctx, c.Param("id")); err != nil {
		respondError(c, "sprint.outcomes", err)
		return
	}
	o, err := h.sprints.Outcome(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "sprint.outcomes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": o})
}

func (h *SprintHandler) UpsertOutcomes(c *gin.Context) {
	var req model.OutcomeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.sprints.Get(ctx, c.Param("id")); err != nil {
		respondError(c, "sprint.outcomes", err)
		return
	}
	o, err := h.sprints.UpsertOutcome(ctx, c.Param("id"), req)
	if err != nil {
		respondError(c, "sprint.outcomes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "outcomes": o})
}

func (h *SprintHandler) Members(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.sprints.Get(ctx, c.Param("id")); err != nil {
		respondError(c, "team.list", err)
		return
	}
	members, err := h.team.Members(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "team.list", err)
		return
	}
	if members == nil {
		members = []model.TeamMember{}
	}
	c.JSON(http.StatusOK, gin.H{"team_members": members})
}

// POST /api/sprint/:id/members  body: {"team_members":[...]} or a single member
func (h *SprintHandler) AddMembers(c *gin.Context) {
	var req struct {
		TeamMembers []model.MemberInput `json:"team_members"`
		model.MemberInput
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	in := req.TeamMembers
	if len(in) == 0 && req.Name != "" {
		in = []model.MemberInput{req.MemberInput}
	}
	if len(in) == 0 {
		badRequest(c, "No team members given")
		return
	}
	members, err := h.team.Add(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, "team.add", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "team_members": members})
}

// POST /api/sprint/:id/members/codes
func (h *SprintHandler) GenerateCodes(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.sprints.Get(ctx, c.Param("id")); err != nil {
		respondError(c, "team.codes", err)
		return
	}
	members, n, err := h.team.EnsureAccessCodes(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "team.codes", err)
		return
	}
	if members == nil {
		members = []model.TeamMember{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "generated": n, "team_members": members})
}

// POST /api/sprint/:id/invites
func (h *SprintHandler) Invites(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.sprints.Get(ctx, c.Param("id")); err != nil {
		respondError(c, "team.invites", err)
		return
	}
	invites, err := h.team.Invites(ctx, c.Param("id"), h.publicURL)
	if err != nil {
		respondError(c, "team.invites", err)
		return
	}
	logger.Info("team.invites", "sprint_id", c.Param("id"), "count", len(invites))
	c.JSON(http.StatusOK, gin.H{"success": true, "invites": invites})
}
