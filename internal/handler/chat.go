package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/middleware"
	"github.com/Lavindu17/ai-project-l2/internal/model"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatServices groups what the chat routes need.
type ChatServices struct {
	Sprints     *service.SprintService
	Team        *service.TeamService
	Sessions    *service.SessionService
	Responses   *service.ResponseService
	Interviewer *service.Interviewer
	Summarizer  *service.Summarizer
	Catalog     *service.CatalogSync
}

type ChatHandler struct {
	svc     ChatServices
	cookies *middleware.Sessions
}

func NewChatHandler(svc ChatServices, cookies *middleware.Sessions) *ChatHandler {
	return &ChatHandler{svc: svc, cookies: cookies}
}

// GET /api/chat/validate/:token
func (h *ChatHandler) ValidateToken(c *gin.Context) {
	ctx := c.Request.Context()
	sp, err := h.svc.Sprints.GetByShareToken(ctx, c.Param("token"))
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Invalid link"})
		return
	}
	if err != nil {
		respondError(c, "chat.validate", err)
		return
	}
	if !sp.Status.AcceptsResponses() {
		c.JSON(http.StatusForbidden, gin.H{"valid": false, "error": "This sprint is no longer accepting responses"})
		return
	}

	id := middleware.IdentityFrom(c)
	var cs *model.ConversationSession
	if id.HasChat() && id.SprintID == sp.ID {
		cs, err = h.svc.Sessions.Get(ctx, id.SessionToken)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			respondError(c, "chat.validate", err)
			return
		}
	}
	if cs == nil {
		if cs, err = h.svc.Sessions.Create(ctx, sp.ID, nil); err != nil {
			respondError(c, "chat.validate", err)
			return
		}
		logger.Info("chat.session.created", "sprint_id", sp.ID, "via", "share_token")
	}
	h.openSession(c, sp, nil, cs, len(cs.ConversationHistory) > 0)
}

// POST /api/chat/validate-code
func (h *ChatHandler) ValidateCode(c *gin.Context) {
	var req model.ValidateCodeRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.AccessCode) == "" {
		badRequest(c, "Access code is required")
		return
	}
	ctx := c.Request.Context()
	m, err := h.svc.Team.ByAccessCode(ctx, req.AccessCode)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Invalid access code"})
		return
	}
	if err != nil {
		respondError(c, "chat.validate_code", err)
		return
	}
	h.joinAsMember(c, m)
}

// POST /api/chat/start-session lets a signed-in user join a sprint they are
// on the team of.
func (h *ChatHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SprintID == "" {
		badRequest(c, "sprint_id is required")
		return
	}
	id := middleware.IdentityFrom(c)
	if id.Email == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "No email on this account"})
		return
	}
	m, err := h.svc.Team.ByEmail(c.Request.Context(), req.SprintID, id.Email)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this sprint"})
		return
	}
	if err != nil {
		respondError(c, "chat.start", err)
		return
	}
	h.joinAsMember(c, m)
}

func (h *ChatHandler) joinAsMember(c *gin.Context, m *model.TeamMember) {
	ctx := c.Request.Context()
	sp, err := h.svc.Sprints.Get(ctx, m.SprintID)
	if err != nil {
		respondError(c, "chat.join", err)
		return
	}
	if !sp.Status.AcceptsResponses() {
		c.JSON(http.StatusForbidden, gin.H{"valid": false, "error": "This sprint is no longer accepting responses"})
		return
	}
	if m.HasSubmitted {
		c.JSON(http.StatusOK, gin.H{
			"valid":     true,
			"submitted": true,
			"message":   "You have already submitted your feedback for this sprint",
			"sprint":    sp,
			"member":    m,
		})
		return
	}

	current := ""
	if id := middleware.IdentityFrom(c); id.SprintID == sp.ID {
		current = id.SessionToken
	}
	cs, existing, err := h.svc.Sessions.Resume(ctx, sp.ID, m.ID, current)
	if err != nil {
		respondError(c, "chat.join", err)
		return
	}
	logger.Info("chat.session.open", "sprint_id", sp.ID, "member_id", m.ID, "existing", existing)
	h.openSession(c, sp, m, cs, existing)
}

// openSession stores the chat session in the caller's identity and replies
// with everything the chat page needs.
func (h *ChatHandler) openSession(c *gin.Context, sp *model.Sprint, m *model.TeamMember, cs *model.ConversationSession, existing bool) {
	sc, err := h.svc.Sprints.Context(c.Request.Context(), *sp)
	if err != nil {
		respondError(c, "chat.open", err)
		return
	}
	id := middleware.IdentityFrom(c)
	id.SessionToken, id.SprintID, id.MemberID = cs.SessionToken, sp.ID, ""
	if m != nil {
		id.MemberID = m.ID
	}
	h.cookies.Save(c, id)

	goals := sc.Goals
	if goals == nil {
		goals = []model.SprintGoal{}
	}
	history := cs.ConversationHistory
	if history == nil {
		history = []model.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":                true,
		"sprint":               sp,
		"member":               m,
		"goals":                goals,
		"outcomes":             sc.Outcomes,
		"project":              sc.Project,
		"session_token":        cs.SessionToken,
		"has_existing_session": existing,
		"history":              history,
		"progress":             service.Progress(cs),
	})
}

// GET /api/chat/session
func (h *ChatHandler) Session(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if !id.HasChat() {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	ctx := c.Request.Context()
	cs, err := h.svc.Sessions.Get(ctx, id.SessionToken)
	if errors.Is(err, service.ErrNotFound) {
		h.dropChat(c, id)
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	if err != nil {
		respondError(c, "chat.session", err)
		return
	}
	var member *model.TeamMember
	if cs.TeamMemberID != nil {
		if member, err = h.svc.Team.Get(ctx, *cs.TeamMemberID); err != nil && !errors.Is(err, service.ErrNotFound) {
			respondError(c, "chat.session", err)
			return
		}
	}
	history := cs.ConversationHistory
	if history == nil {
		history = []model.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{
		"active":        true,
		"session_token": cs.SessionToken,
		"sprint_id":     cs.SprintID,
		"member":        member,
		"history":       history,
		"progress":      service.Progress(cs),
	})
}

// POST /api/chat/message runs one interview turn.
func (h *ChatHandler) Message(c *gin.Context) {
	var req model.ChatMessageRequest
	_ = c.ShouldBindJSON(&req)
	text := strings.TrimSpace(req.Message)
	if text == "" {
		badRequest(c, "Message is required")
		return
	}
	id := middleware.IdentityFrom(c)
	if !id.HasChat() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}
	ctx := c.Request.Context()
	cs, sp, member, ok := h.activeSession(c, id)
	if !ok {
		return
	}
	if member != nil && member.HasSubmitted {
		c.JSON(http.StatusForbidden, gin.H{"error": "You have already submitted your feedback"})
		return
	}
	if !sp.Status.AcceptsResponses() {
		c.JSON(http.StatusForbidden, gin.H{"error": "This sprint is no longer accepting responses"})
		return
	}
	sc, err := h.svc.Sprints.Context(ctx, *sp)
	if err != nil {
		respondError(c, "chat.message", err)
		return
	}

	in := service.InterviewInput{History: cs.ConversationHistory, Message: text, Sprint: &sc}
	if member != nil {
		in.MemberName, in.MemberRole = member.Name, member.Role
	}
	turn := h.svc.Interviewer.Conduct(ctx, in)

	progress := service.Progress(cs)
	if turn.Progress.Question > 0 {
		progress.Question = turn.Progress.Question
	}
	progress.Complete = progress.Complete || turn.Progress.Complete

	now := time.Now().UTC()
	n, err := h.svc.Sessions.Append(ctx, cs.SessionToken, progress,
		model.Turn{Role: model.TurnUser, Content: text, Timestamp: now},
		model.Turn{Role: model.TurnAI, Content: turn.Reply, Timestamp: now},
	)
	if err != nil {
		respondError(c, "chat.message", err)
		return
	}
	logger.Info("chat.message", "sprint_id", sp.ID, "session", cs.ID, "question", progress.Question, "complete", progress.Complete)
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"response":      turn.Reply,
		"message_count": n,
		"progress":      progress,
	})
}

// GET /api/chat/:session_token/history
func (h *ChatHandler) History(c *gin.Context) {
	token := c.Param("session_token")
	id := middleware.IdentityFrom(c)
	if !id.IsAdmin && id.SessionToken != token {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	history, err := h.svc.Sessions.History(c.Request.Context(), token)
	if err != nil {
		respondError(c, "chat.history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// POST /api/response/submit finalizes the conversation.
func (h *ChatHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	_ = c.ShouldBindJSON(&req)
	id := middleware.IdentityFrom(c)
	if !id.HasChat() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}
	ctx := c.Request.Context()
	cs, sp, member, ok := h.activeSession(c, id)
	if !ok {
		return
	}
	if len(cs.ConversationHistory) == 0 {
		badRequest(c, "No conversation to submit")
		return
	}
	if member != nil && member.HasSubmitted {
		c.JSON(http.StatusForbidden, gin.H{"error": "You have already submitted your feedback"})
		return
	}

	name, role := strings.TrimSpace(req.Name), ""
	if member != nil {
		if name == "" {
			name = member.Name
		}
		role = member.Role
	}
	sum := h.svc.Summarizer.Summarize(ctx, cs.ConversationHistory, name, role)
	resp, err := h.svc.Responses.Create(ctx, sp.ID, name, req.IsAnonymous, cs.ConversationHistory, cs.SessionToken, sum)
	if err != nil {
		respondError(c, "response.submit", err)
		return
	}

	switch {
	case member != nil:
		err = h.svc.Team.MarkSubmitted(ctx, member.ID)
	case !req.IsAnonymous && name != "":
		err = h.svc.Team.MarkSubmittedByName(ctx, sp.ID, name)
	}
	if err != nil {
		logger.Error("response.mark_submitted_failed", "sprint_id", sp.ID, "err", err)
	}
	if h.svc.Catalog != nil {
		go h.svc.Catalog.SyncResponse(context.Background(), *resp)
	}

	h.dropChat(c, id)
	logger.Info("response.submitted", "sprint_id", sp.ID, "response_id", resp.ID, "anonymous", resp.IsAnonymous)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Thank you for your feedback!",
		"response_id": resp.ID,
		"summary":     resp.SummaryData.Data(),
	})
}

// activeSession loads the caller's session with its sprint and member. It
// writes the error response itself and reports false on failure.
func (h *ChatHandler) activeSession(c *gin.Context, id model.Identity) (*model.ConversationSession, *model.Sprint, *model.TeamMember, bool) {
	ctx := c.Request.Context()
	cs, err := h.svc.Sessions.Get(ctx, id.SessionToken)
	if errors.Is(err, service.ErrNotFound) {
		h.dropChat(c, id)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		return nil, nil, nil, false
	}
	if err != nil {
		respondError(c, "chat.session", err)
		return nil, nil, nil, false
	}
	sp, err := h.svc.Sprints.Get(ctx, cs.SprintID)
	if err != nil {
		respondError(c, "chat.session", err)
		return nil, nil, nil, false
	}
	var member *model.TeamMember
	if cs.TeamMemberID != nil {
		member, err = h.svc.Team.Get(ctx, *cs.TeamMemberID)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			respondError(c, "chat.session", err)
			return nil, nil, nil, false
		}
	}
	return cs, sp, member, true
}

// dropChat forgets the chat session, deleting the cookie when no signed-in
// user remains.
func (h *ChatHandler) dropChat(c *gin.Context, id model.Identity) {
	rest := id.WithoutChat()
	if rest.Empty() {
		h.cookies.Clear(c)
		return
	}
	h.cookies.Save(c, rest)
}
