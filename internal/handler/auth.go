package handler

import (
	"errors"
	"net/http"

	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/middleware"
	"github.com/Lavindu17/ai-project-l2/internal/model"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth     *service.AuthService
	sessions *middleware.Sessions
}

func NewAuthHandler(auth *service.AuthService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// AdminLogin checks the shared admin password.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := h.auth.AdminLogin(req.Password); err != nil {
		logger.Warn("admin.login.failed", "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}
	// keep an open chat session, if any
	id := service.AdminIdentity
	cur := middleware.IdentityFrom(c)
	id.SessionToken, id.SprintID, id.MemberID = cur.SessionToken, cur.SprintID, cur.MemberID
	h.sessions.Save(c, id)

	logger.Info("admin.login.ok", "ip", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/admin/dashboard"})
}

// Login syncs a user signed in with the external identity provider.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing credentials")
		return
	}
	id, err := h.auth.UserLogin(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			badRequest(c, "Missing credentials")
		case errors.Is(err, service.ErrBadCredentials):
			logger.Warn("login.failed", "err", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
		default:
			respondError(c, "login", err)
		}
		return
	}
	cur := middleware.IdentityFrom(c)
	id.SessionToken, id.SprintID, id.MemberID = cur.SessionToken, cur.SprintID, cur.MemberID
	h.sessions.Save(c, id)

	logger.Info("login.ok", "uid", id.UserID, "role", id.Role)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"role":    id.Role,
		"user":    gin.H{"id": id.UserID, "email": id.Email, "name": id.Name},
	})
}

// Logout drops the whole identity, chat session included.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
