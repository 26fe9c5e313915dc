package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Anything unexpected
// is logged and reported as a 500.
func respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": inputMessage(err)})
	case errors.Is(err, service.ErrNoResponses):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No responses to analyze"})
	case errors.Is(err, service.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrReportMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis report not found"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(op+".failed", "path", c.FullPath(), "err", err)
		msg := "Internal server error"
		if op == "analysis" {
			msg = "Analysis failed"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// inputMessage strips the sentinel prefix from a wrapped ErrInvalidInput.
func inputMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, service.ErrInvalidInput.Error()+": "); ok {
		return rest
	}
	return msg
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
