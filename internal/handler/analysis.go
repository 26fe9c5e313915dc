package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/model"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	analysis *service.AnalysisService
	sprints  *service.SprintService
	reports  *service.ReportService
	exporter *service.ReportExporter
}

func NewAnalysisHandler(analysis *service.AnalysisService, sprints *service.SprintService, reports *service.ReportService, exporter *service.ReportExporter) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, sprints: sprints, reports: reports, exporter: exporter}
}

// POST /api/sprint/:id/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	id := c.Param("id")
	logger.Info("analysis.requested", "sprint_id", id)
	report, err := h.analysis.Analyze(c.Request.Context(), id)
	if err != nil {
		respondError(c, "analysis", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"message":               "Analysis completed",
		"report_id":             report.ID,
		"themes_count":          len(report.Themes),
		"recommendations_count": len(report.Recommendations),
	})
}

// GET /api/sprint/:id/report
func (h *AnalysisHandler) Report(c *gin.Context) {
	r, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "report.get", missingReport(err))
		return
	}
	c.JSON(http.StatusOK, r)
}

// GET /api/sprint/:id/report/export?format=json|xlsx|pdf|md|html
func (h *AnalysisHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	sp, err := h.sprints.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "report.export", err)
		return
	}
	r, err := h.reports.Get(ctx, sp.ID)
	if err != nil {
		respondError(c, "report.export", missingReport(err))
		return
	}
	out, err := h.exporter.Export(c.DefaultQuery("format", "json"), *sp, *r)
	if err != nil {
		respondError(c, "report.export", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.FileName))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// POST /api/sprint/:id/compare/:previous_id
func (h *AnalysisHandler) Compare(c *gin.Context) {
	cmp, err := h.analysis.Compare(c.Request.Context(), c.Param("id"), c.Param("previous_id"))
	if err != nil {
		respondError(c, "compare", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comparison": cmp})
}

// POST /api/action-items
func (h *AnalysisHandler) CreateActionItem(c *gin.Context) {
	var req model.ActionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	item, err := h.reports.CreateActionItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, "action_item.create", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "action_item": item})
}

// PATCH /api/action-items/:id
func (h *AnalysisHandler) UpdateActionItem(c *gin.Context) {
	var req model.ActionStatusRequest
	_ = c.ShouldBindJSON(&req)
	status, ok := model.ParseActionStatus(req.Status)
	if !ok {
		badRequest(c, "Invalid status")
		return
	}
	item, err := h.reports.SetActionStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, "action_item.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "action_item": item})
}

// GET /api/sprint/:id/action-items
func (h *AnalysisHandler) ActionItems(c *gin.Context) {
	items, err := h.reports.ActionItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "action_item.list", err)
		return
	}
	if items == nil {
		items = []model.ActionItem{}
	}
	c.JSON(http.StatusOK, gin.H{"action_items": items})
}

func missingReport(err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return fmt.Errorf("%w: %v", service.ErrReportMissing, err)
	}
	return err
}
