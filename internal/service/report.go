package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportService struct{ db *gorm.DB }

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{db: db} }

// Save writes the sprint's report, replacing an earlier one in place.
func (s *ReportService) Save(ctx context.Context, r *model.AnalysisReport) error {
	var existing model.AnalysisReport
	err := s.db.WithContext(ctx).Where("sprint_id = ?", r.SprintID).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		return opErr("create", "report", r.SprintID, s.db.WithContext(ctx).Create(r).Error)
	}
	if err != nil {
		return opErr("get", "report", r.SprintID, err)
	}

	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt
	err = s.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"themes":                    r.Themes,
		"recommendations":           r.Recommendations,
		"sentiment_summary":         r.SentimentSummary,
		"analysis_duration_seconds": r.AnalysisDurationSeconds,
		"updated_at":                time.Now().UTC(),
	}).Error
	return opErr("update", "report", r.SprintID, err)
}

func (s *ReportService) Get(ctx context.Context, sprintID string) (*model.AnalysisReport, error) {
	var r model.AnalysisReport
	if err := s.db.WithContext(ctx).First(&r, "sprint_id = ?", sprintID).Error; err != nil {
		return nil, opErr("get", "report", sprintID, err)
	}
	return &r, nil
}

// SaveComparison upserts on the (current, previous) sprint pair.
func (s *ReportService) SaveComparison(ctx context.Context, c *model.SprintComparison) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "current_sprint_id"}, {Name: "previous_sprint_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"improvement_areas", "regression_areas", "persistent_issues", "overall_trend", "created_at"}),
	}).Create(c).Error
	return opErr("upsert", "comparison", c.CurrentSprintID, err)
}

func (s *ReportService) CreateActionItem(ctx context.Context, req model.ActionItemRequest) (*model.ActionItem, error) {
	if req.SprintID == "" || strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: sprint_id and title are required", ErrInvalidInput)
	}
	var sp model.Sprint
	if err := s.db.WithContext(ctx).First(&sp, "id = ?", req.SprintID).Error; err != nil {
		return nil, opErr("get", "sprint", req.SprintID, err)
	}
	item := model.ActionItem{
		ID:          uuid.NewString(),
		SprintID:    req.SprintID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Owner:       req.Owner,
		DueDate:     req.DueDate,
		Theme:       req.Theme,
		Status:      model.ActionPending,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, opErr("create", "action_item", item.ID, err)
	}
	return &item, nil
}

// SetActionStatus updates an item's status; completed_at is set on done.
func (s *ReportService) SetActionStatus(ctx context.Context, id string, status model.ActionStatus) (*model.ActionItem, error) {
	var item model.ActionItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, opErr("get", "action_item", id, err)
	}
	updates := map[string]interface{}{"status": status, "completed_at": nil}
	if status == model.ActionDone {
		updates["completed_at"] = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
		return nil, opErr("update", "action_item", id, err)
	}
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, opErr("get", "action_item", id, err)
	}
	return &item, nil
}

func (s *ReportService) ActionItems(ctx context.Context, sprintID string) ([]model.ActionItem, error) {
	var items []model.ActionItem
	if err := s.db.WithContext(ctx).Where("sprint_id = ?", sprintID).Order("created_at").Find(&items).Error; err != nil {
		return nil, opErr("list", "action_item", sprintID, err)
	}
	return items, nil
}
