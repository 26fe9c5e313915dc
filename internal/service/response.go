package service

import (
	"context"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const anonymousName = "Anonymous"

type ResponseService struct{ db *gorm.DB }

func NewResponseService(db *gorm.DB) *ResponseService { return &ResponseService{db: db} }

// Create stores a submitted conversation. Responses are never edited.
func (s *ResponseService) Create(ctx context.Context, sprintID, userName string, anonymous bool, history []model.Turn, token string, sum model.Summary) (*model.Response, error) {
	if anonymous || userName == "" {
		userName = anonymousName
	}
	r := model.Response{
		ID:           uuid.NewString(),
		SprintID:     sprintID,
		UserName:     userName,
		IsAnonymous:  anonymous,
		Conversation: datatypes.JSONSlice[model.Turn](history),
		SessionToken: token,
		SummaryData:  datatypes.NewJSONType(sum.Normalize()),
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, opErr("create", "response", r.ID, err)
	}
	return &r, nil
}

func (s *ResponseService) List(ctx context.Context, sprintID string) ([]model.Response, error) {
	var rs []model.Response
	if err := s.db.WithContext(ctx).Where("sprint_id = ?", sprintID).Order("created_at").Find(&rs).Error; err != nil {
		return nil, opErr("list", "response", sprintID, err)
	}
	return rs, nil
}

func (s *ResponseService) Count(ctx context.Context, sprintID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Response{}).Where("sprint_id = ?", sprintID).Count(&n).Error
	return n, opErr("count", "response", sprintID, err)
}
