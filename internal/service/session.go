package service

import (
	"context"
	"errors"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionService stores interview conversations between page loads.
type SessionService struct{ db *gorm.DB }

func NewSessionService(db *gorm.DB) *SessionService { return &SessionService{db: db} }

func (s *SessionService) Create(ctx context.Context, sprintID string, memberID *string) (*model.ConversationSession, error) {
	cs := model.ConversationSession{
		ID:                  uuid.NewString(),
		SessionToken:        uuid.NewString(),
		SprintID:            sprintID,
		TeamMemberID:        memberID,
		ConversationHistory: datatypes.JSONSlice[model.Turn]{},
	}
	if err := s.db.WithContext(ctx).Create(&cs).Error; err != nil {
		return nil, opErr("create", "session", cs.ID, err)
	}
	return &cs, nil
}

func (s *SessionService) Get(ctx context.Context, token string) (*model.ConversationSession, error) {
	var cs model.ConversationSession
	if err := s.db.WithContext(ctx).First(&cs, "session_token = ?", token).Error; err != nil {
		return nil, opErr("get", "session", token, err)
	}
	return &cs, nil
}

// Latest returns the newest session of a member in a sprint, or nil.
func (s *SessionService) Latest(ctx context.Context, sprintID, memberID string) (*model.ConversationSession, error) {
	var cs model.ConversationSession
	err := s.db.WithContext(ctx).
		Where("sprint_id = ? AND team_member_id = ?", sprintID, memberID).
		Order("created_at DESC").First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, opErr("get", "session", memberID, err)
	}
	return &cs, nil
}

// Resume finds the session a member should continue: the caller's current
// session when it belongs to the same member, else the newest stored one,
// else a new session.
func (s *SessionService) Resume(ctx context.Context, sprintID, memberID, currentToken string) (*model.ConversationSession, bool, error) {
	if currentToken != "" {
		cs, err := s.Get(ctx, currentToken)
		if err == nil && cs.SprintID == sprintID && cs.TeamMemberID != nil && *cs.TeamMemberID == memberID {
			return cs, len(cs.ConversationHistory) > 0, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}
	cs, err := s.Latest(ctx, sprintID, memberID)
	if err != nil {
		return nil, false, err
	}
	if cs != nil {
		return cs, len(cs.ConversationHistory) > 0, nil
	}
	mid := memberID
	cs, err = s.Create(ctx, sprintID, &mid)
	return cs, false, err
}

// Append adds turns to the stored history, records the interview progress
// and returns the new history length.
func (s *SessionService) Append(ctx context.Context, token string, progress model.Progress, turns ...model.Turn) (int, error) {
	var n int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cs model.ConversationSession
		if err := tx.First(&cs, "session_token = ?", token).Error; err != nil {
			return opErr("get", "session", token, err)
		}
		history := append(cs.ConversationHistory, turns...)
		n = len(history)
		err := tx.Model(&cs).Updates(map[string]interface{}{
			"conversation_history": history,
			"question_index":       progress.Question,
			"complete":             progress.Complete,
			"updated_at":           time.Now().UTC(),
		}).Error
		return opErr("update", "session", token, err)
	})
	return n, err
}

// Progress reports where the stored interview stands.
func Progress(cs *model.ConversationSession) model.Progress {
	return model.Progress{Question: cs.QuestionIndex, Total: totalQuestions, Complete: cs.Complete}
}

func (s *SessionService) History(ctx context.Context, token string) ([]model.Turn, error) {
	cs, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if cs.ConversationHistory == nil {
		return []model.Turn{}, nil
	}
	return cs.ConversationHistory, nil
}
