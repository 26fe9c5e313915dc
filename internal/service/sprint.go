package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type SprintService struct{ db *gorm.DB }

func NewSprintService(db *gorm.DB) *SprintService { return &SprintService{db: db} }

// Create stores a sprint together with its goals, outcomes and team.
func (s *SprintService) Create(ctx context.Context, createdBy string, req model.CreateSprintRequest) (*model.Sprint, []model.TeamMember, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.StartDate == "" || req.EndDate == "" {
		return nil, nil, fmt.Errorf("%w: name, start_date and end_date are required", ErrInvalidInput)
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, nil, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}

	sp := model.Sprint{
		ID:         uuid.NewString(),
		Name:       name,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     model.StatusCollecting,
		ShareToken: uuid.NewString()[:8],
		CreatedBy:  createdBy,
	}
	if req.ProjectID != "" {
		var p model.Project
		if err := s.db.WithContext(ctx).First(&p, "id = ?", req.ProjectID).Error; err != nil {
			return nil, nil, opErr("get", "project", req.ProjectID, err)
		}
		if p.CreatedBy != createdBy {
			return nil, nil, fmt.Errorf("project %s: %w", p.ID, ErrForbidden)
		}
		sp.ProjectID = &p.ID
	}

	var members []model.TeamMember
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sp).Error; err != nil {
			return opErr("create", "sprint", sp.ID, err)
		}
		if err := replaceGoals(tx, sp.ID, req.Goals); err != nil {
			return err
		}
		if req.Outcomes != nil {
			if err := upsertOutcome(tx, sp.ID, *req.Outcomes); err != nil {
				return err
			}
		}
		var err error
		members, err = addMembers(tx, sp.ID, req.TeamMembers)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &sp, members, nil
}

func (s *SprintService) Get(ctx context.Context, id string) (*model.Sprint, error) {
	var sp model.Sprint
	if err := s.db.WithContext(ctx).First(&sp, "id = ?", id).Error; err != nil {
		return nil, opErr("get", "sprint", id, err)
	}
	return &sp, nil
}

func (s *SprintService) GetByShareToken(ctx context.Context, token string) (*model.Sprint, error) {
	var sp model.Sprint
	if err := s.db.WithContext(ctx).First(&sp, "share_token = ?", token).Error; err != nil {
		return nil, opErr("get", "sprint", token, err)
	}
	return &sp, nil
}

func (s *SprintService) List(ctx context.Context) ([]model.Sprint, error) {
	var sprints []model.Sprint
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&sprints).Error; err != nil {
		return nil, opErr("list", "sprint", "", err)
	}
	return sprints, nil
}

func (s *SprintService) ListByProject(ctx context.Context, projectID string) ([]model.Sprint, error) {
	var sprints []model.Sprint
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).
		Order("start_date DESC").Find(&sprints).Error
	if err != nil {
		return nil, opErr("list", "sprint", projectID, err)
	}
	return sprints, nil
}

// ListForEmail returns the sprints whose team includes email, newest first.
func (s *SprintService) ListForEmail(ctx context.Context, email string) ([]model.MemberSprint, error) {
	var members []model.TeamMember
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).Find(&members).Error
	if err != nil {
		return nil, opErr("list", "team_member", email, err)
	}
	if len(members) == 0 {
		return []model.MemberSprint{}, nil
	}

	byID := make(map[string]model.TeamMember, len(members))
	ids := make([]string, 0, len(members))
	for _, m := range members {
		byID[m.SprintID] = m
		ids = append(ids, m.SprintID)
	}
	var sprints []model.Sprint
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("start_date DESC").Find(&sprints).Error; err != nil {
		return nil, opErr("list", "sprint", email, err)
	}

	out := make([]model.MemberSprint, 0, len(sprints))
	for _, sp := range sprints {
		m := byID[sp.ID]
		out = append(out, model.MemberSprint{Sprint: sp, MemberID: m.ID, HasSubmitted: m.HasSubmitted})
	}
	return out, nil
}

// Transition moves a sprint to status to, rejecting moves the state machine
// does not allow. The update is guarded on the status that was read.
func (s *SprintService) Transition(ctx context.Context, id string, to model.SprintStatus) error {
	sp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !model.CanTransition(sp.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sp.Status, to)
	}
	res := s.db.WithContext(ctx).Model(&model.Sprint{}).
		Where("id = ? AND status = ?", id, sp.Status).
		Update("status", to)
	if res.Error != nil {
		return opErr("update", "sprint", id, res.Error)
	}
	if res.RowsAffected == 0 && sp.Status != to {
		return fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, id)
	}
	return nil
}

func (s *SprintService) Close(ctx context.Context, id string) error {
	return s.Transition(ctx, id, model.StatusClosed)
}

func (s *SprintService) Goals(ctx context.Context, sprintID string) ([]model.SprintGoal, error) {
	var goals []model.SprintGoal
	err := s.db.WithContext(ctx).Where("sprint_id = ?", sprintID).Order("display_order").Find(&goals).Error
	if err != nil {
		return nil, opErr("list", "sprint_goal", sprintID, err)
	}
	return goals, nil
}

// ReplaceGoals drops every goal of the sprint and stores goals in order.
func (s *SprintService) ReplaceGoals(ctx context.Context, sprintID string, goals []string) ([]model.SprintGoal, error) {
	if _, err := s.Get(ctx, sprintID); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sprint_id = ?", sprintID).Delete(&model.SprintGoal{}).Error; err != nil {
			return opErr("delete", "sprint_goal", sprintID, err)
		}
		return replaceGoals(tx, sprintID, goals)
	})
	if err != nil {
		return nil, err
	}
	return s.Goals(ctx, sprintID)
}

func replaceGoals(tx *gorm.DB, sprintID string, goals []string) error {
	var rows []model.SprintGoal
	for _, g := range goals {
		if g = strings.TrimSpace(g); g != "" {
			rows = append(rows, model.SprintGoal{SprintID: sprintID, GoalText: g, DisplayOrder: len(rows)})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return opErr("create", "sprint_goal", sprintID, tx.Create(&rows).Error)
}

// Outcome returns nil without error when no outcome has been recorded.
func (s *SprintService) Outcome(ctx context.Context, sprintID string) (*model.SprintOutcome, error) {
	var o model.SprintOutcome
	err := s.db.WithContext(ctx).First(&o, "sprint_id = ?", sprintID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, opErr("get", "sprint_outcome", sprintID, err)
	}
	return &o, nil
}

func (s *SprintService) UpsertOutcome(ctx context.Context, sprintID string, in model.OutcomeInput) (*model.SprintOutcome, error) {
	if _, err := s.Get(ctx, sprintID); err != nil {
		return nil, err
	}
	if err := upsertOutcome(s.db.WithContext(ctx), sprintID, in); err != nil {
		return nil, err
	}
	return s.Outcome(ctx, sprintID)
}

func upsertOutcome(tx *gorm.DB, sprintID string, in model.OutcomeInput) error {
	o := model.SprintOutcome{
		SprintID:        sprintID,
		ProgressSummary: in.ProgressSummary,
		WhatWentWell:    in.WhatWentWell,
		WhatWentWrong:   in.WhatWentWrong,
		UpdatedAt:       time.Now().UTC(),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sprint_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress_summary", "what_went_well", "what_went_wrong", "updated_at"}),
	}).Create(&o).Error
	return opErr("upsert", "sprint_outcome", sprintID, err)
}

// Context gathers what the interviewer needs to know about a sprint.
func (s *SprintService) Context(ctx context.Context, sp model.Sprint) (model.SprintContext, error) {
	out := model.SprintContext{Sprint: sp}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Goals, err = s.Goals(gctx, sp.ID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Outcomes, err = s.Outcome(gctx, sp.ID)
		return err
	})
	g.Go(func() error {
		if sp.ProjectID == nil {
			return nil
		}
		var p model.Project
		err := s.db.WithContext(gctx).First(&p, "id = ?", *sp.ProjectID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return opErr("get", "project", *sp.ProjectID, err)
		}
		out.Project = &p
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.SprintContext{}, err
	}
	return out, nil
}

func (s *SprintService) Details(ctx context.Context, id string) (*model.SprintDetails, error) {
	sp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var (
		sc    model.SprintContext
		stats model.StatusSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sc, err = s.Context(gctx, *sp)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.Status(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	goals := sc.Goals
	if goals == nil {
		goals = []model.SprintGoal{}
	}
	return &model.SprintDetails{
		Sprint:      *sp,
		Project:     sc.Project,
		Goals:       goals,
		Outcomes:    sc.Outcomes,
		TeamMembers: stats.Members,
		Stats:       stats,
	}, nil
}

// Status reports submission progress for a sprint's team.
func (s *SprintService) Status(ctx context.Context, id string) (model.StatusSummary, error) {
	var members []model.TeamMember
	if err := s.db.WithContext(ctx).Where("sprint_id = ?", id).Order("created_at").Find(&members).Error; err != nil {
		return model.StatusSummary{}, opErr("list", "team_member", id, err)
	}
	var responses int64
	if err := s.db.WithContext(ctx).Model(&model.Response{}).Where("sprint_id = ?", id).Count(&responses).Error; err != nil {
		return model.StatusSummary{}, opErr("count", "response", id, err)
	}

	sum := model.StatusSummary{Total: len(members), Members: members, ResponseCount: int(responses)}
	if sum.Members == nil {
		sum.Members = []model.TeamMember{}
	}
	for _, m := range members {
		if m.HasSubmitted {
			sum.Submitted++
		}
	}
	sum.Pending = sum.Total - sum.Submitted
	if sum.Total > 0 {
		sum.Percentage = round1(float64(sum.Submitted) / float64(sum.Total) * 100)
	}
	return sum, nil
}

// CountByStatus tallies sprints per status for the admin dashboard.
func CountByStatus(sprints []model.Sprint) map[string]int {
	stats := map[string]int{
		string(model.StatusCollecting): 0,
		string(model.StatusAnalyzing):  0,
		string(model.StatusAnalyzed):   0,
		string(model.StatusClosed):     0,
	}
	stats["total"] = len(sprints)
	for _, sp := range sprints {
		stats[string(sp.Status)]++
	}
	return stats
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
