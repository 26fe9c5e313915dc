package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectService struct{ db *gorm.DB }

func NewProjectService(db *gorm.DB) *ProjectService { return &ProjectService{db: db} }

func (s *ProjectService) Create(ctx context.Context, owner string, req model.ProjectRequest) (*model.Project, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	p := model.Project{ID: uuid.NewString(), Name: strings.TrimSpace(*req.Name), CreatedBy: owner}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, opErr("create", "project", p.ID, err)
	}
	return &p, nil
}

func (s *ProjectService) List(ctx context.Context, owner string) ([]model.Project, error) {
	var projects []model.Project
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if owner != "" {
		q = q.Where("created_by = ?", owner)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, opErr("list", "project", owner, err)
	}
	return projects, nil
}

// Owned loads a project and checks it belongs to owner.
func (s *ProjectService) Owned(ctx context.Context, id, owner string) (*model.Project, error) {
	var p model.Project
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, opErr("get", "project", id, err)
	}
	if p.CreatedBy != owner {
		return nil, fmt.Errorf("project %s: %w", id, ErrForbidden)
	}
	return &p, nil
}

func (s *ProjectService) Update(ctx context.Context, id, owner string, req model.ProjectRequest) (*model.Project, error) {
	p, err := s.Owned(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return nil, opErr("update", "project", id, err)
	}
	return s.Owned(ctx, id, owner)
}
