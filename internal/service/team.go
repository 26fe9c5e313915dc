package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	accessCodeLen      = 8
)

type TeamService struct{ db *gorm.DB }

func NewTeamService(db *gorm.DB) *TeamService { return &TeamService{db: db} }

func (s *TeamService) Members(ctx context.Context, sprintID string) ([]model.TeamMember, error) {
	var members []model.TeamMember
	if err := s.db.WithContext(ctx).Where("sprint_id = ?", sprintID).Order("created_at").Find(&members).Error; err != nil {
		return nil, opErr("list", "team_member", sprintID, err)
	}
	return members, nil
}

func (s *TeamService) Get(ctx context.Context, id string) (*model.TeamMember, error) {
	var m model.TeamMember
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, opErr("get", "team_member", id, err)
	}
	return &m, nil
}

func (s *TeamService) ByAccessCode(ctx context.Context, code string) (*model.TeamMember, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var m model.TeamMember
	if err := s.db.WithContext(ctx).First(&m, "access_code = ?", code).Error; err != nil {
		return nil, opErr("get", "team_member", code, err)
	}
	return &m, nil
}

func (s *TeamService) ByEmail(ctx context.Context, sprintID, email string) (*model.TeamMember, error) {
	var m model.TeamMember
	err := s.db.WithContext(ctx).
		Where("sprint_id = ? AND LOWER(email) = ?", sprintID, strings.ToLower(email)).
		First(&m).Error
	if err != nil {
		return nil, opErr("get", "team_member", email, err)
	}
	return &m, nil
}

// Add stores new members of a sprint, each with a fresh access code.
func (s *TeamService) Add(ctx context.Context, sprintID string, in []model.MemberInput) ([]model.TeamMember, error) {
	var sp model.Sprint
	if err := s.db.WithContext(ctx).First(&sp, "id = ?", sprintID).Error; err != nil {
		return nil, opErr("get", "sprint", sprintID, err)
	}
	return addMembers(s.db.WithContext(ctx), sprintID, in)
}

func addMembers(tx *gorm.DB, sprintID string, in []model.MemberInput) ([]model.TeamMember, error) {
	members := []model.TeamMember{}
	for _, mi := range in {
		name := strings.TrimSpace(mi.Name)
		if name == "" {
			continue
		}
		code, err := uniqueAccessCode(tx)
		if err != nil {
			return nil, err
		}
		m := model.TeamMember{
			ID:         uuid.NewString(),
			SprintID:   sprintID,
			Name:       name,
			Role:       strings.TrimSpace(mi.Role),
			AccessCode: &code,
		}
		if email := strings.TrimSpace(mi.Email); email != "" {
			m.Email = &email
		}
		if err := tx.Create(&m).Error; err != nil {
			return nil, opErr("create", "team_member", m.ID, err)
		}
		members = append(members, m)
	}
	return members, nil
}

// EnsureAccessCodes gives a code to every member of the sprint lacking one.
func (s *TeamService) EnsureAccessCodes(ctx context.Context, sprintID string) ([]model.TeamMember, int, error) {
	members, err := s.Members(ctx, sprintID)
	if err != nil {
		return nil, 0, err
	}
	n := 0
	for i := range members {
		if members[i].AccessCode != nil && *members[i].AccessCode != "" {
			continue
		}
		code, err := uniqueAccessCode(s.db.WithContext(ctx))
		if err != nil {
			return nil, n, err
		}
		if err := s.db.WithContext(ctx).Model(&members[i]).Update("access_code", code).Error; err != nil {
			return nil, n, opErr("update", "team_member", members[i].ID, err)
		}
		members[i].AccessCode = &code
		n++
	}
	return members, n, nil
}

// Invites builds invite links for every member and stamps invite_sent_at on
// those with an email address.
func (s *TeamService) Invites(ctx context.Context, sprintID, publicURL string) ([]model.Invite, error) {
	members, _, err := s.EnsureAccessCodes(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	base := strings.TrimRight(publicURL, "/")
	invites := make([]model.Invite, 0, len(members))
	for _, m := range members {
		inv := model.Invite{
			MemberID:   m.ID,
			Name:       m.Name,
			AccessCode: *m.AccessCode,
			InviteURL:  fmt.Sprintf("%s/chat?code=%s", base, *m.AccessCode),
		}
		if m.Email != nil && *m.Email != "" {
			inv.Email = *m.Email
			if err := s.db.WithContext(ctx).Model(&model.TeamMember{}).Where("id = ?", m.ID).
				Update("invite_sent_at", now).Error; err != nil {
				return nil, opErr("update", "team_member", m.ID, err)
			}
		}
		invites = append(invites, inv)
	}
	return invites, nil
}

func (s *TeamService) MarkSubmitted(ctx context.Context, memberID string) error {
	err := s.db.WithContext(ctx).Model(&model.TeamMember{}).Where("id = ?", memberID).
		Updates(map[string]interface{}{"has_submitted": true, "submitted_at": time.Now().UTC()}).Error
	return opErr("update", "team_member", memberID, err)
}

// MarkSubmittedByName is the fallback for sessions that were not opened
// with an access code.
func (s *TeamService) MarkSubmittedByName(ctx context.Context, sprintID, name string) error {
	err := s.db.WithContext(ctx).Model(&model.TeamMember{}).
		Where("sprint_id = ? AND name = ?", sprintID, name).
		Updates(map[string]interface{}{"has_submitted": true, "submitted_at": time.Now().UTC()}).Error
	return opErr("update", "team_member", name, err)
}

// ProjectTeam lists the distinct people who were on any sprint of a project.
func (s *TeamService) ProjectTeam(ctx context.Context, projectID string) ([]model.MemberInput, error) {
	var rows []model.MemberInput
	err := s.db.WithContext(ctx).Model(&model.TeamMember{}).
		Select("DISTINCT team_members.name, team_members.role, COALESCE(team_members.email, '') AS email").
		Joins("JOIN sprints ON sprints.id = team_members.sprint_id").
		Where("sprints.project_id = ?", projectID).
		Scan(&rows).Error
	if err != nil {
		return nil, opErr("list", "team_member", projectID, err)
	}
	if rows == nil {
		rows = []model.MemberInput{}
	}
	return rows, nil
}

func uniqueAccessCode(tx *gorm.DB) (string, error) {
	for i := 0; i < 5; i++ {
		code, err := newAccessCode()
		if err != nil {
			return "", err
		}
		var n int64
		if err := tx.Model(&model.TeamMember{}).Where("access_code = ?", code).Count(&n).Error; err != nil {
			return "", opErr("count", "team_member", "", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique access code")
}

func newAccessCode() (string, error) {
	var sb strings.Builder
	limit := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := 0; i < accessCodeLen; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("access code: %w", err)
		}
		sb.WriteByte(accessCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
