package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := newAccessCode()
		require.NoError(t, err)
		require.Len(t, code, accessCodeLen)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(accessCodeAlphabet, c), "unexpected %q in %s", c, code)
		}
	}
}

func TestByAccessCodeIgnoresCase(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	_, members := createSprint(t, NewSprintService(db), model.CreateSprintRequest{
		TeamMembers: []model.MemberInput{{Name: "Ana"}},
	})
	code := *members[0].AccessCode

	m, err := team.ByAccessCode(context.Background(), " "+strings.ToLower(code)+" ")
	require.NoError(t, err)
	assert.Equal(t, members[0].ID, m.ID)

	_, err = team.ByAccessCode(context.Background(), "ZZZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddMembers(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	ctx := context.Background()
	sp, _ := createSprint(t, NewSprintService(db), model.CreateSprintRequest{})

	added, err := team.Add(ctx, sp.ID, []model.MemberInput{{Name: "Cy", Role: "QA", Email: "cy@example.com"}})
	require.NoError(t, err)
	require.Len(t, added, 1)

	m, err := team.ByEmail(ctx, sp.ID, "CY@example.com")
	require.NoError(t, err)
	assert.Equal(t, added[0].ID, m.ID)

	_, err = team.Add(ctx, "missing", []model.MemberInput{{Name: "X"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAccessCodesAndInvites(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	ctx := context.Background()
	sp, members := createSprint(t, NewSprintService(db), model.CreateSprintRequest{
		TeamMembers: []model.MemberInput{{Name: "Ana", Email: "ana@example.com"}, {Name: "Ben"}},
	})
	require.NoError(t, db.Model(&model.TeamMember{}).Where("id = ?", members[1].ID).Update("access_code", nil).Error)

	_, n, err := team.EnsureAccessCodes(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	invites, err := team.Invites(ctx, sp.ID, "https://retro.example.com/")
	require.NoError(t, err)
	require.Len(t, invites, 2)
	byName := map[string]model.Invite{}
	for _, inv := range invites {
		byName[inv.Name] = inv
	}
	assert.Equal(t, "https://retro.example.com/chat?code="+*members[0].AccessCode, byName["Ana"].InviteURL)
	assert.Equal(t, "ana@example.com", byName["Ana"].Email)
	assert.NotEmpty(t, byName["Ben"].AccessCode)

	ana, err := team.Get(ctx, members[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, ana.InviteSentAt)
	ben, err := team.Get(ctx, members[1].ID)
	require.NoError(t, err)
	assert.Nil(t, ben.InviteSentAt)
}

func TestMarkSubmittedByName(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	ctx := context.Background()
	sp, members := createSprint(t, NewSprintService(db), model.CreateSprintRequest{
		TeamMembers: []model.MemberInput{{Name: "Ana"}, {Name: "Ben"}},
	})

	require.NoError(t, team.MarkSubmittedByName(ctx, sp.ID, "Ben"))

	ben, err := team.Get(ctx, members[1].ID)
	require.NoError(t, err)
	assert.True(t, ben.HasSubmitted)
	assert.NotNil(t, ben.SubmittedAt)
	ana, err := team.Get(ctx, members[0].ID)
	require.NoError(t, err)
	assert.False(t, ana.HasSubmitted)
}

func TestProjectTeam(t *testing.T) {
	db := newTestDB(t)
	sprints := NewSprintService(db)
	name := "Checkout"
	p, err := NewProjectService(db).Create(context.Background(), "admin", model.ProjectRequest{Name: &name})
	require.NoError(t, err)

	for _, n := range []string{"S1", "S2"} {
		createSprint(t, sprints, model.CreateSprintRequest{
			Name:        n,
			ProjectID:   p.ID,
			TeamMembers: []model.MemberInput{{Name: "Ana", Role: "Developer", Email: "ana@example.com"}, {Name: "Ben", Role: "Designer"}},
		})
	}
	createSprint(t, sprints, model.CreateSprintRequest{TeamMembers: []model.MemberInput{{Name: "Outsider"}}})

	team, err := NewTeamService(db).ProjectTeam(context.Background(), p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.MemberInput{
		{Name: "Ana", Role: "Developer", Email: "ana@example.com"},
		{Name: "Ben", Role: "Designer"},
	}, team)
}
