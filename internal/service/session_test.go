package service

import (
	"context"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAppend(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db)
	ctx := context.Background()
	sp, _ := createSprint(t, NewSprintService(db), model.CreateSprintRequest{})

	cs, err := sessions.Create(ctx, sp.ID, nil)
	require.NoError(t, err)

	n, err := sessions.Append(ctx, cs.SessionToken, model.Progress{Question: 2, Total: totalQuestions},
		model.Turn{Role: model.TurnUser, Content: "hi"},
		model.Turn{Role: model.TurnAI, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = sessions.Append(ctx, cs.SessionToken, model.Progress{Question: 3, Complete: true},
		model.Turn{Role: model.TurnUser, Content: "bye"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	history, err := sessions.History(ctx, cs.SessionToken)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "bye", history[2].Content)

	stored, err := sessions.Get(ctx, cs.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, model.Progress{Question: 3, Total: totalQuestions, Complete: true}, Progress(stored))

	_, err = sessions.Append(ctx, "missing", model.Progress{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionResume(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db)
	ctx := context.Background()
	sp, members := createSprint(t, NewSprintService(db), model.CreateSprintRequest{
		TeamMembers: []model.MemberInput{{Name: "Ana"}, {Name: "Ben"}},
	})
	ana, ben := members[0].ID, members[1].ID

	first, existing, err := sessions.Resume(ctx, sp.ID, ana, "")
	require.NoError(t, err)
	assert.False(t, existing)

	again, existing, err := sessions.Resume(ctx, sp.ID, ana, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "the stored session is reused")
	assert.False(t, existing)

	_, err = sessions.Append(ctx, first.SessionToken, model.Progress{}, model.Turn{Role: model.TurnUser, Content: "hi"})
	require.NoError(t, err)

	again, existing, err = sessions.Resume(ctx, sp.ID, ana, first.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, existing)

	other, _, err := sessions.Resume(ctx, sp.ID, ben, first.SessionToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "another member's token is not resumed")

	_, _, err = sessions.Resume(ctx, sp.ID, ana, "stale-token")
	require.NoError(t, err)
}
