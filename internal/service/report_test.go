package service

import (
	"context"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestReportSaveOverwrites(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportService(db)
	ctx := context.Background()
	sp, _ := createSprint(t, NewSprintService(db), model.CreateSprintRequest{})

	_, err := reports.Get(ctx, sp.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &model.AnalysisReport{
		SprintID:         sp.ID,
		Themes:           []model.Theme{{Name: "Old"}},
		SentimentSummary: datatypes.NewJSONType(model.SentimentSummary{OverallMood: "neutral"}),
	}
	require.NoError(t, reports.Save(ctx, first))
	require.NotEmpty(t, first.ID)

	second := &model.AnalysisReport{
		SprintID:         sp.ID,
		Themes:           []model.Theme{{Name: "New"}, {Name: "Newer"}},
		SentimentSummary: datatypes.NewJSONType(model.SentimentSummary{OverallMood: "positive"}),
	}
	require.NoError(t, reports.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := reports.Get(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Len(t, got.Themes, 2)
	assert.Equal(t, "positive", got.SentimentSummary.Data().OverallMood)
}

func TestActionItems(t *testing.T) {
	db := newTestDB(t)
	reports := NewReportService(db)
	ctx := context.Background()
	sp, _ := createSprint(t, NewSprintService(db), model.CreateSprintRequest{})

	_, err := reports.CreateActionItem(ctx, model.ActionItemRequest{SprintID: sp.ID, Title: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = reports.CreateActionItem(ctx, model.ActionItemRequest{SprintID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	item, err := reports.CreateActionItem(ctx, model.ActionItemRequest{SprintID: sp.ID, Title: "Cache builds", Owner: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, model.ActionPending, item.Status)

	done, err := reports.SetActionStatus(ctx, item.ID, model.ActionDone)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDone, done.Status)
	assert.NotNil(t, done.CompletedAt)

	reopened, err := reports.SetActionStatus(ctx, item.ID, model.ActionInProgress)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	_, err = reports.SetActionStatus(ctx, "missing", model.ActionDone)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := reports.ActionItems(ctx, sp.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cache builds", items[0].Title)
}
