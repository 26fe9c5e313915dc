package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// scripted is one canned provider answer.
type scripted struct {
	text    string
	blocked bool
	err     error
}

// fakeProvider replays scripted answers in order, repeating the last one.
type fakeProvider struct {
	mu      sync.Mutex
	answers []scripted
	reqs    []GenerateRequest
	chat    bool
	respond func(req GenerateRequest) scripted
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Chat() bool { return f.chat }

func (f *fakeProvider) Generate(_ context.Context, req GenerateRequest) (GenerateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	var a scripted
	switch {
	case f.respond != nil:
		a = f.respond(req)
	case len(f.answers) == 0:
		a = scripted{text: "{}"}
	case len(f.reqs) <= len(f.answers):
		a = f.answers[len(f.reqs)-1]
	default:
		a = f.answers[len(f.answers)-1]
	}
	if a.err != nil {
		return GenerateResult{}, a.err
	}
	return GenerateResult{Text: a.text, Blocked: a.blocked}, nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

// newTestDB opens a private in-memory SQLite database with every table.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func createSprint(t *testing.T, s *SprintService, req model.CreateSprintRequest) (*model.Sprint, []model.TeamMember) {
	t.Helper()
	if req.Name == "" {
		req.Name = "Sprint 1"
	}
	if req.StartDate == "" {
		req.StartDate, req.EndDate = "2026-01-05", "2026-01-16"
	}
	sp, members, err := s.Create(context.Background(), "admin", req)
	require.NoError(t, err)
	return sp, members
}
