package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatePrefersDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, promptInterviewer), []byte("custom interviewer"), 0o644))

	p := NewPromptAssembler(dir)
	assert.Equal(t, "custom interviewer", p.Template(promptInterviewer))
	assert.Contains(t, p.Template(promptThemes), "{summaries}", "missing files fall back to the built-in copy")
}

func TestBuildPromptIncludesSprintContext(t *testing.T) {
	desc := "Payments revamp"
	sc := &model.SprintContext{
		Sprint:   model.Sprint{Name: "Sprint 7", StartDate: "2026-03-02", EndDate: "2026-03-13"},
		Project:  &model.Project{Name: "Checkout", Description: desc},
		Goals:    []model.SprintGoal{{GoalText: "Ship card vault"}, {GoalText: "Cut p95 latency"}},
		Outcomes: &model.SprintOutcome{WhatWentWrong: "Vendor API outage"},
	}
	out := NewPromptAssembler("").BuildPrompt(InterviewInput{
		Message:    "hello",
		MemberName: "Ravi",
		MemberRole: "Scrum Master",
		Sprint:     sc,
	})

	for _, want := range []string{
		"- Sprint: Sprint 7",
		"- Dates: 2026-03-02 to 2026-03-13",
		"- Project: Checkout",
		"  • Ship card vault",
		"- Challenges (Admin view): Vendor API outage",
		"For Scrum Masters",
		"This is the start of the conversation.",
		"User: hello",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Progress Summary")
}

func TestBuildPromptWindowsHistory(t *testing.T) {
	var history []model.Turn
	for i := 1; i <= 8; i++ {
		history = append(history, model.Turn{Role: model.TurnUser, Content: fmt.Sprintf("msg-%d", i)})
	}
	out := NewPromptAssembler("").BuildPrompt(InterviewInput{History: history, Message: "next"})

	assert.NotContains(t, out, "msg-3\n")
	for i := 4; i <= 8; i++ {
		assert.Contains(t, out, fmt.Sprintf("User: msg-%d", i))
	}
}

func TestBuildMessagesWindowsHistory(t *testing.T) {
	var history []model.Turn
	for i := 0; i < 14; i++ {
		role := model.TurnUser
		if i%2 == 0 {
			role = model.TurnAI
		}
		history = append(history, model.Turn{Role: role, Content: fmt.Sprintf("t%d", i)})
	}
	msgs := NewPromptAssembler("").BuildMessages(InterviewInput{History: history, Message: "now"})

	require.Len(t, msgs, 1+messageWindow+1)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, Message{Role: "assistant", Content: "t4"}, msgs[1])
	assert.Equal(t, Message{Role: "user", Content: "now"}, msgs[len(msgs)-1])
}

func TestFillTemplate(t *testing.T) {
	got := fillTemplate("{a} and {b} and {a}", map[string]string{"a": "x", "b": "y"})
	assert.Equal(t, "x and y and x", got)
}

func TestUserTextAndTranscript(t *testing.T) {
	assert.Equal(t, "Deploys were slow but pairing helped.", UserText(sampleHistory))
	assert.True(t, strings.HasPrefix(Transcript(sampleHistory), "AI: How did the sprint go?\n"))
}
