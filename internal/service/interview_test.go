package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInterviewer(p Provider) (*Interviewer, *[]time.Duration) {
	iv := NewInterviewer(p, NewPromptAssembler(""))
	var slept []time.Duration
	iv.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return iv, &slept
}

func TestConductRateLimitReturnsImmediately(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{err: ErrRateLimited}}}
	iv, slept := newTestInterviewer(p)

	turn := iv.Conduct(context.Background(), InterviewInput{Message: "hi"})

	assert.Equal(t, ReplyRateLimited, turn.Reply)
	assert.Equal(t, 1, p.calls())
	assert.Empty(t, *slept)
}

func TestConductRateLimitMatchedByText(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{err: errors.New("429 Rate limit exceeded")}}}
	iv, _ := newTestInterviewer(p)

	assert.Equal(t, ReplyRateLimited, iv.Conduct(context.Background(), InterviewInput{Message: "hi"}).Reply)
	assert.Equal(t, 1, p.calls())
}

func TestConductGenericErrorRetriesThreeTimes(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{err: errors.New("boom")}}}
	iv, slept := newTestInterviewer(p)

	turn := iv.Conduct(context.Background(), InterviewInput{Message: "hi"})

	assert.Equal(t, ReplyTechnical, turn.Reply)
	assert.Equal(t, 3, p.calls())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *slept)
	assert.Equal(t, totalQuestions, turn.Progress.Total)
}

func TestConductUnavailableBacksOff(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{err: ErrUnavailable}}}
	iv, slept := newTestInterviewer(p)

	turn := iv.Conduct(context.Background(), InterviewInput{Message: "hi"})

	assert.Equal(t, ReplyUnavailable, turn.Reply)
	assert.Equal(t, 3, p.calls())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *slept)
}

func TestConductRecoversAfterTransientError(t *testing.T) {
	p := &fakeProvider{answers: []scripted{
		{err: errors.New("boom")},
		{text: `{"reply": "What went well?", "question": 2, "complete": false}`},
	}}
	iv, _ := newTestInterviewer(p)

	turn := iv.Conduct(context.Background(), InterviewInput{Message: "hi"})

	assert.Equal(t, "What went well?", turn.Reply)
	assert.Equal(t, 2, turn.Progress.Question)
	assert.Equal(t, 2, p.calls())
}

func TestConductBlockedDoesNotRetry(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{blocked: true}}}
	iv, slept := newTestInterviewer(p)

	turn := iv.Conduct(context.Background(), InterviewInput{Message: "hi"})

	assert.Equal(t, ReplyBlocked, turn.Reply)
	assert.Equal(t, 1, p.calls())
	assert.Empty(t, *slept)
}

func TestConductCancelledSleepGivesUp(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{err: errors.New("boom")}}}
	iv := NewInterviewer(p, NewPromptAssembler(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	turn := iv.Conduct(ctx, InterviewInput{Message: "hi"})

	assert.Equal(t, ReplyTechnical, turn.Reply)
	assert.Equal(t, 1, p.calls())
}

func TestConductPromptShape(t *testing.T) {
	in := InterviewInput{
		Message:    "It went fine",
		MemberName: "Ana",
		MemberRole: "Tester",
		History: []model.Turn{
			{Role: model.TurnAI, Content: "How was the sprint?"},
		},
	}

	t.Run("single prompt", func(t *testing.T) {
		p := &fakeProvider{answers: []scripted{{text: "Thanks! [Q:2/8]"}}}
		iv, _ := newTestInterviewer(p)
		iv.Conduct(context.Background(), in)

		req := p.reqs[0]
		assert.Empty(t, req.Messages)
		assert.Contains(t, req.Prompt, "Name: Ana")
		assert.Contains(t, req.Prompt, "Testing coverage")
		assert.Contains(t, req.Prompt, "AI: How was the sprint?")
		assert.True(t, req.JSON)
		assert.Equal(t, 400, req.MaxTokens)
	})

	t.Run("chat messages", func(t *testing.T) {
		p := &fakeProvider{chat: true, answers: []scripted{{text: "Thanks!"}}}
		iv, _ := newTestInterviewer(p)
		iv.Conduct(context.Background(), in)

		req := p.reqs[0]
		assert.Empty(t, req.Prompt)
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, Message{Role: "assistant", Content: "How was the sprint?"}, req.Messages[1])
		assert.Equal(t, Message{Role: "user", Content: "It went fine"}, req.Messages[2])
	})
}

func TestParseInterviewReply(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		reply    string
		question int
		complete bool
	}{
		{"structured", `{"reply": "Tell me more.", "question": 3, "complete": false}`, "Tell me more.", 3, false},
		{"fenced json", "```json\n{\"reply\": \"Done, thanks!\", \"question\": \"8/8\", \"complete\": true}\n```", "Done, thanks!", 8, true},
		{"question marker", "[Q:4/8] What slowed you down?", "What slowed you down?", 4, false},
		{"complete marker", "Thanks for sharing. [INTERVIEW_COMPLETE]", "Thanks for sharing.", 0, true},
		{"ready marker", "All set! [READY_TO_SUBMIT]", "All set!", 0, true},
		{"marker inside json reply", `{"reply": "Great. [Q:5/8] Any blockers?"}`, "Great. Any blockers?", 5, false},
		{"plain text", `"How did the sprint feel?"`, "How did the sprint feel?", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := ParseInterviewReply(tt.raw)
			assert.Equal(t, tt.reply, turn.Reply)
			assert.Equal(t, tt.question, turn.Progress.Question)
			assert.Equal(t, tt.complete, turn.Progress.Complete)
			assert.Equal(t, totalQuestions, turn.Progress.Total)
		})
	}
}
