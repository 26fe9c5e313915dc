package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/stretchr/testify/assert"
)

var sampleHistory = []model.Turn{
	{Role: model.TurnAI, Content: "How did the sprint go?"},
	{Role: model.TurnUser, Content: "Deploys were slow but pairing helped."},
}

func TestSummarizeDecodesModelOutput(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{text: "```json\n" +
		`{"went_well":["pairing"],"challenges":["slow deploys"],"sentiment":"positive","summary":"Mostly good."}` +
		"\n```"}}}

	sum := NewSummarizer(p).Summarize(context.Background(), sampleHistory, "Ana", "Developer")

	assert.Equal(t, []string{"pairing"}, sum.WentWell)
	assert.Equal(t, []string{"slow deploys"}, sum.Challenges)
	assert.Equal(t, []string{}, sum.Improvements)
	assert.Equal(t, []string{}, sum.KeyQuotes)
	assert.Equal(t, "positive", sum.Sentiment)
	assert.Contains(t, p.reqs[0].Prompt, "User: Deploys were slow but pairing helped.")
	assert.Contains(t, p.reqs[0].Prompt, "- Name: Ana")
}

func TestSummarizeMalformedOutputGivesDefault(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{text: "Sure! Here is what I think: it was fine"}}}

	sum := NewSummarizer(p).Summarize(context.Background(), sampleHistory, "", "")

	assert.Equal(t, model.DefaultSummary(summaryUnparsable), sum)
	assert.Equal(t, "neutral", sum.Sentiment)
	assert.Contains(t, p.reqs[0].Prompt, "- Name: Team Member")
}

func TestSummarizeProviderErrorGivesDefault(t *testing.T) {
	p := &fakeProvider{answers: []scripted{{err: errors.New("boom")}}}

	sum := NewSummarizer(p).Summarize(context.Background(), sampleHistory, "Ana", "Developer")

	assert.Equal(t, []string{}, sum.WentWell)
	assert.Equal(t, "neutral", sum.Sentiment)
	assert.Equal(t, summaryFailed, sum.Summary)
}

func TestSummarizeTransportErrorHidesAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()

	const key = "SECRET-API-KEY-123"
	sum := NewSummarizer(NewGeminiClient(srv.URL, key, "gemini-test")).Summarize(context.Background(), sampleHistory, "Ana", "Developer")

	assert.Equal(t, summaryFailed, sum.Summary)
	assert.NotContains(t, sum.Summary, key)
}
