package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Lavindu17/ai-project-l2/internal/model"
)

const (
	summaryUnparsable = "Unable to generate summary from conversation."
	summaryFailed     = "Error generating summary."
)

const summaryPrompt = `Analyze the following sprint retrospective conversation and extract structured feedback.

CONVERSATION:
%s
TEAM MEMBER INFO:
- Name: %s
- Role: %s

Extract and return a JSON object with the following structure:
{
    "went_well": ["list of positive points mentioned"],
    "challenges": ["list of challenges/problems mentioned"],
    "improvements": ["list of improvement suggestions"],
    "team_feedback": ["any feedback about team dynamics or collaboration"],
    "sentiment": "overall sentiment: positive, neutral, or negative",
    "key_quotes": ["2-3 direct quotes that capture important feedback"],
    "summary": "A 2-3 sentence overall summary of the feedback"
}

Be thorough in extracting all feedback points. If a category has no relevant content, use an empty array.
Return ONLY the JSON object, no other text.`

type Summarizer struct{ provider Provider }

func NewSummarizer(p Provider) *Summarizer { return &Summarizer{provider: p} }

// Summarize condenses a finished conversation. It always returns a summary
// with every field present.
func (s *Summarizer) Summarize(ctx context.Context, history []model.Turn, name, role string) model.Summary {
	if name == "" {
		name = "Team Member"
	}
	if role == "" {
		role = "Team Member"
	}
	res, err := s.provider.Generate(ctx, GenerateRequest{
		Prompt:      fmt.Sprintf(summaryPrompt, Transcript(history), name, role),
		JSON:        true,
		Temperature: 0.7,
	})
	if err != nil {
		slog.Warn("summary.error", "provider", s.provider.Name(), "err", err)
		return model.DefaultSummary(summaryFailed)
	}
	return decodeSummary(res.Text)
}

func decodeSummary(text string) model.Summary {
	var sum model.Summary
	if err := json.Unmarshal([]byte(cleanJSON(text)), &sum); err != nil {
		slog.Warn("summary.decode_failed", "err", err)
		return model.DefaultSummary(summaryUnparsable)
	}
	return sum.Normalize()
}
