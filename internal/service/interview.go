package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"
)

const (
	ReplyRateLimited = "I'm receiving a lot of messages right now. Please wait a moment (about 30 seconds) and try again."
	ReplyUnavailable = "The AI service is currently experiencing high traffic. Please try again in a few moments."
	ReplyTechnical   = "I apologize, but I'm having trouble processing your response due to a technical issue. Could you please try again?"
	ReplyBlocked     = "I apologize, but I cannot respond to that specific message due to safety guidelines. Could we please rephrase or move to the next topic?"

	interviewAttempts = 3
)

var (
	questionMarker = regexp.MustCompile(`\[Q:\s*(\d+)\s*/\s*\d+\s*\]`)
	completeMarker = regexp.MustCompile(`\[(INTERVIEW_COMPLETE|READY_TO_SUBMIT)\]`)
	fenceOpen      = regexp.MustCompile("(?m)^```(?:json)?\\s*")
	fenceClose     = regexp.MustCompile("(?m)\\s*```$")
	extraSpace     = regexp.MustCompile(`[ \t]{2,}`)
)

// InterviewTurn is the reply to one user message and where the interview stands.
type InterviewTurn struct {
	Reply    string         `json:"response"`
	Progress model.Progress `json:"progress"`
}

// Interviewer drives one conversational turn against a provider, retrying
// transient failures. It never returns an error: every failure becomes a
// user-facing reply.
type Interviewer struct {
	provider Provider
	prompts  *PromptAssembler
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewInterviewer(p Provider, prompts *PromptAssembler) *Interviewer {
	return &Interviewer{provider: p, prompts: prompts, sleep: sleepCtx}
}

func (iv *Interviewer) Conduct(ctx context.Context, in InterviewInput) InterviewTurn {
	req := GenerateRequest{Temperature: 0.7, MaxTokens: 400, JSON: true}
	if prefersMessages(iv.provider) {
		req.Messages = iv.prompts.BuildMessages(in)
	} else {
		req.Prompt = iv.prompts.BuildPrompt(in)
	}

	for attempt := 0; attempt < interviewAttempts; attempt++ {
		res, err := iv.provider.Generate(ctx, req)
		if err == nil {
			if res.Blocked {
				slog.Warn("interview.blocked", "provider", iv.provider.Name())
				return fallbackTurn(ReplyBlocked)
			}
			return ParseInterviewReply(res.Text)
		}

		last := attempt == interviewAttempts-1
		switch {
		case isRateLimit(err):
			slog.Warn("interview.rate_limited", "provider", iv.provider.Name(), "err", err)
			return fallbackTurn(ReplyRateLimited)
		case isUnavailable(err):
			slog.Warn("interview.unavailable", "provider", iv.provider.Name(), "attempt", attempt+1, "err", err)
			if last {
				return fallbackTurn(ReplyUnavailable)
			}
			if iv.sleep(ctx, time.Duration(2*(attempt+1))*time.Second) != nil {
				return fallbackTurn(ReplyTechnical)
			}
		default:
			slog.Warn("interview.error", "provider", iv.provider.Name(), "attempt", attempt+1, "err", err)
			if last {
				return fallbackTurn(ReplyTechnical)
			}
			if iv.sleep(ctx, time.Second) != nil {
				return fallbackTurn(ReplyTechnical)
			}
		}
	}
	return fallbackTurn(ReplyTechnical)
}

func fallbackTurn(reply string) InterviewTurn {
	return InterviewTurn{Reply: reply, Progress: model.Progress{Total: totalQuestions}}
}

// ParseInterviewReply extracts the reply text and progress from raw model
// output. Structured JSON is preferred; bracket markers are the fallback and
// are always stripped from the visible reply.
func ParseInterviewReply(raw string) InterviewTurn {
	text := cleanResponse(raw)
	turn := InterviewTurn{Progress: model.Progress{Total: totalQuestions}}

	var structured struct {
		Reply    *string         `json:"reply"`
		Question json.RawMessage `json:"question"`
		Complete bool            `json:"complete"`
	}
	if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &structured) == nil && structured.Reply != nil {
		text = *structured.Reply
		turn.Progress.Question = parseQuestion(structured.Question)
		turn.Progress.Complete = structured.Complete
	}

	if m := questionMarker.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && turn.Progress.Question == 0 {
			turn.Progress.Question = n
		}
	}
	if completeMarker.MatchString(text) {
		turn.Progress.Complete = true
	}
	text = questionMarker.ReplaceAllString(text, "")
	text = completeMarker.ReplaceAllString(text, "")
	text = extraSpace.ReplaceAllString(text, " ")
	turn.Reply = unquote(strings.TrimSpace(text))
	return turn
}

// parseQuestion accepts 3, "3" or "3/8".
func parseQuestion(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		s, _, _ = strings.Cut(s, "/")
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return 0
}

// cleanResponse removes markdown fences and wrapping quotes.
func cleanResponse(text string) string {
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return unquote(strings.TrimSpace(text))
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// cleanJSON strips fences and any preamble before the first { or [.
func cleanJSON(text string) string {
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	if i := strings.IndexAny(text, "{["); i > 0 {
		text = text[i:]
	}
	return strings.TrimSpace(text)
}

func isRateLimit(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "rate_limit") || strings.Contains(s, "rate limit")
}

func isUnavailable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unavailable") || strings.Contains(s, "service")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
