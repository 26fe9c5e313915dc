package model

import "time"

const (
	TurnUser = "user"
	TurnAI   = "ai"
)

// Turn is one entry of a conversation transcript.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is the structured digest of one member's conversation.
type Summary struct {
	WentWell     []string `json:"went_well"`
	Challenges   []string `json:"challenges"`
	Improvements []string `json:"improvements"`
	TeamFeedback []string `json:"team_feedback"`
	Sentiment    string   `json:"sentiment"`
	KeyQuotes    []string `json:"key_quotes"`
	Summary      string   `json:"summary"`
}

// DefaultSummary returns the empty-but-valid summary shape.
func DefaultSummary(text string) Summary {
	return Summary{
		WentWell:     []string{},
		Challenges:   []string{},
		Improvements: []string{},
		TeamFeedback: []string{},
		Sentiment:    "neutral",
		KeyQuotes:    []string{},
		Summary:      text,
	}
}

// Normalize replaces nil lists with empty ones and defaults the sentiment.
func (s Summary) Normalize() Summary {
	for _, p := range []*[]string{&s.WentWell, &s.Challenges, &s.Improvements, &s.TeamFeedback, &s.KeyQuotes} {
		if *p == nil {
			*p = []string{}
		}
	}
	if s.Sentiment == "" {
		s.Sentiment = "neutral"
	}
	return s
}

// HasContent reports whether any structured field carries feedback.
func (s Summary) HasContent() bool {
	return len(s.WentWell)+len(s.Challenges)+len(s.Improvements)+len(s.TeamFeedback) > 0 || s.Summary != ""
}

const CategorySuccess = "Success"

type Theme struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Percentage   float64  `json:"percentage"`
	MentionCount int      `json:"mention_count,omitempty"`
	Description  string   `json:"description,omitempty"`
	Quotes       []string `json:"quotes,omitempty"`
}

type RecommendationGroup struct {
	Theme          string   `json:"theme"`
	Priority       string   `json:"priority"`
	Actions        []string `json:"actions"`
	ExpectedImpact string   `json:"expected_impact,omitempty"`
}

type SentimentSummary struct {
	OverallMood        string  `json:"overall_mood"`
	PositivePercentage float64 `json:"positive_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
	AverageScore       float64 `json:"average_score"`
	MedianScore        float64 `json:"median_score"`
}

type ResolvedIssue struct {
	Name           string  `json:"name"`
	WasMentionedBy float64 `json:"was_mentioned_by"`
}

type PersistentIssue struct {
	Name               string  `json:"name"`
	Trend              string  `json:"trend"`
	PreviousPercentage float64 `json:"previous_percentage"`
	CurrentPercentage  float64 `json:"current_percentage"`
}

const (
	TrendWorse          = "worse"
	TrendBetter         = "better"
	TrendImproving      = "improving"
	TrendNeedsAttention = "needs_attention"
)

// Progress is the interview position reported alongside each AI reply.
type Progress struct {
	Question int  `json:"question"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
}

// SprintContext is everything the interviewer is told about the sprint.
type SprintContext struct {
	Sprint   Sprint
	Project  *Project
	Goals    []SprintGoal
	Outcomes *SprintOutcome
}

// Identity is the authenticated state carried by the session cookie.
type Identity struct {
	UserID       string `json:"uid,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Role         string `json:"role,omitempty"`
	IsAdmin      bool   `json:"adm,omitempty"`
	SessionToken string `json:"st,omitempty"`
	SprintID     string `json:"sid,omitempty"`
	MemberID     string `json:"mid,omitempty"`
}

func (id Identity) LoggedIn() bool { return id.UserID != "" }

func (id Identity) HasChat() bool { return id.SessionToken != "" && id.SprintID != "" }

// WithoutChat drops the chat session part of the identity.
func (id Identity) WithoutChat() Identity {
	id.SessionToken, id.SprintID, id.MemberID = "", "", ""
	return id
}

// Empty reports whether nothing worth persisting remains.
func (id Identity) Empty() bool { return id == Identity{} }

// --- requests ---

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	AccessToken string `json:"access_token"`
	User        *struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			Role     string `json:"role"`
			FullName string `json:"full_name"`
		} `json:"user_metadata"`
	} `json:"user"`
}

type MemberInput struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

type OutcomeInput struct {
	ProgressSummary string `json:"progress_summary"`
	WhatWentWell    string `json:"what_went_well"`
	WhatWentWrong   string `json:"what_went_wrong"`
}

type CreateSprintRequest struct {
	Name        string        `json:"name"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	ProjectID   string        `json:"project_id"`
	Goals       []string      `json:"goals"`
	Outcomes    *OutcomeInput `json:"outcomes"`
	TeamMembers []MemberInput `json:"team_members"`
}

type GoalsRequest struct {
	Goals []string `json:"goals"`
}

type ProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ValidateCodeRequest struct {
	AccessCode string `json:"access_code"`
}

type StartSessionRequest struct {
	SprintID string `json:"sprint_id"`
}

type ChatMessageRequest struct {
	Message string `json:"message"`
}

type SubmitRequest struct {
	Name        string `json:"name"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type ActionItemRequest struct {
	SprintID    string `json:"sprint_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	DueDate     string `json:"due_date"`
	Theme       string `json:"theme"`
}

type ActionStatusRequest struct {
	Status string `json:"status"`
}

// --- responses ---

type StatusSummary struct {
	Total         int          `json:"total"`
	Submitted     int          `json:"submitted"`
	Pending       int          `json:"pending"`
	Percentage    float64      `json:"percentage"`
	Members       []TeamMember `json:"members"`
	ResponseCount int          `json:"response_count"`
}

type SprintDetails struct {
	Sprint      Sprint         `json:"sprint"`
	Project     *Project       `json:"project"`
	Goals       []SprintGoal   `json:"goals"`
	Outcomes    *SprintOutcome `json:"outcomes"`
	TeamMembers []TeamMember   `json:"team_members"`
	Stats       StatusSummary  `json:"stats"`
}

type MemberSprint struct {
	Sprint
	MemberID     string `json:"member_id"`
	HasSubmitted bool   `json:"has_submitted"`
}

type Invite struct {
	MemberID   string `json:"member_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	AccessCode string `json:"access_code"`
	InviteURL  string `json:"invite_url"`
}
