package model

import (
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:200" json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `gorm:"size:64;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Sprint struct {
	ID         string       `gorm:"primaryKey;size:36" json:"id"`
	Name       string       `gorm:"size:200" json:"name"`
	StartDate  string       `gorm:"size:10" json:"start_date"`
	EndDate    string       `gorm:"size:10" json:"end_date"`
	Status     SprintStatus `gorm:"size:20;index" json:"status"`
	ShareToken string       `gorm:"size:16;uniqueIndex" json:"share_token"`
	ProjectID  *string      `gorm:"size:36;index" json:"project_id"`
	CreatedBy  string       `gorm:"size:64" json:"created_by"`
	CreatedAt  time.Time    `json:"created_at"`
}

type TeamMember struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	SprintID     string     `gorm:"size:36;index" json:"sprint_id"`
	Name         string     `gorm:"size:100" json:"name"`
	Role         string     `gorm:"size:100" json:"role"`
	Email        *string    `gorm:"size:255;index" json:"email"`
	AccessCode   *string    `gorm:"size:16;uniqueIndex" json:"access_code,omitempty"`
	HasSubmitted bool       `json:"has_submitted"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	InviteSentAt *time.Time `json:"invite_sent_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ConversationSession struct {
	ID                  string                    `gorm:"primaryKey;size:36" json:"id"`
	SessionToken        string                    `gorm:"size:36;uniqueIndex" json:"session_token"`
	SprintID            string                    `gorm:"size:36;index" json:"sprint_id"`
	TeamMemberID        *string                   `gorm:"size:36;index" json:"team_member_id"`
	ConversationHistory datatypes.JSONSlice[Turn] `json:"conversation_history"`
	QuestionIndex       int                       `json:"question_index"`
	Complete            bool                      `json:"complete"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
}

type Response struct {
	ID           string                      `gorm:"primaryKey;size:36" json:"id"`
	SprintID     string                      `gorm:"size:36;index" json:"sprint_id"`
	UserName     string                      `gorm:"size:100" json:"user_name"`
	IsAnonymous  bool                        `json:"is_anonymous"`
	Conversation datatypes.JSONSlice[Turn]   `json:"conversation"`
	SessionToken string                      `gorm:"size:36" json:"session_token"`
	SummaryData  datatypes.JSONType[Summary] `json:"summary_data"`
	CreatedAt    time.Time                   `json:"created_at"`
}

type SprintGoal struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	SprintID     string `gorm:"size:36;index" json:"sprint_id"`
	GoalText     string `json:"goal_text"`
	DisplayOrder int    `json:"display_order"`
}

type SprintOutcome struct {
	SprintID        string    `gorm:"primaryKey;size:36" json:"sprint_id"`
	ProgressSummary string    `json:"progress_summary"`
	WhatWentWell    string    `json:"what_went_well"`
	WhatWentWrong   string    `json:"what_went_wrong"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AnalysisReport struct {
	ID                      string                                   `gorm:"primaryKey;size:36" json:"id"`
	SprintID                string                                   `gorm:"size:36;uniqueIndex" json:"sprint_id"`
	Themes                  datatypes.JSONSlice[Theme]               `json:"themes"`
	Recommendations         datatypes.JSONSlice[RecommendationGroup] `json:"recommendations"`
	SentimentSummary        datatypes.JSONType[SentimentSummary]     `json:"sentiment_summary"`
	AnalysisDurationSeconds int                                      `json:"analysis_duration_seconds"`
	CreatedAt               time.Time                                `json:"created_at"`
	UpdatedAt               time.Time                                `json:"updated_at"`
}

type ActionItem struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	SprintID    string       `gorm:"size:36;index" json:"sprint_id"`
	Title       string       `gorm:"size:255" json:"title"`
	Description string       `json:"description"`
	Owner       string       `gorm:"size:100" json:"owner"`
	DueDate     string       `gorm:"size:10" json:"due_date"`
	Theme       string       `gorm:"size:200" json:"theme"`
	Status      ActionStatus `gorm:"size:20" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at"`
}

type SprintComparison struct {
	ID               string                               `gorm:"primaryKey;size:36" json:"id"`
	CurrentSprintID  string                               `gorm:"size:36;uniqueIndex:uk_comparison_pair" json:"current_sprint_id"`
	PreviousSprintID string                               `gorm:"size:36;uniqueIndex:uk_comparison_pair" json:"previous_sprint_id"`
	ImprovementAreas datatypes.JSONSlice[ResolvedIssue]   `json:"improvement_areas"`
	RegressionAreas  datatypes.JSONSlice[Theme]           `json:"regression_areas"`
	PersistentIssues datatypes.JSONSlice[PersistentIssue] `json:"persistent_issues"`
	OverallTrend     string                               `gorm:"size:20" json:"overall_trend"`
	CreatedAt        time.Time                            `json:"created_at"`
}

func (Project) TableName() string             { return "projects" }
func (Sprint) TableName() string              { return "sprints" }
func (TeamMember) TableName() string          { return "team_members" }
func (ConversationSession) TableName() string { return "conversation_sessions" }
func (Response) TableName() string            { return "responses" }
func (SprintGoal) TableName() string          { return "sprint_goals" }
func (SprintOutcome) TableName() string       { return "sprint_outcomes" }
func (AnalysisReport) TableName() string      { return "analysis_reports" }
func (ActionItem) TableName() string          { return "action_items" }
func (SprintComparison) TableName() string    { return "sprint_comparisons" }

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Project{}, &Sprint{}, &TeamMember{}, &SprintGoal{}, &SprintOutcome{},
		&ConversationSession{}, &Response{}, &AnalysisReport{}, &ActionItem{}, &SprintComparison{},
	}
}
