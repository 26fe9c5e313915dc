package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/montanaflynn/stats"
	"gorm.io/datatypes"
)

const (
	sentimentTextLimit = 500
	sentimentThreshold = 0.3
)

const sentimentPrompt = `Analyze the sentiment of this text and return a score between -1 (very negative) and 1 (very positive).
Return ONLY a JSON object with a single 'score' field.

Text: %s

Return format: {"score": 0.5}`

// AnalysisService turns a sprint's submitted responses into a report.
type AnalysisService struct {
	sprints   *SprintService
	responses *ResponseService
	reports   *ReportService
	provider  Provider
	prompts   *PromptAssembler
	catalog   *CatalogSync
}

func NewAnalysisService(sprints *SprintService, responses *ResponseService, reports *ReportService, p Provider, prompts *PromptAssembler) *AnalysisService {
	return &AnalysisService{sprints: sprints, responses: responses, reports: reports, provider: p, prompts: prompts}
}

// SetCatalogSync enables pushing saved report themes to the warehouse.
func (a *AnalysisService) SetCatalogSync(c *CatalogSync) { a.catalog = c }

// Analyze runs themes, recommendations and sentiment over the sprint's
// responses and stores the report. The sprint is analyzing while this runs
// and returns to collecting if anything fails.
func (a *AnalysisService) Analyze(ctx context.Context, sprintID string) (*model.AnalysisReport, error) {
	start := time.Now()
	if _, err := a.sprints.Get(ctx, sprintID); err != nil {
		return nil, err
	}
	responses, err := a.responses.List(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, ErrNoResponses
	}
	if err := a.sprints.Transition(ctx, sprintID, model.StatusAnalyzing); err != nil {
		return nil, err
	}
	slog.Info("analysis.start", "sprint_id", sprintID, "responses", len(responses))

	report, err := a.run(ctx, sprintID, responses, start)
	if err != nil {
		if rerr := a.sprints.Transition(context.WithoutCancel(ctx), sprintID, model.StatusCollecting); rerr != nil {
			slog.Error("analysis.revert_failed", "sprint_id", sprintID, "err", rerr)
		}
		return nil, fmt.Errorf("analyze sprint %s: %w", sprintID, err)
	}

	slog.Info("analysis.done", "sprint_id", sprintID,
		"themes", len(report.Themes), "recommendations", len(report.Recommendations),
		"mood", report.SentimentSummary.Data().OverallMood, "seconds", report.AnalysisDurationSeconds)
	if a.catalog != nil {
		go a.catalog.SyncReportThemes(context.Background(), sprintID, report.Themes)
	}
	return report, nil
}

func (a *AnalysisService) run(ctx context.Context, sprintID string, responses []model.Response, start time.Time) (*model.AnalysisReport, error) {
	themes := a.ExtractThemes(ctx, responses)
	recs := a.Recommend(ctx, themes)
	sentiment := a.Sentiment(ctx, responses)

	report := &model.AnalysisReport{
		SprintID:                sprintID,
		Themes:                  datatypes.JSONSlice[model.Theme](themes),
		Recommendations:         datatypes.JSONSlice[model.RecommendationGroup](recs),
		SentimentSummary:        datatypes.NewJSONType(sentiment),
		AnalysisDurationSeconds: int(time.Since(start).Seconds()),
	}
	if err := a.reports.Save(ctx, report); err != nil {
		return nil, err
	}
	if err := a.sprints.Transition(ctx, sprintID, model.StatusAnalyzed); err != nil {
		return nil, err
	}
	return report, nil
}

// ExtractThemes asks the provider for recurring themes. Failures yield none.
func (a *AnalysisService) ExtractThemes(ctx context.Context, responses []model.Response) []model.Theme {
	prompt := fillTemplate(a.prompts.Template(promptThemes), map[string]string{
		"team_size": strconv.Itoa(len(responses)),
		"summaries": FormatResponses(responses),
	})
	var out struct {
		Themes []model.Theme `json:"themes"`
	}
	if err := a.generateJSON(ctx, prompt, &out); err != nil {
		slog.Warn("analysis.themes_failed", "err", err)
		return []model.Theme{}
	}
	if out.Themes == nil {
		return []model.Theme{}
	}
	return out.Themes
}

// Recommend derives action groups from themes. Failures yield none.
func (a *AnalysisService) Recommend(ctx context.Context, themes []model.Theme) []model.RecommendationGroup {
	data, _ := json.MarshalIndent(themes, "", "  ")
	prompt := fillTemplate(a.prompts.Template(promptRecommend), map[string]string{"themes": string(data)})
	var out struct {
		Recommendations []model.RecommendationGroup `json:"recommendations"`
	}
	if err := a.generateJSON(ctx, prompt, &out); err != nil {
		slog.Warn("analysis.recommendations_failed", "err", err)
		return []model.RecommendationGroup{}
	}
	if out.Recommendations == nil {
		return []model.RecommendationGroup{}
	}
	return out.Recommendations
}

// Sentiment scores each response and buckets the scores.
func (a *AnalysisService) Sentiment(ctx context.Context, responses []model.Response) model.SentimentSummary {
	scores := make([]float64, 0, len(responses))
	for _, r := range responses {
		scores = append(scores, a.score(ctx, UserText(r.Conversation)))
	}
	return SummarizeSentiment(scores)
}

func (a *AnalysisService) score(ctx context.Context, text string) float64 {
	if r := []rune(text); len(r) > sentimentTextLimit {
		text = string(r[:sentimentTextLimit])
	}
	var out struct {
		Score float64 `json:"score"`
	}
	if err := a.generateJSON(ctx, fmt.Sprintf(sentimentPrompt, text), &out); err != nil {
		return 0
	}
	return math.Max(-1, math.Min(1, out.Score))
}

// SummarizeSentiment buckets scores at ±0.3 and reports the shares.
func SummarizeSentiment(scores []float64) model.SentimentSummary {
	sum := model.SentimentSummary{OverallMood: "neutral"}
	if len(scores) == 0 {
		return sum
	}
	var pos, neu, neg int
	for _, s := range scores {
		switch {
		case s > sentimentThreshold:
			pos++
		case s < -sentimentThreshold:
			neg++
		default:
			neu++
		}
	}
	switch {
	case pos > neg:
		sum.OverallMood = "positive"
	case neg > pos:
		sum.OverallMood = "needs_improvement"
	}
	total := float64(len(scores))
	sum.PositivePercentage = round1(float64(pos) / total * 100)
	sum.NeutralPercentage = round1(float64(neu) / total * 100)
	sum.NegativePercentage = round1(float64(neg) / total * 100)

	data := stats.Float64Data(scores)
	if mean, err := data.Mean(); err == nil {
		sum.AverageScore = math.Round(mean*100) / 100
	}
	if median, err := data.Median(); err == nil {
		sum.MedianScore = math.Round(median*100) / 100
	}
	return sum
}

func (a *AnalysisService) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	res, err := a.provider.Generate(ctx, GenerateRequest{Prompt: prompt, JSON: true, Temperature: 0.7})
	if err != nil {
		return err
	}
	if res.Blocked {
		return errors.New("response blocked")
	}
	if err := json.Unmarshal([]byte(cleanJSON(res.Text)), out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// FormatResponses renders responses for the theme prompt, preferring the
// structured summary over the raw conversation.
func FormatResponses(responses []model.Response) string {
	var sb strings.Builder
	for i, r := range responses {
		fmt.Fprintf(&sb, "\n[Response %d]\nUser: %s\n", i+1, r.UserName)
		sum := r.SummaryData.Data()
		if !sum.HasContent() {
			fmt.Fprintf(&sb, "Feedback: %s\n", UserText(r.Conversation))
			continue
		}
		writeList(&sb, "What went well", sum.WentWell)
		writeList(&sb, "Challenges", sum.Challenges)
		writeList(&sb, "Improvement ideas", sum.Improvements)
		writeList(&sb, "Team feedback", sum.TeamFeedback)
		if sum.Sentiment != "" {
			fmt.Fprintf(&sb, "Sentiment: %s\n", sum.Sentiment)
		}
		if sum.Summary != "" {
			fmt.Fprintf(&sb, "Summary: %s\n", sum.Summary)
		}
	}
	return sb.String()
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) > 0 {
		fmt.Fprintf(sb, "%s: %s\n", label, strings.Join(items, ", "))
	}
}

// Compare diffs two sprints' themes and stores the result.
func (a *AnalysisService) Compare(ctx context.Context, currentID, previousID string) (*model.SprintComparison, error) {
	current, err := a.reports.Get(ctx, currentID)
	if err != nil {
		return nil, reportErr(err)
	}
	previous, err := a.reports.Get(ctx, previousID)
	if err != nil {
		return nil, reportErr(err)
	}
	cmp := CompareThemes(current.Themes, previous.Themes)
	cmp.CurrentSprintID = currentID
	cmp.PreviousSprintID = previousID
	cmp.CreatedAt = time.Now().UTC()
	if err := a.reports.SaveComparison(ctx, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func reportErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrReportMissing, err)
	}
	return err
}

// CompareThemes classifies themes as resolved, new or persistent. Success
// themes never count as issues. Results are ordered by theme name.
func CompareThemes(current, previous []model.Theme) model.SprintComparison {
	cur := make(map[string]model.Theme, len(current))
	for _, t := range current {
		cur[t.Name] = t
	}
	prev := make(map[string]model.Theme, len(previous))
	for _, t := range previous {
		prev[t.Name] = t
	}

	resolved := []model.ResolvedIssue{}
	for name, t := range prev {
		if _, ok := cur[name]; !ok && t.Category != model.CategorySuccess {
			resolved = append(resolved, model.ResolvedIssue{Name: name, WasMentionedBy: t.Percentage})
		}
	}
	added := []model.Theme{}
	persistent := []model.PersistentIssue{}
	for name, t := range cur {
		if t.Category == model.CategorySuccess {
			continue
		}
		p, ok := prev[name]
		if !ok {
			added = append(added, t)
			continue
		}
		trend := model.TrendBetter
		if t.Percentage > p.Percentage {
			trend = model.TrendWorse
		}
		persistent = append(persistent, model.PersistentIssue{
			Name:               name,
			Trend:              trend,
			PreviousPercentage: p.Percentage,
			CurrentPercentage:  t.Percentage,
		})
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].Name < resolved[j].Name })
	sort.Slice(added, func(i, j int) bool { return added[i].Name < added[j].Name })
	sort.Slice(persistent, func(i, j int) bool { return persistent[i].Name < persistent[j].Name })

	overall := model.TrendNeedsAttention
	if len(resolved) > len(added) {
		overall = model.TrendImproving
	}
	return model.SprintComparison{
		ImprovementAreas: resolved,
		RegressionAreas:  added,
		PersistentIssues: persistent,
		OverallTrend:     overall,
	}
}
