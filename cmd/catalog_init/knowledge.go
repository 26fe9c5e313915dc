package main

import (
	"context"

	"github.com/Lavindu17/ai-project-l2/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// retroKnowledge teaches NL2SQL the retrospective vocabulary.
var retroKnowledge = []sdk.NL2SQLKnowledgeCreateRequest{
	{Type: "glossary", Key: "response", Value: []string{"a row in responses: one team member's submitted retrospective feedback for a sprint"}},
	{Type: "glossary", Key: "theme", Value: []string{"a row in report_themes: a recurring topic found by analyzing a sprint's responses"}},
	{Type: "glossary", Key: "anonymous", Value: []string{"responses.is_anonymous = true; user_name is then 'Anonymous'"}},

	{Type: "synonyms", Key: "mood/feeling/morale", Value: []string{"sentiment of a response"}, AssociateTables: []string{"responses,sentiment"}},
	{Type: "synonyms", Key: "who/person/member", Value: []string{"name of the submitter"}, AssociateTables: []string{"responses,user_name"}},
	{Type: "synonyms", Key: "topic/issue/problem", Value: []string{"theme name"}, AssociateTables: []string{"report_themes,name"}},

	{Type: "logic", Key: "challenges are themes with category 'challenge'; wins are themes with category 'success'", Value: []string{"report_themes.category"}},
	{Type: "logic", Key: "a sprint's latest analysis is the report_themes rows with the greatest analyzed_at for that sprint_id", Value: []string{"re-running analysis appends a new batch of rows"}},

	{Type: "case_library", Key: "which challenges came up most often", Value: []string{"SELECT name, COUNT(*) AS sprints, AVG(percentage) AS avg_share FROM report_themes WHERE category = 'challenge' GROUP BY name ORDER BY sprints DESC, avg_share DESC LIMIT 10"}},
	{Type: "case_library", Key: "how many negative responses per sprint", Value: []string{"SELECT sprint_id, COUNT(*) AS negative FROM responses WHERE sentiment = 'negative' GROUP BY sprint_id"}},
}

func initKnowledge(ctx context.Context, client *sdk.RawClient) error {
	for _, k := range retroKnowledge {
		resp, err := client.CreateKnowledge(ctx, &k)
		if err != nil {
			if isDuplicate(err) {
				logger.Info("knowledge: already exists, skipping", "type", k.Type, "key", k.Key)
				continue
			}
			return err
		}
		logger.Info("knowledge: created", "type", k.Type, "key", k.Key, "id", resp.ID)
	}
	return nil
}
