package service

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

func sampleReport() (model.Sprint, model.AnalysisReport) {
	sp := model.Sprint{ID: "sp1", Name: "Sprint 4", StartDate: "2026-02-02", EndDate: "2026-02-13"}
	r := model.AnalysisReport{
		SprintID: "sp1",
		Themes: []model.Theme{
			{Name: "Slow | deploys", Category: "Challenge", Percentage: 60, Description: "Pipelines took long", Quotes: []string{"CI is slow"}},
			{Name: "Pairing", Category: model.CategorySuccess, Percentage: 40},
		},
		Recommendations: []model.RecommendationGroup{
			{Theme: "Slow deploys", Priority: "high", Actions: []string{"Cache builds", "Split tests"}, ExpectedImpact: "Faster feedback"},
		},
		SentimentSummary: datatypes.NewJSONType(model.SentimentSummary{OverallMood: "positive", PositivePercentage: 60, AverageScore: 0.25}),
	}
	return sp, r
}

func TestExportFormats(t *testing.T) {
	sp, r := sampleReport()
	e := NewReportExporter()

	out, err := e.Export("", sp, r)
	require.NoError(t, err)
	assert.Equal(t, "application/json", out.ContentType)
	assert.Equal(t, "sprint_sp1_report.json", out.FileName)
	var decoded model.AnalysisReport
	require.NoError(t, json.Unmarshal(out.Data, &decoded))
	assert.Len(t, decoded.Themes, 2)

	out, err = e.Export("MD", sp, r)
	require.NoError(t, err)
	md := string(out.Data)
	assert.Contains(t, md, "# Retrospective: Sprint 4")
	assert.Contains(t, md, `| Slow \| deploys | Challenge | 60.0% |`)
	assert.Contains(t, md, "> CI is slow")
	assert.Contains(t, md, "- Cache builds")

	out, err = e.Export("html", sp, r)
	require.NoError(t, err)
	assert.Contains(t, string(out.Data), "<h1")
	assert.Contains(t, string(out.Data), "<table>")

	out, err = e.Export("pdf", sp, r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF")))
	assert.Equal(t, "sprint_sp1_report.pdf", out.FileName)

	_, err = e.Export("docx", sp, r)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExportHTMLDropsMarkup(t *testing.T) {
	sp, r := sampleReport()
	sp.Name = `<img src=x onerror="alert(2)">`
	r.Themes[0].Description = "<script>alert(1)</script>"
	r.Themes[0].Quotes = []string{`<iframe src="https://evil.test"></iframe> and [click](javascript:alert(3))`}

	out, err := NewReportExporter().Export("html", sp, r)
	require.NoError(t, err)
	page := string(out.Data)
	assert.NotContains(t, page, "<script>")
	assert.NotContains(t, page, "<iframe")
	assert.NotContains(t, page, "<img")
	assert.NotContains(t, page, `href="javascript:`)
	assert.Contains(t, page, "&lt;img src=x")
}

func TestExportXLSX(t *testing.T) {
	sp, r := sampleReport()
	out, err := NewReportExporter().Export("xlsx", sp, r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Themes", "Recommendations", "Sentiment"}, f.GetSheetList())
	rows, err := f.GetRows("Recommendations")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus one row per action")
	name, err := f.GetCellValue("Themes", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Slow | deploys", name)
}

func TestReportMarkdownEmpty(t *testing.T) {
	md := ReportMarkdown(model.Sprint{Name: "S"}, model.AnalysisReport{})
	assert.Contains(t, md, "_No themes identified._")
	assert.Contains(t, md, "_No recommendations._")
}

func TestCatalogEscape(t *testing.T) {
	assert.Equal(t, "plain", esc("plain"))
	assert.Equal(t, `"a,b"`, esc("a,b"))
	assert.Equal(t, `"say ""hi"""`, esc(`say "hi"`))
	assert.Equal(t, "\"two\nlines\"", esc("two\nlines"))
}
