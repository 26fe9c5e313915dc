package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"
)

// Export is a rendered report ready to be sent as a download.
type Export struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ReportExporter renders an analysis report as json, xlsx, pdf, md or html.
type ReportExporter struct{}

func NewReportExporter() *ReportExporter { return &ReportExporter{} }

func (e *ReportExporter) Export(format string, sp model.Sprint, r model.AnalysisReport) (*Export, error) {
	base := fmt.Sprintf("sprint_%s_report", sp.ID)
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return &Export{Data: data, ContentType: "application/json", FileName: base + ".json"}, nil
	case "xlsx":
		data, err := reportXLSX(r)
		if err != nil {
			return nil, err
		}
		return &Export{Data: data, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FileName: base + ".xlsx"}, nil
	case "pdf":
		data, err := reportPDF(sp, r)
		if err != nil {
			return nil, err
		}
		return &Export{Data: data, ContentType: "application/pdf", FileName: base + ".pdf"}, nil
	case "md", "markdown":
		return &Export{Data: []byte(ReportMarkdown(sp, r)), ContentType: "text/markdown; charset=utf-8", FileName: base + ".md"}, nil
	case "html":
		return &Export{Data: reportHTML(sp, r), ContentType: "text/html; charset=utf-8", FileName: base + ".html"}, nil
	}
	return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, format)
}

// ReportMarkdown renders the report as a markdown document.
func ReportMarkdown(sp model.Sprint, r model.AnalysisReport) string {
	var sb strings.Builder
	s := r.SentimentSummary.Data()

	fmt.Fprintf(&sb, "# Retrospective: %s\n\n", sp.Name)
	fmt.Fprintf(&sb, "%s to %s\n\n", sp.StartDate, sp.EndDate)

	sb.WriteString("## Sentiment\n\n")
	fmt.Fprintf(&sb, "- Overall mood: **%s**\n", s.OverallMood)
	fmt.Fprintf(&sb, "- Positive: %.1f%%\n- Neutral: %.1f%%\n- Negative: %.1f%%\n", s.PositivePercentage, s.NeutralPercentage, s.NegativePercentage)
	fmt.Fprintf(&sb, "- Average score: %.2f (median %.2f)\n\n", s.AverageScore, s.MedianScore)

	sb.WriteString("## Themes\n\n")
	if len(r.Themes) == 0 {
		sb.WriteString("_No themes identified._\n\n")
	} else {
		sb.WriteString("| Theme | Category | Share |\n|---|---|---|\n")
		for _, t := range r.Themes {
			fmt.Fprintf(&sb, "| %s | %s | %.1f%% |\n", mdCell(t.Name), mdCell(t.Category), t.Percentage)
		}
		sb.WriteString("\n")
		for _, t := range r.Themes {
			if t.Description == "" && len(t.Quotes) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "### %s\n\n", t.Name)
			if t.Description != "" {
				sb.WriteString(t.Description + "\n\n")
			}
			for _, q := range t.Quotes {
				fmt.Fprintf(&sb, "> %s\n\n", q)
			}
		}
	}

	sb.WriteString("## Recommendations\n\n")
	if len(r.Recommendations) == 0 {
		sb.WriteString("_No recommendations._\n")
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&sb, "### %s (%s priority)\n\n", rec.Theme, rec.Priority)
		for _, a := range rec.Actions {
			fmt.Fprintf(&sb, "- %s\n", a)
		}
		if rec.ExpectedImpact != "" {
			fmt.Fprintf(&sb, "\n_Expected impact:_ %s\n", rec.ExpectedImpact)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func mdCell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

// reportHTML drops raw html from report text and only keeps links with
// safe schemes. Smartypants passes the page title through unescaped.
func reportHTML(sp model.Sprint, r model.AnalysisReport) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: stdhtml.EscapeString("Retrospective: " + sp.Name),
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML | html.Safelink,
	})
	return markdown.ToHTML([]byte(ReportMarkdown(sp, r)), p, renderer)
}

func reportXLSX(r model.AnalysisReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Themes"); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	rows := [][]interface{}{{"Theme", "Category", "Percentage", "Mentions", "Description"}}
	for _, t := range r.Themes {
		rows = append(rows, []interface{}{t.Name, t.Category, t.Percentage, t.MentionCount, t.Description})
	}
	if err := writeRows(f, "Themes", rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Recommendations"); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	rows = [][]interface{}{{"Theme", "Priority", "Action", "Expected impact"}}
	for _, rec := range r.Recommendations {
		for _, a := range rec.Actions {
			rows = append(rows, []interface{}{rec.Theme, rec.Priority, a, rec.ExpectedImpact})
		}
	}
	if err := writeRows(f, "Recommendations", rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Sentiment"); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	s := r.SentimentSummary.Data()
	rows = [][]interface{}{
		{"Metric", "Value"},
		{"Overall mood", s.OverallMood},
		{"Positive %", s.PositivePercentage},
		{"Neutral %", s.NeutralPercentage},
		{"Negative %", s.NegativePercentage},
		{"Average score", s.AverageScore},
		{"Median score", s.MedianScore},
	}
	if err := writeRows(f, "Sentiment", rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx %s: %w", sheet, err)
		}
	}
	return nil
}

func reportPDF(sp model.Sprint, r model.AnalysisReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Retrospective: "+sp.Name))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("%s to %s", sp.StartDate, sp.EndDate))
	pdf.Ln(12)

	s := r.SentimentSummary.Data()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Sentiment")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("Overall mood: %s\nPositive %.1f%%, neutral %.1f%%, negative %.1f%%\nAverage score %.2f, median %.2f",
		s.OverallMood, s.PositivePercentage, s.NeutralPercentage, s.NegativePercentage, s.AverageScore, s.MedianScore), "", "", false)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Themes")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	if len(r.Themes) == 0 {
		pdf.Cell(0, 8, "  - No themes identified.")
		pdf.Ln(8)
	}
	for _, t := range r.Themes {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, tr(fmt.Sprintf("%s  [%s, %.1f%%]", t.Name, t.Category, t.Percentage)))
		pdf.Ln(6)
		if t.Description != "" {
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 5, tr(t.Description), "", "", false)
		}
		pdf.Ln(2)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Recommendations")
	pdf.Ln(8)
	for _, rec := range r.Recommendations {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, tr(fmt.Sprintf("%s (%s priority)", rec.Theme, rec.Priority)))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		for _, a := range rec.Actions {
			pdf.MultiCell(0, 5, tr("- "+a), "", "", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}
