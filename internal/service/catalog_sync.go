package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

// CatalogTables names the warehouse tables rows are appended to.
type CatalogTables struct {
	DatabaseID sdk.DatabaseID
	Responses  sdk.TableID
	Themes     sdk.TableID
}

// CatalogSync copies submitted responses and report themes into a MOI
// catalog so they can be queried with NL2SQL. Every call is best effort.
type CatalogSync struct {
	raw    *sdk.RawClient
	sdk    *sdk.SDKClient
	tables CatalogTables
}

func NewCatalogSync(raw *sdk.RawClient, tables CatalogTables) *CatalogSync {
	return &CatalogSync{raw: raw, sdk: sdk.NewSDKClient(raw), tables: tables}
}

// SyncResponse appends one row to the responses table:
// id, sprint_id, user_name, is_anonymous, sentiment, summary, created_at.
func (s *CatalogSync) SyncResponse(ctx context.Context, r model.Response) {
	if s.tables.Responses == 0 {
		return
	}
	sum := r.SummaryData.Data()
	csv := fmt.Sprintf("%s,%s,%s,%t,%s,%s,%s\n",
		r.ID, r.SprintID, esc(r.UserName), r.IsAnonymous, esc(sum.Sentiment), esc(sum.Summary),
		r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	s.importCSV(ctx, s.tables.Responses, csv, fmt.Sprintf("response_%s.csv", r.ID),
		[]sdk.FileAndTableColumnMapping{
			{TableColumn: "id", Column: "id", ColNumInFile: 1},
			{TableColumn: "sprint_id", Column: "sprint_id", ColNumInFile: 2},
			{TableColumn: "user_name", Column: "user_name", ColNumInFile: 3},
			{TableColumn: "is_anonymous", Column: "is_anonymous", ColNumInFile: 4},
			{TableColumn: "sentiment", Column: "sentiment", ColNumInFile: 5},
			{TableColumn: "summary", Column: "summary", ColNumInFile: 6},
			{TableColumn: "created_at", Column: "created_at", ColNumInFile: 7},
		})
}

// SyncReportThemes appends one row per theme:
// sprint_id, name, category, percentage, description, analyzed_at.
func (s *CatalogSync) SyncReportThemes(ctx context.Context, sprintID string, themes []model.Theme) {
	if s.tables.Themes == 0 || len(themes) == 0 {
		return
	}
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	var buf bytes.Buffer
	for _, t := range themes {
		fmt.Fprintf(&buf, "%s,%s,%s,%.1f,%s,%s\n",
			sprintID, esc(t.Name), esc(t.Category), t.Percentage, esc(t.Description), now)
	}
	s.importCSV(ctx, s.tables.Themes, buf.String(), fmt.Sprintf("themes_%s.csv", sprintID),
		[]sdk.FileAndTableColumnMapping{
			{TableColumn: "sprint_id", Column: "sprint_id", ColNumInFile: 1},
			{TableColumn: "name", Column: "name", ColNumInFile: 2},
			{TableColumn: "category", Column: "category", ColNumInFile: 3},
			{TableColumn: "percentage", Column: "percentage", ColNumInFile: 4},
			{TableColumn: "description", Column: "description", ColNumInFile: 5},
			{TableColumn: "analyzed_at", Column: "analyzed_at", ColNumInFile: 6},
		})
}

func (s *CatalogSync) importCSV(ctx context.Context, tableID sdk.TableID, csv, fileName string, mapping []sdk.FileAndTableColumnMapping) {
	resp, err := s.raw.UploadLocalFile(ctx, bytes.NewReader([]byte(csv)), fileName, []sdk.FileMeta{{Filename: fileName, Path: "/"}})
	if err != nil {
		slog.Warn("catalog sync: upload failed", "table", tableID, "err", err)
		return
	}
	if len(resp.ConnFileIds) == 0 {
		slog.Warn("catalog sync: no conn_file_ids", "table", tableID)
		return
	}

	_, err = s.sdk.ImportLocalFileToTable(ctx, &sdk.TableConfig{
		ConnFileIDs:      resp.ConnFileIds,
		NewTable:         false,
		DatabaseID:       s.tables.DatabaseID,
		TableID:          tableID,
		IsColumnName:     false,
		RowStart:         1,
		Conflict:         1,
		ExistedTable:     mapping,
		ExistedTableOpts: sdk.ExistedTableOptions{Method: sdk.ExistedTableOptionAppend},
	})
	if err != nil {
		slog.Warn("catalog sync: import failed", "table", tableID, "err", err)
		return
	}
	slog.Info("catalog sync: ok", "table", tableID, "file", fileName)
}

// esc quotes a CSV field when it needs it.
func esc(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
