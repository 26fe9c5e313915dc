package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lavindu17/ai-project-l2/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

type tableSpec struct {
	name    string
	comment string
	columns []sdk.Column
}

// catalogTables mirrors the rows written by service.CatalogSync.
var catalogTables = []tableSpec{
	{"responses", "submitted retrospective responses", []sdk.Column{
		{Name: "id", Type: "VARCHAR(36)", IsPk: true, Comment: "response id"},
		{Name: "sprint_id", Type: "VARCHAR(36)", Comment: "sprint the response belongs to"},
		{Name: "user_name", Type: "VARCHAR(100)", Comment: "submitter name, Anonymous when hidden"},
		{Name: "is_anonymous", Type: "BOOLEAN", Comment: "whether the submitter chose anonymity"},
		{Name: "sentiment", Type: "VARCHAR(20)", Comment: "positive, neutral or negative"},
		{Name: "summary", Type: "TEXT", Comment: "AI summary of the conversation"},
		{Name: "created_at", Type: "DATETIME", Comment: "submission time"},
	}},
	{"report_themes", "themes found by sprint analysis", []sdk.Column{
		{Name: "sprint_id", Type: "VARCHAR(36)", Comment: "analyzed sprint"},
		{Name: "name", Type: "VARCHAR(200)", Comment: "theme name"},
		{Name: "category", Type: "VARCHAR(50)", Comment: "success, challenge or improvement"},
		{Name: "percentage", Type: "DECIMAL(5,1)", Comment: "share of responses mentioning the theme"},
		{Name: "description", Type: "TEXT", Comment: "theme description"},
		{Name: "analyzed_at", Type: "DATETIME", Comment: "analysis time"},
	}},
}

// initCatalog creates the database and its tables, skipping what already
// exists. It returns the ids of the tables it created.
func initCatalog(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, map[string]sdk.TableID, error) {
	var dbID sdk.DatabaseID
	dbResp, err := client.CreateDatabase(ctx, &sdk.DatabaseCreateRequest{
		CatalogID:    catalogID,
		DatabaseName: dbName,
		Comment:      "Sprint retrospectives",
	})
	switch {
	case err == nil:
		dbID = dbResp.DatabaseID
		logger.Info("catalog: database created", "id", dbID)
	case isDuplicate(err):
		logger.Info("catalog: database already exists, discovering ID", "name", dbName)
		if dbID, err = discoverDatabaseID(ctx, client, catalogID, dbName); err != nil {
			return 0, nil, err
		}
	default:
		return 0, nil, fmt.Errorf("create database: %w", err)
	}

	ids := make(map[string]sdk.TableID, len(catalogTables))
	for _, t := range catalogTables {
		resp, err := client.CreateTable(ctx, &sdk.TableCreateRequest{
			DatabaseID: dbID,
			Name:       t.name,
			Columns:    t.columns,
			Comment:    t.comment,
		})
		if err != nil {
			if isDuplicate(err) {
				logger.Info("catalog: table already exists, skipping", "name", t.name)
				continue
			}
			return 0, nil, fmt.Errorf("create table %s: %w", t.name, err)
		}
		ids[t.name] = resp.TableID
		logger.Info("catalog: table created", "name", t.name, "id", resp.TableID)
	}
	return dbID, ids, nil
}

func discoverDatabaseID(ctx context.Context, client *sdk.RawClient, catalogID sdk.CatalogID, dbName string) (sdk.DatabaseID, error) {
	resp, err := client.ListDatabases(ctx, &sdk.DatabaseListRequest{CatalogID: catalogID})
	if err != nil {
		return 0, fmt.Errorf("list databases: %w", err)
	}
	for _, db := range resp.List {
		if db.DatabaseName == dbName {
			logger.Info("catalog: database discovered", "id", db.DatabaseID)
			return db.DatabaseID, nil
		}
	}
	return 0, fmt.Errorf("database %s not found in catalog %d", dbName, catalogID)
}

func isDuplicate(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "already exist") || strings.Contains(s, "conflict")
}
