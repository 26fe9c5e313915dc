// Command catalog_init prepares the MOI catalog that submitted responses and
// report themes are synced into.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/Lavindu17/ai-project-l2/internal/config"
	"github.com/Lavindu17/ai-project-l2/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	dbName := flag.String("database", "sprint_retro", "catalog database name")
	flag.Parse()

	logger.Init(config.LogConfig{Level: "info", Console: true})

	cfg := config.Load(*configFile)
	client, err := cfg.NewRawClient()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	catalogID := sdk.CatalogID(cfg.MOI.CatalogID)
	if catalogID == 0 {
		catalogID = 1
	}

	dbID, tables, err := initCatalog(ctx, client, catalogID, *dbName)
	if err != nil {
		log.Fatal("catalog init failed: ", err)
	}

	if err := initKnowledge(ctx, client); err != nil {
		log.Fatal("knowledge init failed: ", err)
	}

	// the server reads these from moi.database_id / responses_table_id / themes_table_id
	logger.Info("catalog ready", "database_id", dbID,
		"responses_table_id", tables["responses"], "themes_table_id", tables["report_themes"])
}
