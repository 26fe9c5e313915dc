package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/Lavindu17/ai-project-l2/internal/config"
	"github.com/Lavindu17/ai-project-l2/internal/handler"
	"github.com/Lavindu17/ai-project-l2/internal/logger"
	"github.com/Lavindu17/ai-project-l2/internal/middleware"
	"github.com/Lavindu17/ai-project-l2/internal/model"
	"github.com/Lavindu17/ai-project-l2/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sdk "github.com/matrixorigin/moi-go-sdk"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "driver", cfg.Database.Driver, "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	interviewLLM, err := service.NewProvider(cfg.LLM.InterviewProvider, cfg.LLM)
	if err != nil {
		slog.Error("interview provider", "err", err)
		os.Exit(1)
	}
	analysisLLM, err := service.NewProvider(cfg.LLM.AnalysisProvider, cfg.LLM)
	if err != nil {
		slog.Error("analysis provider", "err", err)
		os.Exit(1)
	}
	slog.Info("llm providers", "interview", interviewLLM.Name(), "analysis", analysisLLM.Name())

	var catalogSync *service.CatalogSync
	if cfg.MOIEnabled() {
		raw, err := cfg.NewRawClient()
		if err != nil {
			slog.Warn("sdk client init failed", "err", err)
		} else {
			catalogSync = service.NewCatalogSync(raw, service.CatalogTables{
				DatabaseID: sdk.DatabaseID(cfg.MOI.DatabaseID),
				Responses:  sdk.TableID(cfg.MOI.ResponsesTableID),
				Themes:     sdk.TableID(cfg.MOI.ThemesTableID),
			})
			slog.Info("catalog sync enabled", "database_id", cfg.MOI.DatabaseID)
		}
	}

	prompts := service.NewPromptAssembler(cfg.LLM.PromptsDir)
	sprintSvc := service.NewSprintService(db)
	teamSvc := service.NewTeamService(db)
	projectSvc := service.NewProjectService(db)
	sessionSvc := service.NewSessionService(db)
	responseSvc := service.NewResponseService(db)
	reportSvc := service.NewReportService(db)
	authSvc := service.NewAuthService(cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret)
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwt_secret is unset: user tokens are not verified and leader logins get no admin rights")
	}
	analysisSvc := service.NewAnalysisService(sprintSvc, responseSvc, reportSvc, analysisLLM, prompts)
	if catalogSync != nil {
		analysisSvc.SetCatalogSync(catalogSync)
	}

	cookies := middleware.NewSessions(cfg.Auth.SessionSecret, cfg.SessionTTL(), cfg.Auth.CookieSecure)

	r := gin.New()
	r.Use(gin.Recovery(), logger.AccessLog())
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	r.Use(cookies.Load())

	chatH := handler.NewChatHandler(handler.ChatServices{
		Sprints:     sprintSvc,
		Team:        teamSvc,
		Sessions:    sessionSvc,
		Responses:   responseSvc,
		Interviewer: service.NewInterviewer(interviewLLM, prompts),
		Summarizer:  service.NewSummarizer(analysisLLM),
		Catalog:     catalogSync,
	}, cookies)
	analysisH := handler.NewAnalysisHandler(analysisSvc, sprintSvc, reportSvc, service.NewReportExporter())

	handler.Register(r, db, handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, cookies),
		Admin:    handler.NewAdminHandler(sprintSvc, projectSvc),
		Sprint:   handler.NewSprintHandler(sprintSvc, teamSvc, cfg.Server.PublicURL),
		Project:  handler.NewProjectHandler(projectSvc, sprintSvc, teamSvc),
		Chat:     chatH,
		Analysis: analysisH,
	})

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}

// corsConfig allows credentialed requests. A wildcard origin list echoes the
// caller's origin back, since browsers reject "*" with credentials.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RenewHeader, "Content-Disposition"},
		AllowCredentials: true,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}
