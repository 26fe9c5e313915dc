package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	sdk "github.com/matrixorigin/moi-go-sdk"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Auth     AuthConfig     `yaml:"auth"`
	MOI      MOIConfig      `yaml:"moi"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	PublicURL   string   `yaml:"public_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql | postgres | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	DSN      string `yaml:"dsn"`
	Path     string `yaml:"path"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type LLMConfig struct {
	InterviewProvider string         `yaml:"interview_provider"`
	AnalysisProvider  string         `yaml:"analysis_provider"`
	TimeoutSeconds    int            `yaml:"timeout_seconds"`
	Gemini            ProviderConfig `yaml:"gemini"`
	Groq              ProviderConfig `yaml:"groq"`
	PromptsDir        string         `yaml:"prompts_dir"`
}

type AuthConfig struct {
	SessionSecret     string `yaml:"session_secret"`
	SessionTTLHours   int    `yaml:"session_ttl_hours"`
	CookieSecure      bool   `yaml:"cookie_secure"`
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	JWTSecret         string `yaml:"jwt_secret"`
}

type MOIConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	CatalogID        int64  `yaml:"catalog_id"`
	DatabaseID       int64  `yaml:"database_id"`
	ResponsesTableID int64  `yaml:"responses_table_id"`
	ThemesTableID    int64  `yaml:"themes_table_id"`
}

func Load(configFile string) *Config {
	_ = godotenv.Load()

	c := &Config{
		Server:   ServerConfig{Port: 5000, PublicURL: "http://localhost:5000", CORSOrigins: []string{"*"}},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{Driver: "sqlite", Port: 3306, Name: "sprint_retro", Path: "sprint_retro.db"},
		LLM: LLMConfig{
			InterviewProvider: "gemini",
			AnalysisProvider:  "groq",
			TimeoutSeconds:    60,
			Gemini:            ProviderConfig{Model: "gemini-2.0-flash", BaseURL: "https://generativelanguage.googleapis.com/v1beta"},
			Groq:              ProviderConfig{Model: "llama-3.3-70b-versatile", BaseURL: "https://api.groq.com/openai/v1"},
			PromptsDir:        "prompts",
		},
		Auth: AuthConfig{SessionSecret: "dev-secret-key-change-in-production", SessionTTLHours: 7 * 24, AdminPassword: "admin123"},
		MOI:  MOIConfig{BaseURL: "https://freetier-01.cn-hangzhou.cluster.cn-dev.matrixone.tech"},
	}

	paths := []string{"etc/config-dev.yaml", "/etc/sprint-retro/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	c.applyEnv()
	return c
}

func (c *Config) applyEnv() {
	envOverrideInt(&c.Server.Port, "PORT")
	envOverride(&c.Server.PublicURL, "PUBLIC_URL")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")

	envOverride(&c.Database.Driver, "DB_DRIVER")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASS")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Database.DSN, "DB_DSN")
	envOverride(&c.Database.Path, "DB_PATH")

	envOverride(&c.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	envOverride(&c.LLM.Gemini.Model, "GEMINI_MODEL")
	envOverride(&c.LLM.Groq.APIKey, "GROQ_API_KEY")
	envOverride(&c.LLM.Groq.Model, "GROQ_MODEL")
	envOverride(&c.LLM.InterviewProvider, "INTERVIEW_PROVIDER")
	envOverride(&c.LLM.AnalysisProvider, "ANALYSIS_PROVIDER")
	envOverride(&c.LLM.PromptsDir, "PROMPTS_DIR")

	envOverride(&c.Auth.SessionSecret, "FLASK_SECRET_KEY")
	envOverride(&c.Auth.SessionSecret, "SESSION_SECRET")
	envOverride(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	envOverride(&c.Auth.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	envOverride(&c.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	envOverride(&c.Auth.JWTSecret, "AUTH_JWT_SECRET")

	envOverride(&c.MOI.BaseURL, "MOI_BASE_URL")
	envOverride(&c.MOI.APIKey, "MOI_API_KEY")
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

// Dialector picks the gorm driver for the configured database.
func (c *Config) Dialector() (gorm.Dialector, error) {
	switch strings.ToLower(c.Database.Driver) {
	case "mysql":
		cfg := gomysql.NewConfig()
		cfg.User = c.Database.User
		cfg.Passwd = c.Database.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
		cfg.DBName = c.Database.Name
		cfg.ParseTime = true

		connector, err := gomysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("create connector: %w", err)
		}
		sqlDB := sql.OpenDB(connector)
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("ping db: %w", err)
		}
		return mysql.New(mysql.Config{Conn: sqlDB}), nil
	case "postgres", "postgresql":
		dsn := c.Database.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name)
		}
		return postgres.Open(dsn), nil
	case "sqlite", "":
		path := c.Database.Path
		if c.Database.DSN != "" {
			path = c.Database.DSN
		}
		return sqlite.Open(path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	dialector, err := c.Dialector()
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// MOIEnabled reports whether warehouse sync has enough configuration to run.
func (c *Config) MOIEnabled() bool {
	return c.MOI.APIKey != "" && c.MOI.DatabaseID != 0 && c.MOI.ResponsesTableID != 0
}

func (c *Config) NewRawClient() (*sdk.RawClient, error) {
	return sdk.NewRawClient(c.MOI.BaseURL, c.MOI.APIKey)
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
