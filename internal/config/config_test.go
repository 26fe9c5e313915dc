package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, "gemini", c.LLM.InterviewProvider)
	assert.Equal(t, "groq", c.LLM.AnalysisProvider)
	assert.Equal(t, ":5000", c.Addr())
	assert.False(t, c.MOIEnabled())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
database:
  driver: postgres
  host: db.internal
llm:
  interview_provider: groq
auth:
  admin_password: from-yaml
`), 0o644))

	t.Setenv("DB_HOST", "db.override")
	t.Setenv("PORT", "9090")
	t.Setenv("FLASK_SECRET_KEY", "legacy")

	c := Load(path)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "postgres", c.Database.Driver)
	assert.Equal(t, "db.override", c.Database.Host)
	assert.Equal(t, "groq", c.LLM.InterviewProvider)
	assert.Equal(t, "from-yaml", c.Auth.AdminPassword)
	assert.Equal(t, "legacy", c.Auth.SessionSecret)
}

func TestSessionSecretPrefersNewName(t *testing.T) {
	t.Setenv("FLASK_SECRET_KEY", "legacy")
	t.Setenv("SESSION_SECRET", "current")

	c := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "current", c.Auth.SessionSecret)
}

func TestEnvOverrideIntIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	n := 3306
	envOverrideInt(&n, "DB_PORT")
	assert.Equal(t, 3306, n)
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	c := &Config{Database: DatabaseConfig{Driver: "oracle"}}
	_, err := c.Dialector()
	assert.Error(t, err)
}
