package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrsple/azv-bot/internal/domain"
)

// clearEnv blanks every supported variable; blank values are skipped by Load.
func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:5173", cfg.Server.AllowedOrigin)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, time.Duration(0), cfg.Poll.MaxWait)
	assert.Equal(t, "Knowledge Base Assistant", cfg.Assistant.Name)
	assert.Equal(t, 4000, cfg.Policy.MaxMessageLength)
	assert.False(t, cfg.MockMode())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8088")
	t.Setenv("FRONTEND_URL", "https://chat.example.org")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_ASSISTANT_ID", "asst_123")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("POLL_MAX_WAIT", "2m")
	t.Setenv("AZV_MODE", "mock")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "https://chat.example.org", cfg.Server.AllowedOrigin)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "asst_123", cfg.OpenAI.AssistantID)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Poll.MaxWait)
	assert.True(t, cfg.MockMode())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "azv-bot.toml")
	content := `
[server]
port = 4000

[openai]
assistant_id = "asst_file"

[poll]
interval = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("OPENAI_ASSISTANT_ID", "asst_env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "asst_env", cfg.OpenAI.AssistantID)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "OPENAI_API_KEY", cfgErr.Key)

	cfg.Mode = ModeMock
	assert.NoError(t, cfg.Validate())

	cfg.Monitor.Interval = 0
	assert.Error(t, cfg.Validate())

	cfg.Monitor.Interval = time.Second
	cfg.Poll.Interval = 0
	assert.Error(t, cfg.Validate())
}

func TestInitConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "azv-bot.toml")
	require.NoError(t, InitConfig(path))
	assert.Error(t, InitConfig(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "asst_...", cfg.OpenAI.AssistantID)
}
