// Package config provides configuration for the assistant proxy.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/myrsple/azv-bot/internal/domain"
)

// ModeMock selects the in-memory provider.
const ModeMock = "MOCK"

// Config holds the application configuration.
type Config struct {
	// Mode is empty for the real provider or MOCK for the in-memory one.
	Mode string `koanf:"mode"`

	Server struct {
		Port            int           `koanf:"port"`
		AllowedOrigin   string        `koanf:"allowed_origin"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"server"`

	OpenAI struct {
		APIKey        string        `koanf:"api_key"`
		AssistantID   string        `koanf:"assistant_id"`
		BaseURL       string        `koanf:"base_url"`
		Timeout       time.Duration `koanf:"timeout"`
		RatePerSecond float64       `koanf:"rate_per_second"`
		Burst         int           `koanf:"burst"`
	} `koanf:"openai"`

	// Assistant is used by POST /api/assistant.
	Assistant struct {
		Name         string `koanf:"name"`
		Instructions string `koanf:"instructions"`
		Model        string `koanf:"model"`
	} `koanf:"assistant"`

	Poll struct {
		Interval time.Duration `koanf:"interval"`
		// MaxWait of zero polls until a terminal status or cancellation.
		MaxWait time.Duration `koanf:"max_wait"`
	} `koanf:"poll"`

	Monitor struct {
		Interval   time.Duration `koanf:"interval"`
		StaleAfter time.Duration `koanf:"stale_after"`
	} `koanf:"monitor"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Policy struct {
		MaxMessageLength int `koanf:"max_message_length"`
	} `koanf:"policy"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`

	Chat struct {
		APIURL         string `koanf:"api_url"`
		UserLabel      string `koanf:"user_label"`
		AssistantLabel string `koanf:"assistant_label"`
	} `koanf:"chat"`
}

// envKeys maps the supported environment variables to config keys.
var envKeys = map[string]string{
	"AZV_MODE":            "mode",
	"PORT":                "server.port",
	"FRONTEND_URL":        "server.allowed_origin",
	"OPENAI_API_KEY":      "openai.api_key",
	"OPENAI_ASSISTANT_ID": "openai.assistant_id",
	"OPENAI_BASE_URL":     "openai.base_url",
	"OPENAI_TIMEOUT":      "openai.timeout",
	"OPENAI_RATE_LIMIT":   "openai.rate_per_second",
	"POLL_INTERVAL":       "poll.interval",
	"POLL_MAX_WAIT":       "poll.max_wait",
	"DATABASE_URL":        "database.url",
	"LOG_LEVEL":           "log.level",
	"LOG_FORMAT":          "log.format",
	"AZV_API_URL":         "chat.api_url",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mode":                      "",
		"server.port":               3000,
		"server.allowed_origin":     "http://localhost:5173",
		"server.shutdown_timeout":   10 * time.Second,
		"openai.base_url":           "https://api.openai.com/v1",
		"openai.timeout":            30 * time.Second,
		"openai.rate_per_second":    5.0,
		"openai.burst":              5,
		"assistant.name":            "Knowledge Base Assistant",
		"assistant.instructions":    "You are a helpful assistant that provides information from the knowledge base.",
		"assistant.model":           "gpt-4-turbo-preview",
		"poll.interval":             time.Second,
		"poll.max_wait":             time.Duration(0),
		"monitor.interval":          15 * time.Second,
		"monitor.stale_after":       2 * time.Minute,
		"database.url":              "file:azv-bot.db?cache=shared&mode=rwc",
		"policy.max_message_length": 4000,
		"log.level":                 "info",
		"log.format":                "console",
		"chat.api_url":              "http://localhost:3000",
		"chat.user_label":           "Uživatel",
		"chat.assistant_label":      "Vědátor",
	}
}

// Load loads configuration from defaults, an optional TOML file and the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// envValue maps a supported, non-empty variable to its config key.
// Returning an empty key makes koanf skip the variable.
func envValue(name, value string) (string, interface{}) {
	key, ok := envKeys[name]
	if !ok || value == "" {
		return "", nil
	}
	return key, value
}

// MockMode reports whether the in-memory provider is selected.
func (c *Config) MockMode() bool {
	return strings.EqualFold(c.Mode, ModeMock)
}

// Validate checks the settings the server cannot start without.
// A missing assistant id is not fatal here; run start reports it.
func (c *Config) Validate() error {
	if !c.MockMode() && c.OpenAI.APIKey == "" {
		return &domain.ConfigurationError{Key: "OPENAI_API_KEY"}
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Poll.MaxWait < 0 {
		return fmt.Errorf("poll max wait must not be negative, got %s", c.Poll.MaxWait)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %s", c.Monitor.Interval)
	}
	return nil
}

// InitConfig writes a sample configuration file.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}

	sample := `# azv-bot configuration

[server]
port = 3000
allowed_origin = "http://localhost:5173"

[openai]
api_key = "sk-..."
assistant_id = "asst_..."

[poll]
interval = "1s"
max_wait = "0s"
`
	return os.WriteFile(path, []byte(sample), 0o644)
}
