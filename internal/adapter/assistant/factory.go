package assistant

import (
	"github.com/rs/zerolog/log"

	"github.com/myrsple/azv-bot/internal/config"
)

// NewProvider creates a Provider based on the configured mode.
// In MOCK mode it returns a MockClient; otherwise an OpenAIClient.
func NewProvider(cfg *config.Config) Provider {
	if cfg.MockMode() {
		log.Warn().Msg("AZV_MODE=MOCK detected, using mock assistant provider")
		return NewMockClient()
	}

	return NewOpenAIClient(Options{
		APIKey:        cfg.OpenAI.APIKey,
		BaseURL:       cfg.OpenAI.BaseURL,
		Timeout:       cfg.OpenAI.Timeout,
		RatePerSecond: cfg.OpenAI.RatePerSecond,
		Burst:         cfg.OpenAI.Burst,
	})
}
