package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/myrsple/azv-bot/internal/domain"
)

// CreateAssistant creates an assistant from the configured name, instructions and model.
func (s *Service) CreateAssistant(ctx context.Context) (domain.Assistant, error) {
	a, err := s.provider.CreateAssistant(ctx, domain.AssistantSpec{
		Name:         s.config.Assistant.Name,
		Instructions: s.config.Assistant.Instructions,
		Model:        s.config.Assistant.Model,
	})
	if err != nil {
		log.Error().Err(err).Str("op", "CreateAssistant").Msg("provider call failed")
		return domain.Assistant{}, err
	}
	log.Info().Str("assistant_id", a.ID).Msg("assistant created")
	return a, nil
}
