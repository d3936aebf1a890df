package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/myrsple/azv-bot/internal/adapter/assistant"
	"github.com/myrsple/azv-bot/internal/config"
	"github.com/myrsple/azv-bot/internal/logging"
	"github.com/myrsple/azv-bot/internal/policy"
	"github.com/myrsple/azv-bot/internal/repository"
	"github.com/myrsple/azv-bot/internal/service"
	transporthttp "github.com/myrsple/azv-bot/internal/transport/http"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides PORT)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("port") {
				cfg.Server.Port = c.Int("port")
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Format)

			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.URL).
		Str("allowed_origin", cfg.Server.AllowedOrigin).
		Bool("mock", cfg.MockMode()).
		Msg("starting azv-bot server")

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy, cfg.Policy.MaxMessageLength)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	svc := service.New(assistant.NewProvider(cfg), db, policyEngine, cfg)

	if cfg.OpenAI.AssistantID == "" {
		if cfg.MockMode() {
			a, err := svc.CreateAssistant(ctx)
			if err != nil {
				return err
			}
			cfg.OpenAI.AssistantID = a.ID
		} else {
			log.Warn().Msg("OPENAI_ASSISTANT_ID is not set, runs will fail")
		}
	}

	go svc.RunSlotMonitor(ctx)

	e := transporthttp.NewServer(svc, cfg)
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Msgf("API started on port %d", cfg.Server.Port)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info().Msg("shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("failed to shut down server gracefully")
	}

	log.Info().Msg("server stopped")
	return nil
}
