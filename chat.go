package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v2"

	"github.com/myrsple/azv-bot/internal/adapter/chatapi"
	"github.com/myrsple/azv-bot/internal/chatcli"
	"github.com/myrsple/azv-bot/internal/config"
	"github.com/myrsple/azv-bot/internal/conversation"
	"github.com/myrsple/azv-bot/internal/logging"
)

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with the assistant through a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Base URL of the server (overrides AZV_API_URL)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("api-url") {
				cfg.Chat.APIURL = c.String("api-url")
			}
			if cfg.Poll.Interval <= 0 {
				return fmt.Errorf("poll interval must be positive, got %s", cfg.Poll.Interval)
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Format)

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := chatapi.NewClient(cfg.Chat.APIURL)
			poller := conversation.NewPoller(client, clockwork.NewRealClock(), cfg.Poll.Interval, cfg.Poll.MaxWait)
			session := conversation.NewSession(client, poller)

			repl := chatcli.New(session, os.Stdin, os.Stdout, cfg.Chat.UserLabel, cfg.Chat.AssistantLabel)
			return repl.Run(ctx)
		},
	}
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:      "init-config",
		Usage:     "Write a sample configuration file",
		ArgsUsage: "[FILE]",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				path = "azv-bot.toml"
			}
			if err := config.InitConfig(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}
