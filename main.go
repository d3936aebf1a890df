package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	v1 "github.com/myrsple/azv-bot/internal/transport/http/v1"
)

func main() {
	app := &cli.App{
		Name:    "azv-bot",
		Usage:   "Knowledge base assistant: API proxy server and terminal chat",
		Version: v1.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"AZV_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			chatCommand(),
			initConfigCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
