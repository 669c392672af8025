package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/notifyd/internal/stderr"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "notifyd",
		Usage:   "desktop notification daemon with safe markup and theme sounds",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.toml",
				Sources: cli.EnvVars("NOTIFYD_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "override the configured log level (debug, info, warn, error)",
				Sources: cli.EnvVars("NOTIFYD_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			sanitizeCommand(),
			stripCommand(),
			linksCommand(),
			renderCommand(),
			playCommand(),
			sendCommand(),
			historyCommand(),
			tuiCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(stderr.Original(), err)
		os.Exit(1)
	}
}
