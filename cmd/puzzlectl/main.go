// Command puzzlectl is the terminal companion of the slide puzzle server.
//
// Usage:
//
//	puzzlectl tiles --level 3          - solved order and image names of a level
//	puzzlectl shuffle --level 4        - draw a shuffled board
//	puzzlectl validate [dir]           - check every config file in a directory
//	puzzlectl configs                  - summarize the available configs
//	puzzlectl play --config classic    - play in the terminal
//
// Global flags:
//
//	--config-dir <dir>  - config directory (default: configs, env CONFIG_DIR)
//	--debug             - debug logging
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Error("puzzlectl failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "puzzlectl",
		Usage: "Slide puzzle tools and terminal client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			tilesCommand(),
			shuffleCommand(),
			validateCommand(),
			configsCommand(),
			playCommand(),
		},
	}
}
