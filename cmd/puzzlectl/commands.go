package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/slidepuzzle/game/config"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/transport/web"
)

func levelFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "level",
		Aliases: []string{"l"},
		Value:   engine.MinLevel,
		Usage:   fmt.Sprintf("level number (%d-%d)", engine.MinLevel, engine.MaxLevel),
	}
}

func tilesCommand() *cli.Command {
	return &cli.Command{
		Name:  "tiles",
		Usage: "print the solved order of a level with its image names",
		Flags: []cli.Flag{levelFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			printTiles(cmd.Root().Writer, int(cmd.Int("level")))
			return nil
		},
	}
}

func printTiles(w io.Writer, level int) {
	assets := web.NewAssetResolver("").Level(level)
	fmt.Fprintf(w, "%s\nreference: %s\n", assets.Title, assets.Reference)
	for _, t := range assets.Tiles {
		if t.Blank {
			fmt.Fprintf(w, "%3d  %-6s\n", t.Index, engine.Blank)
			continue
		}
		fmt.Fprintf(w, "%3d  %-6s %s\n", t.Index, t.Tile, t.URL)
	}
}

func shuffleCommand() *cli.Command {
	return &cli.Command{
		Name:  "shuffle",
		Usage: "draw a shuffled board",
		Flags: []cli.Flag{
			levelFlag(),
			&cli.IntFlag{Name: "seed", Usage: "seed for a reproducible draw (0 = random)"},
			&cli.BoolFlag{Name: "solvable", Usage: "redraw until the board can be solved by sliding"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			if seed := uint64(cmd.Int("seed")); seed != 0 {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			return printShuffle(cmd.Root().Writer, int(cmd.Int("level")), cmd.Bool("solvable"), rng)
		},
	}
}

func printShuffle(w io.Writer, level int, solvable bool, rng *rand.Rand) error {
	n := engine.GridSize(level)
	canonical := engine.TilesForLevel(n)
	board, err := engine.NewBoard(canonical)
	if err != nil {
		return err
	}
	for {
		board.Initialize(rng)
		if !board.IsSolved() && (!solvable || engine.IsSolvable(canonical, board.Tiles())) {
			break
		}
	}

	fmt.Fprintln(w, engine.LevelTitle(level))
	fmt.Fprint(w, renderPlain(board.Tiles(), n))
	fmt.Fprintf(w, "blank: %d  movable: %v  solvable: %t\n",
		board.BlankIndex(), board.MovableIndexes(), engine.IsSolvable(canonical, board.Tiles()))
	return nil
}

// renderPlain prints tile labels row by row.
func renderPlain(tiles []engine.Tile, n int) string {
	var b strings.Builder
	for i, t := range tiles {
		fmt.Fprintf(&b, "%3s", label(t))
		if (i+1)%n == 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func label(t engine.Tile) string {
	if t == engine.Blank {
		return "__"
	}
	s := string(t)
	return s[strings.LastIndex(s, "-")+1:]
}

func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".json", ".yaml", ".yml":
			if !e.IsDir() {
				files = append(files, e.Name())
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check every configuration file in a directory",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = cmd.String("config-dir")
			}
			return validateDir(cmd.Root().Writer, dir)
		},
	}
}

// validateDir loads each config through the config manager, which parses
// and validates it, and reports one line per file.
func validateDir(w io.Writer, dir string) error {
	files, err := configFiles(dir)
	if err != nil {
		return err
	}
	mgr, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	invalid := 0
	for _, name := range files {
		cfg, err := mgr.LoadConfig(name)
		if err != nil {
			invalid++
			fmt.Fprintf(w, "✗ %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "✓ %s (%s, %s per level)\n", name, cfg.Name, engine.FormatClock(cfg.TimeLimitSeconds))
	}

	fmt.Fprintf(w, "\n%d files, %d invalid\n", len(files), invalid)
	if invalid > 0 {
		return fmt.Errorf("%d invalid configuration file(s) in %s", invalid, dir)
	}
	return nil
}

func configsCommand() *cli.Command {
	return &cli.Command{
		Name:  "configs",
		Usage: "summarize the available configurations",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return summarizeConfigs(cmd.Root().Writer, cmd.String("config-dir"))
		},
	}
}

func summarizeConfigs(w io.Writer, dir string) error {
	mgr, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	configs, err := mgr.ListConfigs()
	if err != nil {
		return err
	}
	log.Debug("Loaded configs", "dir", dir, "count", len(configs))

	for _, c := range configs {
		recovery := fmt.Sprintf("recoverable from level %d", c.RecoverableFromLevel)
		if c.RecoverableFromLevel > engine.MaxLevel {
			recovery = "never recoverable"
		}
		fmt.Fprintf(w, "=== %s (%s) ===\n", c.ConfigID, c.Filename)
		fmt.Fprintf(w, "%s\n", c.Description)
		fmt.Fprintf(w, "time limit %s, %s, %d question(s), skip %t, auto-solve %t\n\n",
			engine.FormatClock(c.TimeLimitSeconds), recovery, c.QuestionCount, c.AllowSkip, c.AllowAutoSolve)
	}
	return nil
}
