package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/sinking-island/game/engine"
)

// shortcuts are one-letter aliases accepted by play.
var shortcuts = map[string]engine.Action{
	"w": engine.ActionMoveUp,
	"s": engine.ActionMoveDown,
	"a": engine.ActionMoveLeft,
	"d": engine.ActionMoveRight,
	"h": engine.ActionShoreUpHere,
	"c": engine.ActionCollectArtifact,
	"x": engine.ActionEscape,
	"e": engine.ActionEndTurn,
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play one island in the terminal",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "seed", Usage: "island seed (random when unset)", Sources: cli.EnvVars("DEFAULT_SEED")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			seed := cmd.Int64("seed")
			if !cmd.IsSet("seed") {
				seed = time.Now().UnixNano()
			}
			fmt.Fprintf(cmd.Root().Writer, "Seed %d\n", seed)
			return runPlay(ctx, engine.NewEngineWithSeed(seed), cmd.Root().Reader, cmd.Root().Writer)
		},
	}
}

// runPlay reads one command per line until the game is decided, the input
// ends or the player quits.
func runPlay(ctx context.Context, eng engine.Engine, in io.Reader, out io.Writer) error {
	fmt.Fprint(out, engine.Render(eng.State()))
	fmt.Fprintf(out, "Legend: %s\n", engine.Legend())
	printPlayHelp(out)

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			fmt.Fprintln(out, "Bye")
			return nil
		case "?", "help":
			printPlayHelp(out)
			continue
		}

		action, ok := shortcuts[line]
		if !ok {
			action, ok = engine.ParseAction(line)
		}
		if !ok {
			fmt.Fprintf(out, "Unknown command %q, type help\n", line)
			continue
		}

		outcome := eng.Apply(action)
		if !outcome.Applied {
			fmt.Fprintf(out, "%s rejected: %s\n", action, outcome.Message())
			continue
		}
		if action == engine.ActionEndTurn {
			for _, d := range eng.LastFloods() {
				fmt.Fprintf(out, "  region %d: %v %s → %s\n", d.Region, d.Position, d.Before, d.After)
			}
		}
		fmt.Fprint(out, engine.Render(eng.State()))

		if eng.Status() != engine.InProgress {
			return nil
		}
	}
}

func printPlayHelp(out io.Writer) {
	names := make([]string, len(engine.Actions))
	for i, a := range engine.Actions {
		names[i] = string(a)
	}
	fmt.Fprintf(out, "Commands: %s\n", strings.Join(names, ", "))
	fmt.Fprintln(out, "Shortcuts: w/a/s/d move, h shore up here, c collect, x escape, e end turn, q quit")
}
