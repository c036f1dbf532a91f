// Command analyze prints quick, human-readable heuristics about the islands
// a range of seeds produces. For each seed it measures the shortest route
// start → artifact → heliport and how long the island survives when nobody
// shores anything up, and flags seeds where the waters win before that route
// can be walked.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/sinking-island/game/engine"
)

// SeedReport summarises one island.
type SeedReport struct {
	Seed       int64
	Start      engine.Position
	Artifact   engine.Position
	Heliport   engine.Position
	Flooded    int // tiles flooded before the first move
	RouteMoves int // moves on the shortest dry route, ignoring flooding
	// RouteTurns is the number of turns RouteMoves needs at full budget.
	RouteTurns int
	// IdleTurns is the turn on which an untouched island was lost, or zero
	// if it survived the whole simulation.
	IdleTurns  int
	LossReason engine.LossReason
}

// Tight reports whether the island is lost no later than the turn the
// shortest route finishes.
func (r SeedReport) Tight() bool {
	return r.IdleTurns != 0 && r.IdleTurns <= r.RouteTurns
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Flood heuristics over a range of island seeds",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "from", Usage: "first seed", Value: 1},
			&cli.IntFlag{Name: "seeds", Aliases: []string{"n"}, Usage: "number of seeds", Value: 20},
			&cli.IntFlag{Name: "turns", Usage: "turns to simulate per seed", Value: 30},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Int("seeds") < 1 || cmd.Int("turns") < 1 {
				return fmt.Errorf("seeds and turns must be positive")
			}
			reports := make([]SeedReport, 0, cmd.Int("seeds"))
			for i := 0; i < cmd.Int("seeds"); i++ {
				reports = append(reports, analyzeSeed(cmd.Int64("from")+int64(i), cmd.Int("turns")))
			}
			printSummary(cmd.Root().Writer, reports, cmd.Bool("verbose"))
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func analyzeSeed(seed int64, maxTurns int) SeedReport {
	e := engine.NewEngineWithSeed(seed)
	state := e.State()

	r := SeedReport{
		Seed:     seed,
		Start:    state.Adventurer.Position,
		Heliport: state.Heliport,
	}
	for _, row := range state.Tiles {
		for _, t := range row {
			if t.Artifact {
				r.Artifact = engine.Position{X: t.X, Y: t.Y}
			}
			if t.Level == engine.Flooded {
				r.Flooded++
			}
		}
	}

	r.RouteMoves = distance(r.Start, r.Artifact) + distance(r.Artifact, r.Heliport)
	r.RouteTurns = (r.RouteMoves + engine.ActionsPerTurn - 1) / engine.ActionsPerTurn
	if r.RouteTurns == 0 {
		r.RouteTurns = 1
	}

	for e.Turn() <= maxTurns && e.Status() == engine.InProgress {
		e.EndTurn()
	}
	if e.Status() == engine.Lost {
		// EndTurn advances the counter before the loss is resolved.
		r.IdleTurns = e.Turn() - 1
		r.LossReason = e.LossReason()
	}
	return r
}

func printSummary(w io.Writer, reports []SeedReport, verbose bool) {
	losses := map[engine.LossReason]int{}
	var tight []SeedReport
	survived := 0
	totalIdle := 0

	for _, r := range reports {
		if verbose {
			fmt.Fprintf(w, "seed %-6d start %v artifact %v heliport %v flooded %d route %d moves/%d turns",
				r.Seed, r.Start, r.Artifact, r.Heliport, r.Flooded, r.RouteMoves, r.RouteTurns)
			if r.IdleTurns == 0 {
				fmt.Fprintln(w, "  idle: survived")
			} else {
				fmt.Fprintf(w, "  idle: lost on turn %d (%s)\n", r.IdleTurns, r.LossReason)
			}
		}

		if r.IdleTurns == 0 {
			survived++
			continue
		}
		losses[r.LossReason]++
		totalIdle += r.IdleTurns
		if r.Tight() {
			tight = append(tight, r)
		}
	}

	fmt.Fprintf(w, "\n=== %d seeds ===\n", len(reports))
	fmt.Fprintf(w, "Survived idle: %d\n", survived)
	if lost := len(reports) - survived; lost > 0 {
		fmt.Fprintf(w, "Lost idle: %d (average turn %.1f)\n", lost, float64(totalIdle)/float64(lost))
		reasons := make([]string, 0, len(losses))
		for reason := range losses {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(w, "  %-14s %d\n", reason, losses[engine.LossReason(reason)])
		}
	}

	if len(tight) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d seeds sink before the shortest route can be walked\n", len(tight))
		for i, r := range tight {
			if i < 5 {
				fmt.Fprintf(w, "   seed %d: lost on turn %d (%s), route needs %d turns\n", r.Seed, r.IdleTurns, r.LossReason, r.RouteTurns)
			}
		}
		if len(tight) > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(tight)-5)
		}
	} else {
		fmt.Fprintf(w, "✅ Every seed leaves time to walk the shortest route\n")
	}
}

func distance(a, b engine.Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
