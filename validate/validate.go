// Command validate checks island snapshots for structural consistency. It
// reads game state JSON files (as returned by GET /api/sessions/{id}/state)
// or, without arguments, the fresh islands of a range of seeds. It checks:
//   - grid dimensions and tile coordinates
//   - exactly one heliport, where the state says it is
//   - the artifact is on the island exactly when nobody holds it
//   - the adventurer stands alone on a tile that has not sunk
//   - action budget, turn counter and status/loss reason agree
//   - connectivity: artifact and heliport reachable over tiles that have
//     not sunk
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/sinking-island/game/engine"
)

// ValidationResult captures the outcome of validating a single island.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateFile loads and validates one state JSON file.
func validateFile(path string) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ValidationResult{Name: filepath.Base(path), Errors: []string{fmt.Sprintf("Failed to read file: %v", err)}}
	}

	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return ValidationResult{Name: filepath.Base(path), Errors: []string{fmt.Sprintf("Invalid JSON: %v", err)}}
	}
	return validateState(filepath.Base(path), &state)
}

// validateState performs the structural checks and, when they pass, the
// reachability analysis.
func validateState(name string, state *engine.GameState) ValidationResult {
	result := ValidationResult{Name: name, Valid: true, Errors: []string{}}

	if state.Width != engine.Width || state.Height != engine.Height {
		result.fail("Grid is %dx%d, expected %dx%d", state.Width, state.Height, engine.Width, engine.Height)
	}
	if len(state.Tiles) != state.Height {
		result.fail("Expected %d rows, got %d", state.Height, len(state.Tiles))
	}

	heliports, artifacts, occupied := 0, 0, 0
	var occupiedAt engine.Position
	counts := map[engine.FloodLevel]int{}

	for y, row := range state.Tiles {
		if len(row) != state.Width {
			result.fail("Inconsistent width at row %d: expected %d, got %d", y+1, state.Width, len(row))
		}
		for x, t := range row {
			if t.X != x+1 || t.Y != y+1 {
				result.fail("Tile at [%d,%d] claims coordinates (%d,%d)", x+1, y+1, t.X, t.Y)
			}
			if t.Sea {
				result.fail("Sea tile inside the island at (%d,%d)", t.X, t.Y)
			}
			counts[t.Level]++
			if t.Heliport {
				heliports++
				if (engine.Position{X: t.X, Y: t.Y}) != state.Heliport {
					result.fail("Heliport tile at (%d,%d) but state says %v", t.X, t.Y, state.Heliport)
				}
			}
			if t.Artifact {
				artifacts++
			}
			if t.Occupied {
				occupied++
				occupiedAt = engine.Position{X: t.X, Y: t.Y}
				if t.Level == engine.Sunk {
					result.fail("Adventurer stands on sunk tile (%d,%d)", t.X, t.Y)
				}
			}
		}
	}

	if heliports != 1 {
		result.fail("Must have exactly 1 heliport, found %d", heliports)
	}

	adv := state.Adventurer
	switch {
	case adv.HasArtifact && artifacts != 0:
		result.fail("Artifact is held and still on the island")
	case !adv.HasArtifact && state.LossReason != engine.ArtifactSunk && artifacts != 1:
		result.fail("Must have exactly 1 artifact on the island, found %d", artifacts)
	}

	switch {
	case adv.Drowned && occupied != 0:
		result.fail("Drowned adventurer still occupies a tile")
	case !adv.Drowned && occupied != 1:
		result.fail("Must have exactly 1 occupied tile, found %d", occupied)
	case !adv.Drowned && occupiedAt != adv.Position:
		result.fail("Adventurer at %v but occupied tile is %v", adv.Position, occupiedAt)
	}

	if adv.ActionsRemaining < 0 || adv.ActionsRemaining > engine.ActionsPerTurn {
		result.fail("actions_remaining must be within 0-%d, got %d", engine.ActionsPerTurn, adv.ActionsRemaining)
	}
	if state.Turn < 1 {
		result.fail("turn must be positive, got %d", state.Turn)
	}

	switch state.Status {
	case engine.InProgress, engine.Won:
		if state.LossReason != "" {
			result.fail("Loss reason %q on a game that is %s", state.LossReason, state.Status)
		}
	case engine.Lost:
		if state.LossReason == "" {
			result.fail("Lost game without a loss reason")
		}
	default:
		result.fail("Unknown status %q", state.Status)
	}

	// Connectivity only means something for a consistent, undecided game.
	if result.Valid && state.Status == engine.InProgress {
		reach := validateConnectivity(state)
		result.Errors = append(result.Errors, reach.Errors...)
		if !reach.Valid {
			result.Valid = false
		}
	}

	if result.Valid {
		result.info("Turn %d, %s", state.Turn, state.Status)
		result.info("Tiles: %d normal, %d flooded, %d sunk", counts[engine.Normal], counts[engine.Flooded], counts[engine.Sunk])
		result.info("Heliport: %v", state.Heliport)
		result.info("Adventurer: %v, %d/%d actions", adv.Position, adv.ActionsRemaining, engine.ActionsPerTurn)
	}
	return result
}

// validateConnectivity flood fills from the adventurer over tiles that have
// not sunk and reports whether the artifact (while on the island) and the
// heliport are reachable.
func validateConnectivity(state *engine.GameState) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	if len(state.Tiles) == 0 {
		result.fail("Cannot validate connectivity: empty island")
		return result
	}

	passable := func(p engine.Position) bool {
		t, ok := state.TileAt(p.X, p.Y)
		return ok && !t.Sea && t.Level != engine.Sunk
	}

	start := state.Adventurer.Position
	visited := map[engine.Position]bool{start: true}
	queue := []engine.Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right} {
			next, _ := current.Step(dir)
			if !visited[next] && passable(next) {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var targets []string
	if !state.Adventurer.HasArtifact {
		for _, row := range state.Tiles {
			for _, t := range row {
				if t.Artifact && !visited[engine.Position{X: t.X, Y: t.Y}] {
					targets = append(targets, fmt.Sprintf("Artifact at (%d,%d)", t.X, t.Y))
				}
			}
		}
	}
	if !visited[state.Heliport] {
		targets = append(targets, fmt.Sprintf("Heliport at %v", state.Heliport))
	}

	if len(targets) > 0 {
		result.fail("Connectivity failure: %d target(s) unreachable from %v", len(targets), start)
		for _, target := range targets {
			result.fail("Unreachable: %s", target)
		}
	} else {
		result.info("Connectivity: %d tiles reachable, all targets among them", len(visited))
	}
	return result
}

func printResult(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.Name)
	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, info := range result.Errors {
			fmt.Fprintln(w, "  "+info)
		}
		return
	}

	fmt.Fprintln(w, "❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}
}

// run validates the files in args, or the seed range when there are none,
// and reports whether everything was valid.
func run(w io.Writer, args []string, from int64, seeds int) bool {
	var results []ValidationResult
	if len(args) > 0 {
		for _, path := range args {
			results = append(results, validateFile(path))
		}
	} else {
		for i := 0; i < seeds; i++ {
			seed := from + int64(i)
			results = append(results, validateState(fmt.Sprintf("seed %d", seed), engine.NewEngineWithSeed(seed).State()))
		}
	}

	allValid := true
	for _, result := range results {
		printResult(w, result)
		if !result.Valid {
			allValid = false
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All islands are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some islands have errors")
	}
	return allValid
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Check island snapshots for consistency",
		ArgsUsage: "[state.json ...]",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "from", Usage: "first seed when no files are given", Value: 1},
			&cli.IntFlag{Name: "seeds", Aliases: []string{"n"}, Usage: "number of seeds when no files are given", Value: 10},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !run(cmd.Root().Writer, cmd.Args().Slice(), cmd.Int64("from"), cmd.Int("seeds")) {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
