package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/sinking-island/game/engine"
	"github.com/wricardo/sinking-island/game/service"
)

func formatSessionList(count int, sessions []service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", count)
	for _, s := range sessions {
		status := "unknown"
		turn := 0
		if s.GameState != nil {
			status = string(s.GameState.Status)
			turn = s.GameState.Turn
		}
		fmt.Fprintf(&b, "- %s (seed %d, turn %d, %s, last used %s)\n",
			s.ID, s.Seed, turn, status, s.LastAccessedAt.Format("15:04:05"))
	}
	return b.String()
}

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nSeed: %d\nCreated: %s\nLast accessed: %s\n\n%s",
		info.ID, info.Seed,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		info.LastAccessedAt.Format("2006-01-02 15:04:05"),
		formatGameState(info.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	b.WriteString(engine.Render(state))
	b.WriteString("\nLegend: ")
	b.WriteString(engine.Legend())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Heliport: %v\n", state.Heliport)
	if state.Status == engine.InProgress {
		fmt.Fprintf(&b, "Next: %s\n", suggestNext(state))
	}
	return b.String()
}

// suggestNext is a one-line reminder of what the current position allows.
func suggestNext(state *engine.GameState) string {
	adv := state.Adventurer
	here, _ := state.TileAt(adv.Position.X, adv.Position.Y)
	switch {
	case adv.ActionsRemaining == 0:
		return "no moves left, call end_turn"
	case here.Artifact && !adv.HasArtifact:
		return "the artifact is here, collect_artifact"
	case here.Heliport && adv.HasArtifact:
		return "you are on the heliport with the artifact, escape"
	case here.Level == engine.Flooded:
		return "your tile is flooded, consider shore_up_here"
	}
	return fmt.Sprintf("%d action(s) left this turn", adv.ActionsRemaining)
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Applied {
		fmt.Fprintf(&b, "✓ %s\n", result.Action)
	} else {
		fmt.Fprintf(&b, "✗ %s rejected: %s\n", result.Action, result.Message)
	}

	for _, ev := range result.Events {
		fmt.Fprintf(&b, "  [%s] %s\n", ev.Type, ev.Message)
	}
	if len(result.Floods) > 0 {
		b.WriteString(formatFloods(result.Floods))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatFloods(draws []engine.FloodDraw) string {
	var b strings.Builder
	b.WriteString("Floods:\n")
	for _, d := range draws {
		fmt.Fprintf(&b, "  region %d: %v %s → %s\n", d.Region, d.Position, d.Before, d.After)
	}
	return b.String()
}

func formatBulkResult(sessionID string, result *service.BulkActionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d/%d command(s)", sessionID, result.ActionsExecuted, result.RequestedActions)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")

	for _, st := range result.Steps {
		mark := "✓"
		if !st.Applied {
			mark = "✗"
		}
		fmt.Fprintf(&b, "  %2d. %s %-16s %v → %v  actions left %d", st.Idx, mark, st.Action, st.From, st.To, st.ActionsLeft)
		if st.Reason != "" {
			fmt.Fprintf(&b, "  (%s)", st.Reason)
		}
		b.WriteString("\n")
	}

	if result.StopReason != "" {
		fmt.Fprintf(&b, "Stopped on command %d: %s\n", result.StoppedOnAction, result.StopReason)
	}
	for _, ev := range result.Events {
		if ev.Type == "move" || ev.Type == "shore_up" {
			continue
		}
		fmt.Fprintf(&b, "  [%s] %s\n", ev.Type, ev.Message)
	}
	if result.Message != "" {
		b.WriteString(result.Message)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "History: %d command(s), page %d/%d\n\n", history.TotalEntries, history.Page, history.TotalPages)
	for _, e := range history.Entries {
		status := "ok"
		if !e.Applied {
			status = "rejected: " + string(e.Reason)
		}
		fmt.Fprintf(&b, "#%d turn %d %s %v → %v (%s, %d left)\n",
			e.Number, e.Turn, e.Action, e.From, e.Target, status, e.ActionsLeft)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore on page %d\n", history.Page+1)
	}
	return b.String()
}

func describeTile(t engine.TileView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tile (%d,%d): '%c'\n", t.X, t.Y, engine.Glyph(t))

	if t.Sea {
		b.WriteString("Sea ring around the island. Never passable.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Level: %s\n", t.Level)
	if t.Heliport {
		b.WriteString("Heliport: escape from here once you hold the artifact\n")
	}
	if t.Artifact {
		b.WriteString("Artifact: lying here, collect_artifact to pick it up\n")
	}
	if t.Occupied {
		b.WriteString("The adventurer is standing here\n")
	}

	passable := t.Level != engine.Sunk && !t.Occupied
	fmt.Fprintf(&b, "Can be entered: %v\n", passable)
	if t.Level == engine.Flooded {
		b.WriteString("Can be shored up back to normal\n")
	}
	if region, ok := engine.RegionOf(engine.Position{X: t.X, Y: t.Y}); ok {
		fmt.Fprintf(&b, "Flood region: %d\n", region)
	}
	return b.String()
}

func formatRegions(regions []engine.Region) string {
	var b strings.Builder
	b.WriteString("Flood regions (one tile from each floods at every end of turn):\n")
	for _, r := range regions {
		cells := make([]string, len(r.Band))
		for i, p := range r.Band {
			cells[i] = p.String()
		}
		fmt.Fprintf(&b, "  %d %s: %s\n", r.Index, r.Name, strings.Join(cells, " "))
	}
	return b.String()
}

// Instructions returns the complete rules text.
func Instructions() string {
	return fmt.Sprintf(`Sinking Island - Rules

OBJECTIVE:
Collect the artifact and escape from the heliport before the island sinks.

THE ISLAND:
A %dx%d grid of tiles (x = column 1..%d, y = row 1..%d, y = 1 is north),
surrounded by one ring of sea. Every tile is normal, flooded or sunk.

GLYPHS:
%s

EACH TURN:
- You have %d actions. Only moves spend them.
- move_up / move_down / move_left / move_right: step onto a normal or
  flooded tile. Sunk tiles and the sea are impassable.
- shore_up_here / shore_up_up / shore_up_down / shore_up_left /
  shore_up_right: raise a flooded tile back to normal.
- collect_artifact: pick up the artifact on your tile.
- escape: on the heliport while holding the artifact, you win.
- end_turn: actions are restored, then one tile in each of the %d flood
  regions drops one level (normal → flooded → sunk).

DANGER:
- If your tile sinks you swim to the first open neighbour (up, down, left,
  right). With nowhere to go you drown.
- The game is lost if you drown, the heliport sinks, or the artifact sinks
  before you collect it.

TIPS:
- Rejected commands change nothing; read the reason and try something else.
- bulk_act runs up to %d commands and stops at the first rejection.
- describe_tile and flood_regions help plan which tiles to shore up.
`, engine.Width, engine.Height, engine.Width, engine.Height,
		engine.Legend(), engine.ActionsPerTurn, engine.RegionCount, engine.MaxBulkActions)
}
