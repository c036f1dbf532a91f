package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/sinking-island/api"
	"github.com/wricardo/sinking-island/game/engine"
	"github.com/wricardo/sinking-island/game/service"
	"github.com/wricardo/sinking-island/game/session"
	"github.com/wricardo/sinking-island/logging"
)

var defaultOrder = []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right}

// dryIsland builds a 6x6 island with every tile normal, the adventurer on
// (3,3), the artifact on artifact and the heliport on heliport.
func dryIsland(artifact, heliport engine.Position) *engine.GameState {
	state := &engine.GameState{
		Width:    engine.Width,
		Height:   engine.Height,
		Turn:     1,
		Status:   engine.InProgress,
		Heliport: heliport,
		Adventurer: engine.AdventurerView{
			Position:         engine.Position{X: 3, Y: 3},
			ActionsRemaining: engine.ActionsPerTurn,
		},
	}
	state.Tiles = make([][]engine.TileView, engine.Height)
	for y := 1; y <= engine.Height; y++ {
		row := make([]engine.TileView, engine.Width)
		for x := 1; x <= engine.Width; x++ {
			p := engine.Position{X: x, Y: y}
			row[x-1] = engine.TileView{
				X:        x,
				Y:        y,
				Level:    engine.Normal,
				Artifact: p == artifact,
				Heliport: p == heliport,
				Occupied: p == state.Adventurer.Position,
			}
		}
		state.Tiles[y-1] = row
	}
	return state
}

func setLevel(state *engine.GameState, x, y int, level engine.FloodLevel) {
	state.Tiles[y-1][x-1].Level = level
}

func TestDirectionOrders(t *testing.T) {
	orders := directionOrders()
	if len(orders) != 24 {
		t.Fatalf("Expected 24 orders, got %d", len(orders))
	}

	seen := map[string]bool{}
	for _, order := range orders {
		if len(order) != 4 {
			t.Fatalf("Expected 4 directions, got %v", order)
		}
		key := ""
		for _, d := range order {
			key += string(d) + ","
		}
		if seen[key] {
			t.Errorf("Duplicate order %v", order)
		}
		seen[key] = true
	}

	if got := len(variants()); got != 48 {
		t.Errorf("Expected 48 variants, got %d", got)
	}
}

func TestRouteStrategy_NextAction(t *testing.T) {
	artifact := engine.Position{X: 3, Y: 1}
	heliport := engine.Position{X: 6, Y: 6}

	tests := []struct {
		name    string
		shoreUp bool
		edit    func(s *engine.GameState)
		want    engine.Action
	}{
		{
			name: "heads to the artifact",
			want: engine.ActionMoveUp,
		},
		{
			name: "collects on the artifact tile",
			edit: func(s *engine.GameState) {
				s.Tiles[0][2].Occupied = true
				s.Tiles[2][2].Occupied = false
				s.Adventurer.Position = artifact
			},
			want: engine.ActionCollectArtifact,
		},
		{
			name: "heads to the heliport once holding the artifact",
			edit: func(s *engine.GameState) {
				s.Tiles[0][2].Artifact = false
				s.Adventurer.HasArtifact = true
			},
			want: engine.ActionMoveDown,
		},
		{
			name: "escapes from the heliport",
			edit: func(s *engine.GameState) {
				s.Tiles[0][2].Artifact = false
				s.Adventurer.HasArtifact = true
				s.Adventurer.Position = heliport
			},
			want: engine.ActionEscape,
		},
		{
			name:    "shores up its own tile first",
			shoreUp: true,
			edit: func(s *engine.GameState) {
				setLevel(s, 3, 3, engine.Flooded)
				setLevel(s, 3, 2, engine.Flooded)
			},
			want: engine.ActionShoreUpHere,
		},
		{
			name:    "shores up a neighbour",
			shoreUp: true,
			edit:    func(s *engine.GameState) { setLevel(s, 2, 3, engine.Flooded) },
			want:    engine.ActionShoreUpLeft,
		},
		{
			name: "ignores floods when shoring is off",
			edit: func(s *engine.GameState) { setLevel(s, 3, 3, engine.Flooded) },
			want: engine.ActionMoveUp,
		},
		{
			name:    "ends the turn without actions",
			shoreUp: true,
			edit:    func(s *engine.GameState) { s.Adventurer.ActionsRemaining = 0 },
			want:    engine.ActionEndTurn,
		},
		{
			name: "routes around a sunk tile",
			edit: func(s *engine.GameState) { setLevel(s, 3, 2, engine.Sunk) },
			want: engine.ActionMoveLeft,
		},
		{
			name: "ends turns when cut off",
			edit: func(s *engine.GameState) {
				for _, p := range []engine.Position{{X: 3, Y: 2}, {X: 3, Y: 4}, {X: 2, Y: 3}, {X: 4, Y: 3}} {
					setLevel(s, p.X, p.Y, engine.Sunk)
				}
			},
			want: engine.ActionEndTurn,
		},
		{
			name: "stops once the game is over",
			edit: func(s *engine.GameState) { s.Status = engine.Lost },
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := dryIsland(artifact, heliport)
			if tt.edit != nil {
				tt.edit(state)
			}

			strategy := NewRouteStrategy(defaultOrder, tt.shoreUp)
			if got := strategy.NextAction(state); got != tt.want {
				t.Errorf("NextAction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouteStrategy_BFS(t *testing.T) {
	state := dryIsland(engine.Position{X: 6, Y: 3}, engine.Position{X: 1, Y: 1})
	strategy := NewRouteStrategy(defaultOrder, false)
	start := engine.Position{X: 3, Y: 3}

	path := strategy.BFS(start, engine.Position{X: 6, Y: 3}, state)
	if len(path) != 3 {
		t.Fatalf("Expected straight route of 3, got %v", path)
	}

	// A wall of sunk tiles on column 4 with a gap on row 6.
	for y := 1; y <= 5; y++ {
		setLevel(state, 4, y, engine.Sunk)
	}
	path = strategy.BFS(start, engine.Position{X: 6, Y: 3}, state)
	if len(path) != 9 {
		t.Fatalf("Expected detour of 9 moves, got %d: %v", len(path), path)
	}

	pos := start
	for _, d := range path {
		pos, _ = pos.Step(d)
		if !isPassable(pos, state) {
			t.Fatalf("Route crosses impassable tile %v", pos)
		}
	}
	if pos != (engine.Position{X: 6, Y: 3}) {
		t.Errorf("Route ends at %v", pos)
	}

	setLevel(state, 4, 6, engine.Sunk)
	if path := strategy.BFS(start, engine.Position{X: 6, Y: 3}, state); path != nil {
		t.Errorf("Expected no route, got %v", path)
	}
	if path := strategy.BFS(start, start, state); path == nil || len(path) != 0 {
		t.Errorf("Expected empty route to own tile, got %v", path)
	}
}

func TestRouteStrategy_Target(t *testing.T) {
	state := dryIsland(engine.Position{X: 2, Y: 5}, engine.Position{X: 5, Y: 1})
	strategy := NewRouteStrategy(defaultOrder, true)

	if got, ok := strategy.Target(state); !ok || got != (engine.Position{X: 2, Y: 5}) {
		t.Errorf("Expected artifact target, got %v %v", got, ok)
	}

	state.Tiles[4][1].Artifact = false
	if _, ok := strategy.Target(state); ok {
		t.Error("Expected no target when the artifact is gone and not held")
	}

	state.Adventurer.HasArtifact = true
	if got, ok := strategy.Target(state); !ok || got != state.Heliport {
		t.Errorf("Expected heliport target, got %v %v", got, ok)
	}
}

func newTestServer(t *testing.T) string {
	t.Helper()
	svc := service.NewGameService(session.NewManager(), service.WithSeedSource(func() int64 { return 17 }))
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	client := NewClient(newTestServer(t) + "/")

	seed := int64(8)
	info, err := client.CreateSession(ctx, &seed)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.Seed != 8 || client.SessionID() != info.ID {
		t.Errorf("Unexpected session %+v", info)
	}

	result, err := client.Act(ctx, engine.ActionEndTurn)
	if err != nil {
		t.Fatalf("Act failed: %v", err)
	}
	if !result.Applied || result.GameState.Turn != 2 {
		t.Errorf("Expected applied end_turn on turn 2, got %+v", result)
	}

	state, err := client.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Turn != 1 {
		t.Errorf("Expected turn 1 after reset, got %d", state.Turn)
	}

	if _, err := client.Act(ctx, "fly"); err == nil {
		t.Error("Expected unknown action to fail")
	}

	if _, err := client.Resume(ctx, "missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestOpenSession(t *testing.T) {
	ctx := context.Background()
	url := newTestServer(t)
	file := filepath.Join(t.TempDir(), ".session")
	logger := logging.Discard()

	first := NewClient(url)
	if err := openSession(ctx, first, "", nil, file, logger); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil || string(data) != first.SessionID() {
		t.Fatalf("Expected session id saved, got %q (%v)", data, err)
	}

	second := NewClient(url)
	if err := openSession(ctx, second, "", nil, file, logger); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	if second.SessionID() != first.SessionID() {
		t.Errorf("Expected saved session %s resumed, got %s", first.SessionID(), second.SessionID())
	}

	third := NewClient(url)
	if err := openSession(ctx, third, "gone", nil, file, logger); err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	if third.SessionID() == "gone" || third.SessionID() == first.SessionID() {
		t.Errorf("Expected a fresh session, got %s", third.SessionID())
	}
}

func TestBruteforce(t *testing.T) {
	ctx := context.Background()
	client := NewClient(newTestServer(t))
	if _, err := client.CreateSession(ctx, nil); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	opts := Options{MaxAttempts: 3, MaxCommands: 200}
	attempts, err := bruteforce(ctx, client, opts, logging.Discard())
	if err != nil && !errors.Is(err, ErrNotSolved) {
		t.Fatalf("bruteforce failed: %v", err)
	}
	if len(attempts) == 0 || len(attempts) > opts.MaxAttempts {
		t.Fatalf("Expected 1..%d attempts, got %d", opts.MaxAttempts, len(attempts))
	}

	for i, a := range attempts {
		if a.Number != i+1 || a.Strategy == "" {
			t.Errorf("Attempt %d mislabelled: %+v", i+1, a)
		}
		if a.Commands == 0 || a.Commands > opts.MaxCommands+1 {
			t.Errorf("Attempt %d ran %d commands", a.Number, a.Commands)
		}
		if a.Status == engine.InProgress && a.Commands < opts.MaxCommands {
			t.Errorf("Attempt %d stopped early while in progress: %+v", a.Number, a)
		}
	}

	last := attempts[len(attempts)-1]
	if err == nil && !last.Won() {
		t.Errorf("Expected last attempt to be a win, got %+v", last)
	}
	if err != nil && len(attempts) != opts.MaxAttempts {
		t.Errorf("Expected every attempt used before giving up, got %d", len(attempts))
	}
}

func TestBruteforce_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(newTestServer(t))
	attempts, err := bruteforce(ctx, client, Options{MaxAttempts: 5, MaxCommands: 10}, logging.Discard())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("Expected no attempts, got %d", len(attempts))
	}
}
