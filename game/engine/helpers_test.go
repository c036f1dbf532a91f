package engine

import "testing"

// scriptedRand returns its values in order, wrapping around. An empty script
// always returns 0.
type scriptedRand struct {
	values []int
	next   int
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}

// newTestEngine builds an engine with an all-zero random script:
//   - flooded: (1,1) .. (1,6), one per region
//   - heliport: (1,1)
//   - artifact: (2,1), kind earth
//   - adventurer: (3,3)
func newTestEngine() *GameEngine {
	return NewEngine(&scriptedRand{})
}

func setLevel(t *testing.T, e *GameEngine, x, y int, level FloodLevel) {
	t.Helper()
	tile, ok := e.board.At(Position{X: x, Y: y})
	if !ok {
		t.Fatalf("setLevel: (%d,%d) outside grid", x, y)
	}
	tile.level = level
}

func levelAt(t *testing.T, e *GameEngine, x, y int) FloodLevel {
	t.Helper()
	view, ok := e.Tile(x, y)
	if !ok {
		t.Fatalf("levelAt: (%d,%d) outside grid", x, y)
	}
	return view.Level
}

// placeAdventurer teleports the adventurer, keeping occupancy consistent.
func placeAdventurer(t *testing.T, e *GameEngine, x, y int) {
	t.Helper()
	e.tileAt(e.adventurer.Position()).setOccupied(false)
	dest := e.tileAt(Position{X: x, Y: y})
	dest.setOccupied(true)
	e.adventurer.MoveTo(Position{X: x, Y: y})
}

// countNotifications subscribes a counter to e.
func countNotifications(e *GameEngine) *int {
	n := 0
	e.Subscribe(func() { n++ })
	return &n
}
