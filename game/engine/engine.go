package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Queries
	Tile(x, y int) (TileView, bool)
	AdventurerPosition() Position
	ActionsRemaining() int
	HasCollectedArtifact() bool
	TurnState() TurnState
	Turn() int
	Status() Status
	State() *GameState
	History() []HistoryEntry
	LastFloods() []FloodDraw

	// Commands
	MoveUp() Outcome
	MoveDown() Outcome
	MoveLeft() Outcome
	MoveRight() Outcome
	ShoreUpHere() Outcome
	ShoreUpUp() Outcome
	ShoreUpDown() Outcome
	ShoreUpLeft() Outcome
	ShoreUpRight() Outcome
	CollectArtifact() Outcome
	EndTurn() Outcome
	Escape() Outcome
	Apply(action Action) Outcome

	// Change notification
	Subscribe(fn func()) (unsubscribe func())
}

var _ Engine = (*GameEngine)(nil)

// GameEngine implements the Engine interface. It owns the board and the
// adventurer exclusively; callers only ever see TileView and GameState
// snapshots.
//
// While the game runs, the adventurer's position is the one occupied tile.
// A drowned adventurer keeps their last position but occupies no tile.
type GameEngine struct {
	board      *Board
	adventurer *Adventurer
	rng        Rand

	turn         int
	status       Status
	lossReason   LossReason
	heliport     Position
	artifactPos  Position
	artifactKind ArtifactKind
	message      string
	lastFloods   []FloodDraw
	history      []HistoryEntry
	appliedCount int

	observers  map[int]func()
	observerID int
}

// NewEngine creates a game on a freshly flooded island. A nil rng falls back
// to a time-seeded source.
func NewEngine(rng Rand) *GameEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &GameEngine{
		rng:       rng,
		observers: make(map[int]func()),
	}
	e.setup()
	return e
}

// NewEngineWithSeed creates a game whose island and flooding are fully
// determined by seed.
func NewEngineWithSeed(seed int64) *GameEngine {
	return NewEngine(rand.New(rand.NewSource(seed)))
}

func (e *GameEngine) setup() {
	e.board = NewBoard(Width, Height)

	start := Position{X: StartX, Y: StartY}
	e.adventurer = NewAdventurer(start)
	e.tileAt(start).setOccupied(true)

	// One pre-flooded tile per region.
	for _, r := range floodRegions {
		e.tileAt(r.draw(e.rng)).FloodOneStep()
	}

	candidates := make([]Position, 0, Width*Height)
	for _, p := range e.board.Interior() {
		if p != start {
			candidates = append(candidates, p)
		}
	}
	i := e.rng.Intn(len(candidates))
	e.heliport = candidates[i]
	e.tileAt(e.heliport).setHeliport(true)
	candidates = append(candidates[:i], candidates[i+1:]...)

	e.artifactPos = candidates[e.rng.Intn(len(candidates))]
	e.tileAt(e.artifactPos).setArtifact(true)

	e.artifactKind = ArtifactKinds[e.rng.Intn(len(ArtifactKinds))]
	e.adventurer.GiveKey(e.artifactKind)

	e.turn = 1
	e.status = InProgress
	e.message = fmt.Sprintf("The island is sinking. Find the %s artifact and reach the heliport.", e.artifactKind)
}

// tileAt returns a tile that is known to be inside the allocated grid.
func (e *GameEngine) tileAt(p Position) *Tile {
	t, ok := e.board.At(p)
	if !ok {
		panic(fmt.Sprintf("engine: position %v outside grid", p))
	}
	return t
}

// Tile returns a snapshot of the tile at (x, y). Coordinates on the sea ring
// are valid; anything beyond it reports false.
func (e *GameEngine) Tile(x, y int) (TileView, bool) {
	t, ok := e.board.At(Position{X: x, Y: y})
	if !ok {
		return TileView{}, false
	}
	return t.View(), true
}

// AdventurerPosition returns the adventurer's current coordinates.
func (e *GameEngine) AdventurerPosition() Position {
	return e.adventurer.Position()
}

// ActionsRemaining returns what is left of this turn's budget.
func (e *GameEngine) ActionsRemaining() int {
	return e.adventurer.ActionsRemaining()
}

// HasCollectedArtifact reports whether the adventurer holds the artifact.
func (e *GameEngine) HasCollectedArtifact() bool {
	return e.adventurer.HasArtifact()
}

// TurnState reports whether the adventurer can still act this turn.
func (e *GameEngine) TurnState() TurnState {
	if e.adventurer.ActionsRemaining() > 0 {
		return AwaitingAction
	}
	return TurnExhausted
}

// Turn returns the 1-based turn number.
func (e *GameEngine) Turn() int {
	return e.turn
}

// Status returns whether the game is in progress, won or lost.
func (e *GameEngine) Status() Status {
	return e.status
}

// LossReason explains a lost game; empty otherwise.
func (e *GameEngine) LossReason() LossReason {
	return e.lossReason
}

// LastFloods returns the flood draws of the most recent EndTurn.
func (e *GameEngine) LastFloods() []FloodDraw {
	out := make([]FloodDraw, len(e.lastFloods))
	copy(out, e.lastFloods)
	return out
}

// History returns every command issued so far.
func (e *GameEngine) History() []HistoryEntry {
	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

// LastEntry returns the most recent history entry, or nil if none.
func (e *GameEngine) LastEntry() *HistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	entry := e.history[len(e.history)-1]
	return &entry
}

// State returns a full snapshot of the game.
func (e *GameEngine) State() *GameState {
	return &GameState{
		Width:        e.board.Width(),
		Height:       e.board.Height(),
		Tiles:        e.board.Rows(),
		Adventurer:   e.adventurer.View(),
		Turn:         e.turn,
		TurnState:    e.TurnState(),
		Status:       e.status,
		LossReason:   e.lossReason,
		Heliport:     e.heliport,
		ArtifactKind: e.artifactKind,
		LastFloods:   e.LastFloods(),
		Message:      e.message,
		TotalActions: e.appliedCount,
	}
}

// Subscribe registers fn to be called once after every applied command.
// The returned function removes the registration.
func (e *GameEngine) Subscribe(fn func()) func() {
	e.observerID++
	id := e.observerID
	e.observers[id] = fn
	return func() {
		delete(e.observers, id)
	}
}

func (e *GameEngine) notify() {
	for _, fn := range e.observers {
		fn()
	}
}
