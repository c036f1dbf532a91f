package engine

import (
	"fmt"
	"strings"
)

const (
	// Playable island size. The allocated grid adds one ring of sea.
	Width  = 6
	Height = 6

	// ActionsPerTurn is the adventurer's budget at the start of every turn.
	ActionsPerTurn = 3

	// RegionCount is the number of flood regions drawn from each turn.
	RegionCount = 6

	// Fixed starting tile of the adventurer.
	StartX = 3
	StartY = 3

	// Validation constants
	MaxBulkActions      = 50
	WebSocketBufferSize = 256
)

// FloodLevel is the ordered flood state of a tile: Sunk < Flooded < Normal.
type FloodLevel int

const (
	Sunk    FloodLevel = -1
	Flooded FloodLevel = 0
	Normal  FloodLevel = 1
)

func (l FloodLevel) String() string {
	switch l {
	case Sunk:
		return "sunk"
	case Flooded:
		return "flooded"
	case Normal:
		return "normal"
	}
	return fmt.Sprintf("FloodLevel(%d)", int(l))
}

// MarshalText encodes the level by name so JSON stays readable.
func (l FloodLevel) MarshalText() ([]byte, error) {
	switch l {
	case Sunk, Flooded, Normal:
		return []byte(l.String()), nil
	}
	return nil, fmt.Errorf("invalid flood level %d", int(l))
}

// UnmarshalText accepts the names produced by MarshalText.
func (l *FloodLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sunk":
		*l = Sunk
	case "flooded":
		*l = Flooded
	case "normal":
		*l = Normal
	default:
		return fmt.Errorf("invalid flood level %q", string(text))
	}
	return nil
}

// Position represents x,y coordinates. x grows to the right, y grows down.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction names a one-step offset from the adventurer's tile.
type Direction string

const (
	Here  Direction = "here"
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Delta returns the offset for d. ok is false for unknown directions.
func (d Direction) Delta() (dx, dy int, ok bool) {
	switch d {
	case Here:
		return 0, 0, true
	case Up:
		return 0, -1, true
	case Down:
		return 0, 1, true
	case Left:
		return -1, 0, true
	case Right:
		return 1, 0, true
	}
	return 0, 0, false
}

// Step returns the position one step from p in direction d.
func (p Position) Step(d Direction) (Position, bool) {
	dx, dy, ok := d.Delta()
	if !ok {
		return p, false
	}
	return Position{X: p.X + dx, Y: p.Y + dy}, true
}

// ArtifactKind identifies an artifact and the key that matches it.
type ArtifactKind string

const (
	EarthStone    ArtifactKind = "earth"
	StatueOfWind  ArtifactKind = "wind"
	CrystalOfFire ArtifactKind = "fire"
	OceansChalice ArtifactKind = "ocean"
)

// ArtifactKinds lists every kind in a stable order.
var ArtifactKinds = []ArtifactKind{EarthStone, StatueOfWind, CrystalOfFire, OceansChalice}

// Status is the overall state of a game.
type Status string

const (
	InProgress Status = "in_progress"
	Won        Status = "won"
	Lost       Status = "lost"
)

// LossReason explains a lost game.
type LossReason string

const (
	Drowned      LossReason = "drowned"
	HeliportSunk LossReason = "heliport_sunk"
	ArtifactSunk LossReason = "artifact_sunk"
)

// TurnState is the position of the game within the current turn.
type TurnState string

const (
	AwaitingAction TurnState = "awaiting_action"
	TurnExhausted  TurnState = "turn_exhausted"
)

// Action is a player-facing command name.
type Action string

const (
	ActionMoveUp          Action = "move_up"
	ActionMoveDown        Action = "move_down"
	ActionMoveLeft        Action = "move_left"
	ActionMoveRight       Action = "move_right"
	ActionShoreUpHere     Action = "shore_up_here"
	ActionShoreUpUp       Action = "shore_up_up"
	ActionShoreUpDown     Action = "shore_up_down"
	ActionShoreUpLeft     Action = "shore_up_left"
	ActionShoreUpRight    Action = "shore_up_right"
	ActionCollectArtifact Action = "collect_artifact"
	ActionEndTurn         Action = "end_turn"
	ActionEscape          Action = "escape"
)

// Actions lists every command in display order.
var Actions = []Action{
	ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight,
	ActionShoreUpHere, ActionShoreUpUp, ActionShoreUpDown, ActionShoreUpLeft, ActionShoreUpRight,
	ActionCollectArtifact, ActionEndTurn, ActionEscape,
}

// ParseAction normalizes s ("Move-Up", " end_turn ") into a known Action.
func ParseAction(s string) (Action, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	for _, a := range Actions {
		if string(a) == norm {
			return a, true
		}
	}
	return "", false
}

// TileView is an immutable snapshot of one tile.
type TileView struct {
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Level    FloodLevel `json:"level"`
	Sea      bool       `json:"sea"`
	Heliport bool       `json:"heliport"`
	Artifact bool       `json:"artifact"`
	Occupied bool       `json:"occupied"`
}

// AdventurerView is an immutable snapshot of the adventurer.
type AdventurerView struct {
	Position         Position     `json:"position"`
	ActionsRemaining int          `json:"actions_remaining"`
	HasArtifact      bool         `json:"has_artifact"`
	Key              ArtifactKind `json:"key,omitempty"`
	// Drowned adventurers keep their last Position, but no tile is
	// occupied any more.
	Drowned bool `json:"drowned,omitempty"`
}

// FloodDraw records one end-of-turn flood decrement.
type FloodDraw struct {
	Region   int        `json:"region"`
	Position Position   `json:"position"`
	Before   FloodLevel `json:"before"`
	After    FloodLevel `json:"after"`
}

// HistoryEntry records a single command, applied or rejected.
type HistoryEntry struct {
	Number      int      `json:"number"`
	Turn        int      `json:"turn"`
	Action      Action   `json:"action"`
	From        Position `json:"from"`
	Target      Position `json:"target"`
	Applied     bool     `json:"applied"`
	Reason      Reason   `json:"reason,omitempty"`
	ActionsLeft int      `json:"actions_left"`
	Timestamp   int64    `json:"timestamp"`
}

// GameState is a read-only snapshot of a whole game.
type GameState struct {
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Tiles        [][]TileView   `json:"tiles"` // interior rows, Tiles[y-1][x-1]
	Adventurer   AdventurerView `json:"adventurer"`
	Turn         int            `json:"turn"`
	TurnState    TurnState      `json:"turn_state"`
	Status       Status         `json:"status"`
	LossReason   LossReason     `json:"loss_reason,omitempty"`
	Heliport     Position       `json:"heliport"`
	ArtifactKind ArtifactKind   `json:"artifact_kind"`
	LastFloods   []FloodDraw    `json:"last_floods,omitempty"`
	Message      string         `json:"message"`
	TotalActions int            `json:"total_actions"` // applied commands only
}

// TileAt returns the tile snapshot at interior coordinates (x, y).
func (s *GameState) TileAt(x, y int) (TileView, bool) {
	if y < 1 || y > len(s.Tiles) {
		return TileView{}, false
	}
	row := s.Tiles[y-1]
	if x < 1 || x > len(row) {
		return TileView{}, false
	}
	return row[x-1], true
}

// IsOver reports whether the game has been won or lost.
func (s *GameState) IsOver() bool {
	return s.Status != InProgress
}
