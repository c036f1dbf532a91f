package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/sinking-island/game/engine"
)

var (
	// ErrInvalidAction is returned for action names the engine does not know.
	ErrInvalidAction = errors.New("invalid action")
	// ErrTileOutOfRange is returned for coordinates beyond the sea ring.
	ErrTileOutOfRange = errors.New("tile out of range")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context, opts ListOptions) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Act(ctx context.Context, sessionID, action string, reset bool) (*ActionResult, error)
	BulkAct(ctx context.Context, sessionID string, actions []string, reset bool) (*BulkActionResult, error)
	EndTurn(ctx context.Context, sessionID string) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTile(ctx context.Context, sessionID string, x, y int) (*engine.TileView, error)
	GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	FloodRegions(ctx context.Context) []engine.Region
}

// SessionManager defines session storage operations. List returns
// snapshots; Get returns the live session.
type SessionManager interface {
	Create(id string, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Reset(id string) (*Session, error)
}

// Notifier receives the state of a session after every applied command and
// after every reset.
type Notifier func(sessionID string, state *engine.GameState)

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Seed           int64
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// watching is the engine the service's observer is attached to.
	watching *engine.GameEngine
}
