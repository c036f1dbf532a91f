package service

import (
	"time"

	"github.com/wricardo/sinking-island/game/engine"
)

// CreateOptions configures a new session. A nil Seed picks one from the
// service's seed source.
type CreateOptions struct {
	ID   string `json:"id,omitempty"`
	Seed *int64 `json:"seed,omitempty"`
}

// ListOptions controls session listing
type ListOptions struct {
	Sort  string `json:"sort"`  // "created" or "accessed"
	Order string `json:"order"` // "asc" or "desc"
	Limit int    `json:"limit"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	Seed           int64             `json:"seed"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// ActionResult contains the result of a single command
type ActionResult struct {
	Action    engine.Action      `json:"action"`
	Applied   bool               `json:"applied"`
	Reason    engine.Reason      `json:"reason,omitempty"`
	Message   string             `json:"message"`
	GameState *engine.GameState  `json:"game_state"`
	Events    []GameEvent        `json:"events,omitempty"`
	Floods    []engine.FloodDraw `json:"floods,omitempty"`
	Step      *StepInfo          `json:"step,omitempty"`
}

// BulkActionResult contains the result of several commands run in sequence
type BulkActionResult struct {
	// Summary
	RequestedActions int               `json:"requested_actions"`
	ActionsExecuted  int               `json:"actions_executed"`
	Success          bool              `json:"success"`
	GameState        *engine.GameState `json:"game_state"`
	Events           []GameEvent       `json:"events"`
	StopReason       engine.Reason     `json:"stop_reason,omitempty"`
	StoppedOnAction  int               `json:"stopped_on_action,omitempty"` // 1-based
	Truncated        bool              `json:"truncated,omitempty"`
	Limit            int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos engine.Position `json:"start_pos"`
	EndPos   engine.Position `json:"end_pos"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver bool          `json:"game_over"`
	Status   engine.Status `json:"status"`
	Message  string        `json:"message,omitempty"`
}

// StepInfo is a compact record for each command in a call
type StepInfo struct {
	Idx         int             `json:"idx"`
	Action      engine.Action   `json:"action"`
	From        engine.Position `json:"from"`
	To          engine.Position `json:"to"`
	Applied     bool            `json:"applied"`
	Reason      engine.Reason   `json:"reason,omitempty"`
	ActionsLeft int             `json:"actions_left"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "shore_up", "artifact_collected", "flood", "sunk", "swim", "victory", "game_over", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Entries      []engine.HistoryEntry `json:"entries"`
	TotalEntries int                   `json:"total_entries"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrevious  bool                  `json:"has_previous"`
}
