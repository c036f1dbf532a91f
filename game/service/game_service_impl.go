package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/inconshreveable/log15/v3"

	"github.com/wricardo/sinking-island/game/engine"
	"github.com/wricardo/sinking-island/logging"
)

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithNotifier registers the receiver of state changes.
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(l log.Logger) Option {
	return func(s *gameServiceImpl) { s.log = l }
}

// WithSeedSource sets where seeds come from when a session is created
// without one.
func WithSeedSource(fn func() int64) Option {
	return func(s *gameServiceImpl) { s.seeds = fn }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	notifier Notifier
	seeds    func() int64
	log      log.Logger

	// mu guards every engine and every live session's access time.
	mu sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		seeds:    func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := s.seeds()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	session, err := s.sessions.Create(opts.ID, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.watch(session)
	s.log.Info("session created", "session", session.ID, "seed", seed)

	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context, opts ListOptions) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	key := func(sess *Session) time.Time { return sess.CreatedAt }
	if opts.Sort == "accessed" {
		key = func(sess *Session) time.Time { return sess.LastAccessedAt }
	}
	desc := strings.EqualFold(opts.Order, "desc")
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := key(sessions[i]), key(sessions[j])
		if a.Equal(b) {
			return sessions[i].ID < sessions[j].ID
		}
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})
	if opts.Limit > 0 && len(sessions) > opts.Limit {
		sessions = sessions[:opts.Limit]
	}

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.Info("session deleted", "session", sessionID)
	return nil
}

// Act executes a single command for a session
func (s *gameServiceImpl) Act(ctx context.Context, sessionID, name string, reset bool) (*ActionResult, error) {
	action, ok := engine.ParseAction(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		if sess, err = s.reset(sessionID); err != nil {
			return nil, err
		}
		events = append(events, resetEvent())
	}

	result := s.apply(sess, action, 1)
	result.Events = append(events, result.Events...)
	return result, nil
}

// BulkAct executes several commands in sequence, stopping at the first
// rejection.
func (s *gameServiceImpl) BulkAct(ctx context.Context, sessionID string, names []string, reset bool) (*BulkActionResult, error) {
	actions := make([]engine.Action, 0, len(names))
	for i, name := range names {
		action, ok := engine.ParseAction(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidAction, name, i+1)
		}
		actions = append(actions, action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkActionResult{
		RequestedActions: len(actions),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	if reset {
		if sess, err = s.reset(sessionID); err != nil {
			return nil, err
		}
		result.Events = append(result.Events, resetEvent())
	}
	result.StartPos = sess.Engine.AdventurerPosition()

	// Limit actions to prevent abuse
	if len(actions) > engine.MaxBulkActions {
		result.Truncated = true
		result.Limit = engine.MaxBulkActions
		actions = actions[:engine.MaxBulkActions]
	}

	for i, action := range actions {
		step := s.apply(sess, action, i+1)
		result.Steps = append(result.Steps, *step.Step)
		result.Events = append(result.Events, step.Events...)
		if !step.Applied {
			result.Success = false
			result.StopReason = step.Reason
			result.StoppedOnAction = i + 1
			break
		}
		result.ActionsExecuted++
	}

	state := sess.Engine.State()
	result.GameState = state
	result.EndPos = state.Adventurer.Position
	result.GameOver = state.IsOver()
	result.Status = state.Status
	result.Message = state.Message
	return result, nil
}

// EndTurn floods the island and starts the next turn
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.apply(sess, engine.ActionEndTurn, 1), nil
}

// Reset replaces a session's game with a fresh island built from the same
// seed
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.reset(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.State(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.State(), nil
}

// GetTile returns one tile of the allocated grid, sea ring included
func (s *gameServiceImpl) GetTile(ctx context.Context, sessionID string, x, y int) (*engine.TileView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	tile, ok := sess.Engine.Tile(x, y)
	if !ok {
		return nil, fmt.Errorf("tile (%d,%d): %w", x, y, ErrTileOutOfRange)
	}
	return &tile, nil
}

// GetActionHistory returns paginated action history
func (s *gameServiceImpl) GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return paginate(sess.Engine.History(), opts), nil
}

// FloodRegions returns the fixed region table
func (s *gameServiceImpl) FloodRegions(ctx context.Context) []engine.Region {
	return engine.FloodRegions()
}

// session looks up a session and refreshes its access time. Callers hold
// the write lock.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// reset rebuilds the session's engine and announces the fresh state.
// Callers hold the write lock.
func (s *gameServiceImpl) reset(sessionID string) (*Session, error) {
	sess, err := s.sessions.Reset(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.watch(sess)
	s.log.Info("session reset", "session", sess.ID, "seed", sess.Seed)
	s.notify(sess.ID, sess.Engine.State())
	return sess, nil
}

// watch attaches the notifier to the session's current engine once. The
// subscription lives with the engine, so nothing outlives a dropped session.
func (s *gameServiceImpl) watch(sess *Session) {
	if sess.watching == sess.Engine {
		return
	}
	sess.watching = sess.Engine
	id, eng := sess.ID, sess.Engine
	eng.Subscribe(func() {
		s.notify(id, eng.State())
	})
}

func (s *gameServiceImpl) notify(sessionID string, state *engine.GameState) {
	if s.notifier != nil {
		s.notifier(sessionID, state)
	}
}

// apply runs one command under the write lock and describes what changed.
func (s *gameServiceImpl) apply(sess *Session, action engine.Action, idx int) *ActionResult {
	s.watch(sess)

	eng := sess.Engine
	before := eng.State()
	out := eng.Apply(action)
	after := eng.State()

	to := after.Adventurer.Position
	if last := eng.LastEntry(); !out.Applied && last != nil {
		to = last.Target
	}

	result := &ActionResult{
		Action:    action,
		Applied:   out.Applied,
		Reason:    out.Reason,
		Message:   after.Message,
		GameState: after,
		Step: &StepInfo{
			Idx:         idx,
			Action:      action,
			From:        before.Adventurer.Position,
			To:          to,
			Applied:     out.Applied,
			Reason:      out.Reason,
			ActionsLeft: after.Adventurer.ActionsRemaining,
		},
	}
	if !out.Applied {
		result.Message = out.Message()
		s.log.Debug("command rejected", "session", sess.ID, "action", action, "reason", out.Reason)
		return result
	}

	if action == engine.ActionEndTurn {
		result.Floods = after.LastFloods
	}
	result.Events = extractEvents(action, before, after)
	s.log.Debug("command applied", "session", sess.ID, "action", action, "turn", after.Turn)
	return result
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.State(),
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to its initial island",
		Timestamp: time.Now(),
	}
}

// extractEvents derives gameplay events from two snapshots around an applied
// command.
func extractEvents(action engine.Action, before, after *engine.GameState) []GameEvent {
	now := time.Now()
	pos := after.Adventurer.Position
	events := []GameEvent{}

	switch action {
	case engine.ActionMoveUp, engine.ActionMoveDown, engine.ActionMoveLeft, engine.ActionMoveRight:
		events = append(events, GameEvent{Type: "move", Message: after.Message, Timestamp: now, Position: pos})
	case engine.ActionShoreUpHere, engine.ActionShoreUpUp, engine.ActionShoreUpDown, engine.ActionShoreUpLeft, engine.ActionShoreUpRight:
		events = append(events, GameEvent{Type: "shore_up", Message: after.Message, Timestamp: now, Position: pos})
	case engine.ActionCollectArtifact:
		events = append(events, GameEvent{
			Type:      "artifact_collected",
			Message:   fmt.Sprintf("Collected the %s artifact", after.ArtifactKind),
			Timestamp: now,
			Position:  pos,
		})
	case engine.ActionEndTurn:
		for _, d := range after.LastFloods {
			switch {
			case d.Before == d.After:
				continue
			case d.After == engine.Sunk:
				events = append(events, GameEvent{Type: "sunk", Message: fmt.Sprintf("%v sank", d.Position), Timestamp: now, Position: d.Position})
			default:
				events = append(events, GameEvent{Type: "flood", Message: fmt.Sprintf("%v flooded", d.Position), Timestamp: now, Position: d.Position})
			}
		}
		if before.Adventurer.Position != pos && !after.Adventurer.Drowned {
			events = append(events, GameEvent{
				Type:      "swim",
				Message:   fmt.Sprintf("Swam from %v to %v", before.Adventurer.Position, pos),
				Timestamp: now,
				Position:  pos,
			})
		}
	}

	if before.Status == engine.InProgress && after.Status != engine.InProgress {
		if after.Status == engine.Won {
			events = append(events, GameEvent{Type: "victory", Message: after.Message, Timestamp: now, Position: pos})
		} else {
			events = append(events, GameEvent{
				Type:      "game_over",
				Message:   fmt.Sprintf("%s: %s", after.LossReason, after.Message),
				Timestamp: now,
			})
		}
	}
	return events
}

// paginate slices history by page. Defaults: page 1, 20 per page (max 100),
// newest first.
func paginate(history []engine.HistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []engine.HistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				entries = append(entries, history[i])
			}
		} else {
			entries = append(entries, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Entries:      entries,
		TotalEntries: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}
}
