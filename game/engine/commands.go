package engine

import (
	"fmt"
	"time"
)

var moveActions = map[Direction]Action{
	Up:    ActionMoveUp,
	Down:  ActionMoveDown,
	Left:  ActionMoveLeft,
	Right: ActionMoveRight,
}

var shoreUpActions = map[Direction]Action{
	Here:  ActionShoreUpHere,
	Up:    ActionShoreUpUp,
	Down:  ActionShoreUpDown,
	Left:  ActionShoreUpLeft,
	Right: ActionShoreUpRight,
}

// MoveAction returns the move command for dir. ok is false for Here and
// unknown directions.
func MoveAction(dir Direction) (action Action, ok bool) {
	action, ok = moveActions[dir]
	return action, ok
}

// ShoreUpAction returns the shore-up command for dir.
func ShoreUpAction(dir Direction) (action Action, ok bool) {
	action, ok = shoreUpActions[dir]
	return action, ok
}

func (e *GameEngine) MoveUp() Outcome { return e.Move(Up) }
func (e *GameEngine) MoveDown() Outcome { return e.Move(Down) }
func (e *GameEngine) MoveLeft() Outcome { return e.Move(Left) }
func (e *GameEngine) MoveRight() Outcome { return e.Move(Right) }

func (e *GameEngine) ShoreUpHere() Outcome { return e.ShoreUp(Here) }
func (e *GameEngine) ShoreUpUp() Outcome { return e.ShoreUp(Up) }
func (e *GameEngine) ShoreUpDown() Outcome { return e.ShoreUp(Down) }
func (e *GameEngine) ShoreUpLeft() Outcome { return e.ShoreUp(Left) }
func (e *GameEngine) ShoreUpRight() Outcome { return e.ShoreUp(Right) }

// Move steps the adventurer one tile in dir. It needs one action and a
// passable destination; otherwise nothing changes.
func (e *GameEngine) Move(dir Direction) Outcome {
	action, known := moveActions[dir]
	if !known {
		action = Action("move_" + string(dir))
	}
	from := e.adventurer.Position()
	target, _ := from.Step(dir)

	out := e.move(dir, known, from, target)
	e.finish(action, from, target, out)
	return out
}

func (e *GameEngine) move(dir Direction, known bool, from, target Position) Outcome {
	if !known {
		return rejected(ReasonInvalidAction)
	}
	if e.status != InProgress {
		return rejected(ReasonGameOver)
	}
	if e.adventurer.ActionsRemaining() < 1 {
		return rejected(ReasonOutOfActions)
	}
	dest, ok := e.board.At(target)
	if !ok || !dest.IsPassable() {
		return rejected(ReasonImpassableDestination)
	}

	e.adventurer.SpendAction()
	e.tileAt(from).setOccupied(false)
	dest.setOccupied(true)
	e.adventurer.MoveTo(target)
	e.message = fmt.Sprintf("Moved %s to %v. Actions left: %d", dir, target, e.adventurer.ActionsRemaining())
	return applied()
}

// ShoreUp raises the flooded tile at the adventurer's position or one step
// away back to normal. It does not consume an action.
func (e *GameEngine) ShoreUp(dir Direction) Outcome {
	action, known := shoreUpActions[dir]
	if !known {
		action = Action("shore_up_" + string(dir))
	}
	from := e.adventurer.Position()
	target, _ := from.Step(dir)

	out := e.shoreUp(known, target)
	e.finish(action, from, target, out)
	return out
}

func (e *GameEngine) shoreUp(known bool, target Position) Outcome {
	if !known {
		return rejected(ReasonInvalidAction)
	}
	if e.status != InProgress {
		return rejected(ReasonGameOver)
	}
	t, ok := e.board.At(target)
	if !ok || !t.ShoreUp() {
		return rejected(ReasonNothingToShoreUp)
	}
	e.message = fmt.Sprintf("Shored up %v", target)
	return applied()
}

// CollectArtifact picks up the artifact lying on the adventurer's tile.
func (e *GameEngine) CollectArtifact() Outcome {
	pos := e.adventurer.Position()
	out := e.collect(pos)
	e.finish(ActionCollectArtifact, pos, pos, out)
	return out
}

func (e *GameEngine) collect(pos Position) Outcome {
	if e.status != InProgress {
		return rejected(ReasonGameOver)
	}
	t := e.tileAt(pos)
	// The adventurer's own occupancy does not count against passability.
	if !t.HasArtifact() || t.IsSea() || t.Level() == Sunk {
		return rejected(ReasonNoArtifactHere)
	}
	t.setArtifact(false)
	e.adventurer.CollectArtifact()
	e.message = fmt.Sprintf("Collected the %s artifact. Head for the heliport at %v.", e.artifactKind, e.heliport)
	return applied()
}

// Escape ends the game in victory when the adventurer stands on the heliport
// holding the artifact.
func (e *GameEngine) Escape() Outcome {
	pos := e.adventurer.Position()
	out := e.escape(pos)
	e.finish(ActionEscape, pos, pos, out)
	return out
}

func (e *GameEngine) escape(pos Position) Outcome {
	if e.status != InProgress {
		return rejected(ReasonGameOver)
	}
	if !e.tileAt(pos).IsHeliport() {
		return rejected(ReasonNotOnHeliport)
	}
	if !e.adventurer.HasArtifact() {
		return rejected(ReasonArtifactNotCollected)
	}
	e.status = Won
	e.message = fmt.Sprintf("Escaped with the %s artifact on turn %d!", e.artifactKind, e.turn)
	return applied()
}

// EndTurn restores the action budget and floods one tile from each region.
// It is always applied, even after the game has been decided; decrements on
// sunk tiles are no-ops.
func (e *GameEngine) EndTurn() Outcome {
	pos := e.adventurer.Position()

	e.adventurer.ResetActions()
	draws := make([]FloodDraw, 0, RegionCount)
	for _, r := range floodRegions {
		p := r.draw(e.rng)
		t := e.tileAt(p)
		before := t.Level()
		t.FloodOneStep()
		draws = append(draws, FloodDraw{Region: r.Index, Position: p, Before: before, After: t.Level()})
	}
	e.lastFloods = draws
	e.turn++

	e.message = fmt.Sprintf("Turn %d: the waters rise.", e.turn)
	e.resolveSinking(draws)

	out := applied()
	e.finish(ActionEndTurn, pos, e.adventurer.Position(), out)
	return out
}

// resolveSinking applies the consequences of tiles that sank this turn. Loss
// conditions only count while the game is in progress, but a sunk tile is
// never left occupied.
func (e *GameEngine) resolveSinking(draws []FloodDraw) {
	for _, d := range draws {
		if d.Before == Sunk || d.After != Sunk {
			continue
		}
		switch {
		case d.Position == e.heliport:
			e.lose(HeliportSunk)
		case d.Position == e.artifactPos && !e.adventurer.HasArtifact():
			e.lose(ArtifactSunk)
		}
	}

	if e.adventurer.Drowned() {
		return
	}
	pos := e.adventurer.Position()
	here := e.tileAt(pos)
	if here.Level() != Sunk {
		return
	}
	here.setOccupied(false)
	for _, dir := range []Direction{Up, Down, Left, Right} {
		if t, ok := e.board.Neighbor(pos, dir); ok && t.IsPassable() {
			t.setOccupied(true)
			e.adventurer.MoveTo(t.Position())
			e.message = fmt.Sprintf("%v sank! Swam %s to %v.", pos, dir, t.Position())
			return
		}
	}
	e.adventurer.drown()
	e.lose(Drowned)
}

func (e *GameEngine) lose(reason LossReason) {
	if e.status != InProgress {
		return
	}
	e.status = Lost
	e.lossReason = reason
	switch reason {
	case Drowned:
		e.message = "The adventurer drowned. The island is lost."
	case HeliportSunk:
		e.message = "The heliport sank. The island is lost."
	case ArtifactSunk:
		e.message = "The artifact sank beneath the waves. The island is lost."
	}
}

// Apply dispatches a command by name.
func (e *GameEngine) Apply(action Action) Outcome {
	switch action {
	case ActionMoveUp:
		return e.MoveUp()
	case ActionMoveDown:
		return e.MoveDown()
	case ActionMoveLeft:
		return e.MoveLeft()
	case ActionMoveRight:
		return e.MoveRight()
	case ActionShoreUpHere:
		return e.ShoreUpHere()
	case ActionShoreUpUp:
		return e.ShoreUpUp()
	case ActionShoreUpDown:
		return e.ShoreUpDown()
	case ActionShoreUpLeft:
		return e.ShoreUpLeft()
	case ActionShoreUpRight:
		return e.ShoreUpRight()
	case ActionCollectArtifact:
		return e.CollectArtifact()
	case ActionEndTurn:
		return e.EndTurn()
	case ActionEscape:
		return e.Escape()
	}
	pos := e.adventurer.Position()
	out := rejected(ReasonInvalidAction)
	e.finish(action, pos, pos, out)
	return out
}

// finish records the command and notifies observers if it was applied.
func (e *GameEngine) finish(action Action, from, target Position, out Outcome) {
	e.history = append(e.history, HistoryEntry{
		Number:      len(e.history) + 1,
		Turn:        e.turn,
		Action:      action,
		From:        from,
		Target:      target,
		Applied:     out.Applied,
		Reason:      out.Reason,
		ActionsLeft: e.adventurer.ActionsRemaining(),
		Timestamp:   time.Now().Unix(),
	})
	if out.Applied {
		e.appliedCount++
		e.notify()
	}
}
