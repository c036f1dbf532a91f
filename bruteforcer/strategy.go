package main

import (
	"github.com/wricardo/sinking-island/game/engine"
)

// RouteStrategy walks the shortest dry route to the artifact and then to
// the heliport. Shoring up is free, so every flooded tile in reach is
// raised before moving. The direction order breaks ties between equally
// short routes; trying every order is what the brute force iterates over.
type RouteStrategy struct {
	order []engine.Direction
	// ShoreUp disables shoring when false.
	ShoreUp bool
}

// NewRouteStrategy returns a strategy that prefers directions in order.
func NewRouteStrategy(order []engine.Direction, shoreUp bool) *RouteStrategy {
	return &RouteStrategy{
		order:   order,
		ShoreUp: shoreUp,
	}
}

// directionOrders lists every permutation of the four move directions.
func directionOrders() [][]engine.Direction {
	base := []engine.Direction{engine.Up, engine.Down, engine.Left, engine.Right}
	var out [][]engine.Direction
	var permute func(k int)
	permute = func(k int) {
		if k == len(base) {
			out = append(out, append([]engine.Direction(nil), base...))
			return
		}
		for i := k; i < len(base); i++ {
			base[k], base[i] = base[i], base[k]
			permute(k + 1)
			base[k], base[i] = base[i], base[k]
		}
	}
	permute(0)
	return out
}

// Target is where the adventurer is heading.
func (s *RouteStrategy) Target(state *engine.GameState) (engine.Position, bool) {
	if state.Adventurer.HasArtifact {
		return state.Heliport, true
	}
	for _, row := range state.Tiles {
		for _, t := range row {
			if t.Artifact {
				return engine.Position{X: t.X, Y: t.Y}, true
			}
		}
	}
	return engine.Position{}, false
}

// NextAction picks the next command. It returns "" once the game is over.
func (s *RouteStrategy) NextAction(state *engine.GameState) engine.Action {
	if state.IsOver() {
		return ""
	}

	adv := state.Adventurer
	pos := adv.Position
	here, _ := state.TileAt(pos.X, pos.Y)

	if here.Artifact && !adv.HasArtifact {
		return engine.ActionCollectArtifact
	}
	if here.Heliport && adv.HasArtifact {
		return engine.ActionEscape
	}

	if s.ShoreUp {
		for _, dir := range append([]engine.Direction{engine.Here}, s.order...) {
			p, _ := pos.Step(dir)
			if t, ok := state.TileAt(p.X, p.Y); ok && t.Level == engine.Flooded {
				action, _ := engine.ShoreUpAction(dir)
				return action
			}
		}
	}

	if adv.ActionsRemaining == 0 {
		return engine.ActionEndTurn
	}

	target, ok := s.Target(state)
	if !ok {
		return engine.ActionEndTurn
	}
	path := s.BFS(pos, target, state)
	if len(path) == 0 {
		// Cut off: end turns until the game is decided.
		return engine.ActionEndTurn
	}
	action, _ := engine.MoveAction(path[0])
	return action
}

// BFS returns the directions of a shortest route from start to goal over
// tiles that have not sunk, or nil when there is none.
func (s *RouteStrategy) BFS(start, goal engine.Position, state *engine.GameState) []engine.Direction {
	if start == goal {
		return []engine.Direction{}
	}

	type queueItem struct {
		pos  engine.Position
		path []engine.Direction
	}

	queue := []queueItem{{pos: start, path: []engine.Direction{}}}
	visited := map[engine.Position]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range s.order {
			next, _ := current.pos.Step(dir)
			if visited[next] || !isPassable(next, state) {
				continue
			}

			path := append(append([]engine.Direction{}, current.path...), dir)
			if next == goal {
				return path
			}
			visited[next] = true
			queue = append(queue, queueItem{pos: next, path: path})
		}
	}
	return nil
}

func isPassable(p engine.Position, state *engine.GameState) bool {
	t, ok := state.TileAt(p.X, p.Y)
	return ok && !t.Sea && t.Level != engine.Sunk
}
