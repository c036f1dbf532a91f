// Package engine provides the core game logic for the Sinking Island game.
//
// The engine package implements the game mechanics including:
//   - A 6x6 island of tiles surrounded by a ring of sea tiles
//   - Flood levels (normal, flooded, sunk) and their transitions
//   - The adventurer's position and per-turn action budget
//   - Movement, shoring up, artifact collection and escape
//   - End-of-turn flooding drawn from six fixed flood regions
//
// Core Types:
//
// GameEngine is the sole mutator of the Board and the Adventurer. Every
// command returns an Outcome that says whether it was applied and, if not,
// why it was rejected. Rejections never change state and never notify
// observers. GameState is a read-only snapshot for renderers.
//
// Usage:
//
//	eng := engine.NewEngineWithSeed(42)
//	eng.Subscribe(func() {
//		fmt.Println(engine.Render(eng.State()))
//	})
//
//	if out := eng.MoveUp(); !out.Applied {
//		fmt.Println("rejected:", out.Reason)
//	}
//	eng.ShoreUpHere()
//	eng.EndTurn()
//
// Game Rules:
//
// The adventurer has three actions per turn. Moving costs one action,
// shoring up a flooded tile is free. At the end of each turn the budget is
// restored and one tile from each flood region floods one step. The game is
// won by collecting the artifact and escaping from the heliport, and lost
// when the adventurer drowns, the heliport sinks, or the artifact sinks
// before it was collected.
//
// The engine is not safe for concurrent use. Hosts serving concurrent
// requests must serialize access to a GameEngine.
package engine
