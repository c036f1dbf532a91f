// Package service provides the business logic layer for the Sinking Island
// game server.
//
// The service package implements:
//   - Multi-session game management
//   - Command parsing and dispatch to the engine
//   - Change notification to transports
//   - Action history pagination
//
// Core Interfaces:
//
// GameService is the main service interface used by the REST API and, via
// HTTP, by the MCP server. SessionManager handles session storage and is
// implemented by session.Manager.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the game engine. It is the single mutual-exclusion boundary: every
// command and query on a session's engine runs under the service lock, so
// the engine itself stays single-threaded.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	gameService := service.NewGameService(sessionMgr,
//		service.WithNotifier(func(id string, state *engine.GameState) {
//			hub.BroadcastToSession(id, state)
//		}),
//	)
//
//	info, err := gameService.CreateSession(ctx, service.CreateOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Act(ctx, info.ID, "move_up", false)
//
// Notification:
//
// The notifier runs once after every applied command and once after every
// reset, while the service lock is held. It must not call back into the
// service.
package service
