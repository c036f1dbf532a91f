// Package api provides the HTTP REST API for Sinking Island games.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create ({"id"?, "seed"?}) → 201 SessionInfo
//   - GET    /api/sessions              list (sort=created|accessed, order=asc|desc, limit)
//   - GET    /api/sessions/{id}         session info with game state
//   - DELETE /api/sessions/{id}
//
// Game:
//   - GET  /api/sessions/{id}/state
//   - GET  /api/sessions/{id}/tiles/{x}/{y}   one tile, sea ring included
//   - POST /api/sessions/{id}/actions         {"action": "move_up", "reset": false}
//   - POST /api/sessions/{id}/bulk-actions    {"actions": ["move_up", "shore_up_here"]}
//   - POST /api/sessions/{id}/end-turn
//   - POST /api/sessions/{id}/reset           same seed, same island
//   - GET  /api/sessions/{id}/history         page, limit, order
//
// Other:
//   - GET  /api/regions   flood region table
//   - GET  /api/health
//   - GET  /ws?session=<id>   WebSocket state updates
//   - POST /mcp               MCP JSON-RPC, when mounted with WithMCPHandler
//
// A rejected game command is not an HTTP error: the response is 200 with
// "applied": false and a "reason". Errors are JSON {"error": "..."} with
// 400 for bad bodies and unknown action names, 404 for unknown sessions and
// tiles outside the grid, 409 for duplicate session IDs.
//
// Every request gets an X-Request-Id header and a debug log line; handler
// panics are recovered and answered with 500.
package api
