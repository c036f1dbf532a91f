// Package mcp exposes Sinking Island to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool calls the REST API (package api)
// and formats the JSON it gets back as plain text. Nothing here holds game
// state.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, adventurer and a hint for the next command
//   - act: one command; rejected commands are reported, not failed
//   - bulk_act: several commands, stopping at the first rejection
//   - end_turn: restore actions and flood one tile per region
//   - reset_game: restart on the same island
//   - action_history: paginated command log
//   - describe_tile: one tile, sea ring included
//   - flood_regions: the six flood regions
//   - game_instructions: the rules
//
// Transports:
//
//	client := mcp.NewClient("http://localhost:8080")
//	client.ServeStdio(ctx, os.Stdin, os.Stdout)   // local agents
//	api.NewServer(svc, hub, api.WithMCPHandler(client.HTTPHandler())) // POST /mcp
package mcp
