// Package websocket pushes game state to browsers and other watchers.
//
// A central Hub groups connections by session ID (case-insensitive). The
// game service's notifier calls BroadcastToSession after every applied
// command and after every reset; the hub queues the update on a buffered
// channel and drops it, with a warning, when the queue is full, so game
// commands never wait on slow watchers.
//
// Outgoing messages are JSON:
//
//	{"id": "<uuid>", "session_id": "abcd", "event": "state_update", "game_state": {...}}
//
// Clients attach with GET /ws?session=<id>. Incoming frames are read only to
// detect disconnects.
//
// Usage:
//
//	hub := websocket.NewHub(settings.WebSocketBuffer, logger)
//	go hub.Run(ctx)
//	svc := service.NewGameService(manager, service.WithNotifier(hub.BroadcastToSession))
package websocket
