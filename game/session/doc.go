// Package session provides in-memory session management for the Sinking
// Island game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Seeded game creation and same-seed reset
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session store. Each service.Session owns one
// engine.GameEngine built from the session's seed, so a reset rebuilds the
// exact same island.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. Lookups are
// case-insensitive.
//
// Concurrency:
//
// The manager guards its map with a RWMutex. It does not serialize access
// to the engines it hands out; the service layer does that.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	go manager.RunCleanup(ctx, time.Hour, 24*time.Hour, logger)
//
// Sessions are never written to disk; they live as long as the process or
// until they expire.
package session
