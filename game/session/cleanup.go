package session

import (
	"context"
	"time"

	log "github.com/inconshreveable/log15/v3"
)

// RunCleanup removes sessions idle for longer than maxAge every interval
// until ctx is cancelled.
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration, logger log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed, "remaining", m.Count())
			}
		}
	}
}
