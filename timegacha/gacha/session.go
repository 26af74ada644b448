package gacha

import (
	"context"
	"sync"
	"time"
)

// SessionManager serializes draw operations per user. A user holds at
// most one draw session at a time; stale sessions are reaped so a
// crashed caller cannot wedge a user forever.
type SessionManager struct {
	activeSessions sync.Map // userID -> session start time.Time
	lockDuration   time.Duration
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		lockDuration: 30 * time.Second,
	}
}

// Acquire tries to open a draw session for the user. Returns false if
// the user already has a live session.
func (m *SessionManager) Acquire(userID string) bool {
	now := time.Now()
	started, loaded := m.activeSessions.LoadOrStore(userID, now)
	if !loaded {
		return true
	}
	if now.Sub(started.(time.Time)) <= m.lockDuration {
		return false
	}
	// Session expired; the swap only succeeds for one caller, so two
	// racers cannot both take the stale session over.
	return m.activeSessions.CompareAndSwap(userID, started, now)
}

func (m *SessionManager) Release(userID string) {
	m.activeSessions.Delete(userID)
}

func (m *SessionManager) cleanupExpiredSessions() {
	now := time.Now()
	m.activeSessions.Range(func(key, value interface{}) bool {
		if now.Sub(value.(time.Time)) > m.lockDuration {
			m.activeSessions.Delete(key)
		}
		return true
	})
}

func (m *SessionManager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.cleanupExpiredSessions()
			}
		}
	}()
}
