package gacha

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSessionAcquireRelease(t *testing.T) {
	m := NewSessionManager()

	if !m.Acquire("user-1") {
		t.Fatal("first acquire should succeed")
	}
	if m.Acquire("user-1") {
		t.Fatal("second acquire for same user should fail")
	}
	if !m.Acquire("user-2") {
		t.Fatal("different user should not be blocked")
	}

	m.Release("user-1")
	if !m.Acquire("user-1") {
		t.Fatal("acquire after release should succeed")
	}
}

func TestSessionExpiryTakeover(t *testing.T) {
	m := NewSessionManager()
	m.lockDuration = time.Millisecond

	if !m.Acquire("user-1") {
		t.Fatal("first acquire should succeed")
	}
	time.Sleep(5 * time.Millisecond)
	if !m.Acquire("user-1") {
		t.Fatal("expired session should be taken over")
	}
}

func TestSessionExpiryTakeoverSingleWinner(t *testing.T) {
	m := NewSessionManager()
	m.lockDuration = 50 * time.Millisecond

	if !m.Acquire("user-1") {
		t.Fatal("first acquire should succeed")
	}
	time.Sleep(60 * time.Millisecond)

	const racers = 16
	var wg sync.WaitGroup
	var wins atomic.Int32
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if m.Acquire("user-1") {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("expired session taken over by %d racers, want exactly 1", got)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	m := NewSessionManager()
	m.lockDuration = time.Millisecond

	m.Acquire("user-1")
	time.Sleep(5 * time.Millisecond)
	m.cleanupExpiredSessions()

	if _, ok := m.activeSessions.Load("user-1"); ok {
		t.Fatal("expired session should have been reaped")
	}
}
