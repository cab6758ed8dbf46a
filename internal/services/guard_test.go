package services

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestProcessGuard_AcquireRelease(t *testing.T) {
	g := NewProcessGuard()

	if !g.Acquire("u1") {
		t.Fatalf("first acquire should succeed")
	}
	if g.Acquire("u1") {
		t.Fatalf("second acquire for same user should fail")
	}
	if !g.Acquire("u2") {
		t.Fatalf("different user should not be blocked")
	}
	if !g.Held("u1") || !g.Held("u2") {
		t.Fatalf("both slots should be held")
	}

	g.Release("u1")
	if g.Held("u1") {
		t.Fatalf("released slot still held")
	}
	if !g.Acquire("u1") {
		t.Fatalf("acquire after release should succeed")
	}
}

func TestProcessGuard_ReleaseWithoutAcquire(t *testing.T) {
	g := NewProcessGuard()
	g.Release("ghost") // must not panic
	if g.Held("ghost") {
		t.Fatalf("ghost should not be held")
	}
}

// Many goroutines race for the same user's slot; exactly one may win per
// round.
func TestProcessGuard_ConcurrentAcquireIsExclusive(t *testing.T) {
	g := NewProcessGuard()
	const workers = 64
	const rounds = 50

	for round := 0; round < rounds; round++ {
		var wins int64
		var wg sync.WaitGroup
		start := make(chan struct{})

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if g.Acquire("u1") {
					atomic.AddInt64(&wins, 1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if wins != 1 {
			t.Fatalf("round %d: %d acquisitions succeeded, want exactly 1", round, wins)
		}
		g.Release("u1")
	}
}
