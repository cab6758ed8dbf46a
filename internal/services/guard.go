// Package services – ProcessGuard
//
// The guard serializes message processing per user identity. It is an
// in-memory concurrent set with atomic test-and-set acquire: a second message
// arriving while one is in flight for the same user is dropped, not queued.
// That at-most-once-in-flight policy is deliberate; fairness and ordering
// across messages are explicitly not goals.
package services

import "sync"

// ProcessGuard tracks which user identities currently have a message in
// flight. The zero value is not usable; construct with NewProcessGuard.
type ProcessGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewProcessGuard returns an empty guard.
func NewProcessGuard() *ProcessGuard {
	return &ProcessGuard{inFlight: make(map[string]struct{})}
}

// Acquire attempts to claim the processing slot for userID. It returns true
// when the slot was free; false means another message for the same user is
// still being processed and the caller must drop this one.
func (g *ProcessGuard) Acquire(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.inFlight[userID]; held {
		return false
	}
	g.inFlight[userID] = struct{}{}
	return true
}

// Release frees the processing slot for userID. It must be called on every
// exit path of a processing pass that acquired the slot, including panics
// (use defer immediately after a successful Acquire).
func (g *ProcessGuard) Release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, userID)
}

// Held reports whether userID currently has a pass in flight.
func (g *ProcessGuard) Held(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.inFlight[userID]
	return held
}
