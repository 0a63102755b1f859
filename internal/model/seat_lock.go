package model

import "time"

// SeatLock is a time-bounded exclusive claim on one (event, seat) pair
// held by one client session.  At most one live (non-expired) lock may
// exist per pair at any instant.  A lock held by a session does not
// block that same session from re-locking the seat; the re-lock is an
// idempotent refresh that overwrites the expiry.  Locks are owned by
// the in-memory lock manager and are never persisted: a lock's absence
// is the "available" state.
//
// Fields:
//  EventID   - event the claim is scoped to.
//  SeatID    - seat being claimed.
//  SessionID - opaque client-supplied session identifier.
//  CreatedAt - when the lock was granted.
//  ExpiresAt - when the lock lapses and the seat returns to the pool.
type SeatLock struct {
	EventID   uint64
	SeatID    uint64
	SessionID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Live reports whether the lock has not yet expired at the given instant.
func (l SeatLock) Live(now time.Time) bool {
	return l.ExpiresAt.After(now)
}
