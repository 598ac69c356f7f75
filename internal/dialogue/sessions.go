package dialogue

import (
	"context"
	"time"
)

// Session holds one user's collected slots. A session past its TTL is
// cleared in place on the next read rather than deleted.
type Session struct {
	Slots     Slots     `json:"slots"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore is the only mutable shared state in the service. Every
// implementation must serialize read-modify-write access per user key;
// nothing is required across different users.
type SessionStore interface {
	// Get returns the user's session, creating a fresh one on first
	// access and clearing the slots of a stale one before returning it.
	Get(ctx context.Context, userID string) (Session, error)
	// Update merges non-empty slot values into the session and
	// refreshes its timestamp.
	Update(ctx context.Context, userID string, update Slots) (Session, error)
	// Reset clears all slots. No-op for a user with no session yet.
	Reset(ctx context.Context, userID string) error
}
