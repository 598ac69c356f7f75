package dialogue

import (
	"context"
	"sync"
	"time"
)

const defaultSessionTTL = 30 * time.Minute

// MemorySessionStore keeps sessions in a map behind one coarse lock.
// Suitable for a single process; use RedisSessionStore when turns for
// one user can land on different instances.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session

	now func() time.Time
}

// NewMemorySessionStore builds a store with the given TTL. A zero or
// negative TTL falls back to 30 minutes.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// freshLocked returns the live session for a user, creating it on
// first access and clearing stale slots in place. Callers must hold mu.
func (s *MemorySessionStore) freshLocked(userID string) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{UpdatedAt: s.now()}
		s.sessions[userID] = sess
		return sess
	}
	if s.now().Sub(sess.UpdatedAt) > s.ttl {
		sess.Slots = Slots{}
		sess.UpdatedAt = s.now()
	}
	return sess
}

func (s *MemorySessionStore) Get(_ context.Context, userID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.freshLocked(userID), nil
}

func (s *MemorySessionStore) Update(_ context.Context, userID string, update Slots) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.freshLocked(userID)
	sess.Slots = sess.Slots.Merge(update)
	sess.UpdatedAt = s.now()
	return *sess, nil
}

func (s *MemorySessionStore) Reset(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	sess.Slots = Slots{}
	sess.UpdatedAt = s.now()
	return nil
}

var _ SessionStore = (*MemorySessionStore)(nil)
