package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var sessionTracer = otel.Tracer("chatpi.internal.dialogue.sessions")

// RedisSessionStore keeps sessions in Redis so multi-turn state
// survives restarts and is shared across instances. The key TTL doubles
// as the staleness bound: an expired key simply reads as a fresh
// session, which matches the clear-on-read contract.
//
// The read-merge-write in Update is not atomic across instances. The
// chat platform serializes turns per user, which is the only ordering
// the store has to honor.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisSessionStore builds a store on an existing client. A zero or
// negative TTL falls back to 30 minutes.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("dialogue: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl, tracer: sessionTracer}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

func (s *RedisSessionStore) Get(ctx context.Context, userID string) (Session, error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.session_get")
	defer span.End()

	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return Session{UpdatedAt: time.Now()}, nil
	}
	if err != nil {
		span.RecordError(err)
		return Session{}, fmt.Errorf("dialogue: failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return Session{}, fmt.Errorf("dialogue: failed to decode session: %w", err)
	}
	if time.Since(sess.UpdatedAt) > s.ttl {
		sess.Slots = Slots{}
		sess.UpdatedAt = time.Now()
	}
	return sess, nil
}

func (s *RedisSessionStore) Update(ctx context.Context, userID string, update Slots) (Session, error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.session_update")
	defer span.End()

	sess, err := s.Get(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	sess.Slots = sess.Slots.Merge(update)
	sess.UpdatedAt = time.Now()
	if err := s.put(ctx, userID, sess); err != nil {
		span.RecordError(err)
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisSessionStore) Reset(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.session_reset")
	defer span.End()

	exists, err := s.client.Exists(ctx, sessionKey(userID)).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: failed to check session: %w", err)
	}
	if exists == 0 {
		return nil
	}
	if err := s.put(ctx, userID, Session{UpdatedAt: time.Now()}); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *RedisSessionStore) put(ctx context.Context, userID string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("dialogue: failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("dialogue: failed to persist session: %w", err)
	}
	return nil
}

var _ SessionStore = (*RedisSessionStore)(nil)
