package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore maps a session id to the signed-in user id. Deleting a session
// revokes every token that carries its id.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (string, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

/* ============================== In memory =============================== */

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process. Sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]memorySession{}, now: time.Now}
}

func (s *MemorySessionStore) Create(_ context.Context, sessionID, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memorySession{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return "", false, nil
	}
	return sess.userID, true, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

/* ================================ Redis ================================= */

const redisSessionPrefix = "session:"

// RedisSessionStore keeps sessions in Redis with a TTL so they expire on their own.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore dials lazily; the first command opens the connection.
func NewRedisSessionStore(addr, password string) *RedisSessionStore {
	return NewRedisSessionStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	}))
}

func NewRedisSessionStoreWithClient(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Ping checks connectivity at startup.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, redisSessionPrefix+sessionID, userID, ttl).Err()
}

func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := s.client.Get(ctx, redisSessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisSessionPrefix+sessionID).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

func (s *RedisSessionStore) Close() error { return s.client.Close() }
