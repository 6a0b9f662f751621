package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"talenthunt/internal/auth/models"
	id "talenthunt/pkg/domain"
	"talenthunt/pkg/platform/sentinel"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore persists sessions in Redis with a TTL bound to the
// session expiry, so dead sessions disappear without a sweeper.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrInvalidState
	}
	key := sessionKeyPrefix + session.ID.String()
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	key := sessionKeyPrefix + sessionID.String()
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID id.SessionID) error {
	session, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Revoke(time.Now())

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	key := sessionKeyPrefix + sessionID.String()
	// Keep the revoked record around until its natural expiry so the
	// middleware sees "revoked", not "unknown".
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return s.client.Del(ctx, key).Err()
	}
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
