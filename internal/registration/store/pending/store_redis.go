package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"talenthunt/internal/registration/models"
	"talenthunt/pkg/platform/sentinel"
)

const pendingKeyPrefix = "pending_signup:"

// RedisPendingStore persists pending signups in Redis. The TTL bounds both
// the signup session and the number of OTP attempts; no sweeper needed.
type RedisPendingStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

func (s *RedisPendingStore) Create(ctx context.Context, pending *models.PendingSignup, ttl time.Duration) error {
	if ttl <= 0 {
		return sentinel.ErrInvalidState
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending signup: %w", err)
	}
	key := pendingKeyPrefix + pending.Token
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store pending signup: %w", err)
	}
	return nil
}

func (s *RedisPendingStore) Find(ctx context.Context, token string) (*models.PendingSignup, error) {
	payload, err := s.client.Get(ctx, pendingKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch pending signup: %w", err)
	}

	var pending models.PendingSignup
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending signup: %w", err)
	}
	return &pending, nil
}

func (s *RedisPendingStore) Delete(ctx context.Context, token string) error {
	deleted, err := s.client.Del(ctx, pendingKeyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("delete pending signup: %w", err)
	}
	if deleted == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
