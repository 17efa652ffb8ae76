package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "storefront:session:"

// RedisSessionRepository stores sessions as JSON documents in Redis. The key
// TTL follows the session's ExpiresAt, so Redis performs expiry.
type RedisSessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisSessionRepository creates a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, now func() time.Time) *RedisSessionRepository {
	if now == nil {
		now = time.Now
	}
	return &RedisSessionRepository{client: client, now: now}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Get loads a session; absent keys map to ErrNotFound.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis session get failed: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if session.Cart == nil {
		session.Cart = models.Cart{}
	}
	if session.Expired(r.now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

// Save writes the session with a TTL equal to its remaining lifetime.
func (r *RedisSessionRepository) Save(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, session.ID)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis session set failed: %w", err)
	}
	return nil
}

// Delete removes the session key.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis session delete failed: %w", err)
	}
	return nil
}
