package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"micron/internal/models"

	"github.com/redis/go-redis/v9"
)

// cartTTL keeps abandoned carts around for a month before Redis evicts
// them, matching the lifetime of the session cookie.
const cartTTL = 30 * 24 * time.Hour

// RedisCartStore is a Redis implementation of CartStore. Carts are stored
// as JSON blobs under "cart:<session id>".
type RedisCartStore struct {
	client *redis.Client
}

// NewRedisCartStore creates a new instance of RedisCartStore.
func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{
		client: client,
	}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Load fetches and decodes the cart for the session, returning an empty
// cart when none is stored.
func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.NewCart(), nil
		}
		return nil, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart for session %s: %w", sessionID, err)
	}
	if cart.Lines == nil {
		cart.Lines = make(map[string]*models.CartLine)
	}
	return &cart, nil
}

// Save encodes and writes the cart back, refreshing its TTL.
func (s *RedisCartStore) Save(ctx context.Context, sessionID string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart for session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart for session %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes the session's cart entirely.
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart for session %s: %w", sessionID, err)
	}
	return nil
}
