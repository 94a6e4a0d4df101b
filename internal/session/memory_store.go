package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"micron/internal/models"
)

// MemoryCartStore is an in-memory implementation of CartStore for tests.
// It round-trips carts through JSON like the Redis store so snapshot
// encoding problems surface in tests too.
type MemoryCartStore struct {
	carts map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryCartStore creates a new instance of MemoryCartStore.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string][]byte),
	}
}

// Load returns the stored cart, or an empty cart for unknown sessions.
func (s *MemoryCartStore) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.carts[sessionID]
	if !ok {
		return models.NewCart(), nil
	}
	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart for session %s: %w", sessionID, err)
	}
	if cart.Lines == nil {
		cart.Lines = make(map[string]*models.CartLine)
	}
	return &cart, nil
}

// Save stores the encoded cart.
func (s *MemoryCartStore) Save(ctx context.Context, sessionID string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart for session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = data
	return nil
}

// Delete removes the session's cart.
func (s *MemoryCartStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
