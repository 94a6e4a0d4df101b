// Package session persists carts as opaque per-session blobs, the way the
// surrounding web layer persists any other session state. The cart is never
// a database row; it lives and dies with the session.
package session

import (
	"context"

	"micron/internal/models"
)

// CartStore loads and saves the cart bound to a session ID. Load returns an
// empty cart (never nil) for unknown sessions. Every mutating cart
// operation must be followed by Save; the store is the explicit
// save/flush contract replacing ambient "session modified" state.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, sessionID string, cart *models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
