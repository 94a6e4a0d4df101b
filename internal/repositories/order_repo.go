package repositories

import (
	"micron/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// Create is the committing half of a checkout: it must decrement stock for
// every item and insert the order with its items as one atomic unit, so a
// concurrent reader either sees all decrements and the order, or neither.
// MarkPaid is the settlement write: it flips an unpaid order to paid at
// most once and reports whether the order was already paid so callers can
// treat repeated payment callbacks as idempotent successes.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	MarkPaid(id string, stripeID string) (alreadyPaid bool, err error)
}
