package repositories

import (
	"micron/internal/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access. AddBonusPoints
// must be an atomic increment at the storage layer; it is called from the
// notification worker after an order is paid.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	AddBonusPoints(id string, points decimal.Decimal) error
}
