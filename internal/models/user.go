package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the bonus-points ledger for a customer. Authentication and
// account management live outside this service; orders reference a user
// only so paid orders can credit their bonus points.
type User struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email       string          `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	BonusPoints decimal.Decimal `json:"bonus_points" gorm:"type:decimal(10,2)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
