package models

import (
	"fmt"
	"time"
)

// Coupon is a percentage-discount code with a validity window, an active
// flag and an optional usage cap. Soft deletion is an explicit DeletedAt
// field filtered at query time; deleting a coupon never touches the orders
// that reference it.
type Coupon struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Code      string     `json:"code" gorm:"index;type:varchar(50)" validate:"required,min=1,max=50"`
	ValidFrom time.Time  `json:"valid_from" validate:"required"`
	ValidTo   time.Time  `json:"valid_to" validate:"required"`
	Discount  int        `json:"discount" validate:"gte=0,lte=100"` // percent
	Active    bool       `json:"active"`
	MaxUses   *int64     `json:"max_uses,omitempty" validate:"omitempty,gt=0"`
	UsedCount int64      `json:"used_count"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasUsesLeft reports whether the coupon can still be used (unlimited or
// under its cap). It is a snapshot check only; RecordUse re-checks the cap
// atomically at increment time.
func (c *Coupon) HasUsesLeft() bool {
	if c.MaxUses == nil {
		return true
	}
	return c.UsedCount < *c.MaxUses
}

// IsUsable reports whether the coupon qualifies for a discount at the given
// instant: not deleted, active, and inside its validity window.
func (c *Coupon) IsUsable(at time.Time) bool {
	if c.DeletedAt != nil || !c.Active {
		return false
	}
	return !at.Before(c.ValidFrom) && !at.After(c.ValidTo)
}

// Validate checks the write-time invariants of a coupon. Code uniqueness is
// checked separately by the repository because it needs a query.
func (c *Coupon) Validate() error {
	if !c.ValidTo.After(c.ValidFrom) {
		return fmt.Errorf("the valid_to date must be after the valid_from date")
	}
	if c.Discount < 0 || c.Discount > 100 {
		return fmt.Errorf("discount must be between 0 and 100, got %d", c.Discount)
	}
	if c.MaxUses != nil {
		if *c.MaxUses <= 0 {
			return fmt.Errorf("max_uses must be positive when set")
		}
		if c.UsedCount > *c.MaxUses {
			return fmt.Errorf("used count cannot exceed max uses")
		}
	}
	if c.UsedCount < 0 {
		return fmt.Errorf("used count cannot be negative")
	}
	return nil
}
