package repositories

import (
	"time"

	"micron/internal/models"
)

// CouponRepository defines the interface for coupon data access.
//
// FindUsable collapses unknown, inactive and out-of-window codes into
// models.ErrCouponNotFound so callers cannot probe which codes exist.
// RecordUse must increment used_count with a storage-level conditional
// update (never read-modify-write) so concurrent redemptions serialize;
// it returns models.ErrCouponUsageLimitExceeded when the increment would
// pass max_uses, re-checking the cap at increment time.
type CouponRepository interface {
	GetAll() ([]models.Coupon, error)
	GetByID(id string) (*models.Coupon, error)
	FindUsable(code string, at time.Time) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	SoftDelete(id string, at time.Time) error
	Undelete(id string) error
	RecordUse(id string) error
}
