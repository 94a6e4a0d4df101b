package repositories

import (
	"errors"
	"fmt"
	"time"

	"micron/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCouponRepository is a GORM implementation of CouponRepository.
// Coupon soft deletion is an explicit deleted_at column filtered in every
// query here, not a GORM soft-delete hook, so deleted rows stay reachable
// through GetByID for order history and undeletion.
type GORMCouponRepository struct {
	db *gorm.DB
}

// NewGORMCouponRepository creates a new instance of GORMCouponRepository.
func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{
		db: db,
	}
}

// GetAll retrieves all non-deleted coupons.
func (r *GORMCouponRepository) GetAll() ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.Where("deleted_at IS NULL").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to get all coupons: %w", err)
	}
	return coupons, nil
}

// GetByID retrieves a coupon by its ID, deleted or not. Callers decide
// usability with models.Coupon.IsUsable.
func (r *GORMCouponRepository) GetByID(id string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon %s: %w", id, models.ErrCouponNotFound)
		}
		return nil, fmt.Errorf("failed to get coupon by ID %s: %w", id, err)
	}
	return &coupon, nil
}

// FindUsable looks up a coupon by code (case-insensitive) that is active,
// inside its validity window and not deleted.
func (r *GORMCouponRepository) FindUsable(code string, at time.Time) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.
		Where("LOWER(code) = LOWER(?) AND active = ? AND valid_from <= ? AND valid_to >= ? AND deleted_at IS NULL",
			code, true, at, at).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("coupon %q: %w", code, models.ErrCouponNotFound)
		}
		return nil, fmt.Errorf("failed to find coupon %q: %w", code, err)
	}
	return &coupon, nil
}

// Create validates and persists a new coupon. The code must be unique among
// non-deleted coupons.
func (r *GORMCouponRepository) Create(coupon *models.Coupon) error {
	if err := coupon.Validate(); err != nil {
		return fmt.Errorf("invalid coupon: %w", err)
	}
	taken, err := r.codeTaken(coupon.Code, coupon.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("code %q: %w", coupon.Code, models.ErrCouponCodeTaken)
	}
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	if err := r.db.Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// Update validates and saves an existing coupon.
func (r *GORMCouponRepository) Update(coupon *models.Coupon) error {
	if err := coupon.Validate(); err != nil {
		return fmt.Errorf("invalid coupon: %w", err)
	}
	taken, err := r.codeTaken(coupon.Code, coupon.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("code %q: %w", coupon.Code, models.ErrCouponCodeTaken)
	}
	res := r.db.Save(coupon)
	if res.Error != nil {
		return fmt.Errorf("failed to update coupon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon %s: %w", coupon.ID, models.ErrCouponNotFound)
	}
	return nil
}

// SoftDelete stamps deleted_at on the coupon. Orders referencing it are
// unaffected.
func (r *GORMCouponRepository) SoftDelete(id string, at time.Time) error {
	res := r.db.Model(&models.Coupon{}).
		Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumn("deleted_at", at)
	if res.Error != nil {
		return fmt.Errorf("failed to delete coupon %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon %s: %w", id, models.ErrCouponNotFound)
	}
	return nil
}

// Undelete clears deleted_at, provided no newer non-deleted coupon has
// claimed the same code in the meantime.
func (r *GORMCouponRepository) Undelete(id string) error {
	coupon, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if coupon.DeletedAt == nil {
		return nil
	}
	taken, err := r.codeTaken(coupon.Code, coupon.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("code %q: %w", coupon.Code, models.ErrCouponCodeTaken)
	}
	res := r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		UpdateColumn("deleted_at", gorm.Expr("NULL"))
	if res.Error != nil {
		return fmt.Errorf("failed to undelete coupon %s: %w", id, res.Error)
	}
	return nil
}

// RecordUse increments used_count by one with a guarded UPDATE so
// concurrent redemptions cannot lose updates or pass the cap. When the
// guard matches no row, the coupon is either gone or exhausted.
func (r *GORMCouponRepository) RecordUse(id string) error {
	res := r.db.Model(&models.Coupon{}).
		Where("id = ? AND deleted_at IS NULL AND (max_uses IS NULL OR used_count < max_uses)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to record coupon use for %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var coupon models.Coupon
		if err := r.db.First(&coupon, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("coupon %s: %w", id, models.ErrCouponNotFound)
			}
			return fmt.Errorf("failed to read coupon %s: %w", id, err)
		}
		return fmt.Errorf("coupon %s: %w", id, models.ErrCouponUsageLimitExceeded)
	}
	return nil
}

// codeTaken reports whether another non-deleted coupon already uses the
// code (case-insensitive).
func (r *GORMCouponRepository) codeTaken(code, excludeID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Coupon{}).
		Where("LOWER(code) = LOWER(?) AND deleted_at IS NULL AND id <> ?", code, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check coupon code %q: %w", code, err)
	}
	return count > 0, nil
}
