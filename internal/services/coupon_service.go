package services

import (
	"fmt"
	"time"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/google/uuid"
)

// CouponService handles the admin-facing lifecycle of coupons: creation,
// deactivation, soft deletion and restoration. Attaching coupons to carts
// is CartService's job.
type CouponService struct {
	repo repositories.CouponRepository
	now  func() time.Time
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo repositories.CouponRepository) *CouponService {
	return &CouponService{
		repo: repo,
		now:  time.Now,
	}
}

// CreateCoupon validates and stores a new coupon. The code must be unique
// among non-deleted coupons; a previously deleted coupon's code may be
// reused.
func (s *CouponService) CreateCoupon(coupon *models.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	if err := s.repo.Create(coupon); err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// UpdateCoupon validates and persists changes to an existing coupon.
func (s *CouponService) UpdateCoupon(coupon *models.Coupon) error {
	if err := s.repo.Update(coupon); err != nil {
		return fmt.Errorf("failed to update coupon %s: %w", coupon.ID, err)
	}
	return nil
}

// GetAllCoupons returns every non-deleted coupon.
func (s *CouponService) GetAllCoupons() ([]models.Coupon, error) {
	return s.repo.GetAll()
}

// GetCouponByID returns a coupon by its ID, deleted ones included, so the
// history of past orders stays resolvable.
func (s *CouponService) GetCouponByID(id string) (*models.Coupon, error) {
	return s.repo.GetByID(id)
}

// DeactivateCoupon turns a coupon off without deleting it. It stops
// qualifying for new carts immediately but remains visible in listings.
func (s *CouponService) DeactivateCoupon(id string) error {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	coupon.Active = false
	if err := s.repo.Update(coupon); err != nil {
		return fmt.Errorf("failed to deactivate coupon %s: %w", id, err)
	}
	return nil
}

// DeleteCoupon soft-deletes a coupon. The row is kept so orders that
// reference it keep their pricing history, but it disappears from listings
// and lookups and its code becomes reusable.
func (s *CouponService) DeleteCoupon(id string) error {
	if err := s.repo.SoftDelete(id, s.now()); err != nil {
		return fmt.Errorf("failed to delete coupon %s: %w", id, err)
	}
	return nil
}

// UndeleteCoupon restores a soft-deleted coupon. Restoration fails if the
// code was taken by a newer coupon in the meantime.
func (s *CouponService) UndeleteCoupon(id string) error {
	if err := s.repo.Undelete(id); err != nil {
		return fmt.Errorf("failed to restore coupon %s: %w", id, err)
	}
	return nil
}
