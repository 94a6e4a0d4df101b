package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"micron/internal/models"

	"github.com/google/uuid"
)

// MockCouponRepository is an in-memory implementation of CouponRepository.
// RecordUse performs its compare-and-increment under the repository lock,
// mirroring the conditional UPDATE of the GORM implementation.
type MockCouponRepository struct {
	coupons map[string]models.Coupon
	mu      sync.RWMutex
}

// NewMockCouponRepository creates a new instance of MockCouponRepository.
func NewMockCouponRepository() *MockCouponRepository {
	return &MockCouponRepository{
		coupons: make(map[string]models.Coupon),
	}
}

// GetAll returns all non-deleted coupons.
func (r *MockCouponRepository) GetAll() ([]models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	couponList := make([]models.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		if c.DeletedAt == nil {
			couponList = append(couponList, c)
		}
	}
	return couponList, nil
}

// GetByID returns a coupon by its ID, deleted or not.
func (r *MockCouponRepository) GetByID(id string) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coupon, ok := r.coupons[id]
	if !ok {
		return nil, fmt.Errorf("coupon %s: %w", id, models.ErrCouponNotFound)
	}
	return &coupon, nil
}

// FindUsable returns the coupon matching the code (case-insensitive) that
// is active, inside its validity window and not deleted.
func (r *MockCouponRepository) FindUsable(code string, at time.Time) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.coupons {
		if strings.EqualFold(c.Code, code) && c.IsUsable(at) {
			coupon := c
			return &coupon, nil
		}
	}
	return nil, fmt.Errorf("coupon %q: %w", code, models.ErrCouponNotFound)
}

// Create validates and stores a new coupon.
func (r *MockCouponRepository) Create(coupon *models.Coupon) error {
	if err := coupon.Validate(); err != nil {
		return fmt.Errorf("invalid coupon: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.codeTakenLocked(coupon.Code, coupon.ID) {
		return fmt.Errorf("code %q: %w", coupon.Code, models.ErrCouponCodeTaken)
	}
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	r.coupons[coupon.ID] = *coupon
	return nil
}

// Update validates and replaces an existing coupon.
func (r *MockCouponRepository) Update(coupon *models.Coupon) error {
	if err := coupon.Validate(); err != nil {
		return fmt.Errorf("invalid coupon: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.coupons[coupon.ID]; !ok {
		return fmt.Errorf("coupon %s: %w", coupon.ID, models.ErrCouponNotFound)
	}
	if r.codeTakenLocked(coupon.Code, coupon.ID) {
		return fmt.Errorf("code %q: %w", coupon.Code, models.ErrCouponCodeTaken)
	}
	r.coupons[coupon.ID] = *coupon
	return nil
}

// SoftDelete stamps deleted_at on the coupon.
func (r *MockCouponRepository) SoftDelete(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[id]
	if !ok || coupon.DeletedAt != nil {
		return fmt.Errorf("coupon %s: %w", id, models.ErrCouponNotFound)
	}
	coupon.DeletedAt = &at
	r.coupons[id] = coupon
	return nil
}

// Undelete clears deleted_at unless the code was claimed meanwhile.
func (r *MockCouponRepository) Undelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[id]
	if !ok {
		return fmt.Errorf("coupon %s: %w", id, models.ErrCouponNotFound)
	}
	if coupon.DeletedAt == nil {
		return nil
	}
	if r.codeTakenLocked(coupon.Code, coupon.ID) {
		return fmt.Errorf("code %q: %w", coupon.Code, models.ErrCouponCodeTaken)
	}
	coupon.DeletedAt = nil
	r.coupons[id] = coupon
	return nil
}

// RecordUse increments used_count, failing once the cap is reached.
func (r *MockCouponRepository) RecordUse(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[id]
	if !ok || coupon.DeletedAt != nil {
		return fmt.Errorf("coupon %s: %w", id, models.ErrCouponNotFound)
	}
	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return fmt.Errorf("coupon %s: %w", id, models.ErrCouponUsageLimitExceeded)
	}
	coupon.UsedCount++
	r.coupons[id] = coupon
	return nil
}

func (r *MockCouponRepository) codeTakenLocked(code, excludeID string) bool {
	for _, c := range r.coupons {
		if c.ID != excludeID && c.DeletedAt == nil && strings.EqualFold(c.Code, code) {
			return true
		}
	}
	return false
}
