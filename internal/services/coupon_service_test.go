package services

import (
	"testing"
	"time"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestCouponService_CreateAndList(t *testing.T) {
	repo := repositories.NewMockCouponRepository()
	svc := NewCouponService(repo)

	coupon := &models.Coupon{
		Code:      "WELCOME10",
		ValidFrom: time.Now().Add(-time.Hour),
		ValidTo:   time.Now().Add(24 * time.Hour),
		Discount:  10,
		Active:    true,
	}
	assert.NoError(t, svc.CreateCoupon(coupon))
	assert.NotEmpty(t, coupon.ID)

	coupons, err := svc.GetAllCoupons()
	assert.NoError(t, err)
	assert.Len(t, coupons, 1)
}

func TestCouponService_CreateRejectsInvalidWindow(t *testing.T) {
	repo := repositories.NewMockCouponRepository()
	svc := NewCouponService(repo)

	err := svc.CreateCoupon(&models.Coupon{
		Code:      "BROKEN",
		ValidFrom: time.Now().Add(time.Hour),
		ValidTo:   time.Now().Add(-time.Hour),
		Discount:  10,
		Active:    true,
	})
	assert.Error(t, err)
}

func TestCouponService_CreateRejectsDuplicateCode(t *testing.T) {
	repo := repositories.NewMockCouponRepository()
	svc := NewCouponService(repo)

	fresh := func() *models.Coupon {
		return &models.Coupon{
			Code:      "WELCOME10",
			ValidFrom: time.Now().Add(-time.Hour),
			ValidTo:   time.Now().Add(24 * time.Hour),
			Discount:  10,
			Active:    true,
		}
	}
	assert.NoError(t, svc.CreateCoupon(fresh()))

	err := svc.CreateCoupon(fresh())
	assert.ErrorIs(t, err, models.ErrCouponCodeTaken)
}

func TestCouponService_DeactivateKeepsCouponListed(t *testing.T) {
	repo := repositories.NewMockCouponRepository()
	svc := NewCouponService(repo)

	coupon := &models.Coupon{
		Code:      "WELCOME10",
		ValidFrom: time.Now().Add(-time.Hour),
		ValidTo:   time.Now().Add(24 * time.Hour),
		Discount:  10,
		Active:    true,
	}
	assert.NoError(t, svc.CreateCoupon(coupon))
	assert.NoError(t, svc.DeactivateCoupon(coupon.ID))

	coupons, err := svc.GetAllCoupons()
	assert.NoError(t, err)
	if assert.Len(t, coupons, 1) {
		assert.False(t, coupons[0].Active)
		assert.False(t, coupons[0].IsUsable(time.Now()))
	}
}

func TestCouponService_DeleteFreesCodeAndUndeleteConflicts(t *testing.T) {
	repo := repositories.NewMockCouponRepository()
	svc := NewCouponService(repo)

	first := &models.Coupon{
		Code:      "WELCOME10",
		ValidFrom: time.Now().Add(-time.Hour),
		ValidTo:   time.Now().Add(24 * time.Hour),
		Discount:  10,
		Active:    true,
	}
	assert.NoError(t, svc.CreateCoupon(first))
	assert.NoError(t, svc.DeleteCoupon(first.ID))

	// Gone from listings, still resolvable by ID for order history.
	coupons, err := svc.GetAllCoupons()
	assert.NoError(t, err)
	assert.Empty(t, coupons)
	deleted, err := svc.GetCouponByID(first.ID)
	assert.NoError(t, err)
	assert.NotNil(t, deleted.DeletedAt)

	// The code is reusable by a new coupon.
	second := &models.Coupon{
		Code:      "WELCOME10",
		ValidFrom: time.Now().Add(-time.Hour),
		ValidTo:   time.Now().Add(24 * time.Hour),
		Discount:  15,
		Active:    true,
	}
	assert.NoError(t, svc.CreateCoupon(second))

	// Restoring the first would collide with the second.
	err = svc.UndeleteCoupon(first.ID)
	assert.ErrorIs(t, err, models.ErrCouponCodeTaken)
}
