package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a named in-memory SQLite database and migrates the
// schema. Each test uses its own name so tests stay isolated.
func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Coupon{}, &models.Order{}, &models.OrderItem{}, &models.User{},
	))
	return db
}

func seedCoupon(t *testing.T, repo repositories.CouponRepository, code string, maxUses *int64) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:      code,
		ValidFrom: time.Now().Add(-time.Hour),
		ValidTo:   time.Now().Add(time.Hour),
		Discount:  20,
		Active:    true,
		MaxUses:   maxUses,
	}
	assert.NoError(t, repo.Create(coupon))
	return coupon
}

func TestGORMCouponRepository_FindUsable(t *testing.T) {
	db := openTestDB(t, "coupon_find_usable")
	repo := repositories.NewGORMCouponRepository(db)
	now := time.Now()

	seedCoupon(t, repo, "SAVE20", nil)

	// Lookup is case-insensitive.
	found, err := repo.FindUsable("save20", now)
	assert.NoError(t, err)
	assert.Equal(t, "SAVE20", found.Code)

	// Unknown, inactive and expired codes all collapse into the same error.
	_, err = repo.FindUsable("NOPE", now)
	assert.ErrorIs(t, err, models.ErrCouponNotFound)

	inactive := seedCoupon(t, repo, "INACTIVE", nil)
	inactive.Active = false
	assert.NoError(t, repo.Update(inactive))
	_, err = repo.FindUsable("INACTIVE", now)
	assert.ErrorIs(t, err, models.ErrCouponNotFound)

	expired := seedCoupon(t, repo, "EXPIRED", nil)
	expired.ValidFrom = now.Add(-2 * time.Hour)
	expired.ValidTo = now.Add(-time.Hour)
	assert.NoError(t, repo.Update(expired))
	_, err = repo.FindUsable("EXPIRED", now)
	assert.ErrorIs(t, err, models.ErrCouponNotFound)
}

func TestGORMCouponRepository_RecordUseStopsAtCap(t *testing.T) {
	db := openTestDB(t, "coupon_record_use")
	repo := repositories.NewGORMCouponRepository(db)

	max := int64(3)
	coupon := seedCoupon(t, repo, "LIMITED", &max)

	successes := 0
	for i := 0; i < 5; i++ {
		if err := repo.RecordUse(coupon.ID); err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, models.ErrCouponUsageLimitExceeded)
		}
	}
	assert.Equal(t, 3, successes)

	reloaded, err := repo.GetByID(coupon.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), reloaded.UsedCount)
}

func TestGORMCouponRepository_RecordUseUnlimited(t *testing.T) {
	db := openTestDB(t, "coupon_record_unlimited")
	repo := repositories.NewGORMCouponRepository(db)

	coupon := seedCoupon(t, repo, "FOREVER", nil)
	for i := 0; i < 10; i++ {
		assert.NoError(t, repo.RecordUse(coupon.ID))
	}

	reloaded, err := repo.GetByID(coupon.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), reloaded.UsedCount)

	assert.ErrorIs(t, repo.RecordUse("missing"), models.ErrCouponNotFound)
}

func TestGORMCouponRepository_CodeUniquenessAmongNonDeleted(t *testing.T) {
	db := openTestDB(t, "coupon_uniqueness")
	repo := repositories.NewGORMCouponRepository(db)

	first := seedCoupon(t, repo, "SUMMER", nil)

	// Same code (any case) is rejected while the first coupon lives.
	dup := &models.Coupon{
		Code:      "summer",
		ValidFrom: time.Now().Add(-time.Hour),
		ValidTo:   time.Now().Add(time.Hour),
		Discount:  10,
		Active:    true,
	}
	assert.ErrorIs(t, repo.Create(dup), models.ErrCouponCodeTaken)

	// After a soft delete the code is free again.
	assert.NoError(t, repo.SoftDelete(first.ID, time.Now()))
	assert.NoError(t, repo.Create(dup))

	// The deleted coupon is still reachable by ID but cannot be undeleted
	// while its code is claimed by the newer coupon.
	stale, err := repo.GetByID(first.ID)
	assert.NoError(t, err)
	assert.NotNil(t, stale.DeletedAt)
	assert.ErrorIs(t, repo.Undelete(first.ID), models.ErrCouponCodeTaken)

	// Once the newer coupon goes away, undelete succeeds.
	assert.NoError(t, repo.SoftDelete(dup.ID, time.Now()))
	assert.NoError(t, repo.Undelete(first.ID))
	restored, err := repo.GetByID(first.ID)
	assert.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
}
