package repositories_test

import (
	"sync"
	"testing"
	"time"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestMockCouponRepository_ConcurrentRecordUseSerializes(t *testing.T) {
	repo := repositories.NewMockCouponRepository()

	max := int64(5)
	coupon := &models.Coupon{
		Code:      "RACE",
		ValidFrom: time.Now().Add(-time.Hour),
		ValidTo:   time.Now().Add(time.Hour),
		Discount:  10,
		Active:    true,
		MaxUses:   &max,
	}
	assert.NoError(t, repo.Create(coupon))

	const redeemers = 32
	var wg sync.WaitGroup
	results := make(chan error, redeemers)

	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.RecordUse(coupon.ID)
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, models.ErrCouponUsageLimitExceeded)
		}
	}

	// Exactly max_uses redemptions succeed, with no lost updates.
	assert.Equal(t, 5, successes)
	reloaded, err := repo.GetByID(coupon.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), reloaded.UsedCount)
}
