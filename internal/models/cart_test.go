package models_test

import (
	"testing"

	"micron/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func productWithPrice(id, price, bonus string) *models.Product {
	return &models.Product{
		ID:          id,
		Name:        "Product " + id,
		Price:       decimal.RequireFromString(price),
		BonusPoints: decimal.RequireFromString(bonus),
		Quantity:    100,
		Available:   true,
	}
}

func TestCart_TotalsAreExactDecimals(t *testing.T) {
	cart := models.NewCart()

	productA := productWithPrice("prod-a", "50.00", "15.00")
	productB := productWithPrice("prod-b", "75.00", "22.50")

	assert.NoError(t, cart.Add(productA, 2, false))
	assert.NoError(t, cart.Add(productB, 1, false))

	assert.Equal(t, "175.00", cart.TotalPrice().StringFixed(2))
	assert.Equal(t, "52.50", cart.TotalBonusPoints().StringFixed(2))
	assert.Equal(t, 3, cart.Len())
}

func TestCart_AddAccumulatesAndOverrides(t *testing.T) {
	cart := models.NewCart()
	product := productWithPrice("prod-1", "9.99", "0")

	assert.NoError(t, cart.Add(product, 2, false))
	assert.NoError(t, cart.Add(product, 3, false))
	assert.Equal(t, 5, cart.Lines[product.ID].Quantity)

	assert.NoError(t, cart.Add(product, 1, true))
	assert.Equal(t, 1, cart.Lines[product.ID].Quantity)

	// The snapshot price from the first add survives later price changes.
	product.Price = decimal.RequireFromString("19.99")
	assert.NoError(t, cart.Add(product, 1, false))
	assert.Equal(t, "9.99", cart.Lines[product.ID].UnitPrice.StringFixed(2))
}

func TestCart_AddRejectsNonPositiveQuantity(t *testing.T) {
	cart := models.NewCart()
	product := productWithPrice("prod-1", "10.00", "0")

	assert.ErrorIs(t, cart.Add(product, 0, false), models.ErrInvalidQuantity)
	assert.ErrorIs(t, cart.Add(product, -3, false), models.ErrInvalidQuantity)
	assert.ErrorIs(t, cart.Add(product, 0, true), models.ErrInvalidQuantity)
	assert.True(t, cart.IsEmpty())
}

func TestCart_AddSnapshotsDiscountedPrice(t *testing.T) {
	cart := models.NewCart()
	discounted := decimal.RequireFromString("40.00")
	product := productWithPrice("prod-1", "50.00", "0")
	product.PriceWithDiscount = &discounted
	product.OnDiscount = true

	assert.NoError(t, cart.Add(product, 1, false))
	assert.Equal(t, "40.00", cart.Lines[product.ID].UnitPrice.StringFixed(2))
}

func TestCart_RemoveAndClear(t *testing.T) {
	cart := models.NewCart()
	productA := productWithPrice("prod-a", "10.00", "0")
	productB := productWithPrice("prod-b", "20.00", "0")
	couponID := "coupon-1"

	assert.NoError(t, cart.Add(productA, 1, false))
	assert.NoError(t, cart.Add(productB, 1, false))
	cart.CouponID = &couponID

	cart.Remove(productA.ID)
	assert.Len(t, cart.Lines, 1)
	// Removing an absent product is a no-op.
	cart.Remove("missing")
	assert.Len(t, cart.Lines, 1)

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.CouponID)
}

func TestCart_DiscountAmount(t *testing.T) {
	cart := models.NewCart()
	product := productWithPrice("prod-1", "100.00", "0")
	assert.NoError(t, cart.Add(product, 1, false))

	coupon := &models.Coupon{Discount: 20}
	assert.Equal(t, "20.00", cart.DiscountAmount(coupon).StringFixed(2))
	assert.Equal(t, "80.00", cart.TotalAfterDiscount(coupon).StringFixed(2))

	// Without a coupon the discount is zero.
	assert.Equal(t, "0.00", cart.DiscountAmount(nil).StringFixed(2))
	assert.Equal(t, "100.00", cart.TotalAfterDiscount(nil).StringFixed(2))
}

func TestCart_TotalsDoNotDriftOverManyMutations(t *testing.T) {
	cart := models.NewCart()
	product := productWithPrice("prod-1", "0.10", "0.01")

	for i := 0; i < 1000; i++ {
		assert.NoError(t, cart.Add(product, 1, false))
	}

	// 1000 x 0.10 is exactly 100.00 in decimal arithmetic.
	assert.True(t, cart.TotalPrice().Equal(decimal.RequireFromString("100.00")))
	assert.True(t, cart.TotalBonusPoints().Equal(decimal.RequireFromString("10.00")))
}
