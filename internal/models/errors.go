package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pricing/checkout core. Handlers map these to
// HTTP statuses with errors.Is/errors.As instead of string matching.
var (
	// ErrInvalidQuantity is returned when a cart mutation would produce a
	// non-positive line quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrCouponNotFound covers unknown, expired and inactive coupon codes
	// alike, so callers cannot probe which codes exist.
	ErrCouponNotFound = errors.New("coupon not found or not currently valid")

	// ErrCouponUsageLimitExceeded is returned when a coupon is otherwise
	// valid but its usage cap has been reached. Kept distinct from
	// ErrCouponNotFound so the user sees the "usage limit" message.
	ErrCouponUsageLimitExceeded = errors.New("coupon has reached its usage limit")

	// ErrCouponCodeTaken is returned when creating or undeleting a coupon
	// whose code collides with another non-deleted coupon.
	ErrCouponCodeTaken = errors.New("coupon with this code already exists")

	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrCartEmpty is returned when checkout is attempted on an empty cart.
	ErrCartEmpty = errors.New("cart is empty")
)

// InsufficientStockError reports which product blocked a checkout attempt
// and how many units are actually available.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}
