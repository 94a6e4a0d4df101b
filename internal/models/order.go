package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment states of an order. Paid transitions unpaid -> paid exactly once
// and never reverses.
const (
	OrderUnpaid = "unpaid"
	OrderPaid   = "paid"
)

// OrderItem is one immutable line of an order. Price is the cart snapshot
// taken at checkout, not the product's current price.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36)"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Quantity  int             `json:"quantity"`
}

// Cost returns price times quantity for this line.
func (i *OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the immutable persisted record of a completed checkout. The
// discount percentage and bonus points are copied from the cart at checkout
// time so later coupon edits or deletions cannot change historical orders;
// CouponID is a plain nullable reference for the same reason.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName   string          `json:"first_name" validate:"required,max=50"`
	LastName    string          `json:"last_name" validate:"required,max=50"`
	Email       string          `json:"email" validate:"required,email"`
	Address     string          `json:"address" validate:"required,max=250"`
	PostalCode  string          `json:"postal_code" validate:"required,max=20"`
	City        string          `json:"city" validate:"required,max=100"`
	Paid        string          `json:"paid" gorm:"type:varchar(10);default:unpaid"`
	StripeID    string          `json:"stripe_id" gorm:"type:varchar(250)"`
	CouponID    *string         `json:"coupon_id,omitempty" gorm:"type:varchar(36)"`
	Discount    int             `json:"discount" validate:"gte=0,lte=100"`
	BonusPoints decimal.Decimal `json:"bonus_points" gorm:"type:decimal(10,2)"`
	UserID      *string         `json:"user_id,omitempty" gorm:"type:varchar(36)"`
	Items       []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TotalCostBeforeDiscount sums the cost of all order items.
func (o *Order) TotalCostBeforeDiscount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Cost())
	}
	return total
}

// DiscountAmount applies the order's stored discount percentage to its
// pre-discount total.
func (o *Order) DiscountAmount() decimal.Decimal {
	if o.Discount == 0 {
		return decimal.Zero
	}
	percent := decimal.NewFromInt(int64(o.Discount))
	return o.TotalCostBeforeDiscount().Mul(percent).Div(decimal.NewFromInt(100))
}

// TotalCost returns the pre-discount total minus the discount.
func (o *Order) TotalCost() decimal.Decimal {
	return o.TotalCostBeforeDiscount().Sub(o.DiscountAmount())
}
