package models

import (
	"github.com/shopspring/decimal"
)

// CartLine is one product entry in a cart. UnitPrice and BonusPointsPerUnit
// are snapshots taken when the product was first added, so the customer
// checks out at the price they saw.
type CartLine struct {
	ProductID          string          `json:"product_id"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Quantity           int             `json:"quantity"`
	BonusPointsPerUnit decimal.Decimal `json:"bonus_points_per_unit"`
}

// LineTotal returns unit price times quantity.
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineBonusPoints returns bonus points per unit times quantity.
func (l *CartLine) LineBonusPoints() decimal.Decimal {
	return l.BonusPointsPerUnit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the ephemeral, session-scoped collection of selected products.
// It is persisted as an opaque JSON blob by the session store, never as a
// database row. Every line's quantity is strictly positive; lines that
// would drop to zero are removed instead.
type Cart struct {
	Lines    map[string]*CartLine `json:"lines"`
	CouponID *string              `json:"coupon_id,omitempty"`
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{Lines: make(map[string]*CartLine)}
}

// Add adds a product to the cart or updates its quantity. With override the
// given quantity replaces the current one, otherwise it is added to it. The
// unit price and bonus points are snapshotted from the product on first add.
func (c *Cart) Add(product *Product, quantity int, override bool) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if c.Lines == nil {
		c.Lines = make(map[string]*CartLine)
	}
	line, ok := c.Lines[product.ID]
	if !ok {
		line = &CartLine{
			ProductID:          product.ID,
			UnitPrice:          product.UnitPrice(),
			BonusPointsPerUnit: product.BonusPoints,
		}
		c.Lines[product.ID] = line
	}
	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	return nil
}

// Remove deletes the line for the given product if present; no-op otherwise.
func (c *Cart) Remove(productID string) {
	delete(c.Lines, productID)
}

// Clear deletes all lines and detaches any applied coupon.
func (c *Cart) Clear() {
	c.Lines = make(map[string]*CartLine)
	c.CouponID = nil
}

// Len counts all goods in the cart (sum of line quantities).
func (c *Cart) Len() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// TotalPrice returns the decimal sum of unit price times quantity over all
// lines. No rounding happens here; presentation rounds at the edge.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// TotalBonusPoints returns the decimal sum of bonus points over all lines.
func (c *Cart) TotalBonusPoints() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineBonusPoints())
	}
	return total
}

// DiscountAmount returns the discount the given coupon grants on this
// cart's total. A nil coupon grants nothing.
func (c *Cart) DiscountAmount(coupon *Coupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	percent := decimal.NewFromInt(int64(coupon.Discount))
	return percent.Div(decimal.NewFromInt(100)).Mul(c.TotalPrice())
}

// TotalAfterDiscount returns the cart total minus the coupon discount.
func (c *Cart) TotalAfterDiscount(coupon *Coupon) decimal.Decimal {
	return c.TotalPrice().Sub(c.DiscountAmount(coupon))
}
