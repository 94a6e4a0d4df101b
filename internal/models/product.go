package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the store. Quantity is the stock on hand.
type Product struct {
	ID                string           `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name              string           `json:"name" validate:"required,min=3,max=200"`
	Description       string           `json:"description" validate:"omitempty,max=500"`
	Price             decimal.Decimal  `json:"price" gorm:"type:decimal(10,2)"`
	PriceWithDiscount *decimal.Decimal `json:"price_with_discount,omitempty" gorm:"type:decimal(10,2)"`
	OnDiscount        bool             `json:"on_discount"`
	BonusPoints       decimal.Decimal  `json:"bonus_points" gorm:"type:decimal(10,2)"`
	Quantity          int              `json:"quantity" validate:"gte=0"`
	Available         bool             `json:"available"`
	gorm.Model                         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// UnitPrice returns the price a cart line snapshots when the product is
// added to a cart: the discounted price while a discount is running, the
// regular price otherwise.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.OnDiscount && p.PriceWithDiscount != nil {
		return *p.PriceWithDiscount
	}
	return p.Price
}
