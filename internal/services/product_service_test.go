package services

import (
	"testing"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductService_CreateDerivesBonusPoints(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	svc := NewProductService(repo)

	product := &models.Product{
		Name:      "Keyboard",
		Price:     decimal.RequireFromString("100.00"),
		Quantity:  10,
		Available: true,
	}
	assert.NoError(t, svc.CreateProduct(product))
	assert.True(t, product.BonusPoints.Equal(decimal.RequireFromString("30.00")),
		"expected 30.00, got %s", product.BonusPoints)
}

func TestProductService_BonusPointsFollowDiscountedPrice(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	svc := NewProductService(repo)

	discounted := decimal.RequireFromString("80.00")
	product := &models.Product{
		Name:              "Keyboard",
		Price:             decimal.RequireFromString("100.00"),
		PriceWithDiscount: &discounted,
		OnDiscount:        true,
		Quantity:          10,
		Available:         true,
	}
	assert.NoError(t, svc.CreateProduct(product))
	assert.True(t, product.BonusPoints.Equal(decimal.RequireFromString("24.00")),
		"expected 24.00, got %s", product.BonusPoints)

	// Ending the discount re-derives the points from the full price.
	product.OnDiscount = false
	assert.NoError(t, svc.UpdateProduct(product))
	assert.True(t, product.BonusPoints.Equal(decimal.RequireFromString("30.00")))
}

func TestProductService_GetProductByIDNotFound(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	svc := NewProductService(repo)

	_, err := svc.GetProductByID("missing")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	svc := NewProductService(repo)

	product := &models.Product{
		Name:      "Keyboard",
		Price:     decimal.RequireFromString("100.00"),
		Quantity:  10,
		Available: true,
	}
	assert.NoError(t, svc.CreateProduct(product))
	assert.NoError(t, svc.DeleteProduct(product.ID))

	_, err := svc.GetProductByID(product.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}
