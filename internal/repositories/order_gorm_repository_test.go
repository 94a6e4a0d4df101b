package repositories_test

import (
	"testing"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func seedProduct(t *testing.T, repo repositories.ProductRepository, id, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     decimal.RequireFromString(price),
		Quantity:  stock,
		Available: true,
	}
	assert.NoError(t, repo.Create(product))
	return product
}

func orderFor(lines ...models.OrderItem) *models.Order {
	return &models.Order{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Address:    "12 Analytical Row",
		PostalCode: "10001",
		City:       "London",
		Items:      lines,
	}
}

func TestGORMOrderRepository_CreateDecrementsStock(t *testing.T) {
	db := openTestDB(t, "order_create_ok")
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)

	seedProduct(t, products, "prod-a", "50.00", 10)
	seedProduct(t, products, "prod-b", "75.00", 4)

	order := orderFor(
		models.OrderItem{ProductID: "prod-a", Price: decimal.RequireFromString("50.00"), Quantity: 2},
		models.OrderItem{ProductID: "prod-b", Price: decimal.RequireFromString("75.00"), Quantity: 1},
	)
	assert.NoError(t, orders.Create(order))
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderUnpaid, order.Paid)

	productA, err := products.GetByID("prod-a")
	assert.NoError(t, err)
	assert.Equal(t, 8, productA.Quantity)
	productB, err := products.GetByID("prod-b")
	assert.NoError(t, err)
	assert.Equal(t, 3, productB.Quantity)

	persisted, err := orders.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Len(t, persisted.Items, 2)
	assert.Equal(t, "175.00", persisted.TotalCostBeforeDiscount().StringFixed(2))
}

func TestGORMOrderRepository_CreateRollsBackOnInsufficientStock(t *testing.T) {
	db := openTestDB(t, "order_create_rollback")
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)

	seedProduct(t, products, "prod-a", "50.00", 10)
	seedProduct(t, products, "prod-b", "75.00", 3)

	// prod-a would be decremented first; the prod-b guard fails and the
	// whole transaction must roll back.
	order := orderFor(
		models.OrderItem{ProductID: "prod-a", Price: decimal.RequireFromString("50.00"), Quantity: 2},
		models.OrderItem{ProductID: "prod-b", Price: decimal.RequireFromString("75.00"), Quantity: 5},
	)
	err := orders.Create(order)

	var stockErr *models.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "prod-b", stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// No stock changed and no order or items were left behind.
	productA, err := products.GetByID("prod-a")
	assert.NoError(t, err)
	assert.Equal(t, 10, productA.Quantity)
	productB, err := products.GetByID("prod-b")
	assert.NoError(t, err)
	assert.Equal(t, 3, productB.Quantity)

	all, err := orders.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, all)
	var itemCount int64
	assert.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestGORMOrderRepository_CreateUnknownProduct(t *testing.T) {
	db := openTestDB(t, "order_create_unknown")
	orders := repositories.NewGORMOrderRepository(db)

	order := orderFor(
		models.OrderItem{ProductID: "ghost", Price: decimal.RequireFromString("1.00"), Quantity: 1},
	)
	assert.ErrorIs(t, orders.Create(order), models.ErrProductNotFound)
}

func TestGORMOrderRepository_MarkPaidIsIdempotent(t *testing.T) {
	db := openTestDB(t, "order_mark_paid")
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)

	seedProduct(t, products, "prod-a", "50.00", 10)
	order := orderFor(
		models.OrderItem{ProductID: "prod-a", Price: decimal.RequireFromString("50.00"), Quantity: 1},
	)
	assert.NoError(t, orders.Create(order))

	alreadyPaid, err := orders.MarkPaid(order.ID, "pi_123")
	assert.NoError(t, err)
	assert.False(t, alreadyPaid)

	// A repeated callback reports already-paid and changes nothing.
	alreadyPaid, err = orders.MarkPaid(order.ID, "pi_456")
	assert.NoError(t, err)
	assert.True(t, alreadyPaid)

	persisted, err := orders.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, persisted.Paid)
	assert.Equal(t, "pi_123", persisted.StripeID)

	_, err = orders.MarkPaid("missing", "pi_789")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}
