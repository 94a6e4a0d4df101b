package services

import (
	"testing"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func seedUnpaidOrder(t *testing.T, repo *repositories.MockOrderRepository) *models.Order {
	t.Helper()
	order := &models.Order{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Address:     "12 Analytical Street",
		PostalCode:  "1000",
		City:        "London",
		Paid:        models.OrderUnpaid,
		BonusPoints: decimal.RequireFromString("15.00"),
		Items: []models.OrderItem{
			{ProductID: "p1", Price: decimal.RequireFromString("50.00"), Quantity: 1},
		},
	}
	assert.NoError(t, repo.Create(order))
	return order
}

func TestPaymentService_SettleMarksPaidAndPublishes(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	publisher := &recordingPublisher{}
	svc := NewPaymentService(orders, publisher)
	order := seedUnpaidOrder(t, orders)

	settled, err := svc.Settle(order.ID, "pi_123")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, settled.Paid)
	assert.Equal(t, "pi_123", settled.StripeID)
	assert.Equal(t, []string{order.ID}, publisher.paid)
}

func TestPaymentService_SettleIsIdempotent(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	publisher := &recordingPublisher{}
	svc := NewPaymentService(orders, publisher)
	order := seedUnpaidOrder(t, orders)

	_, err := svc.Settle(order.ID, "pi_123")
	assert.NoError(t, err)

	// A replayed confirmation succeeds without side effects.
	settled, err := svc.Settle(order.ID, "pi_456")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, settled.Paid)
	assert.Equal(t, "pi_123", settled.StripeID, "original payment reference must be kept")
	assert.Len(t, publisher.paid, 1)
}

func TestPaymentService_SettleUnknownOrder(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	svc := NewPaymentService(orders, &recordingPublisher{})

	_, err := svc.Settle("missing", "pi_123")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestPaymentService_SettleWithoutPublisher(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	svc := NewPaymentService(orders, nil)
	order := seedUnpaidOrder(t, orders)

	settled, err := svc.Settle(order.ID, "pi_123")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPaid, settled.Paid)
}
