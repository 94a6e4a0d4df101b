package notifier

import (
	"errors"
	"sync"
	"testing"

	"micron/internal/models"
	"micron/internal/repositories"
	"micron/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type recordingMailer struct {
	mu            sync.Mutex
	confirmations []string
	invoices      []string
	fail          bool
}

func (m *recordingMailer) SendOrderConfirmation(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.confirmations = append(m.confirmations, order.ID)
	return nil
}

func (m *recordingMailer) SendOrderInvoice(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.invoices = append(m.invoices, order.ID)
	return nil
}

type recordingOps struct {
	mu      sync.Mutex
	created []string
	paid    []string
}

func (o *recordingOps) NotifyOrderCreated(order *models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created = append(o.created, order.ID)
	return nil
}

func (o *recordingOps) NotifyOrderPaid(order *models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paid = append(o.paid, order.ID)
	return nil
}

type workerFixture struct {
	worker *Worker
	orders *repositories.MockOrderRepository
	users  *repositories.MockUserRepository
	mailer *recordingMailer
	ops    *recordingOps
}

func newWorkerFixture() *workerFixture {
	orders := repositories.NewMockOrderRepository()
	users := repositories.NewMockUserRepository()
	mailer := &recordingMailer{}
	ops := &recordingOps{}
	return &workerFixture{
		worker: NewWorker(orders, users, mailer, ops),
		orders: orders,
		users:  users,
		mailer: mailer,
		ops:    ops,
	}
}

func seedOrder(t *testing.T, f *workerFixture, userID *string, bonus string) *models.Order {
	t.Helper()
	order := &models.Order{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Address:     "12 Analytical Street",
		PostalCode:  "1000",
		City:        "London",
		Paid:        models.OrderUnpaid,
		BonusPoints: decimal.RequireFromString(bonus),
		UserID:      userID,
		Items: []models.OrderItem{
			{ProductID: "p1", Price: decimal.RequireFromString("50.00"), Quantity: 2},
		},
	}
	assert.NoError(t, f.orders.Create(order))
	return order
}

func TestWorker_OrderCreatedSendsConfirmationAndOpsNote(t *testing.T) {
	f := newWorkerFixture()
	order := seedOrder(t, f, nil, "15.00")

	err := f.worker.HandleEvent(rabbitmq.OrderEvent{Type: rabbitmq.EventOrderCreated, OrderID: order.ID})
	assert.NoError(t, err)
	assert.Equal(t, []string{order.ID}, f.mailer.confirmations)
	assert.Equal(t, []string{order.ID}, f.ops.created)
	assert.Empty(t, f.mailer.invoices)
}

func TestWorker_OrderPaidCreditsBonusPoints(t *testing.T) {
	f := newWorkerFixture()
	user := &models.User{Email: "ada@example.com"}
	assert.NoError(t, f.users.Create(user))
	order := seedOrder(t, f, &user.ID, "15.00")
	_, err := f.orders.MarkPaid(order.ID, "pi_123")
	assert.NoError(t, err)

	err = f.worker.HandleEvent(rabbitmq.OrderEvent{Type: rabbitmq.EventOrderPaid, OrderID: order.ID})
	assert.NoError(t, err)
	assert.Equal(t, []string{order.ID}, f.mailer.invoices)
	assert.Equal(t, []string{order.ID}, f.ops.paid)

	credited, err := f.users.GetByID(user.ID)
	assert.NoError(t, err)
	assert.True(t, credited.BonusPoints.Equal(decimal.RequireFromString("15.00")),
		"expected 15.00, got %s", credited.BonusPoints)
}

func TestWorker_OrderPaidSkipsBonusForGuests(t *testing.T) {
	f := newWorkerFixture()
	order := seedOrder(t, f, nil, "15.00")
	_, err := f.orders.MarkPaid(order.ID, "pi_123")
	assert.NoError(t, err)

	err = f.worker.HandleEvent(rabbitmq.OrderEvent{Type: rabbitmq.EventOrderPaid, OrderID: order.ID})
	assert.NoError(t, err)
	assert.Equal(t, []string{order.ID}, f.mailer.invoices)
}

func TestWorker_OrderPaidSkipsBonusWhenOrderUnpaid(t *testing.T) {
	f := newWorkerFixture()
	user := &models.User{Email: "ada@example.com"}
	assert.NoError(t, f.users.Create(user))
	order := seedOrder(t, f, &user.ID, "15.00")

	// Stray paid event for an order that never settled.
	err := f.worker.HandleEvent(rabbitmq.OrderEvent{Type: rabbitmq.EventOrderPaid, OrderID: order.ID})
	assert.NoError(t, err)

	untouched, err := f.users.GetByID(user.ID)
	assert.NoError(t, err)
	assert.True(t, untouched.BonusPoints.IsZero())
}

func TestWorker_MailFailureDoesNotFailEvent(t *testing.T) {
	f := newWorkerFixture()
	f.mailer.fail = true
	order := seedOrder(t, f, nil, "15.00")

	err := f.worker.HandleEvent(rabbitmq.OrderEvent{Type: rabbitmq.EventOrderCreated, OrderID: order.ID})
	assert.NoError(t, err)
	// Ops still got its note even though SMTP was down.
	assert.Equal(t, []string{order.ID}, f.ops.created)
}

func TestWorker_UnknownOrderDroppedWithoutRetry(t *testing.T) {
	f := newWorkerFixture()

	// The order will never appear, so requeueing would loop forever.
	err := f.worker.HandleEvent(rabbitmq.OrderEvent{Type: rabbitmq.EventOrderCreated, OrderID: "missing"})
	assert.NoError(t, err)
	assert.Empty(t, f.mailer.confirmations)
	assert.Empty(t, f.ops.created)

	err = f.worker.HandleEvent(rabbitmq.OrderEvent{Type: rabbitmq.EventOrderPaid, OrderID: "missing"})
	assert.NoError(t, err)
	assert.Empty(t, f.mailer.invoices)
	assert.Empty(t, f.ops.paid)
}

func TestWorker_UnknownEventTypeIgnored(t *testing.T) {
	f := newWorkerFixture()

	err := f.worker.HandleEvent(rabbitmq.OrderEvent{Type: "order.refunded", OrderID: "whatever"})
	assert.NoError(t, err)
}
