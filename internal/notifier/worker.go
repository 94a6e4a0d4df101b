package notifier

import (
	"errors"
	"fmt"
	"log"

	"micron/internal/models"
	"micron/internal/repositories"
	"micron/pkg/rabbitmq"
)

// Worker reacts to order events from the queue. Notification failures are
// logged and swallowed so one broken channel (SMTP down, webhook gone)
// never blocks the others or requeues the event forever; only a transient
// failure to load the order is returned, which nacks the message for
// retry. Events for orders that do not exist at all are dropped.
type Worker struct {
	orders repositories.OrderRepository
	users  repositories.UserRepository
	mailer Mailer
	ops    OpsNotifier
}

// NewWorker creates a new Worker.
func NewWorker(orders repositories.OrderRepository, users repositories.UserRepository, mailer Mailer, ops OpsNotifier) *Worker {
	return &Worker{
		orders: orders,
		users:  users,
		mailer: mailer,
		ops:    ops,
	}
}

// HandleEvent dispatches one order event.
func (w *Worker) HandleEvent(event rabbitmq.OrderEvent) error {
	switch event.Type {
	case rabbitmq.EventOrderCreated:
		return w.handleOrderCreated(event.OrderID)
	case rabbitmq.EventOrderPaid:
		return w.handleOrderPaid(event.OrderID)
	default:
		log.Printf("Ignoring unknown order event type %q for order %s", event.Type, event.OrderID)
		return nil
	}
}

// loadOrder fetches the event's order. An order that does not exist will
// never start existing, so not-found is a drop (nil order, nil error)
// rather than an error that would requeue the event forever.
func (w *Worker) loadOrder(orderID string) (*models.Order, error) {
	order, err := w.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			log.Printf("Dropping event for unknown order %s", orderID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return order, nil
}

func (w *Worker) handleOrderCreated(orderID string) error {
	order, err := w.loadOrder(orderID)
	if err != nil || order == nil {
		return err
	}

	if w.mailer != nil {
		if err := w.mailer.SendOrderConfirmation(order); err != nil {
			log.Printf("Failed to send confirmation email for order %s: %v", orderID, err)
		}
	}
	if w.ops != nil {
		if err := w.ops.NotifyOrderCreated(order); err != nil {
			log.Printf("Failed to notify ops about order %s: %v", orderID, err)
		}
	}
	return nil
}

func (w *Worker) handleOrderPaid(orderID string) error {
	order, err := w.loadOrder(orderID)
	if err != nil || order == nil {
		return err
	}

	if w.mailer != nil {
		if err := w.mailer.SendOrderInvoice(order); err != nil {
			log.Printf("Failed to send invoice for order %s: %v", orderID, err)
		}
	}

	w.creditBonusPoints(order)

	if w.ops != nil {
		if err := w.ops.NotifyOrderPaid(order); err != nil {
			log.Printf("Failed to notify ops about paid order %s: %v", orderID, err)
		}
	}
	return nil
}

// creditBonusPoints adds the order's bonus points to the customer's ledger.
// Guests and zero-point orders are skipped; the order must actually be paid
// in case a stray event arrives for an unpaid one.
func (w *Worker) creditBonusPoints(order *models.Order) {
	if w.users == nil || order.UserID == nil {
		return
	}
	if order.Paid != models.OrderPaid || !order.BonusPoints.IsPositive() {
		return
	}
	if err := w.users.AddBonusPoints(*order.UserID, order.BonusPoints); err != nil {
		log.Printf("Failed to credit %s bonus points to user %s for order %s: %v",
			order.BonusPoints, *order.UserID, order.ID, err)
		return
	}
	log.Printf("Credited %s bonus points to user %s for order %s",
		order.BonusPoints, *order.UserID, order.ID)
}
