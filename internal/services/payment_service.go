package services

import (
	"log"

	"micron/internal/models"
	"micron/internal/repositories"
)

// PaymentService settles orders once the payment provider confirms them.
// Settlement is idempotent: the unpaid-to-paid transition commits exactly
// once, and side effects fire only on the call that performed it.
type PaymentService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(orderRepo repositories.OrderRepository, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// Settle marks the order as paid and records the provider's payment
// reference. Replayed confirmations for an already-paid order succeed
// without publishing the paid event again, so retried webhooks cannot
// double-send invoices or double-credit bonus points.
func (s *PaymentService) Settle(orderID, paymentRef string) (*models.Order, error) {
	alreadyPaid, err := s.orderRepo.MarkPaid(orderID, paymentRef)
	if err != nil {
		return nil, err
	}
	if alreadyPaid {
		log.Printf("Order %s already settled, skipping side effects", orderID)
		return s.orderRepo.GetByID(orderID)
	}

	// The event goes out only after the paid state is durable, mirroring
	// an on-commit hook.
	if s.publisher != nil {
		if err := s.publisher.PublishOrderPaid(orderID); err != nil {
			log.Printf("Failed to publish order paid event for order %s: %v", orderID, err)
		}
	}

	log.Printf("Order %s settled with payment %s", orderID, paymentRef)
	return s.orderRepo.GetByID(orderID)
}
