package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"micron/internal/models"
	"micron/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// PaymentHandler handles the Stripe webhook that settles orders.
type PaymentHandler struct {
	service       *services.PaymentService
	webhookSecret string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes registers the payment routes with the Fiber app.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payment/webhook", h.HandleStripeWebhook)
}

// checkoutSession is the slice of the event payload the settlement needs.
type checkoutSession struct {
	Mode              string `json:"mode"`
	PaymentStatus     string `json:"payment_status"`
	PaymentIntent     string `json:"payment_intent"`
	ClientReferenceID string `json:"client_reference_id"`
}

// HandleStripeWebhook verifies the event signature and settles the order a
// completed checkout session points at. Replayed deliveries for an
// already-paid order return 200 without side effects.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	// The endpoint may be configured at a different Stripe API version
	// than the one this library pins; the signature check alone decides
	// authenticity.
	event, err := webhook.ConstructEventWithOptions(payload, c.Get("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Printf("Stripe webhook signature verification failed: %v", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if event.Type != stripe.EventType("checkout.session.completed") {
		return c.SendStatus(fiber.StatusOK)
	}

	var session checkoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Printf("Failed to decode checkout session payload: %v", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if session.Mode != "payment" || session.PaymentStatus != "paid" {
		return c.SendStatus(fiber.StatusOK)
	}
	if session.ClientReferenceID == "" {
		log.Printf("Checkout session completed without client_reference_id")
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if _, err := h.service.Settle(session.ClientReferenceID, session.PaymentIntent); err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			log.Printf("Stripe webhook referenced unknown order %s", session.ClientReferenceID)
			return c.SendStatus(fiber.StatusBadRequest)
		}
		log.Printf("Failed to settle order %s: %v", session.ClientReferenceID, err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}
