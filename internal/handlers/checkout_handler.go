package handlers

import (
	"errors"
	"fmt"
	"log"

	"micron/internal/middleware"
	"micron/internal/models"
	"micron/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for turning a cart into an order.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
	router.Post("/checkout/payment-intent/:orderId", h.HandleCreatePaymentIntent)
}

// checkoutRequest is the payload with the customer's shipping details.
type checkoutRequest struct {
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Address    string  `json:"address" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	City       string  `json:"city" validate:"required"`
	UserID     *string `json:"user_id"`
}

// HandleCheckout creates an order from the session's cart.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	sessionID := middleware.SessionID(c)
	order, err := h.service.CreateOrder(c.Context(), sessionID, services.CustomerInfo{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		City:       req.City,
		UserID:     req.UserID,
	})
	if err != nil {
		var stockErr *models.InsufficientStockError
		switch {
		case errors.Is(err, models.ErrCartEmpty):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Your cart is empty",
			})
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":   stockErr.Error(),
				"available": stockErr.Available,
			})
		case errors.Is(err, models.ErrProductNotFound):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "A product in your cart is no longer available",
			})
		default:
			log.Printf("Error creating order for session %s: %v", sessionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not create order",
				"error":   err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleCreatePaymentIntent creates a Stripe PaymentIntent for an order and
// returns the client secret the frontend needs to collect the payment.
func (h *CheckoutHandler) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	order, err := h.service.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		log.Printf("Error loading order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load order",
			"error":   err.Error(),
		})
	}
	if order.Paid == models.OrderPaid {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Order is already paid",
		})
	}

	intent, err := h.service.CreatePaymentIntent(order)
	if err != nil {
		log.Printf("Error creating payment intent for order %s: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create payment intent",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"client_secret": intent.ClientSecret,
		"payment_id":    intent.ID,
	})
}
