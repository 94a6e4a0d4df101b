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

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddToCart)
	cartRoutes.Post("/remove/:productId", h.HandleRemoveFromCart)
	cartRoutes.Post("/clear", h.HandleClearCart)
	cartRoutes.Post("/coupon/apply", h.HandleApplyCoupon)
	cartRoutes.Post("/coupon/remove", h.HandleRemoveCoupon)
}

// addToCartRequest is the payload for adding a product to the cart.
type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
	Override  bool   `json:"override"`
}

// applyCouponRequest is the payload for applying a coupon code.
type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// HandleGetCart returns the priced cart summary.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	summary, err := h.service.Summary(c.Context(), sessionID)
	if err != nil {
		log.Printf("Error building cart summary for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(summary)
}

// HandleAddToCart adds a product to the cart.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
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
	cart, err := h.service.AddProduct(c.Context(), sessionID, req.ProductID, req.Quantity, req.Override)
	if err != nil {
		return h.cartError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":    "Product added to cart",
		"item_count": cart.Len(),
	})
}

// HandleRemoveFromCart removes a product's line from the cart.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	cart, err := h.service.RemoveProduct(c.Context(), sessionID, c.Params("productId"))
	if err != nil {
		log.Printf("Error removing product from cart for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove product from cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message":    "Product removed from cart",
		"item_count": cart.Len(),
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	if err := h.service.Clear(c.Context(), sessionID); err != nil {
		log.Printf("Error clearing cart for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared",
	})
}

// HandleApplyCoupon attaches a coupon code to the cart.
func (h *CartHandler) HandleApplyCoupon(c *fiber.Ctx) error {
	var req applyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing apply-coupon request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Coupon code is required",
		})
	}

	sessionID := middleware.SessionID(c)
	coupon, err := h.service.ApplyCoupon(c.Context(), sessionID, req.Code)
	if err != nil {
		if errors.Is(err, models.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Coupon code is invalid or expired",
			})
		}
		if errors.Is(err, models.ErrCouponUsageLimitExceeded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Coupon usage limit has been reached",
			})
		}
		log.Printf("Error applying coupon for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not apply coupon",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message":  "Coupon applied",
		"code":     coupon.Code,
		"discount": coupon.Discount,
	})
}

// HandleRemoveCoupon detaches the applied coupon from the cart.
func (h *CartHandler) HandleRemoveCoupon(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	if err := h.service.RemoveCoupon(c.Context(), sessionID); err != nil {
		log.Printf("Error removing coupon for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove coupon",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Coupon removed",
	})
}

// cartError maps cart mutation errors to responses.
func (h *CartHandler) cartError(c *fiber.Ctx, err error) error {
	var stockErr *models.InsufficientStockError
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	case errors.Is(err, models.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quantity must be a positive number",
		})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   stockErr.Error(),
			"available": stockErr.Available,
		})
	default:
		log.Printf("Cart operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Cart operation failed",
			"error":   err.Error(),
		})
	}
}
