package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"micron/internal/models"
	"micron/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CouponHandler handles the admin-facing HTTP requests for coupons.
type CouponHandler struct {
	service  *services.CouponService
	validate *validator.Validate
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service *services.CouponService) *CouponHandler {
	return &CouponHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the coupon routes with the Fiber app.
func (h *CouponHandler) RegisterRoutes(router fiber.Router) {
	couponRoutes := router.Group("/coupons")
	couponRoutes.Get("/", h.HandleGetCoupons)
	couponRoutes.Post("/", h.HandleCreateCoupon)
	couponRoutes.Post("/:id/deactivate", h.HandleDeactivateCoupon)
	couponRoutes.Delete("/:id", h.HandleDeleteCoupon)
	couponRoutes.Post("/:id/undelete", h.HandleUndeleteCoupon)
}

// couponRequest is the payload for creating a coupon.
type couponRequest struct {
	Code      string    `json:"code" validate:"required"`
	ValidFrom time.Time `json:"valid_from" validate:"required"`
	ValidTo   time.Time `json:"valid_to" validate:"required"`
	Discount  int       `json:"discount" validate:"gte=0,lte=100"`
	Active    bool      `json:"active"`
	MaxUses   *int64    `json:"max_uses"`
}

// HandleGetCoupons lists all non-deleted coupons.
func (h *CouponHandler) HandleGetCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.GetAllCoupons()
	if err != nil {
		log.Printf("Error getting coupons: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve coupons",
			"error":   err.Error(),
		})
	}
	return c.JSON(coupons)
}

// HandleCreateCoupon creates a new coupon.
func (h *CouponHandler) HandleCreateCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing coupon request body: %v", err)
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

	coupon := &models.Coupon{
		Code:      req.Code,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		Discount:  req.Discount,
		Active:    req.Active,
		MaxUses:   req.MaxUses,
	}
	if err := h.service.CreateCoupon(coupon); err != nil {
		if errors.Is(err, models.ErrCouponCodeTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": fmt.Sprintf("Coupon code %q is already in use", req.Code),
			})
		}
		log.Printf("Error creating coupon: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create coupon",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// HandleDeactivateCoupon turns a coupon off while keeping it listed.
func (h *CouponHandler) HandleDeactivateCoupon(c *fiber.Ctx) error {
	couponID := c.Params("id")
	if err := h.service.DeactivateCoupon(couponID); err != nil {
		return h.couponError(c, couponID, err, "deactivate")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Coupon %s deactivated", couponID),
	})
}

// HandleDeleteCoupon soft-deletes a coupon.
func (h *CouponHandler) HandleDeleteCoupon(c *fiber.Ctx) error {
	couponID := c.Params("id")
	if err := h.service.DeleteCoupon(couponID); err != nil {
		return h.couponError(c, couponID, err, "delete")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Coupon %s deleted", couponID),
	})
}

// HandleUndeleteCoupon restores a soft-deleted coupon.
func (h *CouponHandler) HandleUndeleteCoupon(c *fiber.Ctx) error {
	couponID := c.Params("id")
	if err := h.service.UndeleteCoupon(couponID); err != nil {
		if errors.Is(err, models.ErrCouponCodeTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Coupon code has been claimed by another coupon",
			})
		}
		return h.couponError(c, couponID, err, "restore")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Coupon %s restored", couponID),
	})
}

func (h *CouponHandler) couponError(c *fiber.Ctx, couponID string, err error, action string) error {
	if errors.Is(err, models.ErrCouponNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Coupon with ID %s not found", couponID),
		})
	}
	log.Printf("Error trying to %s coupon %s: %v", action, couponID, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fmt.Sprintf("Could not %s coupon", action),
		"error":   err.Error(),
	})
}
