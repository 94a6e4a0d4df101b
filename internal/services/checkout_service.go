package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// EventPublisher emits order lifecycle events to the message broker so the
// notification worker can react asynchronously. A nil publisher disables
// events; checkout still succeeds.
type EventPublisher interface {
	PublishOrderCreated(orderID string) error
	PublishOrderPaid(orderID string) error
}

// CustomerInfo carries the shipping and contact details collected at
// checkout. UserID is set only for signed-in customers and links the order
// to their bonus-points ledger.
type CustomerInfo struct {
	FirstName  string
	LastName   string
	Email      string
	Address    string
	PostalCode string
	City       string
	UserID     *string
}

// CheckoutService turns a cart into an order. The stock decrement and the
// order insert commit together in the repository's transaction; the cart is
// cleared only after that commit, so a failed checkout leaves the cart
// intact for the customer to adjust.
type CheckoutService struct {
	cartService *CartService
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	publisher   EventPublisher
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(cartService *CartService, productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository, publisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		cartService: cartService,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
	}
}

// CreateOrder validates the session's cart, snapshots its pricing into an
// order and commits it. Prices come from the cart's add-time snapshots, the
// coupon discount from the coupon attached to the cart if it still
// qualifies. On success the cart is cleared and an order-created event is
// published.
func (s *CheckoutService) CreateOrder(ctx context.Context, sessionID string, info CustomerInfo) (*models.Order, error) {
	cart, err := s.cartService.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, models.ErrCartEmpty
	}

	// Pre-validate stock for a friendly error before touching the
	// database. The repository re-checks atomically on commit, so a race
	// here only changes which error path reports the shortage.
	productIDs := make([]string, 0, len(cart.Lines))
	for id := range cart.Lines {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, productID := range productIDs {
		line := cart.Lines[productID]
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return nil, err
		}
		if !product.Available || product.Quantity < line.Quantity {
			available := product.Quantity
			if !product.Available {
				available = 0
			}
			return nil, &models.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   available,
			}
		}
	}

	coupon := s.cartService.ActiveCoupon(ctx, cart)

	order := &models.Order{
		ID:          uuid.New().String(),
		FirstName:   info.FirstName,
		LastName:    info.LastName,
		Email:       info.Email,
		Address:     info.Address,
		PostalCode:  info.PostalCode,
		City:        info.City,
		Paid:        models.OrderUnpaid,
		BonusPoints: cart.TotalBonusPoints(),
		UserID:      info.UserID,
	}
	if coupon != nil {
		order.CouponID = &coupon.ID
		order.Discount = coupon.Discount
	}
	for _, productID := range productIDs {
		line := cart.Lines[productID]
		order.Items = append(order.Items, models.OrderItem{
			ProductID: line.ProductID,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	if err := s.cartService.Clear(ctx, sessionID); err != nil {
		log.Printf("Failed to clear cart for session %s after order %s: %v", sessionID, order.ID, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(order.ID); err != nil {
			log.Printf("Failed to publish order created event for order %s: %v", order.ID, err)
		}
	}

	return order, nil
}

// GetOrder returns an order by its ID.
func (s *CheckoutService) GetOrder(orderID string) (*models.Order, error) {
	return s.orderRepo.GetByID(orderID)
}

// GetAllOrders returns every order.
func (s *CheckoutService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// CreatePaymentIntent creates a Stripe PaymentIntent for the order's total
// after discount, in cents. The order ID rides along as client reference
// metadata so the webhook can settle the right order.
func (s *CheckoutService) CreatePaymentIntent(order *models.Order) (*stripe.PaymentIntent, error) {
	amount := order.TotalCost().Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id": order.ID,
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent for order %s: %w", order.ID, err)
	}
	log.Printf("PaymentIntent %s created for order %s (%s cents)", intent.ID, order.ID, decimal.NewFromInt(amount))
	return intent, nil
}
