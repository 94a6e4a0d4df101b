package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"micron/internal/models"
	"micron/internal/repositories"
	"micron/internal/session"

	"github.com/shopspring/decimal"
)

// CartService handles business logic for the session-scoped shopping cart:
// line mutations, coupon attachment and pricing totals. All arithmetic is
// decimal; rounding happens only when a value is rendered.
type CartService struct {
	store       session.CartStore
	productRepo repositories.ProductRepository
	couponRepo  repositories.CouponRepository
	now         func() time.Time
}

// NewCartService creates a new CartService.
func NewCartService(store session.CartStore, productRepo repositories.ProductRepository, couponRepo repositories.CouponRepository) *CartService {
	return &CartService{
		store:       store,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		now:         time.Now,
	}
}

// CartItemView is one cart line joined with its live product, for display.
// LineTotal is unit price times quantity from the snapshot, not from the
// product's current price.
type CartItemView struct {
	Product            *models.Product `json:"product"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	BonusPointsPerUnit decimal.Decimal `json:"bonus_points_per_unit"`
	LineTotal          decimal.Decimal `json:"line_total"`
	LineBonusPoints    decimal.Decimal `json:"line_bonus_points"`
}

// CartSummary is the fully priced view of a cart. The item views are
// recomputed on every call, so the sequence is restartable and always
// reflects the current lines.
type CartSummary struct {
	Items              []CartItemView  `json:"items"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	TotalBonusPoints   decimal.Decimal `json:"total_bonus_points"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TotalAfterDiscount decimal.Decimal `json:"total_after_discount"`
	Coupon             *models.Coupon  `json:"coupon,omitempty"`
	Adjustments        []string        `json:"adjustments,omitempty"`
}

// AddProduct adds a product to the session's cart, snapshotting its current
// (possibly discounted) price on first add. With override the quantity
// replaces the existing one instead of accumulating. The requested quantity
// is checked against current stock so the cart never holds more than the
// store can sell right now.
func (s *CartService) AddProduct(ctx context.Context, sessionID, productID string, quantity int, override bool) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, models.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// The guard covers what the line would hold after this add, so
	// repeated adds cannot creep past stock one request at a time.
	wanted := quantity
	if line, ok := cart.Lines[productID]; ok && !override {
		wanted += line.Quantity
	}
	if !product.Available || product.Quantity == 0 {
		return nil, &models.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   wanted,
			Available:   0,
		}
	}
	if wanted > product.Quantity {
		return nil, &models.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   wanted,
			Available:   product.Quantity,
		}
	}

	if err := cart.Add(product, quantity, override); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveProduct deletes the product's line from the cart; removing an
// absent product is a no-op.
func (s *CartService) RemoveProduct(ctx context.Context, sessionID, productID string) (*models.Cart, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Remove(productID)
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear removes the whole cart, including any applied coupon.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// LoadCart returns the session's cart as stored, without pricing it.
func (s *CartService) LoadCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.store.Load(ctx, sessionID)
}

// ApplyCoupon attaches a coupon code to the cart. The code must be usable
// right now (active, inside its window, not deleted) and have uses left;
// its usage counter is consumed at attach time through the repository's
// atomic increment, which re-checks the cap to close the race between
// check and use.
func (s *CartService) ApplyCoupon(ctx context.Context, sessionID, code string) (*models.Coupon, error) {
	coupon, err := s.couponRepo.FindUsable(code, s.now())
	if err != nil {
		return nil, err
	}
	if !coupon.HasUsesLeft() {
		return nil, fmt.Errorf("coupon %q: %w", code, models.ErrCouponUsageLimitExceeded)
	}
	if err := s.couponRepo.RecordUse(coupon.ID); err != nil {
		return nil, err
	}
	coupon.UsedCount++

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.CouponID = &coupon.ID
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	log.Printf("Coupon %s applied to session %s", coupon.Code, sessionID)
	return coupon, nil
}

// RemoveCoupon detaches any applied coupon from the cart.
func (s *CartService) RemoveCoupon(ctx context.Context, sessionID string) error {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	cart.CouponID = nil
	return s.store.Save(ctx, sessionID, cart)
}

// ActiveCoupon resolves the cart's attached coupon and returns it only if
// it still qualifies right now. A coupon that expired, was deactivated or
// was deleted after being attached yields nil, so the discount silently
// drops to zero instead of pricing with a stale coupon.
func (s *CartService) ActiveCoupon(ctx context.Context, cart *models.Cart) *models.Coupon {
	if cart.CouponID == nil {
		return nil
	}
	coupon, err := s.couponRepo.GetByID(*cart.CouponID)
	if err != nil {
		return nil
	}
	if !coupon.IsUsable(s.now()) {
		return nil
	}
	return coupon
}

// ItemViews returns the per-line display views of the cart. Each call
// rebuilds them from the stored lines and the live products, so callers can
// iterate as often as they like and always see current data.
func (s *CartService) ItemViews(ctx context.Context, sessionID string) ([]CartItemView, error) {
	summary, err := s.Summary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return summary.Items, nil
}

// Summary prices the cart. Lines whose product vanished or became
// unavailable are pruned, and quantities above current stock are clamped,
// with a human-readable note per adjustment; the pruned cart is saved back
// so the session converges on what is actually sellable.
func (s *CartService) Summary(ctx context.Context, sessionID string) (*CartSummary, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{Items: []CartItemView{}}
	changed := false

	productIDs := make([]string, 0, len(cart.Lines))
	for id := range cart.Lines {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, productID := range productIDs {
		line := cart.Lines[productID]

		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			cart.Remove(productID)
			summary.Adjustments = append(summary.Adjustments,
				"An item has been removed from your cart as it is no longer available.")
			changed = true
			continue
		}
		if !product.Available || product.Quantity == 0 {
			cart.Remove(productID)
			summary.Adjustments = append(summary.Adjustments,
				fmt.Sprintf("'%s' has been removed from your cart as it is no longer available.", product.Name))
			changed = true
			continue
		}
		if product.Quantity < line.Quantity {
			line.Quantity = product.Quantity
			summary.Adjustments = append(summary.Adjustments,
				fmt.Sprintf("Quantity for '%s' has been adjusted to %d due to limited stock.", product.Name, product.Quantity))
			changed = true
		}

		summary.Items = append(summary.Items, CartItemView{
			Product:            product,
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			BonusPointsPerUnit: line.BonusPointsPerUnit,
			LineTotal:          line.LineTotal(),
			LineBonusPoints:    line.LineBonusPoints(),
		})
	}

	if changed {
		if err := s.store.Save(ctx, sessionID, cart); err != nil {
			return nil, err
		}
	}

	coupon := s.ActiveCoupon(ctx, cart)
	summary.Coupon = coupon
	summary.TotalPrice = cart.TotalPrice()
	summary.TotalBonusPoints = cart.TotalBonusPoints()
	summary.DiscountAmount = cart.DiscountAmount(coupon)
	summary.TotalAfterDiscount = cart.TotalAfterDiscount(coupon)
	return summary, nil
}
