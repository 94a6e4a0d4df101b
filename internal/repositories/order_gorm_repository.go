package repositories

import (
	"errors"
	"fmt"

	"micron/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their items.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, models.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create persists the order and its items and decrements stock for every
// item inside one transaction. A guarded UPDATE ("quantity >= ?") performs
// each decrement; when the guard matches no row the whole transaction rolls
// back and an InsufficientStockError (or ErrProductNotFound) is returned,
// leaving stock and orders untouched.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Paid == "" {
		order.Paid = models.OrderUnpaid
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			item := &order.Items[i]
			res := tx.Model(&models.Product{}).
				Where("id = ? AND quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				var product models.Product
				if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("product %s: %w", item.ProductID, models.ErrProductNotFound)
					}
					return fmt.Errorf("failed to read product %s: %w", item.ProductID, err)
				}
				return &models.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Quantity,
				}
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

// MarkPaid transitions an unpaid order to paid with a conditional UPDATE so
// concurrent or repeated payment callbacks cannot double-apply the
// transition. It returns alreadyPaid=true (and no error) when the order was
// paid before this call, and ErrOrderNotFound when the order doesn't exist.
func (r *GORMOrderRepository) MarkPaid(id string, stripeID string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND paid = ?", id, models.OrderUnpaid).
		Updates(map[string]interface{}{"paid": models.OrderPaid, "stripe_id": stripeID})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return false, nil
	}

	// Nothing updated: the order is either missing or was already paid.
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("order %s: %w", id, models.ErrOrderNotFound)
		}
		return false, fmt.Errorf("failed to read order %s: %w", id, err)
	}
	if order.Paid != models.OrderPaid {
		return false, fmt.Errorf("order %s could not be marked paid", id)
	}
	return true, nil
}
