package repositories

import (
	"micron/internal/models"
)

// ProductRepository defines the interface for product data access. Stock
// decrements happen inside the order repository's checkout transaction so
// they commit or roll back together with the order.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
