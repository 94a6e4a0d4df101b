package services

import (
	"fmt"

	"micron/internal/models"
	"micron/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bonusPointsRate is the share of the effective unit price earned as bonus
// points when the order is paid.
var bonusPointsRate = decimal.NewFromFloat(0.3)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts returns all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID returns a product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct stores a new product. Bonus points are derived from the
// effective price, not supplied by the caller.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.BonusPoints = deriveBonusPoints(product)
	if err := s.repo.Create(product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct persists changes to an existing product, re-deriving its
// bonus points so they track the current effective price.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	product.BonusPoints = deriveBonusPoints(product)
	if err := s.repo.Update(product); err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	return nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func deriveBonusPoints(product *models.Product) decimal.Decimal {
	return product.UnitPrice().Mul(bonusPointsRate).Round(2)
}
