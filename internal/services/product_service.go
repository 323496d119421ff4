package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameRequired = errors.New("product name is required")
)

// ProductService handles product business logic
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
	}
}

// CreateProductInput represents input for creating a product
type CreateProductInput struct {
	Owner         models.Identity
	Name          string
	ArticleNumber string
}

// UpdateProductInput represents input for updating a product
type UpdateProductInput struct {
	Name          *string
	ArticleNumber *string
}

// ListProducts returns the owner's products with pagination
func (s *ProductService) ListProducts(owner models.Identity, page, pageSize int) ([]models.Product, int64, error) {
	products, total, err := s.productRepo.List(owner.OwnerID(), page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetProduct returns a single product
func (s *ProductService) GetProduct(owner models.Identity, productID uint64) (*models.Product, error) {
	product, err := s.productRepo.FindByID(owner.OwnerID(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// CreateProduct creates a new product for the owner
func (s *ProductService) CreateProduct(input CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProductNameRequired
	}

	product := &models.Product{
		OwnerID:       input.Owner.OwnerID(),
		Name:          input.Name,
		ArticleNumber: input.ArticleNumber,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct updates an existing product
func (s *ProductService) UpdateProduct(owner models.Identity, productID uint64, input UpdateProductInput) (*models.Product, error) {
	product, err := s.productRepo.FindByID(owner.OwnerID(), productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProductNameRequired
		}
		product.Name = *input.Name
	}
	if input.ArticleNumber != nil {
		product.ArticleNumber = *input.ArticleNumber
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct deletes a product and its step assignments
func (s *ProductService) DeleteProduct(owner models.Identity, productID uint64) error {
	if _, err := s.productRepo.FindByID(owner.OwnerID(), productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to find product: %w", err)
	}

	if err := s.productRepo.Delete(owner.OwnerID(), productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
