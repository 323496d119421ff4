package dto

import (
	"time"

	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/utils"
)

// ProductDTO represents a product in API responses
type ProductDTO struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	ArticleNumber string    `json:"article_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductListResponse represents a paginated list of products
type ProductListResponse struct {
	Products   []ProductDTO             `json:"products"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToProductDTO converts a Product model to ProductDTO
func ToProductDTO(product models.Product) ProductDTO {
	return ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		ArticleNumber: product.ArticleNumber,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// ToProductListResponse converts a slice of products to ProductListResponse
func ToProductListResponse(products []models.Product, params utils.PaginationParams, total int64) ProductListResponse {
	items := make([]ProductDTO, len(products))
	for i, product := range products {
		items[i] = ToProductDTO(product)
	}

	return ProductListResponse{
		Products: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}
