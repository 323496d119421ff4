package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snagasawa/production-management-api/internal/dto"
	apierrors "github.com/snagasawa/production-management-api/internal/errors"
	"github.com/snagasawa/production-management-api/internal/middleware"
	"github.com/snagasawa/production-management-api/internal/services"
	"github.com/snagasawa/production-management-api/internal/utils"
)

// ProductHandler coordinates product-related HTTP handlers.
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// ListProducts returns the caller's products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.ListProducts(identity, params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, dto.ToProductListResponse(products, params, total))
}

// GetProduct returns a specific product by ID
func (h *ProductHandler) GetProduct(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetProduct(identity, productID)
	if err != nil {
		respondProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductDTO(*product))
}

// CreateProduct creates a new product
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProductRequest struct {
		Name          string `json:"name" binding:"required"`
		ArticleNumber string `json:"article_number"`
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(services.CreateProductInput{
		Owner:         identity,
		Name:          req.Name,
		ArticleNumber: req.ArticleNumber,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProductDTO(*product))
}

// UpdateProduct updates an existing product
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid product ID")
		return
	}

	type UpdateProductRequest struct {
		Name          *string `json:"name"`
		ArticleNumber *string `json:"article_number"`
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(identity, productID, services.UpdateProductInput{
		Name:          req.Name,
		ArticleNumber: req.ArticleNumber,
	})
	if err != nil {
		respondProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductDTO(*product))
}

// DeleteProduct deletes a product and its step assignments
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.DeleteProduct(identity, productID); err != nil {
		respondProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProductNameRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
