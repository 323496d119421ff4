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

// ProductionStepHandler coordinates production-step HTTP handlers.
type ProductionStepHandler struct {
	stepService *services.ProductionStepService
}

// NewProductionStepHandler creates a new ProductionStepHandler.
func NewProductionStepHandler(stepService *services.ProductionStepService) *ProductionStepHandler {
	return &ProductionStepHandler{
		stepService: stepService,
	}
}

// ListProductionSteps returns the caller's production steps
func (h *ProductionStepHandler) ListProductionSteps(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	steps, total, err := h.stepService.ListProductionSteps(identity, params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch production steps")
		return
	}

	c.JSON(http.StatusOK, dto.ToProductionStepListResponse(steps, params, total))
}

// GetProductionStep returns a specific production step by ID
func (h *ProductionStepHandler) GetProductionStep(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stepID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid production step ID")
		return
	}

	step, err := h.stepService.GetProductionStep(identity, stepID)
	if err != nil {
		respondProductionStepError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductionStepDTO(*step))
}

// CreateProductionStep creates a new production step
func (h *ProductionStepHandler) CreateProductionStep(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProductionStepRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateProductionStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	step, err := h.stepService.CreateProductionStep(services.CreateProductionStepInput{
		Owner:       identity,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondProductionStepError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProductionStepDTO(*step))
}

// UpdateProductionStep updates an existing production step
func (h *ProductionStepHandler) UpdateProductionStep(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stepID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid production step ID")
		return
	}

	type UpdateProductionStepRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateProductionStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	step, err := h.stepService.UpdateProductionStep(identity, stepID, services.UpdateProductionStepInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondProductionStepError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductionStepDTO(*step))
}

// DeleteProductionStep deletes a production step and its assignments
func (h *ProductionStepHandler) DeleteProductionStep(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stepID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid production step ID")
		return
	}

	if err := h.stepService.DeleteProductionStep(identity, stepID); err != nil {
		respondProductionStepError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Production step deleted successfully",
	})
}

func respondProductionStepError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductionStepNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProductionStepNameRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
