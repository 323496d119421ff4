package handlers

import (
	"encoding/json"
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

// ProductionStepDetailHandler coordinates assignment HTTP handlers,
// including the bulk assignment endpoint.
type ProductionStepDetailHandler struct {
	detailService *services.ProductionStepDetailService
}

// NewProductionStepDetailHandler creates a new ProductionStepDetailHandler.
func NewProductionStepDetailHandler(detailService *services.ProductionStepDetailService) *ProductionStepDetailHandler {
	return &ProductionStepDetailHandler{
		detailService: detailService,
	}
}

// detailValuesRequest is the JSON shape shared by single creation and
// the bulk defaults template.
type detailValuesRequest struct {
	FactoryPrice    *string `json:"factory_price"`
	CalculatedPrice *string `json:"calculated_price"`
	QuantityLimit1  *int64  `json:"quantity_limit1"`
	QuantityLimit2  *int64  `json:"quantity_limit2"`
	IsFinalStep     bool    `json:"is_final_step"`
	IsVtStep        bool    `json:"is_vt_step"`
	IsParkingStep   bool    `json:"is_parking_step"`
}

func (r detailValuesRequest) toValues() services.DetailValues {
	return services.DetailValues{
		FactoryPrice:    r.FactoryPrice,
		CalculatedPrice: r.CalculatedPrice,
		QuantityLimit1:  r.QuantityLimit1,
		QuantityLimit2:  r.QuantityLimit2,
		IsFinalStep:     r.IsFinalStep,
		IsVtStep:        r.IsVtStep,
		IsParkingStep:   r.IsParkingStep,
	}
}

// ListDetails returns the caller's assignments, optionally filtered by
// product or production step
func (h *ProductionStepDetailHandler) ListDetails(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListDetailsInput{
		Owner:    identity,
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if raw := c.Query("product_id"); raw != "" {
		productID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid product_id filter")
			return
		}
		input.ProductID = &productID
	}
	if raw := c.Query("production_step_id"); raw != "" {
		stepID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid production_step_id filter")
			return
		}
		input.ProductionStepID = &stepID
	}

	details, total, err := h.detailService.ListDetails(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch production step details")
		return
	}

	c.JSON(http.StatusOK, dto.ToDetailListResponse(details, params, total))
}

// GetDetail returns a specific assignment with its product and step
func (h *ProductionStepDetailHandler) GetDetail(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	detailID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid production step detail ID")
		return
	}

	detail, err := h.detailService.GetDetail(identity, detailID)
	if err != nil {
		respondDetailError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductionStepDetailDTO(*detail))
}

// CreateDetail assigns a single production step to a product
func (h *ProductionStepDetailHandler) CreateDetail(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateDetailRequest struct {
		ProductID        uint64 `json:"product_id" binding:"required"`
		ProductionStepID uint64 `json:"production_step_id" binding:"required"`
		SequenceNumber   uint64 `json:"sequence_number" binding:"required"`
		detailValuesRequest
	}

	var req CreateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	detail, err := h.detailService.CreateDetail(services.CreateDetailInput{
		Owner:            identity,
		ProductID:        req.ProductID,
		ProductionStepID: req.ProductionStepID,
		SequenceNumber:   req.SequenceNumber,
		Values:           req.toValues(),
	})
	if err != nil {
		respondDetailError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProductionStepDetailDTO(*detail))
}

// UpdateDetail updates sequencing and values on an existing assignment
func (h *ProductionStepDetailHandler) UpdateDetail(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	detailID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid production step detail ID")
		return
	}

	// Parse raw JSON first so explicit nulls on the price fields are
	// distinguishable from absent keys.
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	type UpdateDetailRequest struct {
		SequenceNumber  *uint64 `json:"sequence_number"`
		FactoryPrice    *string `json:"factory_price"`
		CalculatedPrice *string `json:"calculated_price"`
		QuantityLimit1  *int64  `json:"quantity_limit1"`
		QuantityLimit2  *int64  `json:"quantity_limit2"`
		IsFinalStep     *bool   `json:"is_final_step"`
		IsVtStep        *bool   `json:"is_vt_step"`
		IsParkingStep   *bool   `json:"is_parking_step"`
	}

	body, err := json.Marshal(raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	var req UpdateDetailRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateDetailInput{
		SequenceNumber:  req.SequenceNumber,
		FactoryPrice:    req.FactoryPrice,
		CalculatedPrice: req.CalculatedPrice,
		QuantityLimit1:  req.QuantityLimit1,
		QuantityLimit2:  req.QuantityLimit2,
		IsFinalStep:     req.IsFinalStep,
		IsVtStep:        req.IsVtStep,
		IsParkingStep:   req.IsParkingStep,
	}
	if value, present := raw["factory_price"]; present && value == nil {
		input.ClearFactoryPrice = true
	}
	if value, present := raw["calculated_price"]; present && value == nil {
		input.ClearCalculatedPrice = true
	}

	detail, err := h.detailService.UpdateDetail(identity, detailID, input)
	if err != nil {
		respondDetailError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProductionStepDetailDTO(*detail))
}

// DeleteDetail removes an assignment
func (h *ProductionStepDetailHandler) DeleteDetail(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	detailID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid production step detail ID")
		return
	}

	if err := h.detailService.DeleteDetail(identity, detailID); err != nil {
		respondDetailError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Production step detail deleted successfully",
	})
}

// BulkAssign assigns multiple production steps to multiple products in
// one request. Partial failure is a success response: created, skipped
// and failed buckets are reported per combination and the HTTP status
// stays 200.
func (h *ProductionStepDetailHandler) BulkAssign(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type BulkAssignDefaultsRequest struct {
		SequenceStart uint64 `json:"sequence_start"`
		AutoIncrement bool   `json:"auto_increment"`
		detailValuesRequest
	}

	// The ID lists carry no binding tags: missing or empty lists go
	// through to the service validator so the caller gets the
	// field-detailed validation payload instead of a generic 400.
	type BulkAssignRequest struct {
		ProductIDs        []uint64                  `json:"product_ids"`
		ProductionStepIDs []uint64                  `json:"production_step_ids"`
		DefaultValues     BulkAssignDefaultsRequest `json:"default_values"`
	}

	var req BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.detailService.BulkAssign(c.Request.Context(), identity, services.BulkAssignInput{
		ProductIDs:        req.ProductIDs,
		ProductionStepIDs: req.ProductionStepIDs,
		Defaults: services.BulkAssignDefaults{
			SequenceStart: req.DefaultValues.SequenceStart,
			AutoIncrement: req.DefaultValues.AutoIncrement,
			Values:        req.DefaultValues.toValues(),
		},
	})
	if err != nil {
		respondDetailError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBulkAssignResponse(result))
}

func respondDetailError(c *gin.Context, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, toFieldErrors(validationErr))
	case errors.Is(err, services.ErrDetailNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrDetailAlreadyExists):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

func toFieldErrors(err *services.ValidationError) []apierrors.FieldError {
	fields := make([]apierrors.FieldError, len(err.Violations))
	for i, v := range err.Violations {
		fields[i] = apierrors.FieldError{Field: v.Field, Message: v.Message}
	}
	return fields
}
