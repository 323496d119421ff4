package dto

import (
	"time"

	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/services"
	"github.com/snagasawa/production-management-api/internal/utils"
)

// ProductionStepDetailDTO represents a production step assignment in API responses
type ProductionStepDetailDTO struct {
	ID               uint64             `json:"id"`
	ProductID        uint64             `json:"product_id"`
	ProductionStepID uint64             `json:"production_step_id"`
	SequenceNumber   uint64             `json:"sequence_number"`
	FactoryPrice     *string            `json:"factory_price"`
	CalculatedPrice  *string            `json:"calculated_price"`
	QuantityLimit1   *int64             `json:"quantity_limit1"`
	QuantityLimit2   *int64             `json:"quantity_limit2"`
	IsFinalStep      bool               `json:"is_final_step"`
	IsVtStep         bool               `json:"is_vt_step"`
	IsParkingStep    bool               `json:"is_parking_step"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Product          *ProductDTO        `json:"product,omitempty"`
	ProductionStep   *ProductionStepDTO `json:"production_step,omitempty"`
}

// DetailListResponse represents a paginated list of details
type DetailListResponse struct {
	Details    []ProductionStepDetailDTO `json:"details"`
	Pagination utils.PaginationResponse  `json:"pagination"`
}

// BulkAssignData groups the per-outcome payloads of one bulk assignment
type BulkAssignData struct {
	Created []ProductionStepDetailDTO `json:"created"`
	Skipped []services.SkippedPair    `json:"skipped"`
	Failed  []services.FailedChunk    `json:"failed"`
}

// BulkAssignResponse is the bulk assignment endpoint payload
type BulkAssignResponse struct {
	Success bool                       `json:"success"`
	Data    BulkAssignData             `json:"data"`
	Summary services.BulkAssignSummary `json:"summary"`
}

// ToProductionStepDetailDTO converts a detail model to its DTO
func ToProductionStepDetailDTO(detail models.ProductionStepDetail) ProductionStepDetailDTO {
	dto := ProductionStepDetailDTO{
		ID:               detail.ID,
		ProductID:        detail.ProductID,
		ProductionStepID: detail.ProductionStepID,
		SequenceNumber:   detail.SequenceNumber,
		FactoryPrice:     detail.FactoryPrice,
		CalculatedPrice:  detail.CalculatedPrice,
		QuantityLimit1:   detail.QuantityLimit1,
		QuantityLimit2:   detail.QuantityLimit2,
		IsFinalStep:      detail.IsFinalStep,
		IsVtStep:         detail.IsVtStep,
		IsParkingStep:    detail.IsParkingStep,
		CreatedAt:        detail.CreatedAt,
		UpdatedAt:        detail.UpdatedAt,
	}

	// Include relations if preloaded
	if detail.Product.ID != 0 {
		product := ToProductDTO(detail.Product)
		dto.Product = &product
	}
	if detail.ProductionStep.ID != 0 {
		step := ToProductionStepDTO(detail.ProductionStep)
		dto.ProductionStep = &step
	}

	return dto
}

// ToDetailListResponse converts a slice of details to DetailListResponse
func ToDetailListResponse(details []models.ProductionStepDetail, params utils.PaginationParams, total int64) DetailListResponse {
	items := make([]ProductionStepDetailDTO, len(details))
	for i, detail := range details {
		items[i] = ToProductionStepDetailDTO(detail)
	}

	return DetailListResponse{
		Details: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

// ToBulkAssignResponse converts a bulk assignment result to the response payload
func ToBulkAssignResponse(result *services.BulkAssignResult) BulkAssignResponse {
	created := make([]ProductionStepDetailDTO, len(result.Created))
	for i, detail := range result.Created {
		created[i] = ToProductionStepDetailDTO(detail)
	}

	skipped := result.Skipped
	if skipped == nil {
		skipped = []services.SkippedPair{}
	}
	failed := result.FailedChunks
	if failed == nil {
		failed = []services.FailedChunk{}
	}

	return BulkAssignResponse{
		Success: true,
		Data: BulkAssignData{
			Created: created,
			Skipped: skipped,
			Failed:  failed,
		},
		Summary: result.Summary,
	}
}
