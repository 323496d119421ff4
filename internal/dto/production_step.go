package dto

import (
	"time"

	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/utils"
)

// ProductionStepDTO represents a production step in API responses
type ProductionStepDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductionStepListResponse represents a paginated list of production steps
type ProductionStepListResponse struct {
	ProductionSteps []ProductionStepDTO      `json:"production_steps"`
	Pagination      utils.PaginationResponse `json:"pagination"`
}

// ToProductionStepDTO converts a ProductionStep model to ProductionStepDTO
func ToProductionStepDTO(step models.ProductionStep) ProductionStepDTO {
	return ProductionStepDTO{
		ID:          step.ID,
		Name:        step.Name,
		Description: step.Description,
		CreatedAt:   step.CreatedAt,
		UpdatedAt:   step.UpdatedAt,
	}
}

// ToProductionStepListResponse converts a slice of steps to ProductionStepListResponse
func ToProductionStepListResponse(steps []models.ProductionStep, params utils.PaginationParams, total int64) ProductionStepListResponse {
	items := make([]ProductionStepDTO, len(steps))
	for i, step := range steps {
		items[i] = ToProductionStepDTO(step)
	}

	return ProductionStepListResponse{
		ProductionSteps: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}
