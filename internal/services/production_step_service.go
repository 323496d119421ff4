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
	ErrProductionStepNotFound     = errors.New("production step not found")
	ErrProductionStepNameRequired = errors.New("production step name is required")
)

// ProductionStepService handles production step business logic
type ProductionStepService struct {
	stepRepo repository.ProductionStepRepository
}

// NewProductionStepService creates a new ProductionStepService
func NewProductionStepService(stepRepo repository.ProductionStepRepository) *ProductionStepService {
	return &ProductionStepService{
		stepRepo: stepRepo,
	}
}

// CreateProductionStepInput represents input for creating a production step
type CreateProductionStepInput struct {
	Owner       models.Identity
	Name        string
	Description string
}

// UpdateProductionStepInput represents input for updating a production step
type UpdateProductionStepInput struct {
	Name        *string
	Description *string
}

// ListProductionSteps returns the owner's production steps with pagination
func (s *ProductionStepService) ListProductionSteps(owner models.Identity, page, pageSize int) ([]models.ProductionStep, int64, error) {
	steps, total, err := s.stepRepo.List(owner.OwnerID(), page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list production steps: %w", err)
	}
	return steps, total, nil
}

// GetProductionStep returns a single production step
func (s *ProductionStepService) GetProductionStep(owner models.Identity, stepID uint64) (*models.ProductionStep, error) {
	step, err := s.stepRepo.FindByID(owner.OwnerID(), stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductionStepNotFound
		}
		return nil, fmt.Errorf("failed to find production step: %w", err)
	}
	return step, nil
}

// CreateProductionStep creates a new production step for the owner
func (s *ProductionStepService) CreateProductionStep(input CreateProductionStepInput) (*models.ProductionStep, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProductionStepNameRequired
	}

	step := &models.ProductionStep{
		OwnerID:     input.Owner.OwnerID(),
		Name:        input.Name,
		Description: input.Description,
	}

	if err := s.stepRepo.Create(step); err != nil {
		return nil, fmt.Errorf("failed to create production step: %w", err)
	}

	return step, nil
}

// UpdateProductionStep updates an existing production step
func (s *ProductionStepService) UpdateProductionStep(owner models.Identity, stepID uint64, input UpdateProductionStepInput) (*models.ProductionStep, error) {
	step, err := s.stepRepo.FindByID(owner.OwnerID(), stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductionStepNotFound
		}
		return nil, fmt.Errorf("failed to find production step: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProductionStepNameRequired
		}
		step.Name = *input.Name
	}
	if input.Description != nil {
		step.Description = *input.Description
	}

	if err := s.stepRepo.Update(step); err != nil {
		return nil, fmt.Errorf("failed to update production step: %w", err)
	}

	return step, nil
}

// DeleteProductionStep deletes a production step and its assignments
func (s *ProductionStepService) DeleteProductionStep(owner models.Identity, stepID uint64) error {
	if _, err := s.stepRepo.FindByID(owner.OwnerID(), stepID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductionStepNotFound
		}
		return fmt.Errorf("failed to find production step: %w", err)
	}

	if err := s.stepRepo.Delete(owner.OwnerID(), stepID); err != nil {
		return fmt.Errorf("failed to delete production step: %w", err)
	}

	return nil
}
