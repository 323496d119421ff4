package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/repository"
	"github.com/snagasawa/production-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrDetailNotFound      = errors.New("production step detail not found")
	ErrDetailAlreadyExists = errors.New("this production step is already assigned to the product")
)

// FieldViolation describes one invalid input field.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError aggregates field violations for a rejected request.
// No store access happens once it is returned.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// DetailValues carries the optional price/limit/flag columns shared by
// single creation and the bulk defaults template.
type DetailValues struct {
	FactoryPrice    *string
	CalculatedPrice *string
	QuantityLimit1  *int64
	QuantityLimit2  *int64
	IsFinalStep     bool
	IsVtStep        bool
	IsParkingStep   bool
}

// validateDetailValues checks the optional columns and normalizes price
// strings in place. The prefix names the enclosing request field in
// violation messages ("" for single creation, "default_values" for bulk).
func validateDetailValues(prefix string, v *DetailValues) []FieldViolation {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	var violations []FieldViolation

	if v.FactoryPrice != nil {
		normalized, err := utils.NormalizePrice(*v.FactoryPrice)
		if err != nil {
			violations = append(violations, FieldViolation{Field: field("factory_price"), Message: err.Error()})
		} else {
			v.FactoryPrice = &normalized
		}
	}
	if v.CalculatedPrice != nil {
		normalized, err := utils.NormalizePrice(*v.CalculatedPrice)
		if err != nil {
			violations = append(violations, FieldViolation{Field: field("calculated_price"), Message: err.Error()})
		} else {
			v.CalculatedPrice = &normalized
		}
	}
	if v.QuantityLimit1 != nil && *v.QuantityLimit1 < 0 {
		violations = append(violations, FieldViolation{Field: field("quantity_limit1"), Message: "must not be negative"})
	}
	if v.QuantityLimit2 != nil && *v.QuantityLimit2 < 0 {
		violations = append(violations, FieldViolation{Field: field("quantity_limit2"), Message: "must not be negative"})
	}

	return violations
}

// ProductionStepDetailService handles production step detail business
// logic, including the bulk assignment engine (see bulk_assign.go).
type ProductionStepDetailService struct {
	detailRepo repository.ProductionStepDetailRepository
}

// NewProductionStepDetailService creates a new ProductionStepDetailService
func NewProductionStepDetailService(detailRepo repository.ProductionStepDetailRepository) *ProductionStepDetailService {
	return &ProductionStepDetailService{
		detailRepo: detailRepo,
	}
}

// CreateDetailInput represents input for creating a single detail row
type CreateDetailInput struct {
	Owner            models.Identity
	ProductID        uint64
	ProductionStepID uint64
	SequenceNumber   uint64
	Values           DetailValues
}

// CreateDetail creates a single production step detail
func (s *ProductionStepDetailService) CreateDetail(input CreateDetailInput) (*models.ProductionStepDetail, error) {
	var violations []FieldViolation
	if input.ProductID == 0 {
		violations = append(violations, FieldViolation{Field: "product_id", Message: "must be a positive integer"})
	}
	if input.ProductionStepID == 0 {
		violations = append(violations, FieldViolation{Field: "production_step_id", Message: "must be a positive integer"})
	}
	if input.SequenceNumber == 0 {
		violations = append(violations, FieldViolation{Field: "sequence_number", Message: "must be at least 1"})
	}
	violations = append(violations, validateDetailValues("", &input.Values)...)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	// Pre-check for a friendly conflict response; the unique index still
	// backs this up under races.
	productID := input.ProductID
	stepID := input.ProductionStepID
	existing, _, err := s.detailRepo.List(repository.DetailFilter{
		OwnerID:          input.Owner.OwnerID(),
		ProductID:        &productID,
		ProductionStepID: &stepID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrDetailAlreadyExists
	}

	detail := &models.ProductionStepDetail{
		OwnerID:          input.Owner.OwnerID(),
		ProductID:        input.ProductID,
		ProductionStepID: input.ProductionStepID,
		SequenceNumber:   input.SequenceNumber,
		FactoryPrice:     input.Values.FactoryPrice,
		CalculatedPrice:  input.Values.CalculatedPrice,
		QuantityLimit1:   input.Values.QuantityLimit1,
		QuantityLimit2:   input.Values.QuantityLimit2,
		IsFinalStep:      input.Values.IsFinalStep,
		IsVtStep:         input.Values.IsVtStep,
		IsParkingStep:    input.Values.IsParkingStep,
	}

	if err := s.detailRepo.Create(detail); err != nil {
		return nil, fmt.Errorf("failed to create production step detail: %w", err)
	}

	return detail, nil
}

// ListDetailsInput represents filters for listing details
type ListDetailsInput struct {
	Owner            models.Identity
	ProductID        *uint64
	ProductionStepID *uint64
	Page             int
	PageSize         int
}

// ListDetails returns the owner's details matching the provided filters
func (s *ProductionStepDetailService) ListDetails(input ListDetailsInput) ([]models.ProductionStepDetail, int64, error) {
	details, total, err := s.detailRepo.List(repository.DetailFilter{
		OwnerID:          input.Owner.OwnerID(),
		ProductID:        input.ProductID,
		ProductionStepID: input.ProductionStepID,
		Page:             input.Page,
		PageSize:         input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list production step details: %w", err)
	}

	return details, total, nil
}

// GetDetail returns a detail with related data
func (s *ProductionStepDetailService) GetDetail(owner models.Identity, detailID uint64) (*models.ProductionStepDetail, error) {
	detail, err := s.detailRepo.FindByID(owner.OwnerID(), detailID, "Product", "ProductionStep")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("failed to find production step detail: %w", err)
	}

	return detail, nil
}

// UpdateDetailInput represents input for updating a detail row. The
// (product, step) key is immutable; only sequencing and values change.
// The clear flags mark a price the caller explicitly set to null; each
// price is cleared independently so an update never touches a column the
// request left out.
type UpdateDetailInput struct {
	SequenceNumber       *uint64
	FactoryPrice         *string
	ClearFactoryPrice    bool
	CalculatedPrice      *string
	ClearCalculatedPrice bool
	QuantityLimit1       *int64
	QuantityLimit2       *int64
	IsFinalStep          *bool
	IsVtStep             *bool
	IsParkingStep        *bool
}

// UpdateDetail updates an existing detail row
func (s *ProductionStepDetailService) UpdateDetail(owner models.Identity, detailID uint64, input UpdateDetailInput) (*models.ProductionStepDetail, error) {
	detail, err := s.detailRepo.FindByID(owner.OwnerID(), detailID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("failed to find production step detail: %w", err)
	}

	var violations []FieldViolation
	if input.SequenceNumber != nil {
		if *input.SequenceNumber == 0 {
			violations = append(violations, FieldViolation{Field: "sequence_number", Message: "must be at least 1"})
		} else {
			detail.SequenceNumber = *input.SequenceNumber
		}
	}
	if input.ClearFactoryPrice {
		detail.FactoryPrice = nil
	}
	if input.ClearCalculatedPrice {
		detail.CalculatedPrice = nil
	}
	if input.FactoryPrice != nil {
		normalized, err := utils.NormalizePrice(*input.FactoryPrice)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "factory_price", Message: err.Error()})
		} else {
			detail.FactoryPrice = &normalized
		}
	}
	if input.CalculatedPrice != nil {
		normalized, err := utils.NormalizePrice(*input.CalculatedPrice)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "calculated_price", Message: err.Error()})
		} else {
			detail.CalculatedPrice = &normalized
		}
	}
	if input.QuantityLimit1 != nil {
		if *input.QuantityLimit1 < 0 {
			violations = append(violations, FieldViolation{Field: "quantity_limit1", Message: "must not be negative"})
		} else {
			detail.QuantityLimit1 = input.QuantityLimit1
		}
	}
	if input.QuantityLimit2 != nil {
		if *input.QuantityLimit2 < 0 {
			violations = append(violations, FieldViolation{Field: "quantity_limit2", Message: "must not be negative"})
		} else {
			detail.QuantityLimit2 = input.QuantityLimit2
		}
	}
	if input.IsFinalStep != nil {
		detail.IsFinalStep = *input.IsFinalStep
	}
	if input.IsVtStep != nil {
		detail.IsVtStep = *input.IsVtStep
	}
	if input.IsParkingStep != nil {
		detail.IsParkingStep = *input.IsParkingStep
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.detailRepo.Update(detail); err != nil {
		return nil, fmt.Errorf("failed to update production step detail: %w", err)
	}

	return detail, nil
}

// DeleteDetail removes a detail row
func (s *ProductionStepDetailService) DeleteDetail(owner models.Identity, detailID uint64) error {
	if _, err := s.detailRepo.FindByID(owner.OwnerID(), detailID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDetailNotFound
		}
		return fmt.Errorf("failed to find production step detail: %w", err)
	}

	if err := s.detailRepo.Delete(owner.OwnerID(), detailID); err != nil {
		return fmt.Errorf("failed to delete production step detail: %w", err)
	}

	return nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
