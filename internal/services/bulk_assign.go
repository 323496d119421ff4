package services

import (
	"context"
	"fmt"

	"github.com/snagasawa/production-management-api/internal/constants"
	"github.com/snagasawa/production-management-api/internal/models"
	"github.com/snagasawa/production-management-api/internal/repository"
)

// BulkAssignDefaults is the value template applied to every generated
// combination. SequenceStart seeds the sequence number; with
// AutoIncrement the sequence counts up per step WITHIN each product and
// restarts at SequenceStart for the next product. The per-product
// restart matches the shipped behavior; whether a single run-wide
// counter was meant instead is still unconfirmed with the product side.
type BulkAssignDefaults struct {
	SequenceStart uint64
	AutoIncrement bool
	Values        DetailValues
}

// BulkAssignInput represents one bulk assignment request.
type BulkAssignInput struct {
	ProductIDs        []uint64
	ProductionStepIDs []uint64
	Defaults          BulkAssignDefaults
}

// SkippedPair is a combination left alone because it already exists.
type SkippedPair struct {
	ProductID        uint64 `json:"product_id"`
	ProductionStepID uint64 `json:"production_step_id"`
}

// FailedChunk records one chunk whose insert did not go through, with
// enough context to retry exactly that slice later.
type FailedChunk struct {
	Chunk int    `json:"chunk"`
	Error string `json:"error"`
}

// BulkAssignSummary totals one invocation. Created + Skipped + Failed
// always equals TotalRequested: every combination lands in exactly one
// bucket, and a failed chunk contributes all of its combinations to
// Failed.
type BulkAssignSummary struct {
	TotalRequested int  `json:"total_requested"`
	Created        int  `json:"created"`
	Skipped        int  `json:"skipped"`
	Failed         int  `json:"failed"`
	Incomplete     bool `json:"incomplete,omitempty"`
}

// BulkAssignResult is the full outcome returned to the caller.
type BulkAssignResult struct {
	Created      []models.ProductionStepDetail
	Skipped      []SkippedPair
	FailedChunks []FailedChunk
	Summary      BulkAssignSummary
}

// BulkAssign creates production step details for the cross product of the
// given product and step ID sets.
//
// The pipeline is: validate -> generate combinations -> one existence
// query -> chunked inserts -> aggregate. The operation is deliberately
// not atomic across the request: each chunk of 25 rows is its own insert,
// a chunk failure is recorded and the loop moves on, and inserts carry
// ignore-on-conflict semantics so a concurrent invocation racing past the
// existence check cannot violate the uniqueness invariant. When the
// request context expires mid-loop, the remaining chunks are reported as
// failed ("not attempted") and the summary is marked incomplete.
func (s *ProductionStepDetailService) BulkAssign(ctx context.Context, owner models.Identity, input BulkAssignInput) (*BulkAssignResult, error) {
	// Validate the lists as sent, duplicates included, so the size caps
	// bound the raw request. Deduplication afterwards only shrinks the
	// candidate set.
	if err := validateBulkAssignInput(&input); err != nil {
		return nil, err
	}

	input.ProductIDs = uniqueUint64(input.ProductIDs)
	input.ProductionStepIDs = uniqueUint64(input.ProductionStepIDs)

	ownerID := owner.OwnerID()
	candidates := generateCombinations(ownerID, input)

	// One existence query for the whole candidate set; the snapshot is
	// immutable for the rest of the invocation so skip/create
	// classification stays consistent.
	existingPairs, err := s.detailRepo.FindExistingPairs(ctx, ownerID, input.ProductIDs, input.ProductionStepIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing assignments: %w", err)
	}

	existing := make(map[repository.PairKey]struct{}, len(existingPairs))
	for _, pair := range existingPairs {
		existing[pair] = struct{}{}
	}

	result := &BulkAssignResult{
		Created: []models.ProductionStepDetail{},
		Skipped: []SkippedPair{},
		Summary: BulkAssignSummary{
			TotalRequested: len(candidates),
		},
	}

	toCreate := make([]models.ProductionStepDetail, 0, len(candidates))
	for _, candidate := range candidates {
		key := repository.PairKey{ProductID: candidate.ProductID, ProductionStepID: candidate.ProductionStepID}
		if _, ok := existing[key]; ok {
			result.Skipped = append(result.Skipped, SkippedPair{
				ProductID:        candidate.ProductID,
				ProductionStepID: candidate.ProductionStepID,
			})
			continue
		}
		toCreate = append(toCreate, candidate)
	}

	s.writeChunks(ctx, toCreate, result)

	result.Summary.Created = len(result.Created)
	result.Summary.Skipped = len(result.Skipped)

	return result, nil
}

// writeChunks inserts the to-create rows in fixed-size chunks, isolating
// failures per chunk.
func (s *ProductionStepDetailService) writeChunks(ctx context.Context, toCreate []models.ProductionStepDetail, result *BulkAssignResult) {
	for start, chunkIndex := 0, 0; start < len(toCreate); start, chunkIndex = start+constants.BulkChunkSize, chunkIndex+1 {
		end := start + constants.BulkChunkSize
		if end > len(toCreate) {
			end = len(toCreate)
		}
		chunk := toCreate[start:end]

		if err := ctx.Err(); err != nil {
			result.FailedChunks = append(result.FailedChunks, FailedChunk{
				Chunk: chunkIndex,
				Error: fmt.Sprintf("not attempted: %v", err),
			})
			result.Summary.Failed += len(chunk)
			result.Summary.Incomplete = true
			continue
		}

		inserted, err := s.detailRepo.InsertBatch(ctx, chunk)
		if err != nil {
			result.FailedChunks = append(result.FailedChunks, FailedChunk{
				Chunk: chunkIndex,
				Error: err.Error(),
			})
			result.Summary.Failed += len(chunk)
			continue
		}

		result.Created = append(result.Created, inserted...)

		// Rows dropped by the store's conflict clause lost a race against
		// a concurrent invocation; they already exist, so they count as
		// skipped rather than failed.
		if len(inserted) < len(chunk) {
			insertedKeys := make(map[repository.PairKey]struct{}, len(inserted))
			for _, row := range inserted {
				insertedKeys[repository.PairKey{ProductID: row.ProductID, ProductionStepID: row.ProductionStepID}] = struct{}{}
			}
			for _, row := range chunk {
				key := repository.PairKey{ProductID: row.ProductID, ProductionStepID: row.ProductionStepID}
				if _, ok := insertedKeys[key]; !ok {
					result.Skipped = append(result.Skipped, SkippedPair{
						ProductID:        row.ProductID,
						ProductionStepID: row.ProductionStepID,
					})
				}
			}
		}
	}
}

// generateCombinations enumerates every (product, step) pair in input
// order. The step index j is zero-based and local to each product, so
// with auto-increment every product's steps are numbered
// sequenceStart, sequenceStart+1, ... independently.
func generateCombinations(ownerID uint64, input BulkAssignInput) []models.ProductionStepDetail {
	defaults := input.Defaults
	combinations := make([]models.ProductionStepDetail, 0, len(input.ProductIDs)*len(input.ProductionStepIDs))

	for _, productID := range input.ProductIDs {
		for j, stepID := range input.ProductionStepIDs {
			sequence := defaults.SequenceStart
			if defaults.AutoIncrement {
				sequence += uint64(j)
			}

			combinations = append(combinations, models.ProductionStepDetail{
				OwnerID:          ownerID,
				ProductID:        productID,
				ProductionStepID: stepID,
				SequenceNumber:   sequence,
				FactoryPrice:     defaults.Values.FactoryPrice,
				CalculatedPrice:  defaults.Values.CalculatedPrice,
				QuantityLimit1:   defaults.Values.QuantityLimit1,
				QuantityLimit2:   defaults.Values.QuantityLimit2,
				IsFinalStep:      defaults.Values.IsFinalStep,
				IsVtStep:         defaults.Values.IsVtStep,
				IsParkingStep:    defaults.Values.IsParkingStep,
			})
		}
	}

	return combinations
}

// validateBulkAssignInput bounds-checks the request and normalizes the
// default price strings. It has no side effects beyond that
// normalization; nothing touches the store until validation passes.
func validateBulkAssignInput(input *BulkAssignInput) error {
	var violations []FieldViolation

	violations = append(violations, validateIDList("product_ids", input.ProductIDs, constants.MaxBulkProducts)...)
	violations = append(violations, validateIDList("production_step_ids", input.ProductionStepIDs, constants.MaxBulkSteps)...)

	if input.Defaults.SequenceStart < 1 {
		violations = append(violations, FieldViolation{
			Field:   "default_values.sequence_start",
			Message: "must be at least 1",
		})
	}

	violations = append(violations, validateDetailValues("default_values", &input.Defaults.Values)...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	return nil
}

func validateIDList(field string, ids []uint64, max int) []FieldViolation {
	var violations []FieldViolation

	if len(ids) == 0 {
		violations = append(violations, FieldViolation{Field: field, Message: "must contain at least one ID"})
	}
	if len(ids) > max {
		violations = append(violations, FieldViolation{
			Field:   field,
			Message: fmt.Sprintf("must contain at most %d IDs", max),
		})
	}
	for i, id := range ids {
		if id == 0 {
			violations = append(violations, FieldViolation{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "must be a positive integer",
			})
		}
	}

	return violations
}
