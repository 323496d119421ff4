package repository

import (
	"context"

	"github.com/snagasawa/production-management-api/internal/database"
	"github.com/snagasawa/production-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductionStepDetailRepository is a GORM implementation of
// ProductionStepDetailRepository
type GormProductionStepDetailRepository struct {
	db *gorm.DB
}

// NewProductionStepDetailRepository creates a new ProductionStepDetailRepository
func NewProductionStepDetailRepository(db *gorm.DB) ProductionStepDetailRepository {
	return &GormProductionStepDetailRepository{db: db}
}

// Create creates a single detail row
func (r *GormProductionStepDetailRepository) Create(detail *models.ProductionStepDetail) error {
	return r.db.Create(detail).Error
}

// FindByID finds a detail by ID within one owner's data
func (r *GormProductionStepDetailRepository) FindByID(ownerID, id uint64, preload ...string) (*models.ProductionStepDetail, error) {
	var detail models.ProductionStepDetail
	query := r.db.Scopes(database.OwnedBy(ownerID))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&detail, id).Error; err != nil {
		return nil, err
	}

	return &detail, nil
}

// List retrieves details with filtering and pagination
func (r *GormProductionStepDetailRepository) List(filter DetailFilter) ([]models.ProductionStepDetail, int64, error) {
	var details []models.ProductionStepDetail

	query := r.db.Model(&models.ProductionStepDetail{}).Scopes(database.OwnedBy(filter.OwnerID))

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ProductionStepID != nil {
		query = query.Where("production_step_id = ?", *filter.ProductionStepID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("product_id ASC, sequence_number ASC").
		Scopes(database.Paginate(filter.Page, filter.PageSize)).
		Find(&details).Error
	if err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

// Update updates a detail row
func (r *GormProductionStepDetailRepository) Update(detail *models.ProductionStepDetail) error {
	return r.db.Save(detail).Error
}

// Delete removes a detail row
func (r *GormProductionStepDetailRepository) Delete(ownerID, id uint64) error {
	return r.db.Where("owner_id = ?", ownerID).Delete(&models.ProductionStepDetail{}, id).Error
}

// FindExistingPairs returns every assigned (product, step) pair for the
// owner among the given ID sets in a single query.
func (r *GormProductionStepDetailRepository) FindExistingPairs(ctx context.Context, ownerID uint64, productIDs, stepIDs []uint64) ([]PairKey, error) {
	var pairs []PairKey

	err := r.db.WithContext(ctx).
		Model(&models.ProductionStepDetail{}).
		Select("product_id, production_step_id").
		Where("owner_id = ? AND product_id IN ? AND production_step_id IN ?", ownerID, productIDs, stepIDs).
		Find(&pairs).Error
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

// InsertBatch inserts rows in one statement, silently skipping rows whose
// (owner, product, step) key already exists. Only rows the database
// actually accepted come back.
func (r *GormProductionStepDetailRepository) InsertBatch(ctx context.Context, rows []models.ProductionStepDetail) ([]models.ProductionStepDetail, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "owner_id"},
				{Name: "product_id"},
				{Name: "production_step_id"},
			},
			DoNothing: true,
		}).
		Create(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	// Every row went in, so the driver's ID backfill is trustworthy.
	if result.RowsAffected == int64(len(rows)) {
		return rows, nil
	}

	// The conflict clause dropped some rows. The mysql driver backfills
	// sequential IDs from LastInsertId across the whole batch, dropped
	// rows included, so the in-memory IDs cannot tell survivors apart.
	// Re-read the chunk's keys and report the store's actual rows.
	return r.selectSurvivors(ctx, rows)
}

// selectSurvivors re-reads a chunk's keys after a partially-ignored
// insert. A stored row counts as inserted when it carries the values the
// chunk tried to write; a row that lost the race to a concurrent writer
// is left out so the caller classifies its pair as skipped. A racer that
// wrote identical values is indistinguishable and reported as inserted,
// which leaves the stored state exactly as the caller asked for.
func (r *GormProductionStepDetailRepository) selectSurvivors(ctx context.Context, attempted []models.ProductionStepDetail) ([]models.ProductionStepDetail, error) {
	productIDs := make([]uint64, 0, len(attempted))
	stepIDs := make([]uint64, 0, len(attempted))
	for _, row := range attempted {
		productIDs = append(productIDs, row.ProductID)
		stepIDs = append(stepIDs, row.ProductionStepID)
	}

	var stored []models.ProductionStepDetail
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id IN ? AND production_step_id IN ?", attempted[0].OwnerID, productIDs, stepIDs).
		Find(&stored).Error
	if err != nil {
		return nil, err
	}

	byPair := make(map[PairKey]models.ProductionStepDetail, len(stored))
	for _, row := range stored {
		byPair[PairKey{ProductID: row.ProductID, ProductionStepID: row.ProductionStepID}] = row
	}

	inserted := make([]models.ProductionStepDetail, 0, len(attempted))
	for _, row := range attempted {
		match, ok := byPair[PairKey{ProductID: row.ProductID, ProductionStepID: row.ProductionStepID}]
		if ok && sameDetailValues(match, row) {
			inserted = append(inserted, match)
		}
	}

	return inserted, nil
}

func sameDetailValues(a, b models.ProductionStepDetail) bool {
	return a.SequenceNumber == b.SequenceNumber &&
		equalStringPtr(a.FactoryPrice, b.FactoryPrice) &&
		equalStringPtr(a.CalculatedPrice, b.CalculatedPrice) &&
		equalInt64Ptr(a.QuantityLimit1, b.QuantityLimit1) &&
		equalInt64Ptr(a.QuantityLimit2, b.QuantityLimit2) &&
		a.IsFinalStep == b.IsFinalStep &&
		a.IsVtStep == b.IsVtStep &&
		a.IsParkingStep == b.IsParkingStep
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
