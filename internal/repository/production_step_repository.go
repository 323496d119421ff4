package repository

import (
	"github.com/snagasawa/production-management-api/internal/database"
	"github.com/snagasawa/production-management-api/internal/models"
	"gorm.io/gorm"
)

// GormProductionStepRepository is a GORM implementation of ProductionStepRepository
type GormProductionStepRepository struct {
	db *gorm.DB
}

// NewProductionStepRepository creates a new ProductionStepRepository
func NewProductionStepRepository(db *gorm.DB) ProductionStepRepository {
	return &GormProductionStepRepository{db: db}
}

// Create creates a new production step
func (r *GormProductionStepRepository) Create(step *models.ProductionStep) error {
	return r.db.Create(step).Error
}

// FindByID finds a production step by ID within one owner's data
func (r *GormProductionStepRepository) FindByID(ownerID, id uint64) (*models.ProductionStep, error) {
	var step models.ProductionStep
	if err := r.db.Scopes(database.OwnedBy(ownerID)).First(&step, id).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// List retrieves production steps for one owner with pagination
func (r *GormProductionStepRepository) List(ownerID uint64, page, pageSize int) ([]models.ProductionStep, int64, error) {
	var steps []models.ProductionStep

	query := r.db.Model(&models.ProductionStep{}).Scopes(database.OwnedBy(ownerID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&steps).Error
	if err != nil {
		return nil, 0, err
	}

	return steps, total, nil
}

// Update updates a production step
func (r *GormProductionStepRepository) Update(step *models.ProductionStep) error {
	return r.db.Save(step).Error
}

// Delete soft deletes a production step and removes its assignments
func (r *GormProductionStepRepository) Delete(ownerID, id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND production_step_id = ?", ownerID, id).
			Delete(&models.ProductionStepDetail{}).Error; err != nil {
			return err
		}

		return tx.Where("owner_id = ?", ownerID).Delete(&models.ProductionStep{}, id).Error
	})
}
