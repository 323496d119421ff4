package repository

import (
	"github.com/snagasawa/production-management-api/internal/database"
	"github.com/snagasawa/production-management-api/internal/models"
	"gorm.io/gorm"
)

// GormProductRepository is a GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// Create creates a new product
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// FindByID finds a product by ID within one owner's data
func (r *GormProductRepository) FindByID(ownerID, id uint64) (*models.Product, error) {
	var product models.Product
	if err := r.db.Scopes(database.OwnedBy(ownerID)).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List retrieves products for one owner with pagination
func (r *GormProductRepository) List(ownerID uint64, page, pageSize int) ([]models.Product, int64, error) {
	var products []models.Product

	query := r.db.Model(&models.Product{}).Scopes(database.OwnedBy(ownerID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update updates a product
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete soft deletes a product and removes its step assignments
func (r *GormProductRepository) Delete(ownerID, id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND product_id = ?", ownerID, id).
			Delete(&models.ProductionStepDetail{}).Error; err != nil {
			return err
		}

		return tx.Where("owner_id = ?", ownerID).Delete(&models.Product{}, id).Error
	})
}
