package repository

import (
	"github.com/snagasawa/production-management-api/internal/database"
	"github.com/snagasawa/production-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create creates a new todo
func (r *GormTodoRepository) Create(todo *models.Todo) error {
	return r.db.Create(todo).Error
}

// FindByID finds a todo by ID within one owner's data
func (r *GormTodoRepository) FindByID(ownerID, id uint64) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.Scopes(database.OwnedBy(ownerID)).First(&todo, id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// List retrieves todos with filtering and pagination
func (r *GormTodoRepository) List(filter TodoFilter) ([]models.Todo, int64, error) {
	var todos []models.Todo

	query := r.db.Model(&models.Todo{}).Scopes(database.OwnedBy(filter.OwnerID))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize)).
		Find(&todos).Error
	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// Update updates a todo
func (r *GormTodoRepository) Update(todo *models.Todo) error {
	return r.db.Save(todo).Error
}

// Delete soft deletes a todo
func (r *GormTodoRepository) Delete(ownerID, id uint64) error {
	return r.db.Where("owner_id = ?", ownerID).Delete(&models.Todo{}, id).Error
}
