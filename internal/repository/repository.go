package repository

import (
	"context"
	"time"

	"github.com/snagasawa/production-management-api/internal/models"
)

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create creates a new todo
	Create(todo *models.Todo) error

	// FindByID finds a todo by ID within one owner's data
	FindByID(ownerID, id uint64) (*models.Todo, error)

	// List retrieves todos with filtering and pagination
	List(filter TodoFilter) ([]models.Todo, int64, error)

	// Update updates a todo
	Update(todo *models.Todo) error

	// Delete soft deletes a todo
	Delete(ownerID, id uint64) error
}

// TodoFilter holds filtering options for listing todos
type TodoFilter struct {
	OwnerID     uint64
	Status      *models.TodoStatus
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Page        int
	PageSize    int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(product *models.Product) error
	FindByID(ownerID, id uint64) (*models.Product, error)
	List(ownerID uint64, page, pageSize int) ([]models.Product, int64, error)
	Update(product *models.Product) error
	Delete(ownerID, id uint64) error
}

// ProductionStepRepository defines the interface for production step data access
type ProductionStepRepository interface {
	Create(step *models.ProductionStep) error
	FindByID(ownerID, id uint64) (*models.ProductionStep, error)
	List(ownerID uint64, page, pageSize int) ([]models.ProductionStep, int64, error)
	Update(step *models.ProductionStep) error
	Delete(ownerID, id uint64) error
}

// PairKey identifies one (product, production step) combination within an
// owner's data.
type PairKey struct {
	ProductID        uint64
	ProductionStepID uint64
}

// ProductionStepDetailRepository defines the interface for production step
// detail data access, including the bulk primitives the assignment engine
// builds on.
type ProductionStepDetailRepository interface {
	// Create creates a single detail row; duplicate pairs surface the
	// store's uniqueness error.
	Create(detail *models.ProductionStepDetail) error

	// FindByID finds a detail by ID within one owner's data
	FindByID(ownerID, id uint64, preload ...string) (*models.ProductionStepDetail, error)

	// List retrieves details with filtering and pagination
	List(filter DetailFilter) ([]models.ProductionStepDetail, int64, error)

	// Update updates a detail row
	Update(detail *models.ProductionStepDetail) error

	// Delete removes a detail row
	Delete(ownerID, id uint64) error

	// FindExistingPairs returns, in a single query, every (product, step)
	// pair already assigned for the owner among the given ID sets.
	FindExistingPairs(ctx context.Context, ownerID uint64, productIDs, stepIDs []uint64) ([]PairKey, error)

	// InsertBatch inserts rows in one statement with ignore-on-conflict
	// semantics and returns the rows actually inserted. Rows silently
	// dropped by the conflict clause are absent from the result.
	InsertBatch(ctx context.Context, rows []models.ProductionStepDetail) ([]models.ProductionStepDetail, error)
}

// DetailFilter holds filtering options for listing production step details
type DetailFilter struct {
	OwnerID          uint64
	ProductID        *uint64
	ProductionStepID *uint64
	Page             int
	PageSize         int
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindByInviteCode finds an organization by invite code
	FindByInviteCode(code string) (*models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// Delete deletes an organization and all related data
	Delete(id uint64) error

	// AddMember adds a member to an organization
	AddMember(member *models.OrganizationMember) error

	// RemoveMember removes a member from an organization
	RemoveMember(organizationID, userID uint64) error

	// FindMember finds a specific organization member
	FindMember(organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembersByUserID lists all organizations a user is a member of
	ListMembersByUserID(userID uint64) ([]models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(organizationID uint64) ([]models.OrganizationMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithPersonalOrganization creates a user, their personal organization,
	// and corresponding membership within a single transaction.
	CreateWithPersonalOrganization(user *models.User, org *models.Organization, member *models.OrganizationMember) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
