package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Todo indexes for filtering and sorting
		{"todos", "idx_todos_owner_id", "owner_id"},
		{"todos", "idx_todos_status", "status"},
		{"todos", "idx_todos_due_date", "due_date"},

		// Product / production step tenant indexes
		{"products", "idx_products_owner_id", "owner_id"},
		{"production_steps", "idx_production_steps_owner_id", "owner_id"},

		// Detail lookup indexes; the unique composite index is created
		// by AutoMigrate from the model tags
		{"production_step_details", "idx_details_product_id", "product_id"},
		{"production_step_details", "idx_details_production_step_id", "production_step_id"},

		// Organization members indexes
		{"organization_members", "idx_org_members_organization_id", "organization_id"},
		{"organization_members", "idx_org_members_user_id", "user_id"},

		// Organization invite code index
		{"organizations", "idx_organizations_invite_code", "invite_code"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			fmt.Printf("Index %s already exists, skipping\n", idx.name)
			continue
		}

		// Create index
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
