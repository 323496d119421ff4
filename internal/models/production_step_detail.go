package models

import "time"

// ProductionStepDetail assigns a production step to a product within one
// owner's data. The triple (owner_id, product_id, production_step_id) is
// unique; the bulk assignment engine relies on the index to make repeated
// and concurrent invocations safe.
//
// Rows are deleted hard, not soft: a soft-deleted row would keep occupying
// the unique index and block the pair from ever being assigned again.
type ProductionStepDetail struct {
	ID               uint64 `gorm:"primarykey" json:"id"`
	OwnerID          uint64 `gorm:"not null;uniqueIndex:idx_detail_owner_product_step" json:"owner_id"`
	ProductID        uint64 `gorm:"not null;uniqueIndex:idx_detail_owner_product_step" json:"product_id"`
	ProductionStepID uint64 `gorm:"not null;uniqueIndex:idx_detail_owner_product_step" json:"production_step_id"`

	// SequenceNumber is the position of this step in the product's own
	// production sequence, starting at 1.
	SequenceNumber uint64 `gorm:"not null" json:"sequence_number"`

	// Prices are stored as decimal text to avoid floating point rounding.
	FactoryPrice    *string `gorm:"type:decimal(12,2)" json:"factory_price"`
	CalculatedPrice *string `gorm:"type:decimal(12,2)" json:"calculated_price"`

	QuantityLimit1 *int64 `json:"quantity_limit1"`
	QuantityLimit2 *int64 `json:"quantity_limit2"`

	IsFinalStep   bool `gorm:"not null;default:false" json:"is_final_step"`
	IsVtStep      bool `gorm:"not null;default:false" json:"is_vt_step"`
	IsParkingStep bool `gorm:"not null;default:false" json:"is_parking_step"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Product        Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductionStep ProductionStep `gorm:"foreignKey:ProductionStepID" json:"production_step,omitempty"`
}
