package model

import (
	"time"

	"github.com/google/uuid"
)

// Serial unit statuses. The count of available units is the effective stock
// of a serial-tracked product in a branch.
const (
	SerialAvailable = "available"
	SerialSold      = "sold"
	SerialReserved  = "reserved"
)

// SerialUnit is one individually identified unit of a serial-tracked product.
type SerialUnit struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_serial_branch_product_sn"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_serial_branch_product_sn"`
	SerialNumber string    `gorm:"not null;uniqueIndex:idx_serial_branch_product_sn"`
	Status       string    `gorm:"not null;default:'available'"` // "available" | "sold" | "reserved"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
