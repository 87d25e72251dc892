package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock tracking modes. Quantity-tracked products keep a bare counter;
// serial-tracked products derive stock from the count of available units.
const (
	TrackingQuantity = "quantity"
	TrackingSerial   = "serial"
)

// Product master data. Mutated by catalogue management (external), except
// Active, which the serial tracker flips on 0→>0 and >0→0 transitions.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name          string          `gorm:"index;not null"`
	SKU           string          `gorm:"uniqueIndex;not null"`
	Unit          string          `gorm:"not null;default:'pcs'"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	MinStock      int             `gorm:"not null;default:5"`
	TrackingMode  string          `gorm:"not null;default:'quantity'"` // "quantity" | "serial"
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
