package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types form a closed set. Additions carry a positive quantity,
// depletions a negative one; adjustment may carry either sign because it
// represents a correction to an absolute target.
const (
	MovementStockIn     = "stock_in"
	MovementStockOut    = "stock_out"
	MovementAdjustment  = "adjustment"
	MovementTransferIn  = "transfer_in"
	MovementTransferOut = "transfer_out"
	MovementBilling     = "billing"
	MovementPurchase    = "purchase"
)

// IsDepletingMovement reports whether the type must never drive stock below
// zero. Adjustment is exempt: it is the reconciliation escape hatch.
func IsDepletingMovement(t string) bool {
	switch t {
	case MovementStockOut, MovementBilling, MovementTransferOut:
		return true
	}
	return false
}

// ValidMovementType reports whether t belongs to the closed movement set.
func ValidMovementType(t string) bool {
	switch t {
	case MovementStockIn, MovementStockOut, MovementAdjustment,
		MovementTransferIn, MovementTransferOut, MovementBilling, MovementPurchase:
		return true
	}
	return false
}

// StockLedgerEntry is one immutable inventory movement — the audit trail of
// record. Rows are only ever inserted; ResultingStock = PreviousStock + Quantity.
type StockLedgerEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID       uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_branch_product"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_branch_product"`
	MovementType   string    `gorm:"not null"`
	Quantity       int       `gorm:"not null"` // signed: positive = in, negative = out
	PreviousStock  int       `gorm:"not null"`
	ResultingStock int       `gorm:"not null"`
	ReferenceID    *uuid.UUID `gorm:"type:uuid"` // bill id or transfer id if applicable
	Reason         string
	ActorID        uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockLedgerEntry) TableName() string { return "stock_ledger" }

// StockSnapshot is the current-quantity cache for one (branch, product),
// derived from ledger history. Created lazily on first movement, never
// deleted, and only ever mutated through the ledger recorder.
type StockSnapshot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_branch_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_branch_product"`
	Quantity  int       `gorm:"not null;default:0"`
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
