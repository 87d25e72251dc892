package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is a completed sales transaction. Created once at checkout and never
// deleted; PaidAmount/DueAmount may later be touched by payment collection,
// which lives outside this core.
type Bill struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bill_branch_invoice"`
	InvoiceNumber string          `gorm:"not null;uniqueIndex:idx_bill_branch_invoice"`
	CustomerName  string
	CustomerPhone string
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GSTAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMode   string          `gorm:"not null;default:'cash'"` // "cash" | "card" | "upi" | "credit"
	CreatedBy     uuid.UUID       `gorm:"type:uuid"`
	CreatedAt     time.Time

	Items []BillItem `gorm:"foreignKey:BillID"`
}

// BillItem is one line of a bill. ProductName and prices are denormalized
// snapshots at sale time; rows are immutable after creation.
type BillItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	GSTRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	GSTAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
}

// InvoiceCounter backs the per-(branch, day) atomic invoice sequence.
// Incremented with INSERT … ON CONFLICT DO UPDATE … RETURNING inside the
// bill transaction, so concurrent checkouts can never collide.
type InvoiceCounter struct {
	BranchID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day      string    `gorm:"primaryKey;size:8"` // YYYYMMDD, branch-local date
	Seq      int       `gorm:"not null;default:0"`
}
