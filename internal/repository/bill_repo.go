package repository

import (
	"context"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillRepository interface {
	CreateTx(tx *gorm.DB, b *model.Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, filter dto.BillFilter) ([]model.Bill, int64, error)

	// NextInvoiceSeqTx atomically increments and returns the per-(branch, day)
	// invoice sequence. Must run inside the bill transaction.
	NextInvoiceSeqTx(tx *gorm.DB, branchID uuid.UUID, day string) (int, error)

	// DB exposes the underlying *gorm.DB for transaction creation in the
	// service layer.
	DB() *gorm.DB
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

func (r *billRepo) DB() *gorm.DB { return r.db }

func (r *billRepo) CreateTx(tx *gorm.DB, b *model.Bill) error {
	return tx.Create(b).Error
}

func (r *billRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).Preload("Items").First(&b, id).Error
	return &b, err
}

func (r *billRepo) List(ctx context.Context, filter dto.BillFilter) ([]model.Bill, int64, error) {
	var bills []model.Bill
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Bill{}).
		Where("branch_id = ?", filter.BranchID)
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&bills).Error
	return bills, total, err
}

func (r *billRepo) NextInvoiceSeqTx(tx *gorm.DB, branchID uuid.UUID, day string) (int, error) {
	// Single-statement upsert — two concurrent checkouts on the same branch
	// and day serialize on the counter row and get distinct sequences.
	var seq int
	err := tx.Raw(`
		INSERT INTO invoice_counters (branch_id, day, seq)
		VALUES (?, ?, 1)
		ON CONFLICT (branch_id, day)
		DO UPDATE SET seq = invoice_counters.seq + 1
		RETURNING seq`, branchID, day).Scan(&seq).Error
	return seq, err
}
