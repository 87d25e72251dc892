package repository

import (
	"context"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository owns the ledger and its derived snapshot. The snapshot is
// only ever written through the tx-scoped methods below; callers outside a
// movement transaction get reads only.
type StockRepository interface {
	// LockSnapshotTx returns the snapshot row for (branch, product), creating
	// it lazily with quantity 0, and holds a row lock until the transaction
	// ends. Concurrent movements on the same key serialize here.
	LockSnapshotTx(tx *gorm.DB, tenantID, branchID, productID uuid.UUID) (*model.StockSnapshot, error)
	UpdateSnapshotTx(tx *gorm.DB, id uuid.UUID, quantity int) error
	AppendEntryTx(tx *gorm.DB, e *model.StockLedgerEntry) error

	GetQuantity(ctx context.Context, branchID, productID uuid.UUID) (int, error)
	ListLedger(ctx context.Context, filter dto.LedgerFilter) ([]model.StockLedgerEntry, int64, error)
	ListCurrentStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error)
	ListLowStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) LockSnapshotTx(tx *gorm.DB, tenantID, branchID, productID uuid.UUID) (*model.StockSnapshot, error) {
	var snap model.StockSnapshot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&snap).Error
	if err == nil {
		return &snap, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	// First movement for this key: create the row inside the tx. The insert
	// itself takes the row lock; a concurrent creator hits the unique index
	// and fails the whole transaction, which the caller may retry.
	snap = model.StockSnapshot{
		TenantID:  tenantID,
		BranchID:  branchID,
		ProductID: productID,
		Quantity:  0,
	}
	if err := tx.Create(&snap).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *stockRepo) UpdateSnapshotTx(tx *gorm.DB, id uuid.UUID, quantity int) error {
	return tx.Model(&model.StockSnapshot{}).Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *stockRepo) AppendEntryTx(tx *gorm.DB, e *model.StockLedgerEntry) error {
	return tx.Create(e).Error
}

func (r *stockRepo) GetQuantity(ctx context.Context, branchID, productID uuid.UUID) (int, error) {
	var snap model.StockSnapshot
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&snap).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil // never moved — quantity is zero by definition
	}
	if err != nil {
		return 0, err
	}
	return snap.Quantity, nil
}

func (r *stockRepo) ListLedger(ctx context.Context, filter dto.LedgerFilter) ([]model.StockLedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockLedgerEntry{}).
		Where("branch_id = ? AND product_id = ?", filter.BranchID, filter.ProductID)
	if filter.Type != "" {
		q = q.Where("movement_type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var entries []model.StockLedgerEntry
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}

func (r *stockRepo) ListCurrentStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error) {
	var items []dto.CurrentStockItem
	err := r.db.WithContext(ctx).Model(&model.StockSnapshot{}).
		Select(`products.id AS product_id, products.name AS product_name,
			products.sku, products.unit, stock_snapshots.quantity, products.min_stock`).
		Joins("JOIN products ON products.id = stock_snapshots.product_id").
		Where("stock_snapshots.branch_id = ? AND stock_snapshots.quantity > 0", branchID).
		Order("products.name ASC").
		Scan(&items).Error
	return items, err
}

func (r *stockRepo) ListLowStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error) {
	var items []dto.CurrentStockItem
	err := r.db.WithContext(ctx).Model(&model.StockSnapshot{}).
		Select(`products.id AS product_id, products.name AS product_name,
			products.sku, products.unit, stock_snapshots.quantity, products.min_stock`).
		Joins("JOIN products ON products.id = stock_snapshots.product_id").
		Where("stock_snapshots.branch_id = ? AND stock_snapshots.quantity <= products.min_stock AND products.active = true", branchID).
		Order("stock_snapshots.quantity ASC").
		Scan(&items).Error
	return items, err
}
