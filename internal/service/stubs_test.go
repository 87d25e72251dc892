package service_test

import (
	"context"
	"time"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// Same approach as the integration-free unit tests of the rest of the suite:
// repositories are replaced by map-backed stubs and services run with a nil
// *gorm.DB, which makes runTx execute the closure directly.

type stubBranchRepo struct {
	branches map[uuid.UUID]*model.Branch
}

func newStubBranchRepo() *stubBranchRepo {
	return &stubBranchRepo{branches: make(map[uuid.UUID]*model.Branch)}
}

func (r *stubBranchRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Branch, error) {
	b, ok := r.branches[id]
	if !ok || !b.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

var _ repository.BranchRepository = (*stubBranchRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) SetActiveTx(_ *gorm.DB, id uuid.UUID, active bool) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = active
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubStockRepo struct {
	snapshots map[uuid.UUID]*model.StockSnapshot // by snapshot id
	ledger    []model.StockLedgerEntry
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{snapshots: make(map[uuid.UUID]*model.StockSnapshot)}
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) findSnapshot(branchID, productID uuid.UUID) *model.StockSnapshot {
	for _, s := range r.snapshots {
		if s.BranchID == branchID && s.ProductID == productID {
			return s
		}
	}
	return nil
}

func (r *stubStockRepo) seedSnapshot(tenantID, branchID, productID uuid.UUID, qty int) {
	snap := &model.StockSnapshot{
		ID: uuid.New(), TenantID: tenantID,
		BranchID: branchID, ProductID: productID, Quantity: qty,
	}
	r.snapshots[snap.ID] = snap
}

func (r *stubStockRepo) LockSnapshotTx(_ *gorm.DB, tenantID, branchID, productID uuid.UUID) (*model.StockSnapshot, error) {
	if s := r.findSnapshot(branchID, productID); s != nil {
		return s, nil
	}
	snap := &model.StockSnapshot{
		ID: uuid.New(), TenantID: tenantID,
		BranchID: branchID, ProductID: productID, Quantity: 0,
	}
	r.snapshots[snap.ID] = snap
	return snap, nil
}

func (r *stubStockRepo) UpdateSnapshotTx(_ *gorm.DB, id uuid.UUID, quantity int) error {
	s, ok := r.snapshots[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Quantity = quantity
	return nil
}

func (r *stubStockRepo) AppendEntryTx(_ *gorm.DB, e *model.StockLedgerEntry) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	r.ledger = append(r.ledger, *e)
	return nil
}

func (r *stubStockRepo) GetQuantity(_ context.Context, branchID, productID uuid.UUID) (int, error) {
	if s := r.findSnapshot(branchID, productID); s != nil {
		return s.Quantity, nil
	}
	return 0, nil
}

func (r *stubStockRepo) ListLedger(_ context.Context, filter dto.LedgerFilter) ([]model.StockLedgerEntry, int64, error) {
	var out []model.StockLedgerEntry
	// newest first
	for i := len(r.ledger) - 1; i >= 0; i-- {
		e := r.ledger[i]
		if e.BranchID.String() != filter.BranchID || e.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.Type != "" && e.MovementType != filter.Type {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *stubStockRepo) ListCurrentStock(_ context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error) {
	var items []dto.CurrentStockItem
	for _, s := range r.snapshots {
		if s.BranchID == branchID && s.Quantity > 0 {
			items = append(items, dto.CurrentStockItem{
				ProductID: s.ProductID.String(),
				Quantity:  s.Quantity,
			})
		}
	}
	return items, nil
}

func (r *stubStockRepo) ListLowStock(_ context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error) {
	return nil, nil
}

// entriesFor returns the ledger rows for one (branch, product), oldest first.
func (r *stubStockRepo) entriesFor(branchID, productID uuid.UUID) []model.StockLedgerEntry {
	var out []model.StockLedgerEntry
	for _, e := range r.ledger {
		if e.BranchID == branchID && e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

var _ repository.StockRepository = (*stubStockRepo)(nil)

type stubSerialRepo struct {
	units []*model.SerialUnit
}

func newStubSerialRepo() *stubSerialRepo { return &stubSerialRepo{} }

func (r *stubSerialRepo) DB() *gorm.DB { return nil }

func (r *stubSerialRepo) InsertBatchTx(_ *gorm.DB, units []model.SerialUnit) error {
	for i := range units {
		units[i].ID = uuid.New()
		units[i].CreatedAt = time.Now()
		u := units[i]
		r.units = append(r.units, &u)
	}
	return nil
}

func (r *stubSerialRepo) FindByNumbersTx(_ *gorm.DB, branchID, productID uuid.UUID, serials []string) ([]model.SerialUnit, error) {
	wanted := make(map[string]bool, len(serials))
	for _, sn := range serials {
		wanted[sn] = true
	}
	var out []model.SerialUnit
	for _, u := range r.units {
		if u.BranchID == branchID && u.ProductID == productID && wanted[u.SerialNumber] {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubSerialRepo) UpdateStatusTx(_ *gorm.DB, ids []uuid.UUID, status string) error {
	idSet := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	for _, u := range r.units {
		if idSet[u.ID] {
			u.Status = status
		}
	}
	return nil
}

func (r *stubSerialRepo) CountAvailableTx(_ *gorm.DB, branchID, productID uuid.UUID) (int, error) {
	n := 0
	for _, u := range r.units {
		if u.BranchID == branchID && u.ProductID == productID && u.Status == model.SerialAvailable {
			n++
		}
	}
	return n, nil
}

func (r *stubSerialRepo) ExistingNumbersTx(_ *gorm.DB, branchID, productID uuid.UUID, serials []string) ([]string, error) {
	wanted := make(map[string]bool, len(serials))
	for _, sn := range serials {
		wanted[sn] = true
	}
	var out []string
	for _, u := range r.units {
		if u.BranchID == branchID && u.ProductID == productID && wanted[u.SerialNumber] {
			out = append(out, u.SerialNumber)
		}
	}
	return out, nil
}

func (r *stubSerialRepo) CountAvailable(_ context.Context, branchID, productID uuid.UUID) (int, error) {
	return r.CountAvailableTx(nil, branchID, productID)
}

func (r *stubSerialRepo) statusOf(serial string) string {
	for _, u := range r.units {
		if u.SerialNumber == serial {
			return u.Status
		}
	}
	return ""
}

var _ repository.SerialRepository = (*stubSerialRepo)(nil)

type stubBillRepo struct {
	bills    map[uuid.UUID]*model.Bill
	counters map[string]int // branch|day
}

func newStubBillRepo() *stubBillRepo {
	return &stubBillRepo{
		bills:    make(map[uuid.UUID]*model.Bill),
		counters: make(map[string]int),
	}
}

func (r *stubBillRepo) DB() *gorm.DB { return nil }

func (r *stubBillRepo) CreateTx(_ *gorm.DB, b *model.Bill) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	for i := range b.Items {
		b.Items[i].ID = uuid.New()
		b.Items[i].BillID = b.ID
	}
	r.bills[b.ID] = b
	return nil
}

func (r *stubBillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBillRepo) List(_ context.Context, filter dto.BillFilter) ([]model.Bill, int64, error) {
	var out []model.Bill
	for _, b := range r.bills {
		if b.BranchID.String() == filter.BranchID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubBillRepo) NextInvoiceSeqTx(_ *gorm.DB, branchID uuid.UUID, day string) (int, error) {
	key := branchID.String() + "|" + day
	r.counters[key]++
	return r.counters[key], nil
}

var _ repository.BillRepository = (*stubBillRepo)(nil)
