package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/apperr"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Movement is one ledger append, applied under a snapshot row lock.
// Either Delta (signed quantity) or Target (absolute quantity, adjustment
// only) must be set; Target wins when non-nil.
type Movement struct {
	TenantID    uuid.UUID
	BranchID    uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Type        string
	Delta       int
	Target      *int
	Reason      string
	ReferenceID *uuid.UUID
	ActorID     uuid.UUID
}

// StockService is the single write path for inventory quantity and its
// history. All mutation flows through RecordMovementTx; the snapshot is a
// derived aggregate that callers never touch directly.
type StockService interface {
	RecordMovement(ctx context.Context, actorID uuid.UUID, req dto.RecordMovementRequest) (*dto.LedgerEntryResponse, error)
	AdjustStock(ctx context.Context, actorID uuid.UUID, req dto.AdjustStockRequest) (*dto.LedgerEntryResponse, error)
	TransferStock(ctx context.Context, actorID uuid.UUID, req dto.TransferStockRequest) (*dto.TransferResponse, error)
	GetLedger(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
	GetCurrentStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error)
	GetLowStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error)

	// RecordMovementTx is called within an enclosing transaction (bill
	// creation, serial intake) — requires a live *gorm.DB tx.
	RecordMovementTx(tx *gorm.DB, m Movement) (*model.StockLedgerEntry, error)
}

type stockService struct {
	stockRepo   repository.StockRepository
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
	rdb         *redis.Client
}

func NewStockService(
	stockRepo repository.StockRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	rdb *redis.Client,
) StockService {
	return &stockService{
		stockRepo:   stockRepo,
		branchRepo:  branchRepo,
		productRepo: productRepo,
		rdb:         rdb,
	}
}

// ── RecordMovementTx ─────────────────────────────────────────────────────────
// The invariant point of the whole core: read previous under a row lock,
// check, append the ledger entry, write the snapshot — all in one
// transaction, so concurrent depleting movements on the same
// (branch, product) cannot both pass the check on stale data.

func (s *stockService) RecordMovementTx(tx *gorm.DB, m Movement) (*model.StockLedgerEntry, error) {
	snap, err := s.stockRepo.LockSnapshotTx(tx, m.TenantID, m.BranchID, m.ProductID)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	previous := snap.Quantity
	delta := m.Delta
	if m.Target != nil {
		// Adjustment to an absolute target; the signed delta is derived
		// from the locked previous value, not from the caller's read.
		delta = *m.Target - previous
	}
	resulting := previous + delta

	if resulting < 0 {
		if m.Type == model.MovementAdjustment {
			// Targets are validated non-negative at the API edge; a negative
			// resulting here means a derived-delta bug, not caller input.
			return nil, apperr.Validation("adjustment would set stock of %q below zero", m.ProductName)
		}
		return nil, &apperr.InsufficientStockError{
			ProductName: m.ProductName,
			Requested:   -delta,
			Available:   previous,
		}
	}

	entry := &model.StockLedgerEntry{
		TenantID:       m.TenantID,
		BranchID:       m.BranchID,
		ProductID:      m.ProductID,
		MovementType:   m.Type,
		Quantity:       delta,
		PreviousStock:  previous,
		ResultingStock: resulting,
		ReferenceID:    m.ReferenceID,
		Reason:         m.Reason,
		ActorID:        m.ActorID,
	}
	if err := s.stockRepo.AppendEntryTx(tx, entry); err != nil {
		return nil, apperr.Storage(err)
	}
	if err := s.stockRepo.UpdateSnapshotTx(tx, snap.ID, resulting); err != nil {
		return nil, apperr.Storage(err)
	}
	return entry, nil
}

// ── Public operations ────────────────────────────────────────────────────────

func (s *stockService) RecordMovement(ctx context.Context, actorID uuid.UUID, req dto.RecordMovementRequest) (*dto.LedgerEntryResponse, error) {
	branch, product, err := s.resolve(ctx, req.BranchID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.TrackingMode == model.TrackingSerial {
		return nil, apperr.Validation("product %q is serial-tracked; use the serials endpoints", product.Name)
	}

	delta := req.Quantity
	if model.IsDepletingMovement(req.Type) {
		delta = -req.Quantity
	}
	var ref *uuid.UUID
	if req.ReferenceID != nil {
		id, parseErr := uuid.Parse(*req.ReferenceID)
		if parseErr != nil {
			return nil, apperr.Validation("invalid reference_id")
		}
		ref = &id
	}

	var entry *model.StockLedgerEntry
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		var txe error
		entry, txe = s.RecordMovementTx(tx, Movement{
			TenantID:    branch.TenantID,
			BranchID:    branch.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Type:        req.Type,
			Delta:       delta,
			Reason:      req.Reason,
			ReferenceID: ref,
			ActorID:     actorID,
		})
		return txe
	})
	if txErr != nil {
		return nil, txErr
	}

	invalidateLookup(ctx, s.rdb, branch.ID, product.SKU)
	return ledgerEntryToResponse(entry), nil
}

func (s *stockService) AdjustStock(ctx context.Context, actorID uuid.UUID, req dto.AdjustStockRequest) (*dto.LedgerEntryResponse, error) {
	branch, product, err := s.resolve(ctx, req.BranchID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.TrackingMode == model.TrackingSerial {
		return nil, apperr.Validation("product %q is serial-tracked; reconcile through the serials endpoints", product.Name)
	}

	target := req.TargetQuantity
	var entry *model.StockLedgerEntry
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		var txe error
		entry, txe = s.RecordMovementTx(tx, Movement{
			TenantID:    branch.TenantID,
			BranchID:    branch.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Type:        model.MovementAdjustment,
			Target:      &target,
			Reason:      req.Reason,
			ActorID:     actorID,
		})
		return txe
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("branch_id", branch.ID.String()).
		Str("product_id", product.ID.String()).
		Int("previous", entry.PreviousStock).
		Int("target", target).
		Msg("stock adjusted")

	invalidateLookup(ctx, s.rdb, branch.ID, product.SKU)
	return ledgerEntryToResponse(entry), nil
}

// TransferStock moves quantity between two branches of the same tenant as a
// single transaction: the stock-out and stock-in either both land or neither
// does, so inventory can never vanish on a half-applied transfer.
func (s *stockService) TransferStock(ctx context.Context, actorID uuid.UUID, req dto.TransferStockRequest) (*dto.TransferResponse, error) {
	from, product, err := s.resolve(ctx, req.FromBranchID, req.ProductID)
	if err != nil {
		return nil, err
	}
	toID, err := uuid.Parse(req.ToBranchID)
	if err != nil {
		return nil, apperr.Validation("invalid to_branch_id")
	}
	to, err := s.branchRepo.FindByID(ctx, toID)
	if err != nil {
		return nil, notFoundOrStorage(err, "branch", req.ToBranchID)
	}
	if to.TenantID != from.TenantID {
		return nil, apperr.Validation("branches belong to different tenants")
	}
	if product.TrackingMode == model.TrackingSerial {
		return nil, apperr.Validation("product %q is serial-tracked; transfers are not supported for serialized goods", product.Name)
	}

	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("Transfer %s → %s", from.Code, to.Code)
	}

	transferID := uuid.New()
	var out, in *model.StockLedgerEntry
	txErr := runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		var txe error
		out, txe = s.RecordMovementTx(tx, Movement{
			TenantID: from.TenantID, BranchID: from.ID,
			ProductID: product.ID, ProductName: product.Name,
			Type: model.MovementTransferOut, Delta: -req.Quantity,
			Reason: reason, ReferenceID: &transferID, ActorID: actorID,
		})
		if txe != nil {
			return txe
		}
		in, txe = s.RecordMovementTx(tx, Movement{
			TenantID: to.TenantID, BranchID: to.ID,
			ProductID: product.ID, ProductName: product.Name,
			Type: model.MovementTransferIn, Delta: req.Quantity,
			Reason: reason, ReferenceID: &transferID, ActorID: actorID,
		})
		return txe
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("transfer_id", transferID.String()).
		Str("from", from.Code).
		Str("to", to.Code).
		Int("quantity", req.Quantity).
		Msg("stock transferred")

	invalidateLookup(ctx, s.rdb, from.ID, product.SKU)
	invalidateLookup(ctx, s.rdb, to.ID, product.SKU)
	return &dto.TransferResponse{
		TransferID: transferID.String(),
		Out:        *ledgerEntryToResponse(out),
		In:         *ledgerEntryToResponse(in),
	}, nil
}

func (s *stockService) GetLedger(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	if filter.Type != "" && !model.ValidMovementType(filter.Type) {
		return nil, apperr.Validation("unknown movement type %q", filter.Type)
	}
	entries, total, err := s.stockRepo.ListLedger(ctx, filter)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	data := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		data = append(data, *ledgerEntryToResponse(&entries[i]))
	}
	return &dto.LedgerListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *stockService) GetCurrentStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error) {
	if _, err := s.branchRepo.FindByID(ctx, branchID); err != nil {
		return nil, notFoundOrStorage(err, "branch", branchID)
	}
	items, err := s.stockRepo.ListCurrentStock(ctx, branchID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return items, nil
}

func (s *stockService) GetLowStock(ctx context.Context, branchID uuid.UUID) ([]dto.CurrentStockItem, error) {
	if _, err := s.branchRepo.FindByID(ctx, branchID); err != nil {
		return nil, notFoundOrStorage(err, "branch", branchID)
	}
	items, err := s.stockRepo.ListLowStock(ctx, branchID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return items, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// resolve loads the branch and the product and checks tenant ownership.
func (s *stockService) resolve(ctx context.Context, branchID, productID string) (*model.Branch, *model.Product, error) {
	bid, err := uuid.Parse(branchID)
	if err != nil {
		return nil, nil, apperr.Validation("invalid branch_id")
	}
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, nil, apperr.Validation("invalid product_id")
	}
	branch, err := s.branchRepo.FindByID(ctx, bid)
	if err != nil {
		return nil, nil, notFoundOrStorage(err, "branch", branchID)
	}
	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, nil, notFoundOrStorage(err, "product", productID)
	}
	if product.TenantID != branch.TenantID {
		return nil, nil, apperr.NotFound("product", productID)
	}
	return branch, product, nil
}

func notFoundOrStorage(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Storage(err)
}

func ledgerEntryToResponse(e *model.StockLedgerEntry) *dto.LedgerEntryResponse {
	var ref *string
	if e.ReferenceID != nil {
		s := e.ReferenceID.String()
		ref = &s
	}
	return &dto.LedgerEntryResponse{
		ID:             e.ID.String(),
		BranchID:       e.BranchID.String(),
		ProductID:      e.ProductID.String(),
		MovementType:   e.MovementType,
		Quantity:       e.Quantity,
		PreviousStock:  e.PreviousStock,
		ResultingStock: e.ResultingStock,
		ReferenceID:    ref,
		Reason:         e.Reason,
		CreatedAt:      e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
