package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/apperr"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SerialService tracks individually identified units. For serial-tracked
// products the available-unit count is the stock quantity; every intake and
// consumption also flows through the ledger so the snapshot/ledger invariant
// holds for serialized goods too.
type SerialService interface {
	AddSerials(ctx context.Context, actorID uuid.UUID, req dto.AddSerialsRequest) (*dto.AddSerialsResponse, error)
	CountAvailable(ctx context.Context, branchID, productID uuid.UUID) (int, error)

	// ConsumeSerialsTx is called within a bill transaction: it locks the named
	// units, verifies each is available, flips them to sold, records the
	// billing movement, and deactivates the product when stock hits zero.
	ConsumeSerialsTx(tx *gorm.DB, product *model.Product, branchID uuid.UUID, serials []string, billID uuid.UUID, actorID uuid.UUID) (*model.StockLedgerEntry, error)
}

type serialService struct {
	serialRepo  repository.SerialRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	stock       StockService
	rdb         *redis.Client
}

func NewSerialService(
	serialRepo repository.SerialRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	stock StockService,
	rdb *redis.Client,
) SerialService {
	return &serialService{
		serialRepo:  serialRepo,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		stock:       stock,
		rdb:         rdb,
	}
}

// ── AddSerials ───────────────────────────────────────────────────────────────

func (s *serialService) AddSerials(ctx context.Context, actorID uuid.UUID, req dto.AddSerialsRequest) (*dto.AddSerialsResponse, error) {
	if dup := firstDuplicate(req.Serials); dup != "" {
		return nil, apperr.Validation("serial %q appears more than once in the batch", dup)
	}

	bid, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperr.Validation("invalid branch_id")
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperr.Validation("invalid product_id")
	}
	branch, err := s.branchRepo.FindByID(ctx, bid)
	if err != nil {
		return nil, notFoundOrStorage(err, "branch", req.BranchID)
	}
	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, notFoundOrStorage(err, "product", req.ProductID)
	}
	if product.TenantID != branch.TenantID {
		return nil, apperr.NotFound("product", req.ProductID)
	}
	if product.TrackingMode != model.TrackingSerial {
		return nil, apperr.Validation("product %q is not serial-tracked", product.Name)
	}

	units := make([]model.SerialUnit, 0, len(req.Serials))
	for _, sn := range req.Serials {
		units = append(units, model.SerialUnit{
			TenantID:     branch.TenantID,
			BranchID:     branch.ID,
			ProductID:    product.ID,
			SerialNumber: sn,
			Status:       model.SerialAvailable,
		})
	}

	var entry *model.StockLedgerEntry
	activated := false
	txErr := runTx(ctx, s.serialRepo.DB(), func(tx *gorm.DB) error {
		existing, err := s.serialRepo.ExistingNumbersTx(tx, branch.ID, product.ID, req.Serials)
		if err != nil {
			return apperr.Storage(err)
		}
		if len(existing) > 0 {
			return apperr.Duplicate("serials already registered: %s", strings.Join(existing, ", "))
		}
		if err := s.serialRepo.InsertBatchTx(tx, units); err != nil {
			return apperr.Storage(err)
		}

		entry, err = s.stock.RecordMovementTx(tx, Movement{
			TenantID:    branch.TenantID,
			BranchID:    branch.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Type:        model.MovementStockIn,
			Delta:       len(units),
			Reason:      fmt.Sprintf("Serial intake (%d units)", len(units)),
			ActorID:     actorID,
		})
		if err != nil {
			return err
		}

		// 0 → >0 is the one path that reactivates a product this core owns.
		if entry.PreviousStock == 0 && entry.ResultingStock > 0 && !product.Active {
			if err := s.productRepo.SetActiveTx(tx, product.ID, true); err != nil {
				return apperr.Storage(err)
			}
			activated = true
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if activated {
		log.Info().
			Str("product_id", product.ID.String()).
			Str("branch_id", branch.ID.String()).
			Msg("product auto-activated on serial intake")
	}
	invalidateLookup(ctx, s.rdb, branch.ID, product.SKU)

	inserted := make([]dto.SerialUnitResponse, 0, len(units))
	for i := range units {
		inserted = append(inserted, dto.SerialUnitResponse{
			ID:           units[i].ID.String(),
			SerialNumber: units[i].SerialNumber,
			Status:       units[i].Status,
			CreatedAt:    units[i].CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return &dto.AddSerialsResponse{
		Inserted:      inserted,
		AvailableNow:  entry.ResultingStock,
		ProductActive: product.Active || activated,
	}, nil
}

// ── ConsumeSerialsTx ─────────────────────────────────────────────────────────

func (s *serialService) ConsumeSerialsTx(tx *gorm.DB, product *model.Product, branchID uuid.UUID, serials []string, billID uuid.UUID, actorID uuid.UUID) (*model.StockLedgerEntry, error) {
	units, err := s.serialRepo.FindByNumbersTx(tx, branchID, product.ID, serials)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	found := make(map[string]*model.SerialUnit, len(units))
	for i := range units {
		found[units[i].SerialNumber] = &units[i]
	}
	ids := make([]uuid.UUID, 0, len(serials))
	for _, sn := range serials {
		u, ok := found[sn]
		if !ok {
			return nil, apperr.Validation("serial %q not found for product %q", sn, product.Name)
		}
		if u.Status != model.SerialAvailable {
			return nil, apperr.Validation("serial %q is not available (status %s)", sn, u.Status)
		}
		ids = append(ids, u.ID)
	}

	if err := s.serialRepo.UpdateStatusTx(tx, ids, model.SerialSold); err != nil {
		return nil, apperr.Storage(err)
	}

	entry, err := s.stock.RecordMovementTx(tx, Movement{
		TenantID:    product.TenantID,
		BranchID:    branchID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Type:        model.MovementBilling,
		Delta:       -len(serials),
		Reason:      fmt.Sprintf("Billed serials: %s", strings.Join(serials, ", ")),
		ReferenceID: &billID,
		ActorID:     actorID,
	})
	if err != nil {
		return nil, err
	}

	// >0 → 0: the converse automatic state change.
	if entry.ResultingStock == 0 && product.Active {
		if err := s.productRepo.SetActiveTx(tx, product.ID, false); err != nil {
			return nil, apperr.Storage(err)
		}
		log.Info().
			Str("product_id", product.ID.String()).
			Str("branch_id", branchID.String()).
			Msg("product auto-deactivated on zero serial stock")
	}
	return entry, nil
}

func (s *serialService) CountAvailable(ctx context.Context, branchID, productID uuid.UUID) (int, error) {
	n, err := s.serialRepo.CountAvailable(ctx, branchID, productID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return n, nil
}

func firstDuplicate(serials []string) string {
	seen := make(map[string]bool, len(serials))
	for _, sn := range serials {
		if seen[sn] {
			return sn
		}
		seen[sn] = true
	}
	return ""
}
