package service

import (
	"context"
	"fmt"
	"time"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/apperr"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillingService interface {
	CreateBill(ctx context.Context, actorID uuid.UUID, req dto.CreateBillRequest) (*dto.BillResponse, error)
	GetBill(ctx context.Context, id uuid.UUID) (*dto.BillResponse, error)
	ListBills(ctx context.Context, filter dto.BillFilter) (*dto.BillListResponse, error)
}

type billingService struct {
	billRepo    repository.BillRepository
	branchRepo  repository.BranchRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	stock       StockService
	serials     SerialService
	rdb         *redis.Client
}

func NewBillingService(
	billRepo repository.BillRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	stock StockService,
	serials SerialService,
	rdb *redis.Client,
) BillingService {
	return &billingService{
		billRepo:    billRepo,
		branchRepo:  branchRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		stock:       stock,
		serials:     serials,
		rdb:         rdb,
	}
}

var hundred = decimal.NewFromInt(100)

// round2 is the single rounding discipline of the engine: half-up to two
// decimals, applied per item and once more at aggregation.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// resolvedItem carries a line item after product resolution and totals
// computation, before anything is written.
type resolvedItem struct {
	product   *model.Product
	quantity  int
	unitPrice decimal.Decimal
	gstRate   decimal.Decimal
	discount  decimal.Decimal
	subtotal  decimal.Decimal
	gstAmount decimal.Decimal
	total     decimal.Decimal
	serials   []string
}

// ── CreateBill ───────────────────────────────────────────────────────────────
// All-or-nothing checkout:
//   1. Resolve branch → tenant
//   2. Resolve and validate every line item (read-only stock pre-check)
//   3. Compute totals
//   4. BEGIN TX: next invoice sequence, create bill + items, record one
//      billing movement per item (re-checked under the snapshot row lock),
//      flip serial units to sold
//   5. COMMIT — any per-item failure rolls the whole bill back

func (s *billingService) CreateBill(ctx context.Context, actorID uuid.UUID, req dto.CreateBillRequest) (*dto.BillResponse, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperr.Validation("invalid branch_id")
	}
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, notFoundOrStorage(err, "branch", req.BranchID)
	}

	// 2. Resolve products and pre-validate stock (outside TX; the deduction
	// in step 4 re-checks under a row lock, this pass just fails fast).
	resolved := make([]resolvedItem, 0, len(req.Items))
	for _, item := range req.Items {
		r, err := s.resolveItem(ctx, branch, item)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *r)
	}

	// 3. Totals — per-item figures already rounded in resolveItem.
	subtotal := decimal.Zero
	discount := round2(req.OrderDiscount)
	gstAmount := decimal.Zero
	for _, r := range resolved {
		subtotal = subtotal.Add(r.subtotal)
		discount = discount.Add(r.discount)
		gstAmount = gstAmount.Add(r.gstAmount)
	}
	subtotal = round2(subtotal)
	gstAmount = round2(gstAmount)
	total := round2(subtotal.Sub(discount).Add(gstAmount))
	if total.IsNegative() {
		return nil, apperr.Validation("discount exceeds bill total")
	}

	paid := round2(req.PaidAmount)
	change := decimal.Zero
	if paid.GreaterThan(total) {
		// Cash over-payment: change goes back to the customer, never stored.
		change = paid.Sub(total)
		paid = total
	}
	due := total.Sub(paid)

	// 4–5. ACID transaction
	var bill model.Bill
	txErr := runTx(ctx, s.billRepo.DB(), func(tx *gorm.DB) error {
		day := time.Now().Format("20060102")
		seq, err := s.billRepo.NextInvoiceSeqTx(tx, branch.ID, day)
		if err != nil {
			return apperr.Storage(err)
		}

		bill = model.Bill{
			TenantID:      branch.TenantID,
			BranchID:      branch.ID,
			InvoiceNumber: FormatInvoiceNumber(branch.Code, day, seq),
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			Subtotal:      subtotal,
			Discount:      discount,
			GSTAmount:     gstAmount,
			TotalAmount:   total,
			PaidAmount:    paid,
			DueAmount:     due,
			PaymentMode:   req.PaymentMode,
			CreatedBy:     actorID,
		}
		for _, r := range resolved {
			bill.Items = append(bill.Items, model.BillItem{
				ProductID:   r.product.ID,
				ProductName: r.product.Name,
				Quantity:    r.quantity,
				UnitPrice:   r.unitPrice,
				GSTRate:     r.gstRate,
				GSTAmount:   r.gstAmount,
				Discount:    r.discount,
				TotalAmount: r.total,
			})
		}
		if err := s.billRepo.CreateTx(tx, &bill); err != nil {
			return apperr.Storage(err)
		}

		for _, r := range resolved {
			if r.product.TrackingMode == model.TrackingSerial {
				if _, err := s.serials.ConsumeSerialsTx(tx, r.product, branch.ID, r.serials, bill.ID, actorID); err != nil {
					return err
				}
				continue
			}
			billRef := bill.ID
			if _, err := s.stock.RecordMovementTx(tx, Movement{
				TenantID:    branch.TenantID,
				BranchID:    branch.ID,
				ProductID:   r.product.ID,
				ProductName: r.product.Name,
				Type:        model.MovementBilling,
				Delta:       -r.quantity,
				Reason:      fmt.Sprintf("Bill %s", bill.InvoiceNumber),
				ReferenceID: &billRef,
				ActorID:     actorID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	for _, r := range resolved {
		invalidateLookup(ctx, s.rdb, branch.ID, r.product.SKU)
	}

	resp := billToResponse(&bill)
	resp.Change = change
	return resp, nil
}

// resolveItem loads the product, validates the line, computes its rounded
// figures, and runs the read-only stock pre-check.
func (s *billingService) resolveItem(ctx context.Context, branch *model.Branch, item dto.BillItemRequest) (*resolvedItem, error) {
	pid, err := uuid.Parse(item.ProductID)
	if err != nil {
		return nil, apperr.Validation("invalid product_id")
	}
	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, notFoundOrStorage(err, "product", item.ProductID)
	}
	if product.TenantID != branch.TenantID {
		return nil, apperr.NotFound("product", item.ProductID)
	}
	if !product.Active {
		return nil, apperr.Validation("product %q is inactive and cannot be sold", product.Name)
	}

	if product.TrackingMode == model.TrackingSerial {
		if len(item.Serials) != item.Quantity {
			return nil, apperr.Validation("product %q: %d serials named for quantity %d", product.Name, len(item.Serials), item.Quantity)
		}
		if dup := firstDuplicate(item.Serials); dup != "" {
			return nil, apperr.Validation("serial %q appears more than once in the line", dup)
		}
	} else if len(item.Serials) > 0 {
		return nil, apperr.Validation("product %q is quantity-tracked and does not take serials", product.Name)
	}

	available, err := s.availableStock(ctx, branch.ID, product)
	if err != nil {
		return nil, err
	}
	if item.Quantity > available {
		return nil, &apperr.InsufficientStockError{
			ProductName: product.Name,
			Requested:   item.Quantity,
			Available:   available,
		}
	}

	if item.UnitPrice.IsNegative() {
		return nil, apperr.Validation("product %q: negative unit price", product.Name)
	}
	itemSubtotal := round2(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	itemDiscount := round2(item.Discount)
	afterDiscount := round2(itemSubtotal.Sub(itemDiscount))
	if afterDiscount.IsNegative() {
		return nil, apperr.Validation("product %q: discount exceeds line subtotal", product.Name)
	}
	itemGST := round2(afterDiscount.Mul(item.GSTRate).Div(hundred))
	itemTotal := round2(afterDiscount.Add(itemGST))

	return &resolvedItem{
		product:   product,
		quantity:  item.Quantity,
		unitPrice: item.UnitPrice,
		gstRate:   item.GSTRate,
		discount:  itemDiscount,
		subtotal:  itemSubtotal,
		gstAmount: itemGST,
		total:     itemTotal,
		serials:   item.Serials,
	}, nil
}

// availableStock reads the effective quantity: the snapshot for
// quantity-tracked products, the available-unit count for serialized ones.
func (s *billingService) availableStock(ctx context.Context, branchID uuid.UUID, product *model.Product) (int, error) {
	if product.TrackingMode == model.TrackingSerial {
		return s.serials.CountAvailable(ctx, branchID, product.ID)
	}
	qty, err := s.stockRepo.GetQuantity(ctx, branchID, product.ID)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return qty, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *billingService) GetBill(ctx context.Context, id uuid.UUID) (*dto.BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStorage(err, "bill", id)
	}
	return billToResponse(bill), nil
}

func (s *billingService) ListBills(ctx context.Context, filter dto.BillFilter) (*dto.BillListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	bills, total, err := s.billRepo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	data := make([]dto.BillResponse, 0, len(bills))
	for i := range bills {
		data = append(data, *billToResponse(&bills[i]))
	}
	return &dto.BillListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Mapping ─────────────────────────────────────────────────────────────────

// FormatInvoiceNumber builds the human-readable, branch-scoped identifier:
// {branchCode}-{YYYYMMDD}-{4-digit sequence}.
func FormatInvoiceNumber(branchCode, day string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", branchCode, day, seq)
}

func billToResponse(b *model.Bill) *dto.BillResponse {
	items := make([]dto.BillItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, dto.BillItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			GSTRate:     it.GSTRate,
			GSTAmount:   it.GSTAmount,
			Discount:    it.Discount,
			TotalAmount: it.TotalAmount,
		})
	}
	return &dto.BillResponse{
		ID:            b.ID.String(),
		InvoiceNumber: b.InvoiceNumber,
		BranchID:      b.BranchID.String(),
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Items:         items,
		Subtotal:      b.Subtotal,
		Discount:      b.Discount,
		GSTAmount:     b.GSTAmount,
		TotalAmount:   b.TotalAmount,
		PaidAmount:    b.PaidAmount,
		DueAmount:     b.DueAmount,
		Change:        decimal.Zero,
		PaymentMode:   b.PaymentMode,
		CreatedAt:     b.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
