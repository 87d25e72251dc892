package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/apperr"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type billingFixture struct {
	*stockFixture
	billRepo   *stubBillRepo
	serialRepo *stubSerialRepo
	serialSvc  service.SerialService
	svc        service.BillingService
}

func newBillingFixture() *billingFixture {
	sf := newStockFixture()
	f := &billingFixture{
		stockFixture: sf,
		billRepo:     newStubBillRepo(),
		serialRepo:   newStubSerialRepo(),
	}
	f.serialSvc = service.NewSerialService(f.serialRepo, f.productRepo, f.branchRepo, sf.svc, nil)
	f.svc = service.NewBillingService(f.billRepo, f.branchRepo, f.productRepo, f.stockRepo, sf.svc, f.serialSvc, nil)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateBillDeductsStockAndComputesTotals(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	resp, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  3,
			UnitPrice: decimal.NewFromInt(100),
			GSTRate:   decimal.NewFromInt(18),
		}},
		CustomerName: "Walk-in",
		PaymentMode:  "cash",
		PaidAmount:   dec("354.00"),
	})
	require.NoError(t, err)

	// 3 × 100 = 300.00, GST 18% = 54.00, total 354.00
	assert.True(t, resp.Subtotal.Equal(dec("300.00")), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.GSTAmount.Equal(dec("54.00")), "gst %s", resp.GSTAmount)
	assert.True(t, resp.TotalAmount.Equal(dec("354.00")), "total %s", resp.TotalAmount)
	assert.True(t, resp.DueAmount.IsZero())
	assert.Empty(t, resp.Errors)

	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].GSTAmount.Equal(dec("54.00")))
	assert.True(t, resp.Items[0].TotalAmount.Equal(dec("354.00")))

	day := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("MAIN-%s-0001", day), resp.InvoiceNumber)

	// ledger: one billing movement, snapshot down to 7
	entries := f.stockRepo.entriesFor(f.branch.ID, f.product.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.MovementBilling, entries[0].MovementType)
	assert.Equal(t, -3, entries[0].Quantity)
	assert.Equal(t, 10, entries[0].PreviousStock)
	assert.Equal(t, 7, entries[0].ResultingStock)
	require.NotNil(t, entries[0].ReferenceID)
	assert.Equal(t, resp.ID, entries[0].ReferenceID.String())

	qty, _ := f.stockRepo.GetQuantity(context.Background(), f.branch.ID, f.product.ID)
	assert.Equal(t, 7, qty)
}

func TestCreateBillInsufficientStock(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 7)

	_, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  8,
			UnitPrice: decimal.NewFromInt(100),
		}},
		PaymentMode: "cash",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	// nothing persisted
	assert.Empty(t, f.billRepo.bills)
	assert.Empty(t, f.stockRepo.entriesFor(f.branch.ID, f.product.ID))
	qty, _ := f.stockRepo.GetQuantity(context.Background(), f.branch.ID, f.product.ID)
	assert.Equal(t, 7, qty)
}

func TestCreateBillInactiveProduct(t *testing.T) {
	f := newBillingFixture()
	f.product.Active = false
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	_, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(100),
		}},
		PaymentMode: "cash",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Empty(t, f.billRepo.bills)
}

func TestCreateBillInvoiceSequenceIncrements(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	day := time.Now().Format("20060102")
	for i, want := range []string{"-0001", "-0002"} {
		resp, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
			BranchID: f.branch.ID.String(),
			Items: []dto.BillItemRequest{{
				ProductID: f.product.ID.String(),
				Quantity:  1,
				UnitPrice: decimal.NewFromInt(100),
			}},
			PaymentMode: "cash",
		})
		require.NoError(t, err, "bill %d", i+1)
		assert.Equal(t, "MAIN-"+day+want, resp.InvoiceNumber)
	}
}

func TestCreateBillRoundsHalfUpPerItem(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	// 3 × 33.335 = 100.005 → 100.01 after the per-item round;
	// GST 5% of 100.01 = 5.0005 → 5.00; total 105.01.
	resp, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  3,
			UnitPrice: dec("33.335"),
			GSTRate:   decimal.NewFromInt(5),
		}},
		PaymentMode: "cash",
	})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(dec("100.01")), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.GSTAmount.Equal(dec("5.00")), "gst %s", resp.GSTAmount)
	assert.True(t, resp.TotalAmount.Equal(dec("105.01")), "total %s", resp.TotalAmount)
}

func TestCreateBillAdditiveDiscounts(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	// line: 2 × 100 - 20 = 180, GST 18% = 32.40, line total 212.40
	// order discount 10 on top: total = 200 - 30 + 32.40 = 202.40
	resp, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  2,
			UnitPrice: decimal.NewFromInt(100),
			GSTRate:   decimal.NewFromInt(18),
			Discount:  decimal.NewFromInt(20),
		}},
		OrderDiscount: decimal.NewFromInt(10),
		PaymentMode:   "card",
	})
	require.NoError(t, err)
	assert.True(t, resp.Discount.Equal(dec("30.00")), "discount %s", resp.Discount)
	assert.True(t, resp.GSTAmount.Equal(dec("32.40")), "gst %s", resp.GSTAmount)
	assert.True(t, resp.TotalAmount.Equal(dec("202.40")), "total %s", resp.TotalAmount)
}

func TestCreateBillOverpaymentReturnsChange(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	resp, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(100),
		}},
		PaymentMode: "cash",
		PaidAmount:  decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	assert.True(t, resp.Change.Equal(dec("400.00")), "change %s", resp.Change)
	assert.True(t, resp.PaidAmount.Equal(dec("100.00")), "paid clamped, got %s", resp.PaidAmount)
	assert.True(t, resp.DueAmount.IsZero())

	// the stored bill never carries the change
	stored, err := f.billRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.Equal(dec("100.00")))
}

func TestCreateBillPartialPaymentLeavesDue(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	resp, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(100),
		}},
		PaymentMode: "credit",
		PaidAmount:  decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	assert.True(t, resp.DueAmount.Equal(dec("60.00")), "due %s", resp.DueAmount)
	assert.True(t, resp.Change.IsZero())
}

func TestCreateBillSerialCountMismatch(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.serialP.ID.String(),
			Quantity:  2,
			UnitPrice: decimal.NewFromInt(5500),
			Serials:   []string{"SN-001"},
		}},
		PaymentMode: "cash",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Empty(t, f.billRepo.bills)
}

func TestCreateBillSerialsOnQuantityTracked(t *testing.T) {
	f := newBillingFixture()
	f.stockRepo.seedSnapshot(f.tenantID, f.branch.ID, f.product.ID, 10)

	_, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.product.ID.String(),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(100),
			Serials:   []string{"SN-001"},
		}},
		PaymentMode: "cash",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateBillWithSerialItem(t *testing.T) {
	f := newBillingFixture()

	// intake three units through the serial service so the snapshot and the
	// ledger are in their normal state
	_, err := f.serialSvc.AddSerials(context.Background(), f.actorID, dto.AddSerialsRequest{
		BranchID:  f.branch.ID.String(),
		ProductID: f.serialP.ID.String(),
		Serials:   []string{"SN-001", "SN-002", "SN-003"},
	})
	require.NoError(t, err)

	resp, err := f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.serialP.ID.String(),
			Quantity:  2,
			UnitPrice: decimal.NewFromInt(5500),
			GSTRate:   decimal.NewFromInt(18),
			Serials:   []string{"SN-001", "SN-002"},
		}},
		PaymentMode: "upi",
		PaidAmount:  dec("12980.00"),
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(dec("12980.00")), "total %s", resp.TotalAmount)

	assert.Equal(t, model.SerialSold, f.serialRepo.statusOf("SN-001"))
	assert.Equal(t, model.SerialSold, f.serialRepo.statusOf("SN-002"))
	assert.Equal(t, model.SerialAvailable, f.serialRepo.statusOf("SN-003"))

	qty, _ := f.stockRepo.GetQuantity(context.Background(), f.branch.ID, f.serialP.ID)
	assert.Equal(t, 1, qty)
	assert.True(t, f.serialP.Active)
}

func TestCreateBillUnknownSerial(t *testing.T) {
	f := newBillingFixture()

	_, err := f.serialSvc.AddSerials(context.Background(), f.actorID, dto.AddSerialsRequest{
		BranchID:  f.branch.ID.String(),
		ProductID: f.serialP.ID.String(),
		Serials:   []string{"SN-001"},
	})
	require.NoError(t, err)

	_, err = f.svc.CreateBill(context.Background(), f.actorID, dto.CreateBillRequest{
		BranchID: f.branch.ID.String(),
		Items: []dto.BillItemRequest{{
			ProductID: f.serialP.ID.String(),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(5500),
			Serials:   []string{"SN-999"},
		}},
		PaymentMode: "cash",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, model.SerialAvailable, f.serialRepo.statusOf("SN-001"))
}

func TestGetBillNotFound(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.GetBill(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "MAIN-20250102-0007", service.FormatInvoiceNumber("MAIN", "20250102", 7))
	assert.Equal(t, "WH01-20251231-0123", service.FormatInvoiceNumber("WH01", "20251231", 123))
}
