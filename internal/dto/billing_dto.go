package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BillItemRequest struct {
	ProductID   string          `json:"product_id"   validate:"required,uuid"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"     validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"required"`
	GSTRate     decimal.Decimal `json:"gst_rate"     validate:"min=0,max=100"`
	Discount    decimal.Decimal `json:"discount"     validate:"min=0"`
	// Serials must name exactly Quantity units for serial-tracked products
	// and must be empty for quantity-tracked ones.
	Serials []string `json:"serials" validate:"omitempty,dive,min=1"`
}

type CreateBillRequest struct {
	BranchID      string            `json:"branch_id" validate:"required,uuid"`
	Items         []BillItemRequest `json:"items"     validate:"required,min=1,dive"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone" validate:"omitempty,min=6,max=20"`
	// OrderDiscount is an optional order-level discount added on top of the
	// per-item discounts.
	OrderDiscount decimal.Decimal `json:"order_discount" validate:"min=0"`
	PaymentMode   string          `json:"payment_mode"   validate:"required,oneof=cash card upi credit"`
	PaidAmount    decimal.Decimal `json:"paid_amount"    validate:"min=0"`
}

// BillFilter is bound from the query string of GET /v1/bills.
type BillFilter struct {
	BranchID string `form:"branch_id" validate:"required,uuid"`
	Date     string `form:"date"` // YYYY-MM-DD; empty = today
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BillItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type BillResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	BranchID      string             `json:"branch_id"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	Items         []BillItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	GSTAmount     decimal.Decimal    `json:"gst_amount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	DueAmount     decimal.Decimal    `json:"due_amount"`
	Change        decimal.Decimal    `json:"change"` // cash over-payment, never stored
	PaymentMode   string             `json:"payment_mode"`
	CreatedAt     string             `json:"created_at"`
	// Errors stays for interface compatibility with clients of the previous
	// best-effort engine; bill creation is now all-or-nothing, so the list
	// is always empty on success.
	Errors []string `json:"errors,omitempty"`
}

type BillListResponse struct {
	Data  []BillResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
