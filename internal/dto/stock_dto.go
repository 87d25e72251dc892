package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RecordMovementRequest covers the externally triggered movement types.
// Adjustment, transfer and billing movements have dedicated endpoints.
type RecordMovementRequest struct {
	BranchID    string `json:"branch_id"    validate:"required,uuid"`
	ProductID   string `json:"product_id"   validate:"required,uuid"`
	Type        string `json:"type"         validate:"required,oneof=stock_in stock_out purchase"`
	Quantity    int    `json:"quantity"     validate:"required,min=1"`
	Reason      string `json:"reason"       validate:"required,min=3"`
	ReferenceID *string `json:"reference_id" validate:"omitempty,uuid"`
}

// AdjustStockRequest sets the snapshot to an absolute target quantity.
type AdjustStockRequest struct {
	BranchID       string `json:"branch_id"       validate:"required,uuid"`
	ProductID      string `json:"product_id"      validate:"required,uuid"`
	TargetQuantity int    `json:"target_quantity" validate:"min=0"`
	Reason         string `json:"reason"          validate:"required,min=3"`
}

type TransferStockRequest struct {
	FromBranchID string `json:"from_branch_id" validate:"required,uuid"`
	ToBranchID   string `json:"to_branch_id"   validate:"required,uuid,nefield=FromBranchID"`
	ProductID    string `json:"product_id"     validate:"required,uuid"`
	Quantity     int    `json:"quantity"       validate:"required,min=1"`
	Reason       string `json:"reason"`
}

// LedgerFilter is bound from the query string of GET /v1/stock/ledger.
type LedgerFilter struct {
	BranchID  string `form:"branch_id"  validate:"required,uuid"`
	ProductID string `form:"product_id" validate:"required,uuid"`
	Type      string `form:"type"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LedgerEntryResponse struct {
	ID             string  `json:"id"`
	BranchID       string  `json:"branch_id"`
	ProductID      string  `json:"product_id"`
	MovementType   string  `json:"movement_type"`
	Quantity       int     `json:"quantity"`
	PreviousStock  int     `json:"previous_stock"`
	ResultingStock int     `json:"resulting_stock"`
	ReferenceID    *string `json:"reference_id,omitempty"`
	Reason         string  `json:"reason"`
	CreatedAt      string  `json:"created_at"`
}

type LedgerListResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type TransferResponse struct {
	TransferID string              `json:"transfer_id"`
	Out        LedgerEntryResponse `json:"out"`
	In         LedgerEntryResponse `json:"in"`
}

// CurrentStockItem is one (product, quantity) pair of GET /v1/stock/current.
type CurrentStockItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Unit        string `json:"unit"`
	Quantity    int    `json:"quantity"`
	MinStock    int    `json:"min_stock"`
}
