package dto

import "github.com/shopspring/decimal"

type AddSerialsRequest struct {
	BranchID  string   `json:"branch_id"  validate:"required,uuid"`
	ProductID string   `json:"product_id" validate:"required,uuid"`
	Serials   []string `json:"serials"    validate:"required,min=1,dive,min=1,max=64"`
}

type SerialUnitResponse struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serial_number"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type AddSerialsResponse struct {
	Inserted      []SerialUnitResponse `json:"inserted"`
	AvailableNow  int                  `json:"available_now"`
	ProductActive bool                 `json:"product_active"`
}

// LookupResponse is the public, cached price/stock check by SKU.
type LookupResponse struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	Available    int             `json:"available"`
	BranchID     string          `json:"branch_id"`
}
