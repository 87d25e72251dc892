package handler

import (
	"net/http"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/apierror"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/middleware"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// RecordMovement godoc
// @Summary      Record a stock movement
// @Description  Appends a ledger entry (stock_in, stock_out or purchase) and updates the branch snapshot atomically.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordMovementRequest true "Movement detail"
// @Success      201  {object} dto.LedgerEntryResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/stock/movements [post]
func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actorID, _ := uuid.Parse(middleware.GetClaims(c).UserID)

	resp, err := h.svc.RecordMovement(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AdjustStock godoc
// @Summary      Adjust stock to an absolute target
// @Description  Reconciliation escape hatch: sets the snapshot to the target quantity and records an adjustment entry with the derived signed delta.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AdjustStockRequest true "Adjustment detail"
// @Success      201  {object} dto.LedgerEntryResponse
// @Router       /v1/stock/adjust [post]
func (h *StockHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actorID, _ := uuid.Parse(middleware.GetClaims(c).UserID)

	resp, err := h.svc.AdjustStock(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// TransferStock godoc
// @Summary      Transfer stock between branches
// @Description  Records transfer_out and transfer_in as one transaction; both legs share a transfer reference id.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.TransferStockRequest true "Transfer detail"
// @Success      201  {object} dto.TransferResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/stock/transfer [post]
func (h *StockHandler) TransferStock(c *gin.Context) {
	var req dto.TransferStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actorID, _ := uuid.Parse(middleware.GetClaims(c).UserID)

	resp, err := h.svc.TransferStock(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetLedger godoc
// @Summary      Movement history for a product in a branch
// @Description  Returns the audit trail newest first, paginated.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id  query string true  "Branch UUID"
// @Param        product_id query string true  "Product UUID"
// @Param        type       query string false "Movement type filter"
// @Success      200 {object} dto.LedgerListResponse
// @Router       /v1/stock/ledger [get]
func (h *StockHandler) GetLedger(c *gin.Context) {
	var filter dto.LedgerFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.GetLedger(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCurrentStock godoc
// @Summary      Current stock of a branch
// @Description  Returns (product, quantity) pairs with quantity > 0.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true "Branch UUID"
// @Success      200 {array} dto.CurrentStockItem
// @Router       /v1/stock/current [get]
func (h *StockHandler) GetCurrentStock(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid branch_id"))
		return
	}
	items, err := h.svc.GetCurrentStock(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetLowStock godoc
// @Summary      Products at or below their minimum stock
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true "Branch UUID"
// @Success      200 {array} dto.CurrentStockItem
// @Router       /v1/stock/alerts [get]
func (h *StockHandler) GetLowStock(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid branch_id"))
		return
	}
	items, err := h.svc.GetLowStock(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
