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

type BillingHandler struct{ svc service.BillingService }

func NewBillingHandler(svc service.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// CreateBill godoc
// @Summary      Create a bill
// @Description  All-or-nothing checkout: invoice number, bill header, line items and stock deductions commit together or not at all.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateBillRequest true "Bill detail"
// @Success      201  {object} dto.BillResponse
// @Failure      409  {object} apierror.APIError "Insufficient stock"
// @Router       /v1/bills [post]
func (h *BillingHandler) CreateBill(c *gin.Context) {
	var req dto.CreateBillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actorID, _ := uuid.Parse(middleware.GetClaims(c).UserID)

	resp, err := h.svc.CreateBill(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetBill godoc
// @Summary      Fetch one bill with its items
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Bill UUID"
// @Success      200 {object} dto.BillResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/bills/{id} [get]
func (h *BillingHandler) GetBill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid bill id"))
		return
	}
	resp, err := h.svc.GetBill(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListBills godoc
// @Summary      List bills of a branch
// @Description  Paginated, filtered by date (default: today).
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        branch_id query string true  "Branch UUID"
// @Param        date      query string false "Date YYYY-MM-DD (default: today)"
// @Success      200 {object} dto.BillListResponse
// @Router       /v1/bills [get]
func (h *BillingHandler) ListBills(c *gin.Context) {
	var filter dto.BillFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListBills(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
