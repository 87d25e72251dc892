package handler

import (
	"net/http"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/middleware"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SerialsHandler struct{ svc service.SerialService }

func NewSerialsHandler(svc service.SerialService) *SerialsHandler {
	return &SerialsHandler{svc: svc}
}

// AddSerials godoc
// @Summary      Register serial numbers for a serial-tracked product
// @Description  Inserts the batch as available units, records a stock_in ledger entry, and reactivates the product on a 0→>0 transition.
// @Tags         serials
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddSerialsRequest true "Serial batch"
// @Success      201  {object} dto.AddSerialsResponse
// @Failure      409  {object} apierror.APIError "Serial already registered"
// @Router       /v1/serials [post]
func (h *SerialsHandler) AddSerials(c *gin.Context) {
	var req dto.AddSerialsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actorID, _ := uuid.Parse(middleware.GetClaims(c).UserID)

	resp, err := h.svc.AddSerials(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
