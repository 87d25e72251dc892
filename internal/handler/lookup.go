package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/apierror"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/dto"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/model"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/repository"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LookupHandler serves the public price/stock check endpoint.
// No authentication required — no side effects whatsoever.
type LookupHandler struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	serialRepo  repository.SerialRepository
	rdb         *redis.Client
	ttl         time.Duration
}

func NewLookupHandler(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	serialRepo repository.SerialRepository,
	rdb *redis.Client,
	ttl time.Duration,
) *LookupHandler {
	return &LookupHandler{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		serialRepo:  serialRepo,
		rdb:         rdb,
		ttl:         ttl,
	}
}

// GetBySKU godoc
// @Summary Price and stock check by SKU (no authentication)
// @Tags    lookup
// @Produce json
// @Param   sku       path  string true "Product SKU"
// @Param   branch_id query string true "Branch UUID"
// @Success 200 {object} dto.LookupResponse
// @Failure 404 {object} apierror.APIError
// @Router  /v1/lookup/{sku} [get]
func (h *LookupHandler) GetBySKU(c *gin.Context) {
	sku := c.Param("sku")
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid branch_id"))
		return
	}
	ctx := c.Request.Context()
	cacheKey := service.LookupCacheKey(branchID, sku)

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.LookupResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	product, err := h.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}

	var available int
	if product.TrackingMode == model.TrackingSerial {
		available, err = h.serialRepo.CountAvailable(ctx, branchID, product.ID)
	} else {
		available, err = h.stockRepo.GetQuantity(ctx, branchID, product.ID)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}

	resp := dto.LookupResponse{
		Name:         product.Name,
		SKU:          product.SKU,
		Unit:         product.Unit,
		SellingPrice: product.SellingPrice,
		GSTRate:      product.GSTRate,
		Available:    available,
		BranchID:     branchID.String(),
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, h.ttl).Err()
	}

	c.JSON(http.StatusOK, resp)
}
