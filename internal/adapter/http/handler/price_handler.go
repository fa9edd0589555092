package handler

import (
	"strconv"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"
	"gold-trading-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// PriceHandler serves the quote and ticker endpoints.
type PriceHandler struct {
	pricingSvc   ports.PricingService
	reportingSvc ports.ReportingService
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(pricingSvc ports.PricingService, reportingSvc ports.ReportingService) *PriceHandler {
	return &PriceHandler{pricingSvc: pricingSvc, reportingSvc: reportingSvc}
}

// GetCurrent handles GET /api/v1/prices/current. This is the quote that
// trades execute against; its snapshot id is stable within one refresh interval.
func (h *PriceHandler) GetCurrent(c *gin.Context) {
	quote, err := h.pricingSvc.GetCurrentPrices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, quote)
}

// GetSpot handles GET /api/v1/prices/spot, the live ticker. Display only;
// nothing served here is ever bound to an order.
func (h *PriceHandler) GetSpot(c *gin.Context) {
	tick, err := h.pricingSvc.GetSpotOnly(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tick)
}

// GetHistory handles GET /api/v1/prices/history?metal=GOLD&limit=48.
func (h *PriceHandler) GetHistory(c *gin.Context) {
	metal := domain.Metal(c.DefaultQuery("metal", string(domain.MetalGold)))

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.Validation("limit must be an integer"))
			return
		}
		limit = n
	}

	history, err := h.reportingSvc.PriceHistory(c.Request.Context(), metal, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, history)
}
