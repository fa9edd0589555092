package handler

import (
	"time"

	"gold-trading-gateway/internal/adapter/http/dto"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"
	"gold-trading-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles the administrative surface: merchant settings and
// order cancellation.
type AdminHandler struct {
	adminSvc ports.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.adminSvc.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// UpdateSettings handles PATCH /api/v1/admin/settings. The body is an
// allow-list: unknown fields are rejected, absent fields are untouched.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req dto.SettingsPatchRequest
	if err := dto.BindStrict(c, &req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	patch := ports.SettingsPatch{
		Spread:         req.Spread,
		BuyMarkup:      req.BuyMarkup,
		SellMarkup:     req.SellMarkup,
		MinTradeAmount: req.MinTradeAmount,
		MaxTradeAmount: req.MaxTradeAmount,
	}
	if req.PriceUpdateIntervalSecond != nil {
		d := time.Duration(*req.PriceUpdateIntervalSecond) * time.Second
		patch.PriceUpdateInterval = &d
	}

	settings, err := h.adminSvc.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// CancelOrder handles POST /api/v1/admin/orders/:id/cancel.
func (h *AdminHandler) CancelOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("order id must be a UUID"))
		return
	}

	if err := h.adminSvc.CancelOrder(c.Request.Context(), orderID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"cancelled": orderID})
}
