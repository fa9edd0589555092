package handler

import (
	"gold-trading-gateway/internal/adapter/http/dto"
	"gold-trading-gateway/internal/adapter/http/middleware"
	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"
	"gold-trading-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// TradeHandler handles trade execution.
type TradeHandler struct {
	tradingSvc ports.TradingService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradingSvc ports.TradingService) *TradeHandler {
	return &TradeHandler{tradingSvc: tradingSvc}
}

// Execute handles POST /api/v1/trades.
func (h *TradeHandler) Execute(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.tradingSvc.ExecuteTrade(c.Request.Context(), ports.TradeRequest{
		UserID: userID,
		Side:   domain.OrderSide(req.Side),
		Amount: req.GoldAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
