package handler

import (
	"strconv"

	"gold-trading-gateway/internal/adapter/http/dto"
	"gold-trading-gateway/internal/adapter/http/middleware"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"
	"gold-trading-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet, funds, and statement endpoints.
type WalletHandler struct {
	fundsSvc     ports.FundsService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(fundsSvc ports.FundsService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{fundsSvc: fundsSvc, reportingSvc: reportingSvc}
}

// GetBalance handles GET /api/v1/wallets/balance. Creates the wallet on
// first access.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallet, err := h.fundsSvc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallet)
}

// Deposit handles POST /api/v1/wallets/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	h.moveCash(c, func(ctx *gin.Context, userID uuid.UUID, amount decimal.Decimal) (*ports.FundsResult, error) {
		return h.fundsSvc.Deposit(ctx.Request.Context(), userID, amount)
	})
}

// Withdraw handles POST /api/v1/wallets/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	h.moveCash(c, func(ctx *gin.Context, userID uuid.UUID, amount decimal.Decimal) (*ports.FundsResult, error) {
		return h.fundsSvc.Withdraw(ctx.Request.Context(), userID, amount)
	})
}

func (h *WalletHandler) moveCash(c *gin.Context, op func(*gin.Context, uuid.UUID, decimal.Decimal) (*ports.FundsResult, error)) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := op(c, userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListTransactions handles GET /api/v1/wallets/transactions?limit=&offset=.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, err := h.reportingSvc.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ListResponse{Items: txns, Limit: limit, Offset: offset})
}

// ListOrders handles GET /api/v1/wallets/orders?limit=&offset=.
func (h *WalletHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, offset, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	orders, err := h.reportingSvc.ListOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ListResponse{Items: orders, Limit: limit, Offset: offset})
}

// pageParams parses the limit/offset query pair. Out-of-range values are
// clamped downstream; non-numeric ones are a validation error here.
func pageParams(c *gin.Context) (limit, offset int, err error) {
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperror.Validation("limit must be an integer")
		}
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperror.Validation("offset must be an integer")
		}
	}
	return limit, offset, nil
}
