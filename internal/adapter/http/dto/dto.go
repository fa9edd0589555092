package dto

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BindStrict decodes the JSON body into dst, rejecting unknown fields.
// Used where the request shape is an allow-list (settings patch).
func BindStrict(c *gin.Context, dst interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Trailing garbage after the object is a malformed request too.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected content after JSON body")
	}
	return nil
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// TradeRequest is the request body for trade execution. The amount is in
// grams; sign conventions live entirely in the side field.
type TradeRequest struct {
	Side       string          `json:"side" binding:"required,oneof=BUY SELL"`
	GoldAmount decimal.Decimal `json:"goldAmount" binding:"required"`
}

// AmountRequest is the request body for deposits and withdrawals (cash).
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SettingsPatchRequest is the allow-listed partial update for merchant
// settings. Absent fields are left unchanged; unknown fields fail BindStrict.
type SettingsPatchRequest struct {
	Spread                    *decimal.Decimal `json:"spread"`
	BuyMarkup                 *decimal.Decimal `json:"buyMarkup"`
	SellMarkup                *decimal.Decimal `json:"sellMarkup"`
	MinTradeAmount            *decimal.Decimal `json:"minTradeAmount"`
	MaxTradeAmount            *decimal.Decimal `json:"maxTradeAmount"`
	PriceUpdateIntervalSecond *int64           `json:"priceUpdateIntervalSeconds"`
}

// ListResponse wraps a paginated collection.
type ListResponse struct {
	Items  interface{} `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
