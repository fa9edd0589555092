package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Trading (TRD) ----

// ErrAmountOutOfRange reports a trade amount outside the configured bounds.
func ErrAmountOutOfRange(min, max string) *AppError {
	return New("TRD_001", fmt.Sprintf("Trade amount must be between %s and %s grams", min, max), http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("TRD_002", "Insufficient cash balance in wallet", http.StatusPaymentRequired)
}

func ErrInsufficientHoldings() *AppError {
	return New("TRD_003", "Insufficient gold holdings in wallet", http.StatusPaymentRequired)
}

func ErrWalletNotFound() *AppError {
	return New("TRD_004", "Wallet not found", http.StatusNotFound)
}

func ErrOrderNotFound() *AppError {
	return New("TRD_005", "Order not found", http.StatusNotFound)
}

func ErrOrderNotCancellable() *AppError {
	return New("TRD_006", "Only pending orders can be cancelled", http.StatusConflict)
}

// ---- Pricing (PRC) ----

func ErrPriceUnavailable(err error) *AppError {
	return Wrap("PRC_001", "Price is currently unavailable", http.StatusServiceUnavailable, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_004", "Insufficient privileges", http.StatusForbidden)
}

// ---- System & Infrastructure (SYS) ----

func ErrStoreUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Storage temporarily unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("TRD_000", message, http.StatusBadRequest)
}
