package handler

import (
	"gold-trading-gateway/internal/adapter/http/middleware"
	"gold-trading-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PricingSvc     ports.PricingService
	TradingSvc     ports.TradingService
	FundsSvc       ports.FundsService
	AdminSvc       ports.AdminService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	UserRepo       ports.UserRepository
	AdminUsers     []string
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	priceHandler := NewPriceHandler(deps.PricingSvc, deps.ReportingSvc)
	prices := v1.Group("/prices")
	{
		prices.GET("/current", priceHandler.GetCurrent)
		prices.GET("/spot", priceHandler.GetSpot)
		prices.GET("/history", priceHandler.GetHistory)
	}

	// --- Authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	tradeHandler := NewTradeHandler(deps.TradingSvc)
	trades := v1.Group("/trades", jwtAuth)
	{
		trades.POST("", tradeHandler.Execute)
	}

	walletHandler := NewWalletHandler(deps.FundsSvc, deps.ReportingSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", walletHandler.GetBalance)
		wallets.POST("/deposit", walletHandler.Deposit)
		wallets.POST("/withdraw", walletHandler.Withdraw)
		wallets.GET("/transactions", walletHandler.ListTransactions)
		wallets.GET("/orders", walletHandler.ListOrders)
	}

	adminHandler := NewAdminHandler(deps.AdminSvc)
	adminOnly := middleware.AdminOnly(deps.UserRepo, deps.AdminUsers, deps.Logger)
	admin := v1.Group("/admin", jwtAuth, adminOnly)
	{
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PATCH("/settings", adminHandler.UpdateSettings)
		admin.POST("/orders/:id/cancel", adminHandler.CancelOrder)
	}

	return r
}
