package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tableserve-backend/internal/adapter/http/middleware"
	"tableserve-backend/internal/core/ports"
	"tableserve-backend/pkg/response"
)

const maxRequestBody = 1 << 20 // 1 MiB

// RouterDeps collects everything the router wires together.
type RouterDeps struct {
	Auth       *AuthHandler
	Payment    *PaymentHandler
	Wallet     *WalletHandler
	Booking    *BookingHandler
	Health     *HealthHandler
	Tokens     ports.TokenService
	RateLimits middleware.RateLimitCounter
	Logger     zerolog.Logger
	Mode       string
}

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(deps.Mode)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Logger),
		middleware.RequestLogger(deps.Logger),
		middleware.MaxBodySize(maxRequestBody),
	)
	r.NoRoute(response.NotFoundHandler)

	r.GET("/health", deps.Health.Check)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
	}

	// Settlement triggers arrive in storms (redirect, deep link, resume
	// poll, postMessage for the same payment), so the budget is generous
	// but bounded.
	settleLimit := middleware.RateLimit(deps.RateLimits, middleware.RateLimitRule{
		Name: "settle", Limit: 60, Window: time.Minute,
	}, deps.Logger)
	topupLimit := middleware.RateLimit(deps.RateLimits, middleware.RateLimitRule{
		Name: "topup", Limit: 10, Window: time.Minute,
	}, deps.Logger)
	bookingPayLimit := middleware.RateLimit(deps.RateLimits, middleware.RateLimitRule{
		Name: "booking-payment", Limit: 10, Window: time.Minute,
	}, deps.Logger)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(deps.Tokens))
	{
		authed.POST("/payments/settle", settleLimit, deps.Payment.Settle)

		authed.GET("/wallet", deps.Wallet.GetWallet)
		authed.POST("/wallet/topup", topupLimit, deps.Wallet.Topup)
		authed.GET("/wallet/transactions", deps.Wallet.ListTransactions)
		authed.POST("/wallets/:id/reconcile", deps.Wallet.Reconcile)

		authed.POST("/bookings", deps.Booking.Reserve)
		authed.POST("/bookings/initiate-payment", bookingPayLimit, deps.Booking.InitiatePayment)
		authed.POST("/bookings/confirm", deps.Booking.Confirm)
		authed.POST("/bookings/pay-with-wallet", deps.Booking.PayWithWallet)
		authed.GET("/bookings", deps.Booking.List)
		authed.DELETE("/bookings/:id", deps.Booking.Cancel)
	}

	return r
}
