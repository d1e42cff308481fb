package routes

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	Checkout    *handler.CheckoutHandler
	Callback    *handler.CallbackHandler
	Receipt     *handler.ReceiptHandler
	Transaction *handler.TransactionHandler
	Item        *handler.ItemHandler
	Health      *handler.HealthHandler
	Metrics     http.Handler // nil disables /metrics
}

// Options configures the guards placed in front of cashier routes
type Options struct {
	Auth        middleware.AuthConfig
	RateLimiter *middleware.RateLimiter // nil disables checkout throttling
	MetricsPath string
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers, opts Options, logger coreport.Logger) {
	router.GET("/healthz", h.Health.Health)
	if h.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(h.Metrics))
	}

	// GET /pos/checkout/:transaction/:result is hit by the provider redirect, not the cashier
	router.GET("/pos/checkout/:transaction/:result", h.Callback.Callback)

	pos := router.Group("/api/pos")
	pos.Use(middleware.CashierAuth(opts.Auth, logger))
	{
		checkout := []gin.HandlerFunc{h.Checkout.Checkout}
		if opts.RateLimiter != nil {
			checkout = append([]gin.HandlerFunc{opts.RateLimiter.Middleware(logger)}, checkout...)
		}
		pos.POST("/checkout", checkout...)

		pos.GET("/receipts/:receiptNumber", h.Receipt.GetByReceiptNumber)
		pos.GET("/transactions/:id", h.Transaction.GetTransaction)
		pos.GET("/transactions/:id/receipt", h.Receipt.GetByTransaction)
		pos.POST("/transactions/:id/reconcile", h.Transaction.Reconcile)
		pos.GET("/items/:id", h.Item.GetItem)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(
	router *gin.Engine,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
	metrics coreport.Metrics,
	allowedOrigins []string,
) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, timeProvider))
	if metrics != nil {
		router.Use(middleware.Metrics(metrics, timeProvider))
	}
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(allowedOrigins...))
}
