package handler

import (
	"stock-trade-ledger/internal/adapter/http/middleware"
	redisStore "stock-trade-ledger/internal/adapter/storage/redis"
	"stock-trade-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 64 << 10

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TradeSvc       ports.TradeService
	OrderPageSvc   ports.OrderPageService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	orderHandler := NewOrderHandler(deps.TradeSvc, deps.OrderPageSvc)
	tradeHandler := NewTradeHandler(deps.TradeSvc)

	v1 := r.Group("/api/v1", jwtAuth)

	orders := v1.Group("/orders")
	{
		orders.POST("", rl("orders"), orderHandler.PlaceOrder)
		orders.POST("/preview", rl("orders_preview"), orderHandler.PreviewOrder)
		orders.GET("/page/:symbol", rl("read"), orderHandler.GetOrderPage)
	}

	v1.GET("/trades", rl("read"), tradeHandler.ListTrades)

	return r
}
