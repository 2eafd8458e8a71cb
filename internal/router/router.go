package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"ticket-ledger/internal/config"
	"ticket-ledger/internal/handler"
	"ticket-ledger/internal/middleware"
)

// RegisterRoutes wires the full HTTP surface: unauthenticated reads
// and auth endpoints, JWT-protected ledger mutations, the
// unconditional payment rejection, plus health and metrics.
func RegisterRoutes(e *echo.Echo, cfg config.Config, a *handler.AuthHandler, l *handler.LedgerHandler, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Account endpoints; no session required.
	auth := e.Group("/v1/auth")
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)

	// Read queries are public and cacheable: they return copies of
	// committed ledger state and carry no caller-specific data.
	reads := e.Group("/v1")
	reads.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	reads.GET("/events/:id", l.GetEvent)
	reads.GET("/tickets/:id", l.GetTicket)
	reads.GET("/owners/:identity/tickets", l.TicketsOf)

	// Mutating ledger operations require an authenticated identity and
	// are rate limited per caller.
	mut := e.Group("/v1")
	mut.Use(middleware.JWTAuth(cfg.JWTSecret))
	mut.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	mut.POST("/events", l.CreateEvent)
	mut.POST("/events/:id/tickets", l.BuyTicket)
	mut.POST("/events/:id/withdraw", l.WithdrawFunds)
	mut.POST("/events/:id/close", l.CloseEvent)
	mut.POST("/tickets/:id/transfer", l.TransferTicket)

	// Direct payments are rejected no matter who sends them, so the
	// route sits outside the authenticated group.
	e.POST("/v1/payments", handler.RejectDirectPayment)
}
