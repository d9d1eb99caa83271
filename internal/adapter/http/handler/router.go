package handler

import (
	"donation-ledger/internal/adapter/http/middleware"
	redisStore "donation-ledger/internal/adapter/storage/redis"
	"donation-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	InitiationSvc  ports.InitiationService
	ReconcileSvc   ports.ReconciliationService
	ReportingSvc   ports.ReportingService
	Gateways       GatewayResolver
	Verifier       ports.RedirectVerifier // nil = redirect rail disabled
	IdentitySvc    ports.IdentityVerifier
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	SuccessURL     string
	FailureURL     string
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

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Provider-facing routes (no auth; webhooks carry their own signature) ---
	webhookHandler := NewWebhookHandler(deps.Gateways, deps.ReconcileSvc, deps.Logger)
	r.POST("/webhook/:provider", rl("webhook"), webhookHandler.Receive)

	if deps.Verifier != nil {
		callbackHandler := NewCallbackHandler(deps.Verifier, deps.ReconcileSvc, deps.SuccessURL, deps.FailureURL, deps.Logger)
		r.GET("/callback", callbackHandler.Return)
	}

	// --- Identity-authenticated routes ---
	auth := middleware.IdentityAuth(deps.IdentitySvc, deps.Logger)
	donationHandler := NewDonationHandler(deps.InitiationSvc, deps.ReportingSvc)
	walletHandler := NewWalletHandler(deps.ReportingSvc)

	v1 := r.Group("/api/v1")

	donations := v1.Group("/donations", auth)
	{
		donations.POST("", rl("donate"), donationHandler.Donate)
		donations.GET("/:key/status", rl("status"), donationHandler.Status)
	}

	wallets := v1.Group("/wallets", auth)
	{
		wallets.GET("/me", rl("wallet"), walletHandler.GetBalance)
		wallets.GET("/me/entries", rl("wallet"), walletHandler.GetStatement)
	}

	users := v1.Group("/users", auth)
	{
		users.GET("/me/stats", rl("wallet"), walletHandler.GetStats)
	}

	return r
}
