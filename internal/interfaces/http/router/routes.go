package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/wimotos/backend/internal/domain/identity"
	"github.com/wimotos/backend/internal/infrastructure/auth"
	"github.com/wimotos/backend/internal/infrastructure/config"
	"github.com/wimotos/backend/internal/infrastructure/logger"
	"github.com/wimotos/backend/internal/interfaces/http/handler"
	"github.com/wimotos/backend/internal/interfaces/http/middleware"
)

// Login attempts allowed per client IP per minute
const loginAttemptsPerMinute = 10

// Handlers are the HTTP handlers of the API
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Clients    *handler.ClientHandler
	Products   *handler.ProductHandler
	Sales      *handler.SaleHandler
	Promissory *handler.PromissoryHandler
	Finance    *handler.FinanceHandler
	Health     *handler.HealthHandler
}

// EngineConfig is what the engine needs beyond the handlers
type EngineConfig struct {
	HTTP        config.HTTPConfig
	Swagger     bool
	Telemetry   bool
	ServiceName string
	JWT         *auth.JWTService
	Logger      *zap.Logger
	// HSTS turns on Strict-Transport-Security. Production sits behind TLS.
	HSTS bool
}

// NewEngine builds the gin engine with the middleware chain and every route
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	if cfg.HSTS {
		security.HSTSMaxAge = 365 * 24 * time.Hour
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.Tracing(cfg.ServiceName, cfg.Telemetry),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Telemetry),
		middleware.CORSWithConfig(cors),
		middleware.SecureWithConfig(security),
		middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			MaxBytes:       cfg.HTTP.MaxBodySize,
			UploadMaxBytes: cfg.HTTP.MaxUploadSize,
		}),
	)

	engine.GET("/health", h.Health.Health)
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	jwtCfg := middleware.DefaultJWTConfig(cfg.JWT)
	jwtCfg.Logger = cfg.Logger
	r := NewRouter(engine,
		WithRouteLogger(cfg.Logger),
		WithAPIMiddleware(
			middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
			middleware.TracingAttributeInjector(),
		))

	loginLimiter := middleware.NewRateLimiter(loginAttemptsPerMinute, time.Minute)
	r.Register(NewDomainGroup("/auth").
		POST("/login", middleware.RateLimit(loginLimiter), h.Auth.Login))

	r.Register(NewDomainGroup("/users").
		POST("", middleware.RequireRole(string(identity.RoleAdmin)), h.Users.Create).
		GET("", h.Users.List).
		GET("/:id", h.Users.Get))

	r.Register(NewDomainGroup("/clients").
		POST("", h.Clients.Create).
		GET("", h.Clients.List).
		GET("/:id", h.Clients.Get))

	r.Register(NewDomainGroup("/products").
		POST("", h.Products.Create).
		GET("", h.Products.List).
		GET("/:id", h.Products.Get).
		PUT("/:id", h.Products.Update).
		POST("/:id/image", h.Products.UploadImage))

	r.Register(NewDomainGroup("/sales").
		POST("", h.Sales.Create).
		GET("", h.Sales.List).
		GET("/:id", h.Sales.Get).
		PATCH("/:id/status", h.Sales.UpdateStatus))

	r.Register(NewDomainGroup("/promissories").
		GET("", h.Promissory.List).
		GET("/:id", h.Promissory.Get).
		POST("/:id/issue", h.Promissory.Issue).
		PATCH("/:id/cancel", h.Promissory.Cancel).
		GET("/:id/booklet", h.Promissory.Booklet))

	r.Register(NewDomainGroup("/installments").
		GET("", h.Promissory.ListInstallments).
		GET("/:id", h.Promissory.GetInstallment).
		POST("/:id/pay", h.Promissory.PayInstallment))

	r.Register(NewDomainGroup("/finance").
		POST("", h.Finance.Create).
		GET("", h.Finance.List).
		GET("/:id", h.Finance.Get).
		PUT("/:id", h.Finance.Update).
		POST("/:id/pay", h.Finance.Pay))

	r.Setup()
	return engine
}
