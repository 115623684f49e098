package router

import (
	"github.com/byteledger/backend/internal/infrastructure/config"
	"github.com/byteledger/backend/internal/infrastructure/logger"
	"github.com/byteledger/backend/internal/interfaces/http/handler"
	"github.com/byteledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig holds what the HTTP engine needs besides handlers
type EngineConfig struct {
	ServiceName string
	HTTP        config.HTTPConfig
	Tenant      middleware.TenantConfig
	// TracingEnabled starts a server span per request
	TracingEnabled bool
	// Meter records HTTP metrics; nil disables them
	Meter  metric.Meter
	Logger *zap.Logger
}

// Handlers are the endpoint groups mounted by NewEngine
type Handlers struct {
	Billing   *handler.BillingHandler
	Documents *handler.DocumentHandler
	Customers *handler.CustomerHandler
	Health    *handler.HealthHandler
}

// NewEngine builds the gin engine with the global middleware chain and every route.
//
// Order: recovery, request id, CORS, security headers, tracing, access log,
// metrics, body limit. Tenant resolution and span enrichment run on /api only.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.Secure(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		logger.GinMiddleware(log),
		httpMetrics,
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	tenantCfg := cfg.Tenant
	if tenantCfg.Logger == nil {
		tenantCfg.Logger = log
	}

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}

	r := NewRouter(engine, WithGroupMiddleware(middleware.Tenant(tenantCfg), middleware.SpanEnricher()))
	if h.Billing != nil {
		r.Register(QuoteRoutes(h.Billing)).Register(DocumentRoutes(h.Billing, h.Documents))
	}
	if h.Customers != nil {
		r.Register(CustomerRoutes(h.Customers))
	}
	r.Setup()
	return engine, nil
}
