package middleware

import (
	"net/http"
	"strings"

	"github.com/byteledger/backend/internal/infrastructure/logger"
	"github.com/byteledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantHeaderKey is the header naming the tenant of a request
const TenantHeaderKey = "X-Tenant-ID"

// DevTenantID is used when a request names no tenant and a default is allowed
var DevTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

const tenantUUIDKey = "tenant_uuid"

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// DefaultTenantID is used when the header is absent. uuid.Nil makes the header required.
	DefaultTenantID uuid.UUID
	// SkipPaths need no tenant, e.g. health checks
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig falls back to DevTenantID
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		DefaultTenantID: DevTenantID,
		SkipPaths:       []string{"/health", "/api/v1/health"},
	}
}

// Tenant resolves the X-Tenant-ID header into the gin context and the
// request's context logger.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if header := strings.TrimSpace(c.GetHeader(TenantHeaderKey)); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeBadRequest, "Invalid tenant ID format", GetRequestID(c)))
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Tenant identification required", GetRequestID(c)))
			return
		}

		c.Set(tenantUUIDKey, tenantID)
		c.Set(logger.GinTenantIDKey, tenantID.String())

		ctx, _ := logger.WithTenantID(c.Request.Context(), logger.FromContext(c.Request.Context()), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		log.Debug("Tenant identified", zap.String("tenant_id", tenantID.String()))
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by Tenant, or uuid.Nil
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(tenantUUIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
