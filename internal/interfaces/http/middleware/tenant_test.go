package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTenantRouter(cfg TenantConfig) *gin.Engine {
	router := gin.New()
	router.Use(Tenant(cfg))
	router.GET("/api/v1/documents", func(c *gin.Context) {
		c.String(http.StatusOK, GetTenantID(c).String())
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, GetTenantID(c).String())
	})
	return router
}

func TestTenant(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name       string
		cfg        TenantConfig
		header     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "header wins",
			cfg:        DefaultTenantConfig(),
			header:     tenantID.String(),
			path:       "/api/v1/documents",
			wantStatus: http.StatusOK,
			wantBody:   tenantID.String(),
		},
		{
			name:       "default tenant when header absent",
			cfg:        DefaultTenantConfig(),
			path:       "/api/v1/documents",
			wantStatus: http.StatusOK,
			wantBody:   DevTenantID.String(),
		},
		{
			name:       "malformed header",
			cfg:        DefaultTenantConfig(),
			header:     "not-a-uuid",
			path:       "/api/v1/documents",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "required without default",
			cfg:        TenantConfig{},
			path:       "/api/v1/documents",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "skipped path",
			cfg:        TenantConfig{SkipPaths: []string{"/health"}},
			path:       "/health",
			wantStatus: http.StatusOK,
			wantBody:   uuid.Nil.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(TenantHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			newTenantRouter(tt.cfg).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
