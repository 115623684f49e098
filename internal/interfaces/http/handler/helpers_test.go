package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/byteledger/backend/internal/application/billing"
	partyapp "github.com/byteledger/backend/internal/application/party"
	printingapp "github.com/byteledger/backend/internal/application/printing"
	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/infrastructure/cache"
	"github.com/byteledger/backend/internal/infrastructure/config"
	"github.com/byteledger/backend/internal/infrastructure/persistence"
	infra "github.com/byteledger/backend/internal/infrastructure/printing"
	"github.com/byteledger/backend/internal/infrastructure/storage"
	"github.com/byteledger/backend/internal/interfaces/http/dto"
	"github.com/byteledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestServer wires the billing, customer and document handlers over an in-memory SQLite database
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, (&persistence.Database{DB: gdb}).AutoMigrate())

	documents := persistence.NewGormDocumentRepository(gdb)
	clock := func() time.Time { return testNow }

	billingService := billingapp.NewBillingService(documents, cache.NewLocalDocumentLocker(),
		billingapp.WithClock(clock),
		billingapp.WithIdempotency(cache.NewInMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig()),
	)

	registry, err := infra.NewRegistryFromConfig(config.RenderConfig{DefaultFormat: "pdf"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = registry.Close() })
	store, err := storage.NewFileSystemStorage(&storage.FileSystemStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	directory := printingapp.NewConfiguredDirectory(config.OrganizationConfig{Name: "Acme Plumbing"}, nil)
	documentService := printingapp.NewDocumentService(documents, directory,
		printing.NewEngine(printing.DefaultLayoutConfig()), registry, store, nil)
	documentService.SetClock(clock)

	billingHandler := NewBillingHandler(billingService)
	documentHandler := NewDocumentHandler(documentService)
	customerHandler := NewCustomerHandler(partyapp.NewCustomerService(persistence.NewGormCustomerRepository(gdb), nil))

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Tenant(middleware.DefaultTenantConfig()))
	api := engine.Group("/api/v1")
	api.POST("/quotes/totals", billingHandler.QuoteTotals)
	customers := api.Group("/customers")
	customers.POST("", customerHandler.Create)
	customers.GET("", customerHandler.List)
	customers.GET("/:id", customerHandler.GetByID)
	docs := api.Group("/documents")
	docs.POST("", billingHandler.CreateDocument)
	docs.GET("", billingHandler.ListDocuments)
	docs.GET("/:id", billingHandler.GetDocument)
	docs.PUT("/:id/items", billingHandler.UpdateItems)
	docs.PUT("/:id/pricing", billingHandler.UpdatePricing)
	docs.POST("/:id/send", billingHandler.SendEstimate)
	docs.POST("/:id/approve", billingHandler.ApproveEstimate)
	docs.POST("/:id/convert", billingHandler.ConvertEstimate)
	docs.POST("/:id/payments", billingHandler.RecordPayment)
	docs.GET("/:id/ledger", billingHandler.GetLedger)
	docs.POST("/:id/render", documentHandler.RenderDocument)
	docs.GET("/:id/preview", documentHandler.PreviewDocument)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success response into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}
