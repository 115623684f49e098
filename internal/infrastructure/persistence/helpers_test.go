package persistence

import (
	"testing"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testIssueDate = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newSQLiteDB opens a private in-memory database with the billing schema
func newSQLiteDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, (&Database{DB: gdb}).AutoMigrate())
	return gdb
}

func newTestSale(t *testing.T, tenantID uuid.UUID, number string) *billing.Document {
	t.Helper()
	due := testIssueDate.AddDate(0, 0, 30)
	doc, err := billing.NewSale(tenantID, billing.DocumentParams{
		Number:     number,
		CustomerID: uuid.New(),
		Currency:   valueobject.USD,
		IssueDate:  testIssueDate,
		Items: []billing.LineItem{
			billing.NewLineItem("Widget", billing.ItemKindProduct, 2, valueobject.MustMoney("10.00")),
			billing.NewLineItem("Labor", billing.ItemKindService, 1, valueobject.MustMoney("40.00")),
		},
		Discount: billing.PercentDiscount(valueobject.MustPercent("10")),
		Tax:      billing.NewTaxSpec(valueobject.MustPercent("8")),
	}, &due)
	require.NoError(t, err)
	return doc
}

func newTestEstimate(t *testing.T, tenantID uuid.UUID, number string) *billing.Document {
	t.Helper()
	validUntil := testIssueDate.AddDate(0, 0, 14)
	doc, err := billing.NewEstimate(tenantID, billing.DocumentParams{
		Number:     number,
		CustomerID: uuid.New(),
		Currency:   valueobject.USD,
		IssueDate:  testIssueDate,
		Items: []billing.LineItem{
			billing.NewLineItem("Install", billing.ItemKindService, 1, valueobject.MustMoney("120.00")),
		},
		Discount: billing.NoDiscount(),
		Tax:      billing.NewTaxSpec(valueobject.MustPercent("0")),
	}, &validUntil)
	require.NoError(t, err)
	return doc
}
