package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDocumentRepository(t *testing.T) (*GormDocumentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormDocumentRepository(gormDB), mock, mockDB
}

func TestGormDocumentRepository_SaveWithLock_SQL(t *testing.T) {
	updateSQL := `UPDATE "billing_documents" SET .* WHERE .*id = \$\d+ AND tenant_id = \$\d+ AND version = \$\d+`
	countSQL := `SELECT count\(\*\) FROM "billing_documents" WHERE .*id = \$1 AND tenant_id = \$2`

	t.Run("commits when the version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()
		doc := newTestSale(t, uuid.New(), "INV-1")

		mock.ExpectBegin()
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveWithLock(context.Background(), doc, doc.Version))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()
		doc := newTestSale(t, uuid.New(), "INV-2")

		mock.ExpectBegin()
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(countSQL).
			WithArgs(doc.ID, doc.TenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), doc, doc.Version-1)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()
		doc := newTestSale(t, uuid.New(), "INV-3")

		mock.ExpectBegin()
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(countSQL).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), doc, doc.Version)
		assert.ErrorIs(t, err, billing.ErrDocumentNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_CreateAndFind(t *testing.T) {
	repo := NewGormDocumentRepository(newSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	sale := newTestSale(t, tenantID, "INV-0001")
	require.NoError(t, repo.Create(ctx, sale))

	t.Run("finds by id within tenant", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-0001", found.Number)
		assert.Equal(t, billing.DocumentKindSale, found.Kind)
		assert.Equal(t, int64(6600), found.Totals.Total.Cents())
		assert.Len(t, found.Items, 2)
		assert.Equal(t, sale.Items[0].ID, found.Items[0].ID)
		assert.True(t, found.IssueDate.Equal(testIssueDate))
		require.NotNil(t, found.DueDate)
		assert.True(t, found.DueDate.Equal(*sale.DueDate))
		assert.Equal(t, sale.Version, found.Version)
	})

	t.Run("other tenant cannot see it", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), sale.ID)
		assert.ErrorIs(t, err, billing.ErrDocumentNotFound)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, tenantID, "INV-0001")
		require.NoError(t, err)
		assert.Equal(t, sale.ID, found.ID)

		exists, err := repo.ExistsByNumber(ctx, tenantID, "INV-0001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByNumber(ctx, uuid.New(), "INV-0001")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate number in the same tenant is rejected", func(t *testing.T) {
		err := repo.Create(ctx, newTestSale(t, tenantID, "INV-0001"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		require.NoError(t, repo.Create(ctx, newTestSale(t, uuid.New(), "INV-0001")))
	})
}

func TestGormDocumentRepository_SaveWithLock(t *testing.T) {
	repo := NewGormDocumentRepository(newSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	sale := newTestSale(t, tenantID, "INV-0002")
	require.NoError(t, repo.Create(ctx, sale))

	// Two writers load the same version.
	first, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	second, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)

	payment := billing.PaymentInput{
		Amount: valueobject.MustMoney("5.00"),
		Method: billing.PaymentMethodCard,
		PaidAt: testIssueDate.Add(time.Hour),
	}

	expected := first.Version
	_, err = first.RecordPayment(payment, testIssueDate)
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, first, expected))

	expected = second.Version
	_, err = second.RecordPayment(payment, testIssueDate)
	require.NoError(t, err)
	err = repo.SaveWithLock(ctx, second, expected)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Payments, 1)
	assert.Equal(t, int64(500), stored.Ledger().PaidAmount.Cents())
	assert.Equal(t, first.Version, stored.Version)
	assert.True(t, stored.Payments[0].PaidAt.Equal(payment.PaidAt))
}

func TestGormDocumentRepository_SaveConversion(t *testing.T) {
	repo := NewGormDocumentRepository(newSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	estimate := newTestEstimate(t, tenantID, "EST-0001")
	require.NoError(t, repo.Create(ctx, estimate))

	loaded := estimate.Version
	now := testIssueDate.Add(time.Hour)
	require.NoError(t, estimate.Send(now))
	require.NoError(t, estimate.Approve(now))
	sale, err := estimate.ConvertToSale("INV-0100", now, nil, now)
	require.NoError(t, err)

	t.Run("persists both documents", func(t *testing.T) {
		require.NoError(t, repo.SaveConversion(ctx, estimate, loaded, sale))

		storedEstimate, err := repo.FindByIDForTenant(ctx, tenantID, estimate.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StatusConverted, storedEstimate.Stage)
		require.NotNil(t, storedEstimate.LinkedDocumentID)
		assert.Equal(t, sale.ID, *storedEstimate.LinkedDocumentID)

		storedSale, err := repo.FindByNumber(ctx, tenantID, "INV-0100")
		require.NoError(t, err)
		require.NotNil(t, storedSale.LinkedDocumentID)
		assert.Equal(t, estimate.ID, *storedSale.LinkedDocumentID)
	})

	t.Run("rolls back the sale when the estimate is stale", func(t *testing.T) {
		other := newTestEstimate(t, tenantID, "EST-0002")
		require.NoError(t, repo.Create(ctx, other))
		require.NoError(t, other.Send(now))
		require.NoError(t, other.Approve(now))
		otherSale, err := other.ConvertToSale("INV-0101", now, nil, now)
		require.NoError(t, err)

		err = repo.SaveConversion(ctx, other, other.Version, otherSale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		exists, err := repo.ExistsByNumber(ctx, tenantID, "INV-0101")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormDocumentRepository_FindAllForTenant(t *testing.T) {
	repo := NewGormDocumentRepository(newSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	for _, number := range []string{"INV-A", "INV-B", "INV-C"} {
		require.NoError(t, repo.Create(ctx, newTestSale(t, tenantID, number)))
	}
	estimate := newTestEstimate(t, tenantID, "EST-A")
	require.NoError(t, repo.Create(ctx, estimate))
	require.NoError(t, repo.Create(ctx, newTestSale(t, uuid.New(), "INV-OTHER")))

	t.Run("filters by kind and sorts by number", func(t *testing.T) {
		kind := billing.DocumentKindSale
		filter := billing.DocumentFilter{
			Filter: shared.Filter{Page: 1, PageSize: 2, OrderBy: "number", OrderDir: "asc"},
			Kind:   &kind,
		}
		docs, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "INV-A", docs[0].Number)
		assert.Equal(t, "INV-B", docs[1].Number)

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("filters by status and customer", func(t *testing.T) {
		status := billing.StatusDraft
		docs, err := repo.FindAllForTenant(ctx, tenantID, billing.DocumentFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "EST-A", docs[0].Number)

		docs, err = repo.FindAllForTenant(ctx, tenantID, billing.DocumentFilter{CustomerID: &estimate.CustomerID})
		require.NoError(t, err)
		require.Len(t, docs, 1)
	})

	t.Run("searches number case-insensitively", func(t *testing.T) {
		docs, err := repo.FindAllForTenant(ctx, tenantID, billing.DocumentFilter{Filter: shared.Filter{Search: "inv-c"}})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "INV-C", docs[0].Number)
	})
}
