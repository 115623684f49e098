package billing

import (
	"testing"
	"time"

	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issueDate = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testParams(number string) DocumentParams {
	return DocumentParams{
		Number:     number,
		CustomerID: uuid.New(),
		IssueDate:  issueDate,
		Items:      scenarioItems(),
		Discount:   AmountDiscount(valueobject.MustMoney("5.00")),
		Tax:        NewTaxSpec(valueobject.MustPercent("10")),
	}
}

func createTestSale(t *testing.T, dueDate *time.Time) *Document {
	t.Helper()
	doc, err := NewSale(uuid.New(), testParams("INV-0001"), dueDate)
	require.NoError(t, err)
	return doc
}

func createTestEstimate(t *testing.T, validUntil *time.Time) *Document {
	t.Helper()
	doc, err := NewEstimate(uuid.New(), testParams("EST-0001"), validUntil)
	require.NoError(t, err)
	return doc
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestNewSale(t *testing.T) {
	doc := createTestSale(t, nil)

	assert.Equal(t, DocumentKindSale, doc.Kind)
	assert.Equal(t, StatusPending, doc.Status)
	assert.Equal(t, "66.00", doc.Totals.Total.String())
	assert.Empty(t, doc.Payments)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, valueobject.USD, doc.Currency)
	require.Len(t, doc.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeDocumentCreated, doc.GetDomainEvents()[0].EventType())
}

func TestNewDocument_Validation(t *testing.T) {
	t.Run("missing number", func(t *testing.T) {
		params := testParams(" ")
		_, err := NewSale(uuid.New(), params, nil)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "number", vErr.Field)
	})

	t.Run("missing item name", func(t *testing.T) {
		params := testParams("INV-1")
		params.Items = []LineItem{NewLineItem("", ItemKindProduct, 1, valueobject.MustMoney("1"))}
		_, err := NewSale(uuid.New(), params, nil)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("due date before issue", func(t *testing.T) {
		_, err := NewSale(uuid.New(), testParams("INV-1"), datePtr(issueDate.AddDate(0, 0, -1)))
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "due_date", vErr.Field)
	})

	t.Run("calculator error surfaces", func(t *testing.T) {
		params := testParams("INV-1")
		params.Tax = NewTaxSpec(valueobject.MustPercent("-3"))
		_, err := NewSale(uuid.New(), params, nil)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "tax.rate_percent", vErr.Field)
	})
}

func TestDocument_ReplaceItems(t *testing.T) {
	doc := createTestSale(t, nil)

	err := doc.ReplaceItems([]LineItem{NewLineItem("Cable", ItemKindProduct, 4, valueobject.MustMoney("2.50"))}, issueDate)
	require.NoError(t, err)
	assert.Equal(t, "10.00", doc.Totals.Subtotal.String())
	assert.Equal(t, "5.50", doc.Totals.Total.String())
	assert.Equal(t, 2, doc.Version)
}

func TestDocument_RepriceBelowPaidIsRejected(t *testing.T) {
	doc := createTestSale(t, nil)
	_, err := doc.RecordPayment(PaymentInput{Amount: valueobject.MustMoney("40.00"), Method: PaymentMethodCash, PaidAt: issueDate}, issueDate)
	require.NoError(t, err)

	before := doc.Totals
	err = doc.ReplaceItems([]LineItem{NewLineItem("Cable", ItemKindProduct, 1, valueobject.MustMoney("2.50"))}, issueDate)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, before, doc.Totals)
	assert.Len(t, doc.Items, 2)
}

func TestDocument_PaidSaleIsLocked(t *testing.T) {
	doc := createTestSale(t, nil)
	_, err := doc.RecordPayment(PaymentInput{Amount: valueobject.MustMoney("66.00"), Method: PaymentMethodCard, PaidAt: issueDate}, issueDate)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, doc.Status)

	err = doc.ReplaceItems(scenarioItems(), issueDate)
	assert.ErrorIs(t, err, ErrDocumentLocked)

	err = doc.UpdatePricing(NoDiscount(), TaxSpec{}, issueDate)
	assert.ErrorIs(t, err, ErrDocumentLocked)
}

func TestDocument_EstimateLifecycle(t *testing.T) {
	est := createTestEstimate(t, datePtr(issueDate.AddDate(0, 1, 0)))
	assert.Equal(t, StatusDraft, est.Status)

	assert.ErrorIs(t, est.Approve(issueDate), ErrInvalidTransition)

	require.NoError(t, est.Send(issueDate))
	assert.Equal(t, StatusSent, est.Status)
	assert.NotNil(t, est.SentAt)

	require.NoError(t, est.Approve(issueDate.AddDate(0, 0, 1)))
	assert.Equal(t, StatusApproved, est.Status)

	sale, err := est.ConvertToSale("INV-0100", issueDate.AddDate(0, 0, 2), datePtr(issueDate.AddDate(0, 0, 32)), issueDate.AddDate(0, 0, 2))
	require.NoError(t, err)

	assert.Equal(t, StatusConverted, est.Status)
	require.NotNil(t, est.LinkedDocumentID)
	assert.Equal(t, sale.ID, *est.LinkedDocumentID)
	require.NotNil(t, sale.LinkedDocumentID)
	assert.Equal(t, est.ID, *sale.LinkedDocumentID)

	assert.Equal(t, DocumentKindSale, sale.Kind)
	assert.Equal(t, StatusPending, sale.Status)
	assert.Equal(t, est.Totals, sale.Totals)
	assert.Equal(t, est.CustomerID, sale.CustomerID)
	assert.NotEqual(t, est.Items[0].ID, sale.Items[0].ID)

	t.Run("converted estimate is locked", func(t *testing.T) {
		err := est.ReplaceItems(scenarioItems(), issueDate)
		assert.ErrorIs(t, err, ErrDocumentLocked)
	})

	t.Run("converted estimate cannot convert again", func(t *testing.T) {
		_, err := est.ConvertToSale("INV-0101", issueDate, nil, issueDate)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestDocument_ExpiredEstimateCannotTransition(t *testing.T) {
	est := createTestEstimate(t, datePtr(issueDate.AddDate(0, 0, 7)))
	later := issueDate.AddDate(0, 0, 8)

	assert.Equal(t, StatusExpired, est.Refresh(later))
	assert.ErrorIs(t, est.Send(later), ErrInvalidTransition)
	_, err := est.ConvertToSale("INV-1", later, nil, later)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDocument_EstimateRejectsPayments(t *testing.T) {
	est := createTestEstimate(t, nil)
	_, err := est.RecordPayment(PaymentInput{Amount: valueobject.MustMoney("1"), Method: PaymentMethodCash, PaidAt: issueDate}, issueDate)
	assert.ErrorIs(t, err, ErrPaymentsNotAccepted)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
