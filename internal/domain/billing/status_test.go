package billing

import (
	"testing"
	"time"

	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus_Sale(t *testing.T) {
	due := issueDate.AddDate(0, 0, 30)
	beforeDue := issueDate.AddDate(0, 0, 10)
	afterDue := issueDate.AddDate(0, 0, 31)

	doc := createTestSale(t, &due)
	assert.Equal(t, StatusPending, DeriveStatus(doc, beforeDue))
	assert.Equal(t, StatusPending, DeriveStatus(doc, due))
	assert.Equal(t, StatusOverdue, DeriveStatus(doc, afterDue))

	_, err := AppendPayment(doc, pay("30.00"))
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, DeriveStatus(doc, afterDue))

	_, err = AppendPayment(doc, pay("36.00"))
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, DeriveStatus(doc, afterDue))
	assert.Equal(t, StatusPaid, DeriveStatus(doc, beforeDue))
}

func TestDeriveStatus_ZeroTotalSale(t *testing.T) {
	params := testParams("INV-0")
	params.Discount = PercentDiscount(valueobject.MustPercent("100"))
	params.Tax = TaxSpec{}
	doc, err := NewSale(uuid.New(), params, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, doc.Status)

	params.Items = nil
	empty, err := NewSale(uuid.New(), params, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, empty.Status)
	assert.False(t, empty.IsLocked(issueDate))

	due := issueDate.AddDate(0, 0, 7)
	empty.DueDate = &due
	assert.Equal(t, StatusPending, DeriveStatus(empty, due.AddDate(0, 1, 0)))
}

func TestDeriveStatus_Estimate(t *testing.T) {
	validUntil := issueDate.AddDate(0, 0, 14)
	est := createTestEstimate(t, &validUntil)

	assert.Equal(t, StatusDraft, DeriveStatus(est, issueDate))
	assert.Equal(t, StatusExpired, DeriveStatus(est, validUntil.Add(time.Second)))

	require.NoError(t, est.Send(issueDate))
	require.NoError(t, est.Approve(issueDate))
	assert.Equal(t, StatusApproved, DeriveStatus(est, issueDate))
	assert.Equal(t, StatusExpired, DeriveStatus(est, validUntil.AddDate(0, 0, 1)))

	_, err := est.ConvertToSale("INV-9", issueDate, nil, issueDate)
	require.NoError(t, err)
	assert.Equal(t, StatusConverted, DeriveStatus(est, validUntil.AddDate(1, 0, 0)))
}

func TestDeriveStatus_IsPure(t *testing.T) {
	due := issueDate.AddDate(0, 0, 30)
	doc := createTestSale(t, &due)
	_, err := AppendPayment(doc, pay("10.00"))
	require.NoError(t, err)

	now := issueDate.AddDate(0, 2, 0)
	version := doc.Version
	first := DeriveStatus(doc, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DeriveStatus(doc, now))
	}
	assert.Equal(t, version, doc.Version)
	assert.Len(t, doc.Payments, 1)
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status     Status
		isTerminal bool
	}{
		{StatusDraft, false},
		{StatusSent, false},
		{StatusApproved, false},
		{StatusExpired, true},
		{StatusConverted, true},
		{StatusPending, false},
		{StatusOverdue, false},
		{StatusPaid, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
			assert.True(t, tt.status.IsValid())
		})
	}
	assert.False(t, Status("UNKNOWN").IsValid())
}
