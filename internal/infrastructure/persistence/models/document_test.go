package models

import (
	"testing"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentModel_RoundTrip(t *testing.T) {
	issue := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, 30)
	sale, err := billing.NewSale(uuid.New(), billing.DocumentParams{
		Number:     "INV-0001",
		CustomerID: uuid.New(),
		Currency:   valueobject.USD,
		IssueDate:  issue,
		Items: []billing.LineItem{
			billing.NewLineItem("Widget", billing.ItemKindProduct, 2, valueobject.MustMoney("10.00")),
			billing.NewLineItem("Labor", billing.ItemKindService, 1, valueobject.MustMoney("40.00")),
		},
		Discount: billing.PercentDiscount(valueobject.MustPercent("10")),
		Tax:      billing.NewTaxSpec(valueobject.MustPercent("8")),
		Notes:    "Thanks",
	}, &due)
	require.NoError(t, err)
	_, err = sale.RecordPayment(billing.PaymentInput{
		Amount: valueobject.MustMoney("20.00"),
		Method: billing.PaymentMethodCash,
		PaidAt: issue,
	}, issue)
	require.NoError(t, err)

	m := DocumentModelFromDomain(sale)
	assert.Equal(t, int64(6000), m.Subtotal.Cents())
	assert.Equal(t, int64(6600), m.TotalAmount.Cents())
	assert.Equal(t, int64(2000), m.PaidAmount.Cents())
	assert.Equal(t, sale.Version, m.Version)

	back := m.ToDomain()
	assert.Equal(t, sale.ID, back.ID)
	assert.Equal(t, sale.TenantID, back.TenantID)
	assert.Equal(t, sale.Items, back.Items)
	assert.Equal(t, sale.Discount.Type, back.Discount.Type)
	assert.True(t, sale.Discount.Percent.Equals(back.Discount.Percent))
	assert.True(t, sale.Totals.Total.Equals(back.Totals.Total))
	assert.Equal(t, sale.Payments, back.Payments)
	assert.Equal(t, sale.Status, back.Status)

	cols := m.UpdateColumns()
	assert.Equal(t, m.Version, cols["version"])
	assert.NotContains(t, cols, "tenant_id")
	assert.NotContains(t, cols, "number")
}

func TestLineItems_ValueScan(t *testing.T) {
	items := LineItems{billing.NewLineItem("Widget", billing.ItemKindProduct, 3, valueobject.MustMoney("1.25"))}
	v, err := items.Value()
	require.NoError(t, err)

	var back LineItems
	require.NoError(t, back.Scan(v))
	assert.Equal(t, items, back)

	var empty LineItems
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)

	nilValue, err := LineItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)

	assert.Error(t, back.Scan(42))
}
