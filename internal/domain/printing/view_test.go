package printing

import (
	"testing"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildView_Sale(t *testing.T) {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, 30)
	doc, err := billing.NewSale(uuid.New(), billing.DocumentParams{
		Number:     "INV-0001",
		CustomerID: uuid.New(),
		IssueDate:  issue,
		Items: []billing.LineItem{
			billing.NewLineItem("Widget", billing.ItemKindProduct, 2, valueobject.MustMoney("25.00")),
			billing.NewLineItem("Install", billing.ItemKindService, 1, valueobject.MustMoney("15.00")),
		},
		Discount: billing.PercentDiscount(valueobject.MustPercent("10")),
		Tax:      billing.NewTaxSpec(valueobject.MustPercent("8")),
		Notes:    "Thanks!",
	}, &due)
	require.NoError(t, err)
	_, err = doc.RecordPayment(billing.PaymentInput{
		Amount: valueobject.MustMoney("40.00"),
		Method: billing.PaymentMethodCard,
		PaidAt: issue.AddDate(0, 0, 1),
		Notes:  "deposit",
	}, issue.AddDate(0, 0, 1))
	require.NoError(t, err)

	opts := DefaultViewOptions()
	opts.ReferenceNumber = "EST-0007"
	view := BuildView(doc, PartyCard{Name: "Northwind"}, RecipientCard{Name: "Ada"}, opts)

	assert.Equal(t, "INVOICE", view.Title)
	assert.Equal(t, []MetaField{
		{Label: "Invoice #", Value: "INV-0001"},
		{Label: "Date", Value: "Mar 1, 2026"},
		{Label: "Due date", Value: "Mar 31, 2026"},
		{Label: "Reference", Value: "EST-0007"},
		{Label: "Status", Value: "PENDING"},
	}, view.Meta)

	require.Len(t, view.Items, 2)
	assert.Equal(t, ItemRow{Name: "Widget", Kind: "Product", Quantity: "2", UnitPrice: "$25.00", Total: "$50.00"}, view.Items[0])

	assert.Equal(t, []TotalRow{
		{Label: "Subtotal", Value: "$65.00"},
		{Label: "Discount (10%)", Value: "-$6.50"},
		{Label: "Taxable base", Value: "$58.50"},
		{Label: "Tax (8%)", Value: "$4.68"},
		{Label: "Total", Value: "$63.18", Emphasis: true},
		{Label: "Paid", Value: "$40.00"},
		{Label: "Balance due", Value: "$23.18", Emphasis: true},
	}, view.Totals)

	assert.Equal(t, []PaymentRow{{Date: "Mar 2, 2026", Method: "Card", Notes: "deposit", Amount: "$40.00"}}, view.Payments)
	assert.Equal(t, "Thanks!", view.Notes)
}

func TestBuildView_EstimateHasNoLedger(t *testing.T) {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	valid := issue.AddDate(0, 0, 14)
	doc, err := billing.NewEstimate(uuid.New(), billing.DocumentParams{
		Number:     "EST-0001",
		CustomerID: uuid.New(),
		IssueDate:  issue,
	}, &valid)
	require.NoError(t, err)

	view := BuildView(doc, PartyCard{}, RecipientCard{}, DefaultViewOptions())
	assert.Equal(t, "ESTIMATE", view.Title)
	assert.Equal(t, "Estimate #", view.Meta[0].Label)
	assert.Contains(t, view.Meta, MetaField{Label: "Valid until", Value: "Mar 15, 2026"})
	assert.Empty(t, view.Payments)
	for _, row := range view.Totals {
		assert.NotEqual(t, "Balance due", row.Label)
	}
}
