package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	billingapp "github.com/byteledger/backend/internal/application/billing"
	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteJSON = `{
  "items": [
    {"name": "Widget", "quantity": 2, "unit_price": "10.00"},
    {"name": "Install", "kind": "SERVICE", "quantity": 1, "unit_price": "40.00"}
  ],
  "discount": {"type": "PERCENT", "percent": "10"},
  "tax_rate_percent": "8"
}`

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"billingctl"}, args...))
	return out.String(), err
}

func TestTotals(t *testing.T) {
	t.Run("json from stdin", func(t *testing.T) {
		out, err := runApp(t, quoteJSON, "totals")
		require.NoError(t, err)

		var totals billingapp.TotalsResponse
		require.NoError(t, json.Unmarshal([]byte(out), &totals))
		assert.Equal(t, "60.00", totals.Subtotal.StringFixed())
		assert.Equal(t, "6.00", totals.DiscountAmount.StringFixed())
		assert.Equal(t, "4.32", totals.TaxAmount.StringFixed())
		assert.Equal(t, "58.32", totals.Total.StringFixed())
	})

	t.Run("text from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "quote.json")
		require.NoError(t, os.WriteFile(path, []byte(quoteJSON), 0o600))

		out, err := runApp(t, "", "totals", "--input", path, "--output", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "Subtotal")
		assert.Contains(t, out, "58.32")
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		_, err := runApp(t, `{"items":[{"name":"X","quantity":1,"unit_price":"-1.00"}]}`, "totals")
		var verr *billing.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("sub-cent price is a validation error", func(t *testing.T) {
		_, err := runApp(t, `{"items":[{"name":"Washer","quantity":3,"unit_price":"0.333"}]}`, "totals")
		var verr *billing.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, "two decimal places")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, err := runApp(t, `{"lines":[]}`, "totals")
		assert.ErrorContains(t, err, "invalid input")
	})
}

func TestTotals_CSVItems(t *testing.T) {
	const items = "name,kind,quantity,unit_price\nWidget,,2,10.00\nInstall,service,1,40.00\n"

	t.Run("same totals as the json quote", func(t *testing.T) {
		out, err := runApp(t, items, "totals", "--items", "-", "--discount-percent", "10", "--tax", "8")
		require.NoError(t, err)

		var totals billingapp.TotalsResponse
		require.NoError(t, json.Unmarshal([]byte(out), &totals))
		assert.Equal(t, "60.00", totals.Subtotal.StringFixed())
		assert.Equal(t, "58.32", totals.Total.StringFixed())
	})

	t.Run("semicolon file with fixed discount", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "items.csv")
		require.NoError(t, os.WriteFile(path, []byte("name;quantity;unit_price\nPart;3;5.00\n"), 0o600))

		out, err := runApp(t, "", "totals", "--items", path, "--delimiter", ";", "--discount-amount", "5.00", "--output", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "15.00")
		assert.Contains(t, out, "10.00")
	})

	t.Run("row errors are reported", func(t *testing.T) {
		_, err := runApp(t, "name,quantity,unit_price\n,0,abc\n", "totals", "--items", "-")
		require.Error(t, err)
		assert.ErrorContains(t, err, "invalid items file")
		assert.ErrorContains(t, err, "row 2, column 'name'")
	})

	t.Run("sub-cent discount amount", func(t *testing.T) {
		_, err := runApp(t, items, "totals", "--items", "-", "--discount-amount", "1.005")
		var verr *billing.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "discount-amount", verr.Field)
	})

	t.Run("both discount styles", func(t *testing.T) {
		_, err := runApp(t, items, "totals", "--items", "-", "--discount-percent", "5", "--discount-amount", "1")
		assert.ErrorContains(t, err, "either")
	})
}

const saleSnapshot = `{
  "organization": {"name": "Acme Plumbing", "address_lines": ["1 Pipe Rd", "Springfield"]},
  "recipient": {"name": "Jane Roe", "addresses": [{"label": "Service address", "street": "12 Elm St", "city": "Springfield"}]},
  "document": {
    "kind": "SALE",
    "number": "INV-2026-00042",
    "items": [{"name": "Water heater", "quantity": 1, "unit_price": "899.00"}],
    "tax_rate_percent": "5"
  },
  "payments": [{"amount": "500.00", "method": "CARD"}]
}`

func TestRender(t *testing.T) {
	t.Run("html to stdout", func(t *testing.T) {
		out, err := runApp(t, saleSnapshot, "render", "--format", "html", "--output", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "INV-2026-00042")
		assert.Contains(t, out, "Acme Plumbing")
		assert.Contains(t, out, "Jane Roe")
		assert.Contains(t, out, "Water heater")
	})

	t.Run("pdf to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sale.pdf")
		_, err := runApp(t, saleSnapshot, "render", "--output", path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := runApp(t, saleSnapshot, "render", "--format", "docx", "--output", "-")
		assert.Error(t, err)
	})

	t.Run("overpayment fails", func(t *testing.T) {
		snap := strings.Replace(saleSnapshot, `"500.00"`, `"5000.00"`, 1)
		_, err := runApp(t, snap, "render", "--output", "-")
		var over *billing.OverpaymentError
		assert.ErrorAs(t, err, &over)
	})
}

func TestSnapshotDocument(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("approved estimate", func(t *testing.T) {
		snap := snapshot{
			Document: billingapp.CreateDocumentRequest{
				Kind:  "ESTIMATE",
				Items: []billingapp.LineItemInput{{Name: "Survey", Quantity: 1}},
			},
			Stage: "approved",
		}
		doc, err := snapshotDocument(snap, now)
		require.NoError(t, err)
		assert.Equal(t, previewNumber, doc.Number)
		assert.Equal(t, billing.StatusApproved, doc.Status)
	})

	t.Run("stage on a sale is an invalid transition", func(t *testing.T) {
		snap := snapshot{
			Document: billingapp.CreateDocumentRequest{Kind: "SALE", Number: "INV-1"},
			Stage:    "SENT",
		}
		_, err := snapshotDocument(snap, now)
		assert.ErrorIs(t, err, billing.ErrInvalidTransition)
	})

	t.Run("settled sale is paid", func(t *testing.T) {
		var req billingapp.CreateDocumentRequest
		require.NoError(t, json.Unmarshal([]byte(`{"kind":"SALE","items":[{"name":"A","quantity":1,"unit_price":"10.00"}]}`), &req))
		var pay billingapp.RecordPaymentRequest
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"10.00","method":"cash"}`), &pay))

		doc, err := snapshotDocument(snapshot{Document: req, Payments: []billingapp.RecordPaymentRequest{pay}}, now)
		require.NoError(t, err)
		assert.Equal(t, billing.StatusPaid, doc.Status)
		assert.True(t, doc.Ledger().IsSettled())
	})

	t.Run("unknown stage", func(t *testing.T) {
		_, err := snapshotDocument(snapshot{Document: billingapp.CreateDocumentRequest{Kind: "ESTIMATE"}, Stage: "LOST"}, now)
		assert.ErrorContains(t, err, "unsupported stage")
	})
}
