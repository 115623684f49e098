package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ==================== Request DTOs ====================

// LineItemInput is one line of a create or update request
type LineItemInput struct {
	Name      string            `json:"name" binding:"required,min=1,max=200"`
	Kind      string            `json:"kind" binding:"omitempty,oneof=PRODUCT SERVICE"`
	Quantity  int64             `json:"quantity" binding:"required,min=1"`
	UnitPrice valueobject.Money `json:"unit_price"`
}

// DiscountInput selects a fixed-amount or percentage discount
type DiscountInput struct {
	Type    string               `json:"type" binding:"omitempty,oneof=NONE AMOUNT PERCENT"`
	Amount  *valueobject.Money   `json:"amount"`
	Percent *valueobject.Percent `json:"percent"`
}

// CreateDocumentRequest creates an estimate or a sale
type CreateDocumentRequest struct {
	Kind           string               `json:"kind" binding:"required,oneof=ESTIMATE SALE"`
	Number         string               `json:"number" binding:"max=50"` // generated when empty
	CustomerID     uuid.UUID            `json:"customer_id" binding:"required"`
	Currency       string               `json:"currency" binding:"omitempty,len=3"`
	IssueDate      *time.Time           `json:"issue_date"`
	DueDate        *time.Time           `json:"due_date"`    // sales only
	ValidUntil     *time.Time           `json:"valid_until"` // estimates only
	Items          []LineItemInput      `json:"items" binding:"dive"`
	Discount       *DiscountInput       `json:"discount"`
	TaxRatePercent *valueobject.Percent `json:"tax_rate_percent"`
	Notes          string               `json:"notes" binding:"max=2000"`
}

// UpdateItemsRequest replaces every line item
type UpdateItemsRequest struct {
	Items []LineItemInput `json:"items" binding:"dive"`
}

// UpdatePricingRequest replaces the discount and tax rate
type UpdatePricingRequest struct {
	Discount       *DiscountInput       `json:"discount"`
	TaxRatePercent *valueobject.Percent `json:"tax_rate_percent"`
}

// ConvertEstimateRequest turns an approved estimate into a sale
type ConvertEstimateRequest struct {
	Number    string     `json:"number" binding:"max=50"` // sale number, generated when empty
	IssueDate *time.Time `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
}

// RecordPaymentRequest appends a payment to a sale's ledger
type RecordPaymentRequest struct {
	Amount valueobject.Money `json:"amount"`
	Method string            `json:"method" binding:"required,oneof=CASH CARD BANK_TRANSFER CHECK OTHER"`
	Notes  string            `json:"notes" binding:"max=500"`
	PaidAt *time.Time        `json:"paid_at"`

	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// ListDocumentsRequest filters the document list
type ListDocumentsRequest struct {
	Search     string     `form:"search"`
	Kind       string     `form:"kind" binding:"omitempty,oneof=ESTIMATE SALE"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QuoteTotalsRequest previews totals without creating a document
type QuoteTotalsRequest struct {
	Items          []LineItemInput      `json:"items" binding:"dive"`
	Discount       *DiscountInput       `json:"discount"`
	TaxRatePercent *valueobject.Percent `json:"tax_rate_percent"`
}

// ==================== Response DTOs ====================

// LineItemResponse is a line item with its computed total
type LineItemResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Kind      string            `json:"kind"`
	Quantity  int64             `json:"quantity"`
	UnitPrice valueobject.Money `json:"unit_price"`
	LineTotal valueobject.Money `json:"line_total"`
}

// TotalsResponse is the calculator output
type TotalsResponse struct {
	Subtotal       valueobject.Money `json:"subtotal"`
	DiscountAmount valueobject.Money `json:"discount_amount"`
	TaxableBase    valueobject.Money `json:"taxable_base"`
	TaxAmount      valueobject.Money `json:"tax_amount"`
	Total          valueobject.Money `json:"total"`
}

// PaymentResponse is one ledger entry
type PaymentResponse struct {
	ID       uuid.UUID         `json:"id"`
	Sequence int               `json:"sequence"`
	Amount   valueobject.Money `json:"amount"`
	Method   string            `json:"method"`
	PaidAt   time.Time         `json:"paid_at"`
	Notes    string            `json:"notes,omitempty"`
}

// LedgerResponse is the derived ledger of a sale
type LedgerResponse struct {
	DocumentID    uuid.UUID         `json:"document_id"`
	Status        string            `json:"status"`
	Payments      []PaymentResponse `json:"payments"`
	Total         valueobject.Money `json:"total"`
	PaidAmount    valueobject.Money `json:"paid_amount"`
	BalanceAmount valueobject.Money `json:"balance_amount"`
	Sequence      int               `json:"sequence"`
	Settled       bool              `json:"settled"`
}

// RecordPaymentResponse reports the ledger after a payment.
// Replayed is true when the idempotency key had already been used.
type RecordPaymentResponse struct {
	Ledger   LedgerResponse `json:"ledger"`
	Replayed bool           `json:"replayed"`
}

// DocumentResponse is an estimate or sale in API responses
type DocumentResponse struct {
	ID               uuid.UUID          `json:"id"`
	TenantID         uuid.UUID          `json:"tenant_id"`
	Number           string             `json:"number"`
	Kind             string             `json:"kind"`
	Title            string             `json:"title"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	Currency         string             `json:"currency"`
	Items            []LineItemResponse `json:"items"`
	Discount         DiscountResponse   `json:"discount"`
	TaxRatePercent   string             `json:"tax_rate_percent"`
	Totals           TotalsResponse     `json:"totals"`
	Status           string             `json:"status"`
	Locked           bool               `json:"locked"`
	IssueDate        time.Time          `json:"issue_date"`
	DueDate          *time.Time         `json:"due_date,omitempty"`
	ValidUntil       *time.Time         `json:"valid_until,omitempty"`
	LinkedDocumentID *uuid.UUID         `json:"linked_document_id,omitempty"`
	Ledger           *LedgerResponse    `json:"ledger,omitempty"`
	SentAt           *time.Time         `json:"sent_at,omitempty"`
	ApprovedAt       *time.Time         `json:"approved_at,omitempty"`
	ConvertedAt      *time.Time         `json:"converted_at,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	Version          int                `json:"version"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// DiscountResponse echoes the discount spec
type DiscountResponse struct {
	Type    string             `json:"type"`
	Amount  *valueobject.Money `json:"amount,omitempty"`
	Percent string             `json:"percent,omitempty"`
}

// ConvertEstimateResponse returns both sides of a conversion
type ConvertEstimateResponse struct {
	Estimate DocumentResponse `json:"estimate"`
	Sale     DocumentResponse `json:"sale"`
}

// ==================== Mapping ====================

// QuoteTotals runs the calculator over request inputs
func QuoteTotals(req QuoteTotalsRequest) (TotalsResponse, error) {
	totals, err := billing.ComputeTotals(toLineItems(req.Items), toDiscountSpec(req.Discount), toTaxSpec(req.TaxRatePercent))
	if err != nil {
		return TotalsResponse{}, err
	}
	return ToTotalsResponse(totals), nil
}

// NewDocumentFromRequest builds an estimate or a sale from a create request.
// The number and issue date are resolved by the caller.
func NewDocumentFromRequest(tenantID uuid.UUID, req CreateDocumentRequest, number string, issueDate time.Time) (*billing.Document, error) {
	params := billing.DocumentParams{
		Number:     number,
		CustomerID: req.CustomerID,
		Currency:   valueobject.Currency(strings.ToUpper(req.Currency)),
		IssueDate:  issueDate,
		Items:      toLineItems(req.Items),
		Discount:   toDiscountSpec(req.Discount),
		Tax:        toTaxSpec(req.TaxRatePercent),
		Notes:      req.Notes,
	}
	switch kind := billing.DocumentKind(strings.ToUpper(req.Kind)); kind {
	case billing.DocumentKindEstimate:
		return billing.NewEstimate(tenantID, params, req.ValidUntil)
	case billing.DocumentKindSale:
		return billing.NewSale(tenantID, params, req.DueDate)
	default:
		return nil, &billing.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q", req.Kind)}
	}
}

func toLineItems(inputs []LineItemInput) []billing.LineItem {
	items := make([]billing.LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, billing.LineItem{
			Name:      in.Name,
			Kind:      billing.ItemKind(strings.ToUpper(in.Kind)),
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		})
	}
	return items
}

func toDiscountSpec(in *DiscountInput) billing.DiscountSpec {
	if in == nil {
		return billing.NoDiscount()
	}
	switch billing.DiscountType(strings.ToUpper(in.Type)) {
	case billing.DiscountAmount:
		var amount valueobject.Money
		if in.Amount != nil {
			amount = *in.Amount
		}
		return billing.AmountDiscount(amount)
	case billing.DiscountPercent:
		var pct valueobject.Percent
		if in.Percent != nil {
			pct = *in.Percent
		}
		return billing.PercentDiscount(pct)
	case billing.DiscountNone, "":
		return billing.NoDiscount()
	default:
		return billing.DiscountSpec{Type: billing.DiscountType(strings.ToUpper(in.Type))}
	}
}

func toTaxSpec(rate *valueobject.Percent) billing.TaxSpec {
	if rate == nil {
		return billing.TaxSpec{}
	}
	return billing.NewTaxSpec(*rate)
}

// ToTotalsResponse converts calculator output
func ToTotalsResponse(t billing.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal:       t.Subtotal,
		DiscountAmount: t.DiscountAmount,
		TaxableBase:    t.TaxableBase(),
		TaxAmount:      t.TaxAmount,
		Total:          t.Total,
	}
}

// ToLedgerResponse converts a ledger state
func ToLedgerResponse(doc *billing.Document, state billing.LedgerState) LedgerResponse {
	payments := make([]PaymentResponse, 0, len(state.Payments))
	for _, p := range state.Payments {
		payments = append(payments, PaymentResponse{
			ID:       p.ID,
			Sequence: p.Sequence,
			Amount:   p.Amount,
			Method:   string(p.Method),
			PaidAt:   p.PaidAt,
			Notes:    p.Notes,
		})
	}
	return LedgerResponse{
		DocumentID:    doc.ID,
		Status:        string(doc.Status),
		Payments:      payments,
		Total:         state.Total,
		PaidAmount:    state.PaidAmount,
		BalanceAmount: state.BalanceAmount,
		Sequence:      state.Sequence,
		Settled:       state.IsSettled(),
	}
}

// ToDocumentResponse converts a document whose status was refreshed at now
func ToDocumentResponse(doc *billing.Document, now time.Time) DocumentResponse {
	items := make([]LineItemResponse, 0, len(doc.Items))
	for _, item := range doc.Items {
		total, _ := item.LineTotal()
		items = append(items, LineItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			Kind:      string(item.Kind),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: total,
		})
	}

	discount := DiscountResponse{Type: string(doc.Discount.Type)}
	switch doc.Discount.Type {
	case billing.DiscountAmount:
		amount := doc.Discount.Amount
		discount.Amount = &amount
	case billing.DiscountPercent:
		discount.Percent = doc.Discount.Percent.String()
	}

	resp := DocumentResponse{
		ID:               doc.ID,
		TenantID:         doc.TenantID,
		Number:           doc.Number,
		Kind:             string(doc.Kind),
		Title:            doc.Title(),
		CustomerID:       doc.CustomerID,
		Currency:         string(doc.Currency),
		Items:            items,
		Discount:         discount,
		TaxRatePercent:   doc.Tax.RatePercent.String(),
		Totals:           ToTotalsResponse(doc.Totals),
		Status:           string(doc.Status),
		Locked:           doc.IsLocked(now),
		IssueDate:        doc.IssueDate,
		DueDate:          doc.DueDate,
		ValidUntil:       doc.ValidUntil,
		LinkedDocumentID: doc.LinkedDocumentID,
		SentAt:           doc.SentAt,
		ApprovedAt:       doc.ApprovedAt,
		ConvertedAt:      doc.ConvertedAt,
		Notes:            doc.Notes,
		Version:          doc.Version,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if doc.Kind == billing.DocumentKindSale {
		ledger := ToLedgerResponse(doc, doc.Ledger())
		resp.Ledger = &ledger
	}
	return resp
}
