package billing

import (
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AggregateTypeDocument is the aggregate type name used in events
const AggregateTypeDocument = "BillingDocument"

// Document is an estimate (quote) or a sale (invoice).
//
// Totals and Status are derived values kept alongside the source fields for queries;
// they are recomputed on every mutation and by Refresh, never trusted alone.
type Document struct {
	shared.TenantAggregateRoot
	Number           string
	Kind             DocumentKind
	CustomerID       uuid.UUID
	Currency         valueobject.Currency
	Items            []LineItem
	Discount         DiscountSpec
	Tax              TaxSpec
	Totals           Totals
	Stage            Status // explicit estimate stage set by Send/Approve/ConvertToSale
	Status           Status
	IssueDate        time.Time
	DueDate          *time.Time
	ValidUntil       *time.Time
	LinkedDocumentID *uuid.UUID
	Payments         Payments
	SentAt           *time.Time
	ApprovedAt       *time.Time
	ConvertedAt      *time.Time
	Notes            string
}

// DocumentParams carries the inputs shared by NewEstimate and NewSale
type DocumentParams struct {
	Number     string
	CustomerID uuid.UUID
	Currency   valueobject.Currency
	IssueDate  time.Time
	Items      []LineItem
	Discount   DiscountSpec
	Tax        TaxSpec
	Notes      string
}

// NewEstimate creates a DRAFT estimate
func NewEstimate(tenantID uuid.UUID, params DocumentParams, validUntil *time.Time) (*Document, error) {
	if validUntil != nil && validUntil.Before(params.IssueDate) {
		return nil, newValidationError("valid_until", "valid-until date cannot precede the issue date")
	}
	doc, err := newDocument(tenantID, DocumentKindEstimate, params)
	if err != nil {
		return nil, err
	}
	doc.ValidUntil = validUntil
	doc.Stage = StatusDraft
	doc.Status = DeriveStatus(doc, params.IssueDate)
	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))
	return doc, nil
}

// NewSale creates a PENDING sale with an empty ledger
func NewSale(tenantID uuid.UUID, params DocumentParams, dueDate *time.Time) (*Document, error) {
	if dueDate != nil && dueDate.Before(params.IssueDate) {
		return nil, newValidationError("due_date", "due date cannot precede the issue date")
	}
	doc, err := newDocument(tenantID, DocumentKindSale, params)
	if err != nil {
		return nil, err
	}
	doc.DueDate = dueDate
	doc.Stage = StatusPending
	doc.Status = DeriveStatus(doc, params.IssueDate)
	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))
	return doc, nil
}

func newDocument(tenantID uuid.UUID, kind DocumentKind, params DocumentParams) (*Document, error) {
	if tenantID == uuid.Nil {
		return nil, newValidationError("tenant_id", "tenant is required")
	}
	if strings.TrimSpace(params.Number) == "" {
		return nil, newValidationError("number", "document number is required")
	}
	if len(params.Number) > 50 {
		return nil, newValidationError("number", "document number cannot exceed 50 characters")
	}
	if params.CustomerID == uuid.Nil {
		return nil, newValidationError("customer_id", "customer is required")
	}
	if params.IssueDate.IsZero() {
		return nil, newValidationError("issue_date", "issue date is required")
	}
	items, err := prepareItems(params.Items)
	if err != nil {
		return nil, err
	}
	discount := normalizeDiscount(params.Discount)
	totals, err := ComputeTotals(items, discount, params.Tax)
	if err != nil {
		return nil, err
	}
	currency := params.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	doc := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              strings.TrimSpace(params.Number),
		Kind:                kind,
		CustomerID:          params.CustomerID,
		Currency:            currency,
		Items:               items,
		Discount:            discount,
		Tax:                 params.Tax,
		Totals:              totals,
		IssueDate:           params.IssueDate,
		Payments:            Payments{},
		Notes:               params.Notes,
	}
	return doc, nil
}

func prepareItems(items []LineItem) ([]LineItem, error) {
	out := make([]LineItem, len(items))
	for i, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return nil, newValidationError("items", "item %d: name is required", i+1)
		}
		if item.Kind == "" {
			item.Kind = ItemKindProduct
		}
		if !item.Kind.IsValid() {
			return nil, newValidationError("items", "item %d: unknown kind %q", i+1, item.Kind)
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		out[i] = item
	}
	return out, nil
}

func normalizeDiscount(d DiscountSpec) DiscountSpec {
	if d.Type == "" {
		d.Type = DiscountNone
	}
	return d
}

// Refresh recomputes the derived status at now and returns it
func (d *Document) Refresh(now time.Time) Status {
	if totals, err := ComputeTotals(d.Items, d.Discount, d.Tax); err == nil {
		d.Totals = totals
	}
	d.Status = DeriveStatus(d, now)
	return d.Status
}

// IsLocked reports whether items and pricing are frozen: a converted estimate or a paid sale
func (d *Document) IsLocked(now time.Time) bool {
	status := DeriveStatus(d, now)
	return status == StatusConverted || status == StatusPaid
}

// ReplaceItems swaps the line items and recomputes totals
func (d *Document) ReplaceItems(items []LineItem, now time.Time) error {
	prepared, err := prepareItems(items)
	if err != nil {
		return err
	}
	return d.reprice(prepared, d.Discount, d.Tax, now)
}

// UpdatePricing changes the discount and tax and recomputes totals
func (d *Document) UpdatePricing(discount DiscountSpec, tax TaxSpec, now time.Time) error {
	return d.reprice(d.Items, normalizeDiscount(discount), tax, now)
}

func (d *Document) reprice(items []LineItem, discount DiscountSpec, tax TaxSpec, now time.Time) error {
	if d.IsLocked(now) {
		return ErrDocumentLocked
	}
	totals, err := ComputeTotals(items, discount, tax)
	if err != nil {
		return err
	}
	paid := ledgerFor(d.Payments, totals.Total).PaidAmount
	if paid.GreaterThan(totals.Total) {
		return newValidationError("items", "new total %s is below the %s already paid", totals.Total, paid)
	}

	d.Items = items
	d.Discount = discount
	d.Tax = tax
	d.Totals = totals
	d.UpdatedAt = now
	d.IncrementVersion()
	d.Status = DeriveStatus(d, now)
	d.AddDomainEvent(NewDocumentRepricedEvent(d, now))
	return nil
}

// Send moves a DRAFT estimate to SENT
func (d *Document) Send(now time.Time) error {
	if d.Kind != DocumentKindEstimate || DeriveStatus(d, now) != StatusDraft {
		return ErrInvalidTransition
	}
	d.Stage = StatusSent
	d.SentAt = &now
	d.touch(now)
	d.AddDomainEvent(NewEstimateStageChangedEvent(d, StatusDraft, StatusSent, now))
	return nil
}

// Approve moves a SENT estimate to APPROVED
func (d *Document) Approve(now time.Time) error {
	if d.Kind != DocumentKindEstimate || DeriveStatus(d, now) != StatusSent {
		return ErrInvalidTransition
	}
	d.Stage = StatusApproved
	d.ApprovedAt = &now
	d.touch(now)
	d.AddDomainEvent(NewEstimateStageChangedEvent(d, StatusSent, StatusApproved, now))
	return nil
}

// ConvertToSale turns an APPROVED estimate into a new PENDING sale carrying the same
// items and pricing. Both documents reference each other and the estimate becomes read-only.
func (d *Document) ConvertToSale(saleNumber string, issueDate time.Time, dueDate *time.Time, now time.Time) (*Document, error) {
	if d.Kind != DocumentKindEstimate || DeriveStatus(d, now) != StatusApproved {
		return nil, ErrInvalidTransition
	}

	items := make([]LineItem, len(d.Items))
	for i, item := range d.Items {
		item.ID = uuid.New()
		items[i] = item
	}
	sale, err := NewSale(d.TenantID, DocumentParams{
		Number:     saleNumber,
		CustomerID: d.CustomerID,
		Currency:   d.Currency,
		IssueDate:  issueDate,
		Items:      items,
		Discount:   d.Discount,
		Tax:        d.Tax,
		Notes:      d.Notes,
	}, dueDate)
	if err != nil {
		return nil, err
	}
	estimateID := d.ID
	sale.LinkedDocumentID = &estimateID
	saleID := sale.ID
	d.LinkedDocumentID = &saleID

	d.Stage = StatusConverted
	d.ConvertedAt = &now
	d.touch(now)
	d.AddDomainEvent(NewEstimateConvertedEvent(d, sale, now))
	return sale, nil
}

// RecordPayment appends a payment and refreshes the status at now
func (d *Document) RecordPayment(in PaymentInput, now time.Time) (LedgerState, error) {
	state, err := AppendPayment(d, in)
	if err != nil {
		return LedgerState{}, err
	}
	d.Refresh(now)
	return state, nil
}

// Ledger returns the derived ledger state
func (d *Document) Ledger() LedgerState {
	return Ledger(d)
}

// Title returns the printed document title
func (d *Document) Title() string {
	if d.Kind == DocumentKindEstimate {
		return "ESTIMATE"
	}
	return "INVOICE"
}

func (d *Document) touch(now time.Time) {
	d.UpdatedAt = now
	d.IncrementVersion()
	d.Status = DeriveStatus(d, now)
}
