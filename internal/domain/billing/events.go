package billing

import (
	"time"

	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Event type names
const (
	EventTypeDocumentCreated      = "BillingDocumentCreated"
	EventTypeDocumentRepriced     = "BillingDocumentRepriced"
	EventTypeEstimateStageChanged = "EstimateStageChanged"
	EventTypeEstimateConverted    = "EstimateConverted"
	EventTypePaymentRecorded      = "PaymentRecorded"
	EventTypeDocumentPaid         = "BillingDocumentPaid"
)

// DocumentCreatedEvent is raised when an estimate or sale is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID         `json:"document_id"`
	Number     string            `json:"number"`
	Kind       DocumentKind      `json:"kind"`
	CustomerID uuid.UUID         `json:"customer_id"`
	Total      valueobject.Money `json:"total"`
}

// NewDocumentCreatedEvent creates a DocumentCreatedEvent
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, d.ID, d.TenantID, d.CreatedAt),
		DocumentID:      d.ID,
		Number:          d.Number,
		Kind:            d.Kind,
		CustomerID:      d.CustomerID,
		Total:           d.Totals.Total,
	}
}

// DocumentRepricedEvent is raised when items, discount or tax change
type DocumentRepricedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID `json:"document_id"`
	Totals     Totals    `json:"totals"`
}

// NewDocumentRepricedEvent creates a DocumentRepricedEvent
func NewDocumentRepricedEvent(d *Document, at time.Time) *DocumentRepricedEvent {
	return &DocumentRepricedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentRepriced, AggregateTypeDocument, d.ID, d.TenantID, at),
		DocumentID:      d.ID,
		Totals:          d.Totals,
	}
}

// EstimateStageChangedEvent is raised on send and approve
type EstimateStageChangedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID `json:"document_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
}

// NewEstimateStageChangedEvent creates an EstimateStageChangedEvent
func NewEstimateStageChangedEvent(d *Document, from, to Status, at time.Time) *EstimateStageChangedEvent {
	return &EstimateStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateStageChanged, AggregateTypeDocument, d.ID, d.TenantID, at),
		DocumentID:      d.ID,
		From:            from,
		To:              to,
	}
}

// EstimateConvertedEvent is raised when an estimate becomes a sale
type EstimateConvertedEvent struct {
	shared.BaseDomainEvent
	EstimateID uuid.UUID `json:"estimate_id"`
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
}

// NewEstimateConvertedEvent creates an EstimateConvertedEvent
func NewEstimateConvertedEvent(estimate, sale *Document, at time.Time) *EstimateConvertedEvent {
	return &EstimateConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateConverted, AggregateTypeDocument, estimate.ID, estimate.TenantID, at),
		EstimateID:      estimate.ID,
		SaleID:          sale.ID,
		SaleNumber:      sale.Number,
	}
}

// PaymentRecordedEvent is raised for every accepted payment
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID         `json:"document_id"`
	PaymentID  uuid.UUID         `json:"payment_id"`
	Sequence   int               `json:"sequence"`
	Amount     valueobject.Money `json:"amount"`
	Method     PaymentMethod     `json:"method"`
	Balance    valueobject.Money `json:"balance"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(d *Document, p Payment, state LedgerState) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeDocument, d.ID, d.TenantID, p.PaidAt),
		DocumentID:      d.ID,
		PaymentID:       p.ID,
		Sequence:        p.Sequence,
		Amount:          p.Amount,
		Method:          p.Method,
		Balance:         state.BalanceAmount,
	}
}

// DocumentPaidEvent is raised when a sale's balance reaches zero
type DocumentPaidEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID         `json:"document_id"`
	Number     string            `json:"number"`
	PaidAmount valueobject.Money `json:"paid_amount"`
}

// NewDocumentPaidEvent creates a DocumentPaidEvent
func NewDocumentPaidEvent(d *Document, state LedgerState, at time.Time) *DocumentPaidEvent {
	return &DocumentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaid, AggregateTypeDocument, d.ID, d.TenantID, at),
		DocumentID:      d.ID,
		Number:          d.Number,
		PaidAmount:      state.PaidAmount,
	}
}
