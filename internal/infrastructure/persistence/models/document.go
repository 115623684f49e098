package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// LineItems is stored as a JSONB array on the document row
type LineItems []billing.LineItem

// Value implements driver.Valuer
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *LineItems) Scan(value any) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("cannot scan line items: unsupported type")
	}
	return json.Unmarshal(data, l)
}

// DocumentModel is the persistence model for billing.Document.
// Money columns hold integer cents.
type DocumentModel struct {
	TenantAggregateModel
	Number           string               `gorm:"type:varchar(50);not null"`
	Kind             billing.DocumentKind `gorm:"type:varchar(20);not null;index"`
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency         string               `gorm:"type:varchar(3);not null;default:'USD'"`
	Items            LineItems            `gorm:"type:jsonb;not null"`
	DiscountType     billing.DiscountType `gorm:"type:varchar(20);not null;default:'NONE'"`
	DiscountValue    valueobject.Money    `gorm:"type:bigint;not null;default:0"`
	DiscountPercent  valueobject.Percent  `gorm:"type:decimal(7,4);not null;default:0"`
	TaxRatePercent   valueobject.Percent  `gorm:"type:decimal(7,4);not null;default:0"`
	Subtotal         valueobject.Money    `gorm:"type:bigint;not null;default:0"`
	DiscountAmount   valueobject.Money    `gorm:"type:bigint;not null;default:0"`
	TaxAmount        valueobject.Money    `gorm:"type:bigint;not null;default:0"`
	TotalAmount      valueobject.Money    `gorm:"type:bigint;not null;default:0"`
	PaidAmount       valueobject.Money    `gorm:"type:bigint;not null;default:0"`
	Stage            billing.Status       `gorm:"type:varchar(20);not null"`
	Status           billing.Status       `gorm:"type:varchar(20);not null;index"`
	IssueDate        time.Time            `gorm:"not null"`
	DueDate          *time.Time
	ValidUntil       *time.Time
	LinkedDocumentID *uuid.UUID       `gorm:"type:uuid"`
	Payments         billing.Payments `gorm:"type:jsonb;not null"`
	SentAt           *time.Time
	ApprovedAt       *time.Time
	ConvertedAt      *time.Time
	Notes            string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "billing_documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *billing.Document {
	doc := &billing.Document{
		Number:     m.Number,
		Kind:       m.Kind,
		CustomerID: m.CustomerID,
		Currency:   valueobject.Currency(m.Currency),
		Items:      []billing.LineItem(m.Items),
		Discount: billing.DiscountSpec{
			Type:    m.DiscountType,
			Amount:  m.DiscountValue,
			Percent: m.DiscountPercent,
		},
		Tax: billing.NewTaxSpec(m.TaxRatePercent),
		Totals: billing.Totals{
			Subtotal:       m.Subtotal,
			DiscountAmount: m.DiscountAmount,
			TaxAmount:      m.TaxAmount,
			Total:          m.TotalAmount,
		},
		Stage:            m.Stage,
		Status:           m.Status,
		IssueDate:        m.IssueDate,
		DueDate:          m.DueDate,
		ValidUntil:       m.ValidUntil,
		LinkedDocumentID: m.LinkedDocumentID,
		Payments:         m.Payments,
		SentAt:           m.SentAt,
		ApprovedAt:       m.ApprovedAt,
		ConvertedAt:      m.ConvertedAt,
		Notes:            m.Notes,
	}
	if doc.Items == nil {
		doc.Items = []billing.LineItem{}
	}
	if doc.Payments == nil {
		doc.Payments = billing.Payments{}
	}
	m.PopulateTenantAggregateRoot(&doc.TenantAggregateRoot)
	return doc
}

// FromDomain populates the persistence model from a domain Document
func (m *DocumentModel) FromDomain(d *billing.Document) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Number = d.Number
	m.Kind = d.Kind
	m.CustomerID = d.CustomerID
	m.Currency = string(d.Currency)
	m.Items = LineItems(d.Items)
	m.DiscountType = d.Discount.Type
	m.DiscountValue = d.Discount.Amount
	m.DiscountPercent = d.Discount.Percent
	m.TaxRatePercent = d.Tax.RatePercent
	m.Subtotal = d.Totals.Subtotal
	m.DiscountAmount = d.Totals.DiscountAmount
	m.TaxAmount = d.Totals.TaxAmount
	m.TotalAmount = d.Totals.Total
	m.PaidAmount = billing.Ledger(d).PaidAmount
	m.Stage = d.Stage
	m.Status = d.Status
	m.IssueDate = d.IssueDate
	m.DueDate = d.DueDate
	m.ValidUntil = d.ValidUntil
	m.LinkedDocumentID = d.LinkedDocumentID
	m.Payments = d.Payments
	m.SentAt = d.SentAt
	m.ApprovedAt = d.ApprovedAt
	m.ConvertedAt = d.ConvertedAt
	m.Notes = d.Notes
}

// DocumentModelFromDomain creates a new persistence model from a domain Document
func DocumentModelFromDomain(d *billing.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// UpdateColumns returns the mutable columns written by a version-checked update
func (m *DocumentModel) UpdateColumns() map[string]any {
	return map[string]any{
		"customer_id":        m.CustomerID,
		"currency":           m.Currency,
		"items":              m.Items,
		"discount_type":      m.DiscountType,
		"discount_value":     m.DiscountValue,
		"discount_percent":   m.DiscountPercent,
		"tax_rate_percent":   m.TaxRatePercent,
		"subtotal":           m.Subtotal,
		"discount_amount":    m.DiscountAmount,
		"tax_amount":         m.TaxAmount,
		"total_amount":       m.TotalAmount,
		"paid_amount":        m.PaidAmount,
		"stage":              m.Stage,
		"status":             m.Status,
		"due_date":           m.DueDate,
		"valid_until":        m.ValidUntil,
		"linked_document_id": m.LinkedDocumentID,
		"payments":           m.Payments,
		"sent_at":            m.SentAt,
		"approved_at":        m.ApprovedAt,
		"converted_at":       m.ConvertedAt,
		"notes":              m.Notes,
		"version":            m.Version,
		"updated_at":         m.UpdatedAt,
	}
}

