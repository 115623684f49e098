package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ErrMeterNil is returned when a metrics set is created without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// Outcome values for the outcome attribute
const (
	OutcomeSuccess  = "success"
	OutcomeReplayed = "replayed"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// BillingMetrics records payment and document generation activity
type BillingMetrics struct {
	paymentsTotal        *Counter
	paymentAmountCents   *Counter
	overpaymentsRejected *Counter
	documentsGenerated   *Counter
	layoutPages          *Histogram
	renderDuration       *Histogram
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &BillingMetrics{}
	var err error

	if m.paymentsTotal, err = NewCounter(meter,
		"billing_payments_total",
		"Payment append attempts by outcome",
		"{payments}"); err != nil {
		return nil, err
	}
	if m.paymentAmountCents, err = NewCounter(meter,
		"billing_payment_amount_cents_total",
		"Sum of recorded payment amounts in cents",
		"{cents}"); err != nil {
		return nil, err
	}
	if m.overpaymentsRejected, err = NewCounter(meter,
		"billing_overpayments_rejected_total",
		"Payments rejected because they exceed the outstanding balance",
		"{payments}"); err != nil {
		return nil, err
	}
	if m.documentsGenerated, err = NewCounter(meter,
		"billing_documents_generated_total",
		"Rendered documents by format and outcome",
		"{documents}"); err != nil {
		return nil, err
	}
	if m.layoutPages, err = NewHistogram(meter, HistogramOpts{
		Name:        "billing_layout_pages",
		Description: "Pages per laid-out document",
		Unit:        "{pages}",
		Boundaries:  PageCountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.renderDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "billing_render_duration_seconds",
		Description: "Time spent laying out and rendering a document",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// NewNoopBillingMetrics returns metrics that record nothing
func NewNoopBillingMetrics() *BillingMetrics {
	m, _ := NewBillingMetrics(noop.NewMeterProvider().Meter(TracerName))
	return m
}

// RecordPayment counts one payment attempt. amountCents is added only on success.
func (m *BillingMetrics) RecordPayment(ctx context.Context, method, outcome string, amountCents int64) {
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(method), AttrOutcome.String(outcome)}
	m.paymentsTotal.Inc(ctx, attrs...)
	if outcome == OutcomeSuccess && amountCents > 0 {
		m.paymentAmountCents.Add(ctx, amountCents, AttrPaymentMethod.String(method))
	}
	if outcome == OutcomeRejected {
		m.overpaymentsRejected.Inc(ctx, AttrPaymentMethod.String(method))
	}
}

// RecordGeneration counts a generated document and its page count
func (m *BillingMetrics) RecordGeneration(ctx context.Context, format, kind, outcome string, pages int, d time.Duration) {
	attrs := []attribute.KeyValue{AttrFormat.String(format), AttrDocumentKind.String(kind)}
	m.documentsGenerated.Inc(ctx, append(attrs, AttrOutcome.String(outcome))...)
	m.renderDuration.RecordDuration(ctx, d, append(attrs, AttrOutcome.String(outcome))...)
	if outcome == OutcomeSuccess && pages > 0 {
		m.layoutPages.Record(ctx, float64(pages), attrs...)
	}
}
