package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// paidSaleEvents returns the events raised by fully paying a one-line sale
func paidSaleEvents(t *testing.T) []shared.DomainEvent {
	t.Helper()
	issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	doc, err := billing.NewSale(uuid.New(), billing.DocumentParams{
		Number:     "INV-2026-00007",
		CustomerID: uuid.New(),
		IssueDate:  issued,
		Items:      []billing.LineItem{billing.NewLineItem("Repair", billing.ItemKindService, 1, valueobject.MustMoney("40.00"))},
	}, nil)
	require.NoError(t, err)
	_, err = doc.RecordPayment(billing.PaymentInput{
		Amount: valueobject.MustMoney("40.00"),
		Method: billing.PaymentMethodCash,
		PaidAt: issued,
	}, issued)
	require.NoError(t, err)
	return doc.GetDomainEvents()
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	events := paidSaleEvents(t)
	require.Len(t, events, 2)

	bus := NewInMemoryEventBus(zap.NewNop())
	paid := &recordingHandler{types: []string{billing.EventTypeDocumentPaid}}
	all := &recordingHandler{}
	bus.Subscribe(paid)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), events...))
	assert.Equal(t, 1, paid.count())
	assert.Equal(t, 2, all.count())
	assert.Equal(t, billing.EventTypeDocumentPaid, paid.handled[0].EventType())

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		payments := &recordingHandler{types: []string{billing.EventTypeDocumentPaid}}
		bus.Subscribe(payments, billing.EventTypePaymentRecorded)
		require.NoError(t, bus.Publish(context.Background(), events...))
		require.Equal(t, 1, payments.count())
		assert.Equal(t, billing.EventTypePaymentRecorded, payments.handled[0].EventType())
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus.Unsubscribe(all)
		before := all.count()
		require.NoError(t, bus.Publish(context.Background(), events...))
		assert.Equal(t, before, all.count())
	})
}

func TestInMemoryEventBus_FailingHandlers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{err: errors.New("disk full")}
	panicking := &recordingHandler{panics: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	events := paidSaleEvents(t)
	require.NoError(t, bus.Publish(context.Background(), events...))

	assert.Equal(t, len(events), healthy.count())
	assert.Equal(t, 2*len(events), logs.FilterMessage("Event handler failed").Len())
}

func TestInMemoryEventBus_Stop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Stop(context.Background()))
	assert.ErrorIs(t, bus.Publish(context.Background(), paidSaleEvents(t)...), ErrBusStopped)
	assert.Zero(t, handler.count())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), paidSaleEvents(t)...))
	assert.Equal(t, 2, handler.count())
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core))
	assert.Empty(t, handler.EventTypes())

	events := paidSaleEvents(t)
	for _, e := range events {
		require.NoError(t, handler.Handle(context.Background(), e))
	}

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, billing.EventTypeDocumentPaid, fields["event_type"])
	assert.Equal(t, billing.AggregateTypeDocument, fields["aggregate_type"])
}
