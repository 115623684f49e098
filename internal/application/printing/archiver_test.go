package printing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func paidEvent(t *testing.T, doc *billing.Document) *billing.DocumentPaidEvent {
	t.Helper()
	_, err := doc.RecordPayment(billing.PaymentInput{
		Amount: valueobject.MustMoney("33.00"),
		Method: billing.PaymentMethodBankTransfer,
		PaidAt: issued,
	}, issued)
	require.NoError(t, err)
	for _, e := range doc.GetDomainEvents() {
		if paid, ok := e.(*billing.DocumentPaidEvent); ok {
			return paid
		}
	}
	t.Fatal("no paid event raised")
	return nil
}

func TestPaidDocumentArchiver(t *testing.T) {
	tenantID := uuid.New()
	env := newTestEnv(t, printing.DefaultLayoutConfig())
	doc := newSale(t, tenantID, 3)
	event := paidEvent(t, doc)
	env.repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(doc, nil)

	archiver := NewPaidDocumentArchiver(env.svc, "html", nil)
	assert.Equal(t, []string{billing.EventTypeDocumentPaid}, archiver.EventTypes())
	require.NoError(t, archiver.Handle(context.Background(), event))

	f, err := env.store.Open(context.Background(), fmt.Sprintf("%s/2026/04/%s-INV-2026-00042.html", tenantID, doc.ID))
	require.NoError(t, err)
	_ = f.Close()
}

func TestPaidDocumentArchiver_Errors(t *testing.T) {
	tenantID := uuid.New()
	env := newTestEnv(t, printing.DefaultLayoutConfig())
	archiver := NewPaidDocumentArchiver(env.svc, "", nil)

	t.Run("other events are rejected", func(t *testing.T) {
		other := shared.NewBaseDomainEvent(billing.EventTypeDocumentCreated, billing.AggregateTypeDocument, uuid.New(), tenantID, issued)
		assert.Error(t, archiver.Handle(context.Background(), &other))
	})

	t.Run("missing document", func(t *testing.T) {
		doc := newSale(t, tenantID, 3)
		event := paidEvent(t, doc)
		env.repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(nil, billing.ErrDocumentNotFound)

		err := archiver.Handle(context.Background(), event)
		assert.True(t, errors.Is(err, billing.ErrDocumentNotFound))
		assert.Contains(t, err.Error(), "INV-2026-00042")
	})
}
