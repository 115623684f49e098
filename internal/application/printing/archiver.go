package printing

import (
	"context"
	"fmt"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaidDocumentArchiver stores the final rendering of a sale once its balance reaches zero
type PaidDocumentArchiver struct {
	documents *DocumentService
	format    string
	logger    *zap.Logger
}

// NewPaidDocumentArchiver creates an archiver; an empty format uses the registry default
func NewPaidDocumentArchiver(documents *DocumentService, format string, log *zap.Logger) *PaidDocumentArchiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaidDocumentArchiver{documents: documents, format: format, logger: log}
}

// Handle renders and stores the paid document
func (a *PaidDocumentArchiver) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*billing.DocumentPaidEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	resp, err := a.documents.Generate(ctx, paid.TenantID(), paid.DocumentID, GenerateRequest{Format: a.format})
	if err != nil {
		return fmt.Errorf("archive %s: %w", paid.Number, err)
	}
	logger.WithLogger(ctx, a.logger).Info("Paid document archived",
		zap.String("document_id", paid.DocumentID.String()),
		zap.String("number", paid.Number),
		zap.String("path", resp.Path))
	return nil
}

// EventTypes subscribes to settled sales only
func (a *PaidDocumentArchiver) EventTypes() []string {
	return []string{billing.EventTypeDocumentPaid}
}
