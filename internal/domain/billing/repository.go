package billing

import (
	"context"
	"time"

	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter defines filtering options for document queries
type DocumentFilter struct {
	shared.Filter
	Kind       *DocumentKind // Filter by estimate or sale
	CustomerID *uuid.UUID    // Filter by customer
	Status     *Status       // Filter by stored status (refreshed on each write)
}

// DocumentRepository defines the interface for billing document persistence
type DocumentRepository interface {
	// FindByIDForTenant finds a document by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)

	// FindByNumber finds a document by its number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Document, error)

	// FindAllForTenant lists documents for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]Document, error)

	// CountForTenant counts documents matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) (int64, error)

	// Create inserts a new document
	Create(ctx context.Context, doc *Document) error

	// SaveWithLock updates doc only if the stored version still equals expectedVersion.
	// Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, doc *Document, expectedVersion int) error

	// SaveConversion atomically updates the estimate (version-checked) and inserts the sale
	SaveConversion(ctx context.Context, estimate *Document, expectedVersion int, sale *Document) error

	// ExistsByNumber checks whether a number is already taken for the tenant
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
}

// StatusSweepRepository finds documents whose stored status has fallen behind the clock.
// Statuses are derived on read, so the stored column only serves list filters.
type StatusSweepRepository interface {
	// FindStatusCandidates returns open sales past their due date and open estimates
	// past their valid-until date, across all tenants, whose stored status is not yet
	// OVERDUE or EXPIRED
	FindStatusCandidates(ctx context.Context, now time.Time, limit int) ([]Document, error)

	// UpdateStatus writes only the status column if the version is unchanged.
	// Returns shared.ErrConcurrencyConflict otherwise.
	UpdateStatus(ctx context.Context, doc *Document) error
}
