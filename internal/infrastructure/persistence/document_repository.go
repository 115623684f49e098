package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements billing.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

var (
	_ billing.DocumentRepository    = (*GormDocumentRepository)(nil)
	_ billing.StatusSweepRepository = (*GormDocumentRepository)(nil)
)

// FindByIDForTenant finds a document by ID within a tenant
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a document by its number within a tenant
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists documents for a tenant with filtering and pagination
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.DocumentFilter) ([]billing.Document, error) {
	var rows []models.DocumentModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DocumentModel{}).Scopes(TenantScope(tenantID)), filter)

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir)).Scopes(Paginate(filter.Page, filter.PageSize))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]billing.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

// CountForTenant counts documents matching the filter, ignoring pagination
func (r *GormDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.DocumentFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DocumentModel{}).Scopes(TenantScope(tenantID)), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new document
func (r *GormDocumentRepository) Create(ctx context.Context, doc *billing.Document) error {
	return createDocument(r.db.WithContext(ctx), doc)
}

// SaveWithLock writes doc only if the stored version still equals expectedVersion
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *billing.Document, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveDocumentWithLock(tx, doc, expectedVersion)
	})
}

// SaveConversion inserts the sale and updates the estimate (version-checked) in one
// transaction. The sale goes first so the estimate's link satisfies the foreign key.
func (r *GormDocumentRepository) SaveConversion(ctx context.Context, estimate *billing.Document, expectedVersion int, sale *billing.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createDocument(tx, sale); err != nil {
			return err
		}
		return saveDocumentWithLock(tx, estimate, expectedVersion)
	})
}

// ExistsByNumber checks whether a number is already taken for the tenant
func (r *GormDocumentRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Scopes(TenantScope(tenantID)).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindStatusCandidates lists documents whose time-based status is stale, oldest first
func (r *GormDocumentRepository) FindStatusCandidates(ctx context.Context, now time.Time, limit int) ([]billing.Document, error) {
	var rows []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("(kind = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?)",
			billing.DocumentKindSale, billing.StatusPending, now).
		Or("(kind = ? AND status IN ? AND valid_until IS NOT NULL AND valid_until < ?)",
			billing.DocumentKindEstimate,
			[]billing.Status{billing.StatusDraft, billing.StatusSent, billing.StatusApproved}, now).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]billing.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

// UpdateStatus stores doc.Status without bumping the version
func (r *GormDocumentRepository) UpdateStatus(ctx context.Context, doc *billing.Document) error {
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", doc.ID, doc.TenantID, doc.Version).
		Update("status", doc.Status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func createDocument(tx *gorm.DB, doc *billing.Document) error {
	model := models.DocumentModelFromDomain(doc)
	if err := tx.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.ErrAlreadyExists.Code,
				fmt.Sprintf("document number %s already exists", doc.Number))
		}
		return err
	}
	return nil
}

// saveDocumentWithLock is the compare-and-swap on the version column. Zero rows
// affected means either the row is gone or another writer committed first.
func saveDocumentWithLock(tx *gorm.DB, doc *billing.Document, expectedVersion int) error {
	model := models.DocumentModelFromDomain(doc)
	result := tx.Model(&models.DocumentModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", doc.ID, doc.TenantID, expectedVersion).
		Updates(model.UpdateColumns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.DocumentModel{}).
		Where("id = ? AND tenant_id = ?", doc.ID, doc.TenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return billing.ErrDocumentNotFound
	}
	return shared.ErrConcurrencyConflict
}

func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter billing.DocumentFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(number) LIKE ? OR LOWER(notes) LIKE ?)", like, like)
	}
	return query
}
