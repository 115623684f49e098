package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/party"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/infrastructure/logger"
	"github.com/byteledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultLockWait   = 5 * time.Second
	maxNumberAttempts = 20
	serviceName       = "BillingService"
)

// ErrCustomerNotFound is returned when a document references an unknown customer
var ErrCustomerNotFound = shared.NewDomainError("NOT_FOUND", "Customer not found")

// ErrNumberTaken is returned when a requested document number is already in use
var ErrNumberTaken = shared.NewDomainError("ALREADY_EXISTS", "Document number already in use")

// Option configures a BillingService
type Option func(*BillingService)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *BillingService) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *BillingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *telemetry.BillingMetrics) Option {
	return func(s *BillingService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithIdempotency enables payment deduplication by Idempotency-Key
func WithIdempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) Option {
	return func(s *BillingService) {
		s.idempotency = store
		s.idempotencyCfg = cfg
	}
}

// WithCustomers enables customer existence checks on create
func WithCustomers(repo party.CustomerRepository) Option {
	return func(s *BillingService) {
		s.customers = repo
	}
}

// WithEventPublisher delivers domain events after each successful write
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *BillingService) {
		s.events = p
	}
}

// WithLockWait bounds how long a mutation waits for the document lock
func WithLockWait(d time.Duration) Option {
	return func(s *BillingService) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// BillingService handles estimates, sales and their payment ledgers
type BillingService struct {
	repo           billing.DocumentRepository
	locker         billing.DocumentLocker
	customers      party.CustomerRepository
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	metrics        *telemetry.BillingMetrics
	events         shared.EventPublisher
	lockWait       time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(repo billing.DocumentRepository, locker billing.DocumentLocker, opts ...Option) *BillingService {
	s := &BillingService{
		repo:     repo,
		locker:   locker,
		metrics:  telemetry.NewNoopBillingMetrics(),
		lockWait: defaultLockWait,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewTotals runs the calculator without touching storage
func (s *BillingService) PreviewTotals(_ context.Context, req QuoteTotalsRequest) (*TotalsResponse, error) {
	resp, err := QuoteTotals(req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateDocument creates an estimate or a sale
func (s *BillingService) CreateDocument(ctx context.Context, tenantID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "CreateDocument",
		attribute.String(telemetry.SpanAttrTenantID, tenantID.String()),
		attribute.String(telemetry.SpanAttrDocumentKind, req.Kind))
	defer span.End()

	now := s.now()
	kind := billing.DocumentKind(strings.ToUpper(req.Kind))
	if !kind.IsValid() {
		return nil, &billing.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document kind %q", req.Kind)}
	}

	if s.customers != nil {
		if _, err := s.customers.FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, ErrCustomerNotFound
			}
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
	}

	issueDate := now
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	number, err := s.resolveNumber(ctx, tenantID, kind, req.Number, issueDate)
	if err != nil {
		return nil, err
	}

	doc, err := NewDocumentFromRequest(tenantID, req, number, issueDate)
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Refresh(now)

	if err := s.repo.Create(ctx, doc); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	s.flushEvents(ctx, doc)

	s.logger.Info("billing document created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("kind", string(doc.Kind)),
		zap.String("total", doc.Totals.Total.String()))

	telemetry.SetOK(span)
	resp := ToDocumentResponse(doc, now)
	return &resp, nil
}

// GetDocument returns a document with its status refreshed
func (s *BillingService) GetDocument(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	doc.Refresh(now)
	resp := ToDocumentResponse(doc, now)
	return &resp, nil
}

// ListDocuments returns a page of documents
func (s *BillingService) ListDocuments(ctx context.Context, tenantID uuid.UUID, req ListDocumentsRequest) (*shared.Paginated[DocumentResponse], error) {
	filter := billing.DocumentFilter{Filter: shared.DefaultFilter()}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	if req.Kind != "" {
		kind := billing.DocumentKind(strings.ToUpper(req.Kind))
		filter.Kind = &kind
	}
	if req.Status != "" {
		status := billing.Status(strings.ToUpper(req.Status))
		if !status.IsValid() {
			return nil, &billing.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", req.Status)}
		}
		filter.Status = &status
	}
	filter.CustomerID = req.CustomerID

	docs, err := s.repo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	now := s.now()
	items := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		docs[i].Refresh(now)
		items = append(items, ToDocumentResponse(&docs[i], now))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetLedger returns the ledger of a sale
func (s *BillingService) GetLedger(ctx context.Context, tenantID, documentID uuid.UUID) (*LedgerResponse, error) {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Kind != billing.DocumentKindSale {
		return nil, billing.ErrPaymentsNotAccepted
	}
	doc.Refresh(s.now())
	resp := ToLedgerResponse(doc, doc.Ledger())
	return &resp, nil
}

// UpdateItems replaces the line items of an unlocked document
func (s *BillingService) UpdateItems(ctx context.Context, tenantID, documentID uuid.UUID, req UpdateItemsRequest) (*DocumentResponse, error) {
	items := toLineItems(req.Items)
	return s.mutate(ctx, tenantID, documentID, "UpdateItems", func(doc *billing.Document, now time.Time) error {
		return doc.ReplaceItems(items, now)
	})
}

// UpdatePricing replaces the discount and tax of an unlocked document
func (s *BillingService) UpdatePricing(ctx context.Context, tenantID, documentID uuid.UUID, req UpdatePricingRequest) (*DocumentResponse, error) {
	discount := toDiscountSpec(req.Discount)
	tax := toTaxSpec(req.TaxRatePercent)
	return s.mutate(ctx, tenantID, documentID, "UpdatePricing", func(doc *billing.Document, now time.Time) error {
		return doc.UpdatePricing(discount, tax, now)
	})
}

// SendEstimate marks a draft estimate as sent
func (s *BillingService) SendEstimate(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, documentID, "SendEstimate", func(doc *billing.Document, now time.Time) error {
		return doc.Send(now)
	})
}

// ApproveEstimate marks a sent estimate as approved
func (s *BillingService) ApproveEstimate(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, documentID, "ApproveEstimate", func(doc *billing.Document, now time.Time) error {
		return doc.Approve(now)
	})
}

// ConvertEstimate creates a sale from an approved estimate. Both documents are
// written in one transaction.
func (s *BillingService) ConvertEstimate(ctx context.Context, tenantID, documentID uuid.UUID, req ConvertEstimateRequest) (*ConvertEstimateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "ConvertEstimate",
		attribute.String(telemetry.SpanAttrTenantID, tenantID.String()),
		attribute.String(telemetry.SpanAttrDocumentID, documentID.String()))
	defer span.End()

	unlock, err := s.lock(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	estimate, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	issueDate := now
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	number, err := s.resolveNumber(ctx, tenantID, billing.DocumentKindSale, req.Number, issueDate)
	if err != nil {
		return nil, err
	}

	expectedVersion := estimate.Version
	sale, err := estimate.ConvertToSale(number, issueDate, req.DueDate, now)
	if err != nil {
		return nil, err
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now
	sale.Refresh(now)

	if err := s.repo.SaveConversion(ctx, estimate, expectedVersion, sale); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.flushEvents(ctx, estimate)
	s.flushEvents(ctx, sale)

	s.logger.Info("estimate converted to sale",
		zap.String("tenant_id", tenantID.String()),
		zap.String("estimate_id", estimate.ID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.Number))

	telemetry.SetOK(span)
	return &ConvertEstimateResponse{
		Estimate: ToDocumentResponse(estimate, now),
		Sale:     ToDocumentResponse(sale, now),
	}, nil
}

// RecordPayment appends a payment to a sale.
//
// Appends to one document are serialized by the document lock, and the save is
// additionally version-checked. A request whose idempotency key was already used
// returns the current ledger without appending.
func (s *BillingService) RecordPayment(ctx context.Context, tenantID, documentID uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "RecordPayment",
		attribute.String(telemetry.SpanAttrTenantID, tenantID.String()),
		attribute.String(telemetry.SpanAttrDocumentID, documentID.String()),
		attribute.String(telemetry.SpanAttrPaymentMethod, req.Method),
		attribute.Int64(telemetry.SpanAttrAmountCents, req.Amount.Cents()))
	defer span.End()

	method := strings.ToUpper(req.Method)
	key := s.idempotencyKey(tenantID, documentID, req.IdempotencyKey)
	if key != "" {
		claimed, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !claimed {
			s.metrics.RecordPayment(ctx, method, telemetry.OutcomeReplayed, req.Amount.Cents())
			return s.replayPayment(ctx, tenantID, documentID)
		}
	}

	resp, err := s.appendPayment(ctx, tenantID, documentID, method, req)
	if err != nil {
		if key != "" {
			if releaseErr := s.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(releaseErr))
			}
		}
		s.metrics.RecordPayment(ctx, method, paymentOutcome(err), req.Amount.Cents())
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordPayment(ctx, method, telemetry.OutcomeSuccess, req.Amount.Cents())
	telemetry.SetOK(span)
	return resp, nil
}

func (s *BillingService) appendPayment(ctx context.Context, tenantID, documentID uuid.UUID, method string, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	unlock, err := s.lock(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	expectedVersion := doc.Version
	state, err := doc.RecordPayment(billing.PaymentInput{
		Amount: req.Amount,
		Method: billing.PaymentMethod(method),
		Notes:  req.Notes,
		PaidAt: paidAt,
	}, now)
	if err != nil {
		var overpayment *billing.OverpaymentError
		if errors.As(err, &overpayment) {
			s.logger.Info("payment rejected: exceeds balance",
				zap.String("document_id", documentID.String()),
				zap.String("attempted", overpayment.Attempted.String()),
				zap.String("balance", overpayment.Balance.String()))
		}
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, doc, expectedVersion); err != nil {
		return nil, err
	}
	s.flushEvents(ctx, doc)

	s.logger.Info("payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.Int("sequence", state.Sequence),
		zap.String("amount", req.Amount.String()),
		zap.String("balance", state.BalanceAmount.String()),
		zap.String("status", string(doc.Status)))

	return &RecordPaymentResponse{Ledger: ToLedgerResponse(doc, state)}, nil
}

func (s *BillingService) replayPayment(ctx context.Context, tenantID, documentID uuid.UUID) (*RecordPaymentResponse, error) {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	doc.Refresh(s.now())
	s.logger.Info("payment replayed by idempotency key", zap.String("document_id", documentID.String()))
	return &RecordPaymentResponse{Ledger: ToLedgerResponse(doc, doc.Ledger()), Replayed: true}, nil
}

func (s *BillingService) idempotencyKey(tenantID, documentID uuid.UUID, key string) string {
	key = strings.TrimSpace(key)
	if key == "" || s.idempotency == nil || !s.idempotencyCfg.Enabled {
		return ""
	}
	return fmt.Sprintf("payment:%s:%s:%s", tenantID, documentID, key)
}

func paymentOutcome(err error) string {
	var overpayment *billing.OverpaymentError
	switch {
	case errors.As(err, &overpayment):
		return telemetry.OutcomeRejected
	case errors.Is(err, shared.ErrConcurrencyConflict), errors.Is(err, shared.ErrLockTimeout):
		return telemetry.OutcomeConflict
	default:
		return telemetry.OutcomeError
	}
}

// mutate runs fn on the latest version of a document under its lock and saves it
func (s *BillingService) mutate(ctx context.Context, tenantID, documentID uuid.UUID, op string, fn func(*billing.Document, time.Time) error) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op,
		attribute.String(telemetry.SpanAttrTenantID, tenantID.String()),
		attribute.String(telemetry.SpanAttrDocumentID, documentID.String()))
	defer span.End()

	unlock, err := s.lock(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	expectedVersion := doc.Version
	if err := fn(doc, now); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, doc, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.flushEvents(ctx, doc)

	s.logger.Info("billing document updated",
		zap.String("operation", op),
		zap.String("document_id", doc.ID.String()),
		zap.String("status", string(doc.Status)),
		zap.Int("version", doc.Version))

	telemetry.SetOK(span)
	resp := ToDocumentResponse(doc, now)
	return &resp, nil
}

func (s *BillingService) lock(ctx context.Context, documentID uuid.UUID) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, documentID)
	if err != nil {
		s.logger.Warn("document lock not acquired",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
		return nil, err
	}
	return unlock, nil
}

// resolveNumber validates a requested number or generates the next free one,
// formatted EST-YYYY-NNNNN or INV-YYYY-NNNNN
func (s *BillingService) resolveNumber(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, requested string, issueDate time.Time) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		exists, err := s.repo.ExistsByNumber(ctx, tenantID, requested)
		if err != nil {
			return "", fmt.Errorf("failed to check document number: %w", err)
		}
		if exists {
			return "", ErrNumberTaken
		}
		return requested, nil
	}

	prefix := "INV"
	if kind == billing.DocumentKindEstimate {
		prefix = "EST"
	}
	count, err := s.repo.CountForTenant(ctx, tenantID, billing.DocumentFilter{Kind: &kind})
	if err != nil {
		return "", fmt.Errorf("failed to count documents: %w", err)
	}
	for i := int64(1); i <= maxNumberAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d-%05d", prefix, issueDate.Year(), count+i)
		exists, err := s.repo.ExistsByNumber(ctx, tenantID, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check document number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrNumberTaken
}

// flushEvents hands the saved aggregate's events to the publisher, or only logs
// them when none is configured
func (s *BillingService) flushEvents(ctx context.Context, doc *billing.Document) {
	events := doc.GetDomainEvents()
	doc.ClearDomainEvents()
	if len(events) == 0 {
		return
	}
	if s.events == nil {
		for _, event := range events {
			s.logger.Debug("domain event",
				zap.String("event_type", event.EventType()),
				zap.String("aggregate_id", event.AggregateID().String()))
		}
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish domain events",
			zap.String("document_id", doc.ID.String()),
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}
