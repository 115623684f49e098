package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/byteledger/backend/internal/domain/shared"
	infra "github.com/byteledger/backend/internal/infrastructure/printing"
	"github.com/byteledger/backend/internal/infrastructure/storage"
	"github.com/byteledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrGenerationFailed hides layout failures from API clients; the cause is logged
var ErrGenerationFailed = shared.NewDomainError("DOCUMENT_GENERATION_FAILED", "document could not be generated")

// DocumentService lays out, renders and stores billing documents
type DocumentService struct {
	documents billing.DocumentRepository
	parties   PartyDirectory
	engine    *printing.Engine
	renderers *infra.Registry
	storage   storage.DocumentStorage
	metrics   *telemetry.BillingMetrics
	viewOpts  printing.ViewOptions
	now       func() time.Time
	logger    *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documents billing.DocumentRepository,
	parties PartyDirectory,
	engine *printing.Engine,
	renderers *infra.Registry,
	store storage.DocumentStorage,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documents: documents,
		parties:   parties,
		engine:    engine,
		renderers: renderers,
		storage:   store,
		metrics:   telemetry.NewNoopBillingMetrics(),
		viewOpts:  printing.DefaultViewOptions(),
		now:       time.Now,
		logger:    logger,
	}
}

// SetMetrics sets the metrics recorder
func (s *DocumentService) SetMetrics(m *telemetry.BillingMetrics) {
	if m != nil {
		s.metrics = m
	}
}

// SetClock replaces time.Now, mainly for tests
func (s *DocumentService) SetClock(now func() time.Time) {
	s.now = now
}

// SetViewOptions changes the language and date layout of printed values
func (s *DocumentService) SetViewOptions(opts printing.ViewOptions) {
	s.viewOpts = opts
}

// rendered is the output of one layout and render pass
type rendered struct {
	doc    *billing.Document
	format infra.Format
	result *infra.RenderResult
}

// Generate renders a document and stores the file
func (s *DocumentService) Generate(ctx context.Context, tenantID, documentID uuid.UUID, req GenerateRequest) (*GenerateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "Generate",
		attribute.String(telemetry.SpanAttrTenantID, tenantID.String()),
		attribute.String(telemetry.SpanAttrDocumentID, documentID.String()),
		attribute.String(telemetry.SpanAttrFormat, req.Format))
	defer span.End()

	out, err := s.render(ctx, tenantID, documentID, req.Format)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	stored, err := s.storage.Store(ctx, &storage.StoreRequest{
		TenantID:    tenantID,
		DocumentID:  out.doc.ID,
		Number:      out.doc.Number,
		Extension:   out.format.Extension(),
		ContentType: out.result.ContentType,
		IssuedAt:    out.doc.IssueDate,
		Data:        out.result.Data,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	s.logger.Info("document generated",
		zap.String("document_id", out.doc.ID.String()),
		zap.String("number", out.doc.Number),
		zap.String("format", string(out.format)),
		zap.Int("pages", out.result.PageCount),
		zap.String("path", stored.Path),
		zap.Int64("size", stored.Size))

	span.SetAttributes(attribute.Int(telemetry.SpanAttrPages, out.result.PageCount))
	telemetry.SetOK(span)
	return &GenerateResponse{
		DocumentID:  out.doc.ID,
		Number:      out.doc.Number,
		Format:      string(out.format),
		Path:        stored.Path,
		URL:         stored.URL,
		ContentType: out.result.ContentType,
		PageCount:   out.result.PageCount,
		Size:        stored.Size,
		GeneratedAt: s.now(),
	}, nil
}

// Preview renders a document without storing it
func (s *DocumentService) Preview(ctx context.Context, tenantID, documentID uuid.UUID, req GenerateRequest) (*PreviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "Preview",
		attribute.String(telemetry.SpanAttrTenantID, tenantID.String()),
		attribute.String(telemetry.SpanAttrDocumentID, documentID.String()),
		attribute.String(telemetry.SpanAttrFormat, req.Format))
	defer span.End()

	out, err := s.render(ctx, tenantID, documentID, req.Format)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return &PreviewResult{
		Data:        out.result.Data,
		ContentType: out.result.ContentType,
		Filename:    fmt.Sprintf("%s.%s", out.doc.Number, out.format.Extension()),
		PageCount:   out.result.PageCount,
	}, nil
}

func (s *DocumentService) render(ctx context.Context, tenantID, documentID uuid.UUID, requested string) (*rendered, error) {
	start := time.Now()
	renderer, err := s.renderers.Get(infra.Format(requested))
	if err != nil {
		return nil, err
	}
	format := infra.Format(requested)
	if format == "" {
		format = s.renderers.DefaultFormat()
	}

	doc, err := s.documents.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	doc.Refresh(s.now())

	view, err := s.buildView(ctx, doc)
	if err != nil {
		return nil, err
	}

	pages, err := s.engine.Layout(view)
	if err != nil {
		s.metrics.RecordGeneration(ctx, string(format), string(doc.Kind), telemetry.OutcomeError, 0, time.Since(start))
		var overflow *printing.LayoutOverflowError
		if errors.As(err, &overflow) {
			s.logger.Warn("document exceeds page limit",
				zap.String("document_id", doc.ID.String()),
				zap.Int("items", len(doc.Items)),
				zap.Int("limit", overflow.Limit))
		} else {
			s.logger.Error("document layout failed",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err))
		}
		return nil, ErrGenerationFailed
	}

	org := view.Organization
	result, err := renderer.Render(ctx, &infra.RenderRequest{
		Pages: pages,
		Title: fmt.Sprintf("%s %s", doc.Title(), doc.Number),
		Meta: infra.RenderMeta{
			Author:    org.Name,
			Subject:   doc.Title(),
			Keywords:  []string{string(doc.Kind), doc.Number},
			CreatedAt: doc.UpdatedAt,
		},
	})
	if err != nil {
		s.metrics.RecordGeneration(ctx, string(format), string(doc.Kind), telemetry.OutcomeError, len(pages), time.Since(start))
		s.logger.Error("document rendering failed",
			zap.String("document_id", doc.ID.String()),
			zap.String("format", string(format)),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordGeneration(ctx, string(format), string(doc.Kind), telemetry.OutcomeSuccess, result.PageCount, time.Since(start))
	return &rendered{doc: doc, format: format, result: result}, nil
}

func (s *DocumentService) buildView(ctx context.Context, doc *billing.Document) (printing.DocumentView, error) {
	org, err := s.parties.Organization(ctx, doc.TenantID)
	if err != nil {
		return printing.DocumentView{}, err
	}
	recipient, err := s.parties.Recipient(ctx, doc.TenantID, doc.CustomerID)
	if err != nil {
		return printing.DocumentView{}, err
	}

	opts := s.viewOpts
	if doc.LinkedDocumentID != nil {
		linked, err := s.documents.FindByIDForTenant(ctx, doc.TenantID, *doc.LinkedDocumentID)
		switch {
		case err == nil:
			opts.ReferenceNumber = linked.Number
		case errors.Is(err, billing.ErrDocumentNotFound):
			s.logger.Warn("linked document missing", zap.String("linked_id", doc.LinkedDocumentID.String()))
		default:
			return printing.DocumentView{}, fmt.Errorf("failed to load linked document: %w", err)
		}
	}
	return printing.BuildView(doc, org, recipient, opts), nil
}
