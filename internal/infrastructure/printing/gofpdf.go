package printing

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const defaultPDFFontFamily = "Helvetica"

// GofpdfConfig contains configuration for the gofpdf renderer
type GofpdfConfig struct {
	// FontFamily is a core PDF font. Default: Helvetica
	FontFamily string
	// Compress enables stream compression
	Compress bool
	// Creator is written to the PDF metadata
	Creator string
	Logger  *zap.Logger
}

// GofpdfRenderer writes layout instructions straight into a PDF
type GofpdfRenderer struct {
	config *GofpdfConfig
	logger *zap.Logger
}

// NewGofpdfRenderer creates a PDF renderer. It holds no resources.
func NewGofpdfRenderer(config *GofpdfConfig) *GofpdfRenderer {
	if config == nil {
		config = &GofpdfConfig{Compress: true}
	}
	if config.FontFamily == "" {
		config.FontFamily = defaultPDFFontFamily
	}
	if config.Creator == "" {
		config.Creator = "byteledger billing"
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GofpdfRenderer{config: config, logger: logger}
}

// Render draws every page into one PDF document
func (r *GofpdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start := time.Now()

	first := req.Pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetCompression(r.config.Compress)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetCatalogSort(true)
	r.applyMeta(pdf, req)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, page := range req.Pages {
		if err := ctx.Err(); err != nil {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, in := range page.Instructions {
			r.draw(pdf, tr, in)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error("gofpdf rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write PDF", err)
	}

	duration := time.Since(start)
	r.logger.Debug("PDF rendered",
		zap.Int("bytes", buf.Len()),
		zap.Int("pages", len(req.Pages)),
		zap.Duration("duration", duration))

	return &RenderResult{
		Data:           buf.Bytes(),
		ContentType:    "application/pdf",
		PageCount:      len(req.Pages),
		RenderDuration: duration,
	}, nil
}

func (r *GofpdfRenderer) applyMeta(pdf *gofpdf.Fpdf, req *RenderRequest) {
	pdf.SetCreator(r.config.Creator, true)
	if req.Title != "" {
		pdf.SetTitle(req.Title, true)
	}
	if req.Meta.Author != "" {
		pdf.SetAuthor(req.Meta.Author, true)
	}
	if req.Meta.Subject != "" {
		pdf.SetSubject(req.Meta.Subject, true)
	}
	if len(req.Meta.Keywords) > 0 {
		pdf.SetKeywords(strings.Join(req.Meta.Keywords, " "), true)
	}
	if !req.Meta.CreatedAt.IsZero() {
		pdf.SetCreationDate(req.Meta.CreatedAt)
		pdf.SetModificationDate(req.Meta.CreatedAt)
	}
}

func (r *GofpdfRenderer) draw(pdf *gofpdf.Fpdf, tr func(string) string, in printing.Instruction) {
	switch in.Kind {
	case printing.InstructionRule:
		width := in.H
		if width <= 0 {
			width = 0.5
		}
		pdf.SetLineWidth(width)
		pdf.Line(in.X, in.Y, in.X+in.W, in.Y)
	case printing.InstructionText:
		style := ""
		if in.Font.Bold {
			style = "B"
		}
		pdf.SetFont(r.config.FontFamily, style, in.Font.Size)
		pdf.SetXY(in.X, in.Y)
		pdf.CellFormat(in.W, in.H, tr(in.Text), "", 0, pdfAlign(in.Align), false, 0, "")
	}
}

// pdfAlign maps an alignment to gofpdf's alignStr, vertically centred in the line box
func pdfAlign(a printing.Align) string {
	switch a {
	case printing.AlignRight:
		return "RM"
	case printing.AlignCenter:
		return "CM"
	default:
		return "LM"
	}
}

// Close is a no-op
func (r *GofpdfRenderer) Close() error {
	return nil
}

var _ Renderer = (*GofpdfRenderer)(nil)
