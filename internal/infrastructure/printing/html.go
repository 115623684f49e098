package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/byteledger/backend/internal/domain/printing"
	"go.uber.org/zap"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
{{- if .Author}}
<meta name="author" content="{{.Author}}">
{{- end}}
{{- if .Keywords}}
<meta name="keywords" content="{{.Keywords}}">
{{- end}}
<style>
@page { size: {{.PageSize}}; margin: 0; }
html, body { margin: 0; padding: 0; }
body { font-family: {{.FontFamily}}; color: #111; }
.page { position: relative; overflow: hidden; break-after: page; }
.page:last-child { break-after: auto; }
.t { position: absolute; white-space: pre; overflow: hidden; margin: 0; }
.r { position: absolute; border-top-style: solid; border-top-color: #111; }
.b { font-weight: bold; }
.L { text-align: left; }
.C { text-align: center; }
.R { text-align: right; }
</style>
</head>
<body>
{{- range .Pages}}
<section class="page" data-page="{{.Number}}" style="{{.Style}}">
{{- range .Items}}
{{- if .Rule}}
<div class="r" data-tag="{{.Tag}}" style="{{.Style}}"></div>
{{- else}}
<div class="{{.Class}}" data-tag="{{.Tag}}" style="{{.Style}}">{{.Text}}</div>
{{- end}}
{{- end}}
</section>
{{- end}}
</body>
</html>
`

// HTMLConfig contains configuration for the HTML renderer
type HTMLConfig struct {
	// FontFamily is the CSS font stack. Default: Helvetica, Arial, sans-serif
	FontFamily string
	Logger     *zap.Logger
}

// HTMLRenderer emits one absolutely positioned section per layout page
type HTMLRenderer struct {
	tmpl       *template.Template
	fontFamily string
	logger     *zap.Logger
}

type htmlDocument struct {
	Title      string
	Author     string
	Keywords   string
	PageSize   template.CSS
	FontFamily template.CSS
	Pages      []htmlPage
}

type htmlPage struct {
	Number int
	Style  template.CSS
	Items  []htmlItem
}

type htmlItem struct {
	Rule  bool
	Tag   string
	Class string
	Style template.CSS
	Text  string
}

// NewHTMLRenderer parses the page template
func NewHTMLRenderer(config *HTMLConfig) (*HTMLRenderer, error) {
	if config == nil {
		config = &HTMLConfig{}
	}
	fontFamily := config.FontFamily
	if fontFamily == "" {
		fontFamily = "Helvetica, Arial, sans-serif"
	}
	if strings.ContainsAny(fontFamily, "{};<>") {
		return nil, fmt.Errorf("invalid font family %q", fontFamily)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := template.New("document").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl, fontFamily: fontFamily, logger: logger}, nil
}

// Render writes a standalone HTML document
func (r *HTMLRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start := time.Now()

	doc := r.buildDocument(req)
	var buf bytes.Buffer
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "HTML rendering was cancelled", err)
	}
	if err := r.tmpl.Execute(&buf, doc); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to execute page template", err)
	}

	duration := time.Since(start)
	r.logger.Debug("HTML rendered",
		zap.Int("bytes", buf.Len()),
		zap.Int("pages", len(req.Pages)),
		zap.Duration("duration", duration))

	return &RenderResult{
		Data:           buf.Bytes(),
		ContentType:    "text/html; charset=utf-8",
		PageCount:      len(req.Pages),
		RenderDuration: duration,
	}, nil
}

func (r *HTMLRenderer) buildDocument(req *RenderRequest) htmlDocument {
	first := req.Pages[0]
	doc := htmlDocument{
		Title:      req.Title,
		Author:     req.Meta.Author,
		Keywords:   strings.Join(req.Meta.Keywords, ", "),
		PageSize:   template.CSS(pt(first.Width) + " " + pt(first.Height)),
		FontFamily: template.CSS(r.fontFamily),
		Pages:      make([]htmlPage, 0, len(req.Pages)),
	}
	for _, page := range req.Pages {
		hp := htmlPage{
			Number: page.Number,
			Style:  template.CSS("width:" + pt(page.Width) + ";height:" + pt(page.Height)),
			Items:  make([]htmlItem, 0, len(page.Instructions)),
		}
		for _, in := range page.Instructions {
			hp.Items = append(hp.Items, htmlItemFor(in))
		}
		doc.Pages = append(doc.Pages, hp)
	}
	return doc
}

func htmlItemFor(in printing.Instruction) htmlItem {
	if in.Kind == printing.InstructionRule {
		width := in.H
		if width <= 0 {
			width = 0.5
		}
		return htmlItem{
			Rule: true,
			Tag:  string(in.Tag),
			Style: template.CSS(fmt.Sprintf("left:%s;top:%s;width:%s;border-top-width:%s",
				pt(in.X), pt(in.Y), pt(in.W), pt(width))),
		}
	}

	class := "t " + htmlAlign(in.Align)
	if in.Font.Bold {
		class += " b"
	}
	return htmlItem{
		Tag:   string(in.Tag),
		Class: class,
		Style: template.CSS(fmt.Sprintf("left:%s;top:%s;width:%s;height:%s;line-height:%s;font-size:%s",
			pt(in.X), pt(in.Y), pt(in.W), pt(in.H), pt(in.H), pt(in.Font.Size))),
		Text: in.Text,
	}
}

func htmlAlign(a printing.Align) string {
	switch a {
	case printing.AlignRight, printing.AlignCenter:
		return string(a)
	default:
		return string(printing.AlignLeft)
	}
}

// pt formats a length in points with at most two decimals
func pt(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "pt"
}

// Close is a no-op
func (r *HTMLRenderer) Close() error {
	return nil
}

var _ Renderer = (*HTMLRenderer)(nil)
