package printing

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/byteledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Registry maps formats to renderers
type Registry struct {
	mu            sync.RWMutex
	renderers     map[Format]Renderer
	defaultFormat Format
}

// NewRegistry creates an empty registry. An empty format passed to Get selects defaultFormat.
func NewRegistry(defaultFormat Format) *Registry {
	return &Registry{
		renderers:     make(map[Format]Renderer),
		defaultFormat: defaultFormat,
	}
}

// Register adds or replaces the renderer for a format
func (r *Registry) Register(format Format, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[format] = renderer
}

// DefaultFormat returns the format used when none is requested
func (r *Registry) DefaultFormat() Format {
	return r.defaultFormat
}

// Get returns the renderer for a format
func (r *Registry) Get(format Format) (Renderer, error) {
	if format == "" {
		format = r.defaultFormat
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[format]
	if !ok {
		return nil, NewRenderError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported output format %q", format), nil)
	}
	return renderer, nil
}

// Formats returns the registered formats in sorted order
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]Format, 0, len(r.renderers))
	for f := range r.renderers {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// Close closes every registered renderer
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for format, renderer := range r.renderers {
		if err := renderer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s renderer: %w", format, err))
		}
	}
	return errors.Join(errs...)
}

// NewRegistryFromConfig registers the pdf and html renderers, plus chrome-pdf when enabled
func NewRegistryFromConfig(cfg config.RenderConfig, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultFormat := Format(cfg.DefaultFormat)
	if defaultFormat == "" {
		defaultFormat = FormatPDF
	}
	if !defaultFormat.IsValid() {
		return nil, fmt.Errorf("invalid default render format %q", cfg.DefaultFormat)
	}

	registry := NewRegistry(defaultFormat)
	registry.Register(FormatPDF, NewGofpdfRenderer(&GofpdfConfig{
		Compress: true,
		Logger:   logger.Named("gofpdf"),
	}))

	html, err := NewHTMLRenderer(&HTMLConfig{Logger: logger.Named("html")})
	if err != nil {
		return nil, err
	}
	registry.Register(FormatHTML, html)

	if cfg.ChromeEnabled {
		chrome, err := NewChromedpRenderer(&ChromedpConfig{
			DefaultTimeout: cfg.ChromeTimeout,
			RemoteURL:      cfg.ChromeRemoteURL,
			NoSandbox:      true,
			Logger:         logger.Named("chromedp"),
		}, html)
		if err != nil {
			return nil, err
		}
		registry.Register(FormatChromePDF, chrome)
	}

	if _, err := registry.Get(defaultFormat); err != nil {
		registry.Close()
		return nil, err
	}
	return registry, nil
}

// LayoutConfigFrom applies the render settings over the default layout
func LayoutConfigFrom(cfg config.RenderConfig) printing.LayoutConfig {
	layout := printing.DefaultLayoutConfig()
	if cfg.PaperSize != "" {
		layout.PaperSize = printing.PaperSize(cfg.PaperSize)
	}
	if cfg.Orientation != "" {
		layout.Orientation = printing.Orientation(cfg.Orientation)
	}
	if cfg.Margin > 0 {
		layout.Margins = printing.UniformMargins(cfg.Margin)
	}
	if cfg.FontSize > 0 {
		layout.FontSize = cfg.FontSize
	}
	if cfg.GlyphWidthRatio > 0 {
		layout.GlyphWidthRatio = cfg.GlyphWidthRatio
	}
	if cfg.MaxPages > 0 {
		layout.MaxPages = cfg.MaxPages
	}
	return layout
}
