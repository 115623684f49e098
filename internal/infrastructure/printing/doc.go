// Package printing turns laid-out pages into bytes.
//
// The layout engine in the domain printing package decides where every string and
// rule goes; the renderers here only draw those instructions:
//   - GofpdfRenderer writes PDF directly with gofpdf
//   - HTMLRenderer emits one absolutely positioned HTML page per layout page
//   - ChromedpRenderer prints the HTML output to PDF in headless Chrome
//
// Renderers are selected by format through a Registry:
//
//	registry, err := NewRegistryFromConfig(cfg.Render, logger)
//	if err != nil {
//	    return err
//	}
//	defer registry.Close()
//
//	renderer, err := registry.Get(FormatPDF)
//	result, err := renderer.Render(ctx, &RenderRequest{Pages: pages, Title: "INVOICE INV-1"})
package printing
