package printing

import (
	"fmt"
)

// ColumnWidths holds the fixed widths, in points, of the item table columns
// anchored to the right edge. The name column takes whatever remains.
type ColumnWidths struct {
	Total     float64 `json:"total"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
	Kind      float64 `json:"kind"`
}

// LayoutConfig holds the canvas constants of the layout engine
type LayoutConfig struct {
	PaperSize        PaperSize
	Orientation      Orientation
	Margins          Margins
	FontSize         float64 // base font size in points
	TitleFontSize    float64
	LineHeightFactor float64 // line height = font size × factor
	GlyphWidthRatio  float64 // average glyph width = font size × ratio
	MaxPages         int
	MaxNameLines     int     // wrap cap of the item name column
	RowPadding       float64 // vertical padding added to every table row
	BlockSpacing     float64 // gap between blocks
	ColumnGap        float64
	Columns          ColumnWidths
	MinNameWidth     float64
}

// DefaultLayoutConfig returns a US Letter portrait layout with half-inch margins
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PaperSize:        PaperSizeLetter,
		Orientation:      OrientationPortrait,
		Margins:          DefaultMargins(),
		FontSize:         9,
		TitleFontSize:    16,
		LineHeightFactor: 1.25,
		GlyphWidthRatio:  0.5,
		MaxPages:         50,
		MaxNameLines:     3,
		RowPadding:       4,
		BlockSpacing:     12,
		ColumnGap:        8,
		Columns: ColumnWidths{
			Total:     72,
			UnitPrice: 72,
			Quantity:  40,
			Kind:      56,
		},
		MinNameWidth: 72,
	}
}

// PageSize returns the oriented page dimensions in points
func (c LayoutConfig) PageSize() (width, height float64) {
	w, h := c.PaperSize.Dimensions()
	if c.Orientation == OrientationLandscape {
		return h, w
	}
	return w, h
}

// LineHeight returns the height of one text line at the base font
func (c LayoutConfig) LineHeight() float64 {
	return c.FontSize * c.LineHeightFactor
}

// FooterBand returns the height reserved at the bottom of every page for the footer
func (c LayoutConfig) FooterBand() float64 {
	return 2 * c.LineHeight()
}

// MaxChars returns how many glyphs of fontSize fit in width
func (c LayoutConfig) MaxChars(width, fontSize float64) int {
	n := int(width / (fontSize * c.GlyphWidthRatio))
	if n < 1 {
		return 1
	}
	return n
}

// RowHeight returns the height of a table row holding the given number of lines
func (c LayoutConfig) RowHeight(lines int) float64 {
	if lines < 1 {
		lines = 1
	}
	return float64(lines)*c.LineHeight() + c.RowPadding
}

// Validate checks that the configuration describes a usable canvas
func (c LayoutConfig) Validate() error {
	if !c.PaperSize.IsValid() {
		return fmt.Errorf("invalid paper size %q", c.PaperSize)
	}
	if c.Orientation != "" && !c.Orientation.IsValid() {
		return fmt.Errorf("invalid orientation %q", c.Orientation)
	}
	if _, err := NewMargins(c.Margins.Top, c.Margins.Right, c.Margins.Bottom, c.Margins.Left); err != nil {
		return err
	}
	if c.FontSize <= 0 || c.TitleFontSize <= 0 {
		return fmt.Errorf("font sizes must be positive")
	}
	if c.LineHeightFactor < 1 {
		return fmt.Errorf("line height factor must be at least 1")
	}
	if c.GlyphWidthRatio <= 0 {
		return fmt.Errorf("glyph width ratio must be positive")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1")
	}
	if c.MaxNameLines < 1 {
		return fmt.Errorf("max name lines must be at least 1")
	}
	if c.RowPadding < 0 || c.BlockSpacing < 0 || c.ColumnGap < 0 {
		return fmt.Errorf("spacing values cannot be negative")
	}
	if c.Columns.Total <= 0 || c.Columns.UnitPrice <= 0 || c.Columns.Quantity <= 0 || c.Columns.Kind <= 0 {
		return fmt.Errorf("column widths must be positive")
	}

	_, h := c.PageSize()
	body := h - c.Margins.Top - c.Margins.Bottom - c.FooterBand()
	if body < c.RowHeight(c.MaxNameLines)+c.RowHeight(1) {
		return fmt.Errorf("page body of %.1fpt cannot hold a table header and one item row", body)
	}
	return nil
}
