package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTableGeometry(t *testing.T) {
	widths := ColumnWidths{Total: 72, UnitPrice: 72, Quantity: 40, Kind: 56}
	g, err := ComputeTableGeometry(36, 576, widths, 8, 72)
	require.NoError(t, err)

	assert.Equal(t, 576.0, g.Total.Right())
	assert.Equal(t, g.Total.X-8, g.UnitPrice.Right())
	assert.Equal(t, g.UnitPrice.X-8, g.Quantity.Right())
	assert.Equal(t, g.Quantity.X-8, g.Kind.Right())
	assert.Equal(t, 36.0, g.Name.X)
	assert.Equal(t, g.Kind.X-8, g.Name.Right())
	assert.Equal(t, 268.0, g.Name.Width)
}

func TestComputeTableGeometry_TooNarrow(t *testing.T) {
	widths := ColumnWidths{Total: 100, UnitPrice: 100, Quantity: 100, Kind: 100}
	_, err := ComputeTableGeometry(0, 400, widths, 8, 72)
	assert.ErrorIs(t, err, ErrColumnsTooWide)
}

func TestLayoutConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultLayoutConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*LayoutConfig)
	}{
		{"paper", func(c *LayoutConfig) { c.PaperSize = "TABLOID" }},
		{"font", func(c *LayoutConfig) { c.FontSize = 0 }},
		{"glyph ratio", func(c *LayoutConfig) { c.GlyphWidthRatio = 0 }},
		{"max pages", func(c *LayoutConfig) { c.MaxPages = 0 }},
		{"negative margin", func(c *LayoutConfig) { c.Margins.Top = -1 }},
		{"line height", func(c *LayoutConfig) { c.LineHeightFactor = 0.5 }},
		{"columns", func(c *LayoutConfig) { c.Columns.Total = 0 }},
		{"body too short", func(c *LayoutConfig) { c.FontSize = 200; c.TitleFontSize = 200 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLayoutConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLayoutConfig_PageSize(t *testing.T) {
	cfg := DefaultLayoutConfig()
	w, h := cfg.PageSize()
	assert.Equal(t, 612.0, w)
	assert.Equal(t, 792.0, h)

	cfg.Orientation = OrientationLandscape
	w, h = cfg.PageSize()
	assert.Equal(t, 792.0, w)
	assert.Equal(t, 612.0, h)

	assert.Equal(t, 59, DefaultLayoutConfig().MaxChars(268, 9))
	assert.Equal(t, 1, DefaultLayoutConfig().MaxChars(1, 9))
}

func TestNewMargins(t *testing.T) {
	_, err := NewMargins(-1, 0, 0, 0)
	assert.Error(t, err)
	_, err = NewMargins(0, 0, 200, 0)
	assert.Error(t, err)
	m, err := NewMargins(10, 20, 30, 40)
	require.NoError(t, err)
	assert.Equal(t, Margins{Top: 10, Right: 20, Bottom: 30, Left: 40}, m)
}
