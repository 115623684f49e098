package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_EnsureBreaksPage(t *testing.T) {
	cfg := DefaultLayoutConfig()
	c := newCursor(cfg)
	require.NoError(t, c.newPage())
	assert.Equal(t, cfg.Margins.Top, c.Y())

	hookCalls := 0
	c.SetPageStartHook(func(c *Cursor) error {
		hookCalls++
		return c.Advance(10)
	})

	require.NoError(t, c.Advance(c.Remaining()-5))
	assert.True(t, c.Fits(5))
	assert.False(t, c.Fits(6))

	require.NoError(t, c.Ensure(6))
	assert.Equal(t, 2, c.PageCount())
	assert.Equal(t, 1, hookCalls)
	assert.Equal(t, cfg.Margins.Top+10, c.Y())
}

func TestCursor_RejectsZeroHeight(t *testing.T) {
	c := newCursor(DefaultLayoutConfig())
	require.NoError(t, c.newPage())
	assert.ErrorIs(t, c.Ensure(0), ErrZeroHeightRow)
	assert.ErrorIs(t, c.Advance(-1), ErrZeroHeightRow)
}

func TestCursor_RowTallerThanPage(t *testing.T) {
	c := newCursor(DefaultLayoutConfig())
	require.NoError(t, c.newPage())
	assert.ErrorIs(t, c.Ensure(10000), ErrRowTooTall)
}

func TestCursor_PageCap(t *testing.T) {
	cfg := DefaultLayoutConfig()
	cfg.MaxPages = 2
	c := newCursor(cfg)
	require.NoError(t, c.newPage())
	require.NoError(t, c.newPage())

	err := c.newPage()
	var overflow *LayoutOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 2, overflow.Limit)
	assert.Equal(t, CodeLayoutOverflow, overflow.Code())
}

func TestCursor_GapStopsAtBottom(t *testing.T) {
	c := newCursor(DefaultLayoutConfig())
	require.NoError(t, c.newPage())
	c.Gap(100000)
	assert.Equal(t, 0.0, c.Remaining())
	assert.Equal(t, 1, c.PageCount())
}
