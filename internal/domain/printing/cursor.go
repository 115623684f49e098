package printing

// Cursor tracks the vertical write position across pages. Every block asks it
// whether a row fits, lets it break the page when it does not, and advances it
// after drawing. Content never moves back to an earlier page.
type Cursor struct {
	cfg         LayoutConfig
	width       float64
	height      float64
	top         float64
	bottom      float64
	y           float64
	pages       []*Page
	onPageStart func(c *Cursor) error
}

func newCursor(cfg LayoutConfig) *Cursor {
	w, h := cfg.PageSize()
	return &Cursor{
		cfg:    cfg,
		width:  w,
		height: h,
		top:    cfg.Margins.Top,
		bottom: h - cfg.Margins.Bottom - cfg.FooterBand(),
	}
}

// Y returns the current write position, measured from the top of the page
func (c *Cursor) Y() float64 {
	return c.y
}

// Remaining returns the vertical space left on the current page
func (c *Cursor) Remaining() float64 {
	return c.bottom - c.y
}

// Fits reports whether a row of height h fits on the current page
func (c *Cursor) Fits(h float64) bool {
	return len(c.pages) > 0 && c.y+h <= c.bottom
}

// Ensure starts a new page when h does not fit on the current one. The page-start
// hook runs on the new page before Ensure returns, and its output counts against
// the space available to h.
func (c *Cursor) Ensure(h float64) error {
	if h <= 0 {
		return ErrZeroHeightRow
	}
	if c.Fits(h) {
		return nil
	}
	if err := c.newPage(); err != nil {
		return err
	}
	if !c.Fits(h) {
		return ErrRowTooTall
	}
	return nil
}

// Advance moves the cursor down by h, which must be positive
func (c *Cursor) Advance(h float64) error {
	if h <= 0 {
		return ErrZeroHeightRow
	}
	c.y += h
	return nil
}

// Gap moves the cursor down by h without starting a page; it stops at the bottom of the body
func (c *Cursor) Gap(h float64) {
	c.y += h
	if c.y > c.bottom {
		c.y = c.bottom
	}
}

// SetPageStartHook installs fn to run at the top of every page started from now on.
// Pass nil to remove it.
func (c *Cursor) SetPageStartHook(fn func(c *Cursor) error) {
	c.onPageStart = fn
}

// Draw appends an instruction to the current page
func (c *Cursor) Draw(in Instruction) {
	page := c.pages[len(c.pages)-1]
	page.Instructions = append(page.Instructions, in)
}

// PageCount returns the number of pages started so far
func (c *Cursor) PageCount() int {
	return len(c.pages)
}

func (c *Cursor) newPage() error {
	if len(c.pages) >= c.cfg.MaxPages {
		return &LayoutOverflowError{Limit: c.cfg.MaxPages}
	}
	c.pages = append(c.pages, &Page{
		Number: len(c.pages) + 1,
		Width:  c.width,
		Height: c.height,
	})
	c.y = c.top
	if c.onPageStart != nil {
		return c.onPageStart(c)
	}
	return nil
}

func (c *Cursor) result() []Page {
	out := make([]Page, len(c.pages))
	for i, p := range c.pages {
		out[i] = *p
	}
	return out
}
