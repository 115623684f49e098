package printing

import (
	"fmt"
	"strings"

	"github.com/byteledger/backend/internal/domain/shared/valueobject"
)

// TotalsContinued heads a page that starts partway through the totals rows
const TotalsContinued = "Totals (continued)"

// Engine lays out documents with a fixed configuration. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	cfg LayoutConfig
}

// NewEngine creates a layout engine. The configuration is validated by Layout.
func NewEngine(cfg LayoutConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine configuration
func (e *Engine) Config() LayoutConfig {
	return e.cfg
}

// layoutRun holds the per-call derived geometry
type layoutRun struct {
	cfg     LayoutConfig
	cursor  *Cursor
	left    float64
	right   float64
	table   TableGeometry
	payment paymentGeometry
	body    Font
	bold    Font
}

type paymentGeometry struct {
	Date   Column
	Method Column
	Notes  Column
	Amount Column
}

// Layout turns view into pages. On error no pages are returned.
func (e *Engine) Layout(view DocumentView) ([]Page, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}

	run, err := e.newRun()
	if err != nil {
		return nil, err
	}
	if err := run.cursor.newPage(); err != nil {
		return nil, err
	}

	steps := []func(DocumentView) error{
		run.headerBlock,
		run.recipientBlock,
		run.itemTable,
		run.totalsBlock,
		run.paymentsBlock,
		run.notesBlock,
	}
	for _, step := range steps {
		if err := step(view); err != nil {
			return nil, err
		}
	}
	run.footers()
	return run.cursor.result(), nil
}

func (e *Engine) newRun() (*layoutRun, error) {
	cfg := e.cfg
	width, _ := cfg.PageSize()
	left := cfg.Margins.Left
	right := width - cfg.Margins.Right

	table, err := ComputeTableGeometry(left, right, cfg.Columns, cfg.ColumnGap, cfg.MinNameWidth)
	if err != nil {
		return nil, err
	}

	dateWidth := cfg.Columns.UnitPrice
	methodWidth := cfg.Columns.UnitPrice
	payment := paymentGeometry{
		Date:   Column{X: left, Width: dateWidth},
		Method: Column{X: left + dateWidth + cfg.ColumnGap, Width: methodWidth},
		Amount: table.Total,
	}
	notesX := payment.Method.Right() + cfg.ColumnGap
	payment.Notes = Column{X: notesX, Width: table.UnitPrice.Right() - notesX}
	if payment.Notes.Width <= 0 {
		return nil, ErrColumnsTooWide
	}

	return &layoutRun{
		cfg:     cfg,
		cursor:  newCursor(cfg),
		left:    left,
		right:   right,
		table:   table,
		payment: payment,
		body:    Font{Size: cfg.FontSize},
		bold:    Font{Size: cfg.FontSize, Bold: true},
	}, nil
}

type textLine struct {
	text string
	font Font
}

func (r *layoutRun) lineHeight(f Font) float64 {
	return f.Size * r.cfg.LineHeightFactor
}

func (r *layoutRun) linesHeight(lines []textLine) float64 {
	var h float64
	for _, l := range lines {
		h += r.lineHeight(l.font)
	}
	return h
}

func (r *layoutRun) text(tag Tag, x, y, w float64, s string, f Font, align Align) {
	r.cursor.Draw(Instruction{
		Kind:  InstructionText,
		Tag:   tag,
		X:     x,
		Y:     y,
		W:     w,
		H:     r.lineHeight(f),
		Text:  s,
		Font:  f,
		Align: align,
	})
}

func (r *layoutRun) rule(tag Tag, x, y, w float64) {
	r.cursor.Draw(Instruction{Kind: InstructionRule, Tag: tag, X: x, Y: y, W: w, H: 0.5})
}

func (r *layoutRun) spacing() {
	if r.cfg.BlockSpacing > 0 {
		r.cursor.Gap(r.cfg.BlockSpacing)
	}
}

// drawStack draws lines top-down inside a column starting at y
func (r *layoutRun) drawStack(tag Tag, col Column, y float64, lines []textLine, align Align) {
	for _, l := range lines {
		r.text(tag, col.X, y, col.Width, l.text, l.font, align)
		y += r.lineHeight(l.font)
	}
}

// headerBlock draws the organization card on the left and the meta block right-aligned
// on the right, sharing one band.
func (r *layoutRun) headerBlock(view DocumentView) error {
	contentWidth := r.right - r.left
	leftCol := Column{X: r.left, Width: contentWidth * 0.55}
	metaCol := Column{X: r.left + contentWidth*0.55 + r.cfg.ColumnGap, Width: contentWidth*0.45 - r.cfg.ColumnGap}
	nameFont := Font{Size: r.cfg.FontSize + 3, Bold: true}

	var header []textLine
	if name := strings.TrimSpace(view.Organization.Name); name != "" {
		header = append(header, textLine{Truncate(name, r.cfg.MaxChars(leftCol.Width, nameFont.Size)), nameFont})
	}
	maxChars := r.cfg.MaxChars(leftCol.Width, r.cfg.FontSize)
	for _, addr := range view.Organization.AddressLines {
		if strings.TrimSpace(addr) == "" {
			continue
		}
		wrapped, _ := Wrap(addr, maxChars, 0)
		for _, w := range wrapped {
			header = append(header, textLine{w, r.body})
		}
	}
	for _, c := range []struct {
		label string
		value valueobject.Optional[string]
	}{
		{"Tel: ", view.Organization.Phone},
		{"", view.Organization.Email},
		{"", view.Organization.Website},
		{"Tax ID: ", view.Organization.TaxID},
	} {
		v, ok := c.value.Get()
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		header = append(header, textLine{Truncate(c.label+strings.TrimSpace(v), maxChars), r.body})
	}

	titleFont := Font{Size: r.cfg.TitleFontSize, Bold: true}
	metaChars := r.cfg.MaxChars(metaCol.Width, r.cfg.FontSize)
	meta := []textLine{{Truncate(view.Title, r.cfg.MaxChars(metaCol.Width, titleFont.Size)), titleFont}}
	for _, f := range view.Meta {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		meta = append(meta, textLine{Truncate(f.Label+" "+f.Value, metaChars), r.body})
	}

	band := r.linesHeight(header)
	if h := r.linesHeight(meta); h > band {
		band = h
	}
	if err := r.cursor.Ensure(band); err != nil {
		return err
	}
	y := r.cursor.Y()
	r.drawStack(TagHeader, leftCol, y, header, AlignLeft)
	r.drawStack(TagMeta, metaCol, y, meta, AlignRight)
	if err := r.cursor.Advance(band); err != nil {
		return err
	}
	r.spacing()
	return nil
}

// recipientBlock draws the customer name and its address sub-blocks, up to three
// side by side per band, each wrapped to its own column width.
func (r *layoutRun) recipientBlock(view DocumentView) error {
	rc := view.Recipient
	if strings.TrimSpace(rc.Name) == "" && len(rc.Addresses) == 0 {
		return nil
	}
	full := Column{X: r.left, Width: r.right - r.left}
	fullChars := r.cfg.MaxChars(full.Width, r.cfg.FontSize)

	lines := []textLine{{"Bill to", r.bold}}
	if name := strings.TrimSpace(rc.Name); name != "" {
		lines = append(lines, textLine{Truncate(name, fullChars), r.bold})
	}
	if v, ok := rc.Phone.Get(); ok && strings.TrimSpace(v) != "" {
		lines = append(lines, textLine{Truncate(v, fullChars), r.body})
	}
	if v, ok := rc.Email.Get(); ok && strings.TrimSpace(v) != "" {
		lines = append(lines, textLine{Truncate(v, fullChars), r.body})
	}
	h := r.linesHeight(lines)
	if err := r.cursor.Ensure(h); err != nil {
		return err
	}
	r.drawStack(TagRecipient, full, r.cursor.Y(), lines, AlignLeft)
	if err := r.cursor.Advance(h); err != nil {
		return err
	}

	var blocks []AddressBlock
	for _, b := range rc.Addresses {
		if hasContent(b.Lines) {
			blocks = append(blocks, b)
		}
	}
	const perBand = 3
	for start := 0; start < len(blocks); start += perBand {
		end := start + perBand
		if end > len(blocks) {
			end = len(blocks)
		}
		if err := r.addressBand(blocks[start:end]); err != nil {
			return err
		}
	}
	r.spacing()
	return nil
}

func (r *layoutRun) addressBand(blocks []AddressBlock) error {
	n := float64(len(blocks))
	width := (r.right - r.left - (n-1)*r.cfg.ColumnGap) / n
	maxChars := r.cfg.MaxChars(width, r.cfg.FontSize)

	stacks := make([][]textLine, len(blocks))
	var band float64
	for i, b := range blocks {
		var stack []textLine
		if label := strings.TrimSpace(b.Label); label != "" {
			stack = append(stack, textLine{Truncate(label, maxChars), r.bold})
		}
		for _, l := range b.Lines {
			if strings.TrimSpace(l) == "" {
				continue
			}
			wrapped, _ := Wrap(l, maxChars, 0)
			for _, w := range wrapped {
				stack = append(stack, textLine{w, r.body})
			}
		}
		stacks[i] = stack
		if h := r.linesHeight(stack); h > band {
			band = h
		}
	}
	band += r.cfg.RowPadding

	if err := r.cursor.Ensure(band); err != nil {
		return err
	}
	y := r.cursor.Y() + r.cfg.RowPadding
	for i, stack := range stacks {
		col := Column{X: r.left + float64(i)*(width+r.cfg.ColumnGap), Width: width}
		r.drawStack(TagRecipient, col, y, stack, AlignLeft)
	}
	return r.cursor.Advance(band)
}

func (r *layoutRun) drawTableHeader(c *Cursor) error {
	h := r.cfg.RowHeight(1)
	y := c.Y() + r.cfg.RowPadding/2
	g := r.table
	r.text(TagTableHeader, g.Name.X, y, g.Name.Width, "Description", r.bold, AlignLeft)
	r.text(TagTableHeader, g.Kind.X, y, g.Kind.Width, "Type", r.bold, AlignLeft)
	r.text(TagTableHeader, g.Quantity.X, y, g.Quantity.Width, "Qty", r.bold, AlignRight)
	r.text(TagTableHeader, g.UnitPrice.X, y, g.UnitPrice.Width, "Unit price", r.bold, AlignRight)
	r.text(TagTableHeader, g.Total.X, y, g.Total.Width, "Amount", r.bold, AlignRight)
	r.rule(TagTableHeader, r.left, c.Y()+h, r.right-r.left)
	return c.Advance(h)
}

// itemTable draws the header and one row per item. While the table is open every
// new page starts with a redrawn header.
func (r *layoutRun) itemTable(view DocumentView) error {
	g := r.table
	nameChars := r.cfg.MaxChars(g.Name.Width, r.cfg.FontSize)
	kindChars := r.cfg.MaxChars(g.Kind.Width, r.cfg.FontSize)
	qtyChars := r.cfg.MaxChars(g.Quantity.Width, r.cfg.FontSize)
	priceChars := r.cfg.MaxChars(g.UnitPrice.Width, r.cfg.FontSize)
	totalChars := r.cfg.MaxChars(g.Total.Width, r.cfg.FontSize)

	firstRow := r.cfg.RowHeight(1)
	if len(view.Items) > 0 {
		lines, _ := Wrap(view.Items[0].Name, nameChars, r.cfg.MaxNameLines)
		firstRow = r.cfg.RowHeight(len(lines))
	}
	if err := r.cursor.Ensure(r.cfg.RowHeight(1) + firstRow); err != nil {
		return err
	}
	if err := r.drawTableHeader(r.cursor); err != nil {
		return err
	}
	r.cursor.SetPageStartHook(r.drawTableHeader)
	defer r.cursor.SetPageStartHook(nil)

	if len(view.Items) == 0 {
		h := r.cfg.RowHeight(1)
		r.text(TagItem, g.Name.X, r.cursor.Y()+r.cfg.RowPadding/2, g.Name.Width, "No line items", r.body, AlignLeft)
		return r.cursor.Advance(h)
	}

	lh := r.cfg.LineHeight()
	for _, item := range view.Items {
		lines, _ := Wrap(item.Name, nameChars, r.cfg.MaxNameLines)
		h := r.cfg.RowHeight(len(lines))
		if err := r.cursor.Ensure(h); err != nil {
			return err
		}
		y := r.cursor.Y() + r.cfg.RowPadding/2
		for i, line := range lines {
			r.text(TagItem, g.Name.X, y+float64(i)*lh, g.Name.Width, line, r.body, AlignLeft)
		}
		r.text(TagItem, g.Kind.X, y, g.Kind.Width, Truncate(item.Kind, kindChars), r.body, AlignLeft)
		r.text(TagItem, g.Quantity.X, y, g.Quantity.Width, Truncate(item.Quantity, qtyChars), r.body, AlignRight)
		r.text(TagItem, g.UnitPrice.X, y, g.UnitPrice.Width, Truncate(item.UnitPrice, priceChars), r.body, AlignRight)
		r.text(TagItem, g.Total.X, y, g.Total.Width, Truncate(item.Total, totalChars), r.body, AlignRight)
		if err := r.cursor.Advance(h); err != nil {
			return err
		}
	}
	r.rule(TagItem, r.left, r.cursor.Y(), r.right-r.left)
	return nil
}

// totalsBlock draws label/value rows aligned to the amount column
func (r *layoutRun) totalsBlock(view DocumentView) error {
	if len(view.Totals) == 0 {
		return nil
	}
	r.spacing()
	g := r.table
	labelCol := Column{X: g.Quantity.X, Width: g.UnitPrice.Right() - g.Quantity.X}
	labelChars := r.cfg.MaxChars(labelCol.Width, r.cfg.FontSize)
	valueChars := r.cfg.MaxChars(g.Total.Width, r.cfg.FontSize)

	h := r.cfg.RowHeight(1)
	r.cursor.SetPageStartHook(r.drawTotalsHeading)
	defer r.cursor.SetPageStartHook(nil)

	for _, row := range view.Totals {
		if err := r.cursor.Ensure(h); err != nil {
			return err
		}
		font := r.body
		if row.Emphasis {
			font = r.bold
		}
		y := r.cursor.Y() + r.cfg.RowPadding/2
		r.text(TagTotals, labelCol.X, y, labelCol.Width, Truncate(row.Label, labelChars), font, AlignRight)
		r.text(TagTotals, g.Total.X, y, g.Total.Width, Truncate(row.Value, valueChars), font, AlignRight)
		if err := r.cursor.Advance(h); err != nil {
			return err
		}
	}
	return nil
}

// drawTotalsHeading opens a page that continues the totals rows
func (r *layoutRun) drawTotalsHeading(c *Cursor) error {
	r.text(TagTotals, r.left, c.Y(), r.right-r.left, TotalsContinued, r.bold, AlignLeft)
	return c.Advance(r.lineHeight(r.bold))
}

func (r *layoutRun) drawPaymentsHeader(c *Cursor) error {
	h := r.cfg.RowHeight(1)
	y := c.Y() + r.cfg.RowPadding/2
	p := r.payment
	r.text(TagPayments, p.Date.X, y, p.Date.Width, "Date", r.bold, AlignLeft)
	r.text(TagPayments, p.Method.X, y, p.Method.Width, "Method", r.bold, AlignLeft)
	r.text(TagPayments, p.Notes.X, y, p.Notes.Width, "Notes", r.bold, AlignLeft)
	r.text(TagPayments, p.Amount.X, y, p.Amount.Width, "Amount", r.bold, AlignRight)
	r.rule(TagPayments, r.left, c.Y()+h, r.right-r.left)
	return c.Advance(h)
}

// paymentsBlock draws the ledger as a small table with its own repeating header
func (r *layoutRun) paymentsBlock(view DocumentView) error {
	if len(view.Payments) == 0 {
		return nil
	}
	r.spacing()
	row := r.cfg.RowHeight(1)
	heading := r.lineHeight(r.bold)
	if err := r.cursor.Ensure(heading + 2*row); err != nil {
		return err
	}
	r.text(TagPayments, r.left, r.cursor.Y(), r.right-r.left, "Payments", r.bold, AlignLeft)
	if err := r.cursor.Advance(heading); err != nil {
		return err
	}
	if err := r.drawPaymentsHeader(r.cursor); err != nil {
		return err
	}
	r.cursor.SetPageStartHook(r.drawPaymentsHeader)
	defer r.cursor.SetPageStartHook(nil)

	p := r.payment
	for _, pay := range view.Payments {
		if err := r.cursor.Ensure(row); err != nil {
			return err
		}
		y := r.cursor.Y() + r.cfg.RowPadding/2
		r.text(TagPayments, p.Date.X, y, p.Date.Width, Truncate(pay.Date, r.cfg.MaxChars(p.Date.Width, r.cfg.FontSize)), r.body, AlignLeft)
		r.text(TagPayments, p.Method.X, y, p.Method.Width, Truncate(pay.Method, r.cfg.MaxChars(p.Method.Width, r.cfg.FontSize)), r.body, AlignLeft)
		if notes := strings.TrimSpace(pay.Notes); notes != "" {
			r.text(TagPayments, p.Notes.X, y, p.Notes.Width, Truncate(notes, r.cfg.MaxChars(p.Notes.Width, r.cfg.FontSize)), r.body, AlignLeft)
		}
		r.text(TagPayments, p.Amount.X, y, p.Amount.Width, Truncate(pay.Amount, r.cfg.MaxChars(p.Amount.Width, r.cfg.FontSize)), r.body, AlignRight)
		if err := r.cursor.Advance(row); err != nil {
			return err
		}
	}
	return nil
}

// notesBlock draws free text wrapped to the content width, uncapped
func (r *layoutRun) notesBlock(view DocumentView) error {
	notes := strings.TrimSpace(view.Notes)
	if notes == "" {
		return nil
	}
	r.spacing()
	width := r.right - r.left
	lh := r.lineHeight(r.body)
	heading := r.lineHeight(r.bold)
	if err := r.cursor.Ensure(heading + lh); err != nil {
		return err
	}
	r.text(TagNotes, r.left, r.cursor.Y(), width, "Notes", r.bold, AlignLeft)
	if err := r.cursor.Advance(heading); err != nil {
		return err
	}

	maxChars := r.cfg.MaxChars(width, r.cfg.FontSize)
	for _, paragraph := range strings.Split(notes, "\n") {
		lines, _ := Wrap(paragraph, maxChars, 0)
		for _, line := range lines {
			if err := r.cursor.Ensure(lh); err != nil {
				return err
			}
			r.text(TagNotes, r.left, r.cursor.Y(), width, line, r.body, AlignLeft)
			if err := r.cursor.Advance(lh); err != nil {
				return err
			}
		}
	}
	return nil
}

// footers stamps "Page n of N" into the reserved bottom band of every page. It runs
// after layout, once N is known, and never moves content.
func (r *layoutRun) footers() {
	total := len(r.cursor.pages)
	y := r.cursor.bottom + r.cfg.FooterBand() - r.cfg.LineHeight()
	for _, page := range r.cursor.pages {
		page.Instructions = append(page.Instructions, Instruction{
			Kind:  InstructionText,
			Tag:   TagFooter,
			X:     r.left,
			Y:     y,
			W:     r.right - r.left,
			H:     r.cfg.LineHeight(),
			Text:  fmt.Sprintf("Page %d of %d", page.Number, total),
			Font:  r.body,
			Align: AlignCenter,
		})
	}
}
