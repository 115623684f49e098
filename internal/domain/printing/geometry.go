package printing

// Column is a horizontal slot of the item table
type Column struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// Right returns the right edge of the column
func (c Column) Right() float64 {
	return c.X + c.Width
}

// TableGeometry is the column layout of the item table. It is computed once per
// document and reused unchanged on every page.
type TableGeometry struct {
	Name      Column
	Kind      Column
	Quantity  Column
	UnitPrice Column
	Total     Column
}

// ComputeTableGeometry reserves the fixed columns in one pass inward from the right
// edge, separated by gap, and gives the remainder to the name column.
func ComputeTableGeometry(left, right float64, widths ColumnWidths, gap, minNameWidth float64) (TableGeometry, error) {
	var g TableGeometry
	edge := right

	take := func(width float64) Column {
		col := Column{X: edge - width, Width: width}
		edge = col.X - gap
		return col
	}
	g.Total = take(widths.Total)
	g.UnitPrice = take(widths.UnitPrice)
	g.Quantity = take(widths.Quantity)
	g.Kind = take(widths.Kind)

	nameWidth := edge - left
	if nameWidth < minNameWidth || nameWidth <= 0 {
		return TableGeometry{}, ErrColumnsTooWide
	}
	g.Name = Column{X: left, Width: nameWidth}
	return g, nil
}
