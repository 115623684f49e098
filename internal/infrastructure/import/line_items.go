package csvimport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/byteledger/backend/internal/domain/shared/valueobject"
)

// Line item columns
const (
	ColumnName      = "name"
	ColumnKind      = "kind"
	ColumnQuantity  = "quantity"
	ColumnUnitPrice = "unit_price"
)

const maxNameLength = 200

// LineItemRecord is one parsed line item row
type LineItemRecord struct {
	Row       int
	Name      string
	Kind      string
	Quantity  int64
	UnitPrice valueobject.Money
}

// LineItemReader reads line items until EOF, collecting every row error
type LineItemReader struct {
	parserOpts []ParserOption
	maxErrors  int
}

// NewLineItemReader creates a reader. maxErrors caps the errors reported.
func NewLineItemReader(maxErrors int, opts ...ParserOption) *LineItemReader {
	return &LineItemReader{parserOpts: opts, maxErrors: maxErrors}
}

// Read parses every row. When any row is invalid the returned error is an
// *ErrorCollection and no records are returned.
func (r *LineItemReader) Read(in io.Reader) ([]LineItemRecord, error) {
	parser, err := NewCSVParser(in, r.parserOpts...)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders([]string{ColumnName, ColumnQuantity, ColumnUnitPrice}); len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	errs := NewErrorCollection(r.maxErrors)
	var records []LineItemRecord
	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs.Add(RowError{Row: parser.CurrentRow(), Code: ErrCodeMalformedRow, Message: err.Error()})
			continue
		}
		if row.IsEmpty() {
			continue
		}
		if rec, ok := parseLineItem(row, errs); ok {
			records = append(records, rec)
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	if len(records) == 0 {
		return nil, ErrNoDataRows
	}
	return records, nil
}

func parseLineItem(row *Row, errs *ErrorCollection) (LineItemRecord, bool) {
	ok := true
	rec := LineItemRecord{
		Row:  row.LineNumber,
		Name: row.Get(ColumnName),
		Kind: strings.ToUpper(row.GetOrDefault(ColumnKind, "PRODUCT")),
	}

	switch {
	case rec.Name == "":
		errs.AddRequiredError(row.LineNumber, ColumnName)
		ok = false
	case utf8.RuneCountInString(rec.Name) > maxNameLength:
		errs.Add(RowError{
			Row:     row.LineNumber,
			Column:  ColumnName,
			Code:    ErrCodeInvalidLength,
			Message: fmt.Sprintf("must be at most %d characters", maxNameLength),
		})
		ok = false
	}

	if rec.Kind != "PRODUCT" && rec.Kind != "SERVICE" {
		errs.AddTypeError(row.LineNumber, ColumnKind, "PRODUCT or SERVICE", rec.Kind)
		ok = false
	}

	if raw := row.Get(ColumnQuantity); raw == "" {
		errs.AddRequiredError(row.LineNumber, ColumnQuantity)
		ok = false
	} else if qty, err := strconv.ParseInt(raw, 10, 64); err != nil {
		errs.AddTypeError(row.LineNumber, ColumnQuantity, "integer", raw)
		ok = false
	} else if qty < 1 {
		errs.Add(RowError{Row: row.LineNumber, Column: ColumnQuantity, Code: ErrCodeInvalidRange, Message: "must be at least 1", Value: raw})
		ok = false
	} else {
		rec.Quantity = qty
	}

	if raw := row.Get(ColumnUnitPrice); raw == "" {
		errs.AddRequiredError(row.LineNumber, ColumnUnitPrice)
		ok = false
	} else if price, err := valueobject.NewMoneyFromString(raw); errors.Is(err, valueobject.ErrMoneyPrecision) {
		errs.AddTypeError(row.LineNumber, ColumnUnitPrice, "amount with at most two decimal places", raw)
		ok = false
	} else if err != nil {
		errs.AddTypeError(row.LineNumber, ColumnUnitPrice, "decimal amount", raw)
		ok = false
	} else if price.IsNegative() {
		errs.Add(RowError{Row: row.LineNumber, Column: ColumnUnitPrice, Code: ErrCodeInvalidRange, Message: "must not be negative", Value: raw})
		ok = false
	} else {
		rec.UnitPrice = price
	}

	return rec, ok
}
