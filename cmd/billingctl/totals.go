package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	billingapp "github.com/byteledger/backend/internal/application/billing"
	"github.com/byteledger/backend/internal/domain/billing"
	"github.com/byteledger/backend/internal/domain/shared/valueobject"
	csvimport "github.com/byteledger/backend/internal/infrastructure/import"
	"github.com/urfave/cli/v2"
)

func totalsCommand() *cli.Command {
	return &cli.Command{
		Name:      "totals",
		Usage:     "Compute subtotal, discount, tax and total for line items",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Value:   "-",
				Usage:   "JSON file with items, discount and tax_rate_percent (- for stdin)",
			},
			&cli.StringFlag{
				Name:  "items",
				Usage: "CSV file with name, kind, quantity and unit_price columns (- for stdin); replaces --input",
			},
			&cli.StringFlag{
				Name:  "delimiter",
				Value: ",",
				Usage: "Field delimiter for --items",
			},
			&cli.StringFlag{
				Name:  "tax",
				Usage: "Tax rate percent applied to --items",
			},
			&cli.StringFlag{
				Name:  "discount-percent",
				Usage: "Percentage discount applied to --items",
			},
			&cli.StringFlag{
				Name:  "discount-amount",
				Usage: "Fixed discount applied to --items",
			},
			&cli.StringFlag{
				Name:  "output",
				Value: "json",
				Usage: "Output style: json or text",
			},
		},
		Action: runTotals,
	}
}

func runTotals(c *cli.Context) error {
	var req billingapp.QuoteTotalsRequest
	if c.IsSet("items") {
		r, err := quoteFromCSV(c)
		if err != nil {
			return err
		}
		req = r
	} else if err := decodeInput(c, c.String("input"), &req); err != nil {
		return err
	}
	totals, err := billingapp.QuoteTotals(req)
	if err != nil {
		return err
	}

	switch c.String("output") {
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(totals)
	case "text":
		tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "Subtotal\t%s\t\n", totals.Subtotal.StringFixed())
		fmt.Fprintf(tw, "Discount\t%s\t\n", totals.DiscountAmount.StringFixed())
		fmt.Fprintf(tw, "Taxable\t%s\t\n", totals.TaxableBase.StringFixed())
		fmt.Fprintf(tw, "Tax\t%s\t\n", totals.TaxAmount.StringFixed())
		fmt.Fprintf(tw, "Total\t%s\t\n", totals.Total.StringFixed())
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output style %q", c.String("output"))
	}
}

// quoteFromCSV builds a quote from a line item CSV plus the discount and tax flags
func quoteFromCSV(c *cli.Context) (billingapp.QuoteTotalsRequest, error) {
	var req billingapp.QuoteTotalsRequest

	delim := []rune(c.String("delimiter"))
	if len(delim) != 1 {
		return req, fmt.Errorf("delimiter must be a single character")
	}
	in, err := openInput(c, c.String("items"))
	if err != nil {
		return req, err
	}
	defer in.Close()

	records, err := csvimport.NewLineItemReader(20, csvimport.WithDelimiter(delim[0])).Read(in)
	if err != nil {
		return req, fmt.Errorf("invalid items file: %w", err)
	}
	for _, rec := range records {
		req.Items = append(req.Items, billingapp.LineItemInput{
			Name:      rec.Name,
			Kind:      rec.Kind,
			Quantity:  rec.Quantity,
			UnitPrice: rec.UnitPrice,
		})
	}

	if c.IsSet("discount-percent") && c.IsSet("discount-amount") {
		return req, fmt.Errorf("use either --discount-percent or --discount-amount")
	}
	if c.IsSet("discount-percent") {
		pct, err := valueobject.NewPercentFromString(c.String("discount-percent"))
		if err != nil {
			return req, fmt.Errorf("invalid discount percent: %w", err)
		}
		req.Discount = &billingapp.DiscountInput{Type: "PERCENT", Percent: &pct}
	}
	if c.IsSet("discount-amount") {
		amount, err := valueobject.NewMoneyFromString(c.String("discount-amount"))
		if err != nil {
			return req, billing.AmountInputError("discount-amount", fmt.Errorf("invalid discount amount: %w", err))
		}
		req.Discount = &billingapp.DiscountInput{Type: "AMOUNT", Amount: &amount}
	}
	if c.IsSet("tax") {
		rate, err := valueobject.NewPercentFromString(c.String("tax"))
		if err != nil {
			return req, fmt.Errorf("invalid tax rate: %w", err)
		}
		req.TaxRatePercent = &rate
	}
	return req, nil
}
