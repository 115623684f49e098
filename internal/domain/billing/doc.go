// Package billing holds the estimate and sale domain: totals, payments and status.
//
// ComputeTotals turns line items, a discount and a tax rate into subtotal,
// discount, tax and total. Every amount is integer cents and each line is
// rounded before summing.
//
// The payment ledger of a sale is append-only. AppendPayment rejects any
// payment above the current balance, so the paid amount never exceeds the total.
//
// DeriveStatus computes PAID, OVERDUE and PENDING for sales and DRAFT, SENT,
// APPROVED, EXPIRED and CONVERTED for estimates from the document and a clock.
// Document.Refresh stores the result on the aggregate.
//
// Document is the aggregate root. It guards item and pricing changes once an
// estimate is converted or a sale is paid, and records domain events for the
// application layer to publish.
package billing
