// Package invoice provides the invoice document model: commands that edit
// an invoice, the totals derived from it, and the editing session that owns it.
//
// Every edit is a Command value (SetField, AddItem, UpdateItem, ...). Commands
// are applied by a single function, Apply, which returns a new invoice and
// leaves its input untouched.
//
// Editing Rules:
//   - Numeric input that does not parse becomes zero; negative input becomes zero
//   - Updating or removing an id that does not exist is a no-op
//   - Items and discounts keep insertion order
//   - Item ids and discount ids are unique within their own list
//
// Totals:
//   - Subtotal is the sum of quantity × unit price over all items
//   - Total discount is the sum of all discount amounts
//   - Final total is subtotal minus total discount and may be negative
package invoice

import (
	"time"

	"invoicer/internal/money"
	"invoicer/pkg/models"
)

const (
	// DefaultInvoiceNumber is the number a fresh invoice starts with.
	DefaultInvoiceNumber = "001"

	// DefaultPaymentWindowDays is the gap between issue date and due date
	// of a fresh invoice.
	DefaultPaymentWindowDays = 30
)

// NewInvoice returns an empty invoice issued today and due in 30 days.
func NewInvoice(today models.Date) models.Invoice {
	return models.Invoice{
		InvoiceNumber: DefaultInvoiceNumber,
		IssueDate:     today,
		DueDate:       today.AddDays(DefaultPaymentWindowDays),
		Items:         []models.LineItem{},
		Discounts:     []models.Discount{},
	}
}

// Sanitize returns a copy of inv with the input rules applied to values that
// did not come through commands, such as a hand-edited file: negative or
// out-of-range amounts become zero and negative quantities become zero.
func Sanitize(inv models.Invoice) models.Invoice {
	next := inv.Clone()
	for i := range next.Items {
		next.Items[i].Quantity = max(next.Items[i].Quantity, 0)
		next.Items[i].UnitPrice = money.Coerce(next.Items[i].UnitPrice)
	}
	for i := range next.Discounts {
		next.Discounts[i].Amount = money.Coerce(next.Discounts[i].Amount)
	}
	return next
}

// Today returns the current local calendar date.
func Today() models.Date {
	return models.DateOf(time.Now())
}
