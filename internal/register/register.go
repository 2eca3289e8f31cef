// Package register exports saved invoices as a bookkeeping register: one row
// per invoice, written to a Google Sheets worksheet or an XLSX workbook.
package register

import (
	"github.com/samber/lo"

	"invoicer/internal/money"
	"invoicer/internal/store"
)

// Headers are the register columns, A to I.
var Headers = []string{
	"ID", "Invoice No.", "Date", "Due", "Client", "Subtotal", "Discounts", "Total", "Saved",
}

// Row is one saved invoice in the register.
type Row struct {
	ID             string  `json:"id"`
	InvoiceNumber  string  `json:"invoice_number"`
	Date           string  `json:"date"`
	DueDate        string  `json:"due_date"`
	Client         string  `json:"client"`
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
	SavedAt        string  `json:"saved_at"`
}

// SavedAtLayout formats the save time, in UTC.
const SavedAtLayout = "2006-01-02 15:04:05"

// Rows converts saved records to register rows, keeping their order.
// Amounts are rounded to two places, the way they are printed.
func Rows(records []store.Record) []Row {
	return lo.Map(records, func(rec store.Record, _ int) Row {
		return Row{
			ID:             rec.ID,
			InvoiceNumber:  rec.Document.InvoiceNumber,
			Date:           rec.Document.IssueDate.String(),
			DueDate:        rec.Document.DueDate.String(),
			Client:         rec.Document.ClientName,
			Subtotal:       rec.Subtotal.Round(money.DisplayPlaces).InexactFloat64(),
			DiscountAmount: rec.DiscountAmount.Round(money.DisplayPlaces).InexactFloat64(),
			Total:          rec.TotalAmount.Round(money.DisplayPlaces).InexactFloat64(),
			SavedAt:        rec.CreatedAt.UTC().Format(SavedAtLayout),
		}
	})
}

// Values returns the row's cells in column order.
func (r Row) Values() []interface{} {
	return []interface{}{
		r.ID,             // A: ID
		r.InvoiceNumber,  // B: Invoice No.
		r.Date,           // C: Date
		r.DueDate,        // D: Due
		r.Client,         // E: Client
		r.Subtotal,       // F: Subtotal
		r.DiscountAmount, // G: Discounts
		r.Total,          // H: Total
		r.SavedAt,        // I: Saved
	}
}
