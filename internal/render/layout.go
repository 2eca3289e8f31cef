// Package render turns an invoice into a Layout: the resolved, display-ready
// structure shared by the on-screen preview, the print page and both PDF
// exports. A Layout holds formatted strings only, so every consumer shows
// exactly the same numbers.
package render

import (
	"github.com/samber/lo"

	"invoicer/internal/invoice"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// MinTableRows is the number of table rows shown even for short invoices.
const MinTableRows = 6

// Labels used by every rendering of the layout.
const (
	LabelTitle        = "INVOICE"
	LabelNumber       = "No."
	LabelIssueDate    = "Date"
	LabelDueDate      = "Due"
	LabelBillTo       = "Bill to"
	LabelLineTotal    = "Total"
	LabelUnitPrice    = "Price"
	LabelQuantity     = "Qty"
	LabelDescription  = "Description"
	LabelNotes        = "Notes"
	LabelSubtotal     = "Subtotal"
	LabelPayment      = "Payment"
	LabelFinalTotal   = "Final total"
	LabelPaymentTerms = "Payment terms"
	LabelSignature    = "Received by"
	LabelDiscountDate = "Date:"
)

// Layout is the rendered form of one invoice.
type Layout struct {
	Header       Header
	Client       Client
	Table        Table
	Totals       TotalsBlock
	Notes        string
	PaymentTerms string
	Signature    string
}

type Header struct {
	Title          string
	CompanyName    string
	CompanyAddress string
	InvoiceNumber  string
	IssueDate      string
	DueDate        string
}

type Client struct {
	Name    string
	Address string
}

// Table is the item table. Rows holds one row per item followed by
// Padding blank rows.
type Table struct {
	Rows    []Row
	Padding int
}

// Row is one table row. Blank rows carry no values.
type Row struct {
	ID          string
	Description string
	Quantity    string
	UnitPrice   string
	LineTotal   string
	Blank       bool
}

// TotalsBlock is the subtotal, the discount rows and the final total.
type TotalsBlock struct {
	Subtotal   string
	Discounts  []DiscountRow
	FinalTotal string
	// Negative is set when the final total is a credit balance.
	Negative bool
}

// DiscountRow shows one discount as a negated amount with its label and date.
type DiscountRow struct {
	Amount string
	Label  string
	Date   string
}

// PaddingRows is the number of blank rows added after n item rows.
func PaddingRows(n int) int {
	return max(0, MinTableRows-n)
}

// Build renders inv. It has no side effects; the same invoice always
// produces an equal Layout.
func Build(inv models.Invoice) Layout {
	totals := invoice.ComputeTotals(inv)

	rows := lo.Map(inv.Items, func(it models.LineItem, _ int) Row {
		return Row{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    money.FormatQuantity(it.Quantity),
			UnitPrice:   money.Format(it.UnitPrice),
			LineTotal:   money.Format(invoice.LineTotal(it)),
		}
	})
	padding := PaddingRows(len(inv.Items))
	for i := 0; i < padding; i++ {
		rows = append(rows, Row{Blank: true})
	}

	return Layout{
		Header: Header{
			Title:          LabelTitle,
			CompanyName:    inv.CompanyName,
			CompanyAddress: inv.CompanyAddress,
			InvoiceNumber:  inv.InvoiceNumber,
			IssueDate:      inv.IssueDate.String(),
			DueDate:        inv.DueDate.String(),
		},
		Client: Client{
			Name:    inv.ClientName,
			Address: inv.ClientAddress,
		},
		Table: Table{
			Rows:    rows,
			Padding: padding,
		},
		Totals: TotalsBlock{
			Subtotal:   money.Format(totals.Subtotal),
			Discounts:  lo.Map(inv.Discounts, func(d models.Discount, _ int) DiscountRow { return discountRow(d) }),
			FinalTotal: money.Format(totals.FinalTotal),
			Negative:   totals.FinalTotal.IsNegative(),
		},
		Notes:        inv.Notes,
		PaymentTerms: inv.PaymentTerms,
		Signature:    LabelSignature,
	}
}

func discountRow(d models.Discount) DiscountRow {
	label := LabelPayment
	if d.Description != "" {
		label += " (" + d.Description + ")"
	}
	return DiscountRow{
		Amount: money.FormatNegated(d.Amount),
		Label:  label,
		Date:   d.Date.String(),
	}
}
