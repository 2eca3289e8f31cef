package models

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Invoice is the editable invoice document.
type Invoice struct {
	// Header
	InvoiceNumber string `json:"invoiceNumber"`
	IssueDate     Date   `json:"date"`
	DueDate       Date   `json:"dueDate"`

	// Parties
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	ClientName     string `json:"clientName"`
	ClientAddress  string `json:"clientAddress"`

	// Lines in display order
	Items     []LineItem `json:"items"`
	Discounts []Discount `json:"discounts"`

	Notes        string `json:"notes"`
	PaymentTerms string `json:"paymentTerms"`
}

// LineItem is one billable row.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
}

// Discount is a flat, dated deduction applied to the whole invoice.
type Discount struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Description string          `json:"description,omitempty"`
}

// Clone returns a deep copy that shares no slices with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.Items = slices.Clone(inv.Items)
	out.Discounts = slices.Clone(inv.Discounts)
	if out.Items == nil {
		out.Items = []LineItem{}
	}
	if out.Discounts == nil {
		out.Discounts = []Discount{}
	}
	return out
}

// Equal reports whether two invoices hold the same editable values.
// Amounts are compared numerically, so 100 and 100.00 are equal.
func (inv Invoice) Equal(other Invoice) bool {
	if inv.InvoiceNumber != other.InvoiceNumber ||
		inv.IssueDate != other.IssueDate ||
		inv.DueDate != other.DueDate ||
		inv.CompanyName != other.CompanyName ||
		inv.CompanyAddress != other.CompanyAddress ||
		inv.ClientName != other.ClientName ||
		inv.ClientAddress != other.ClientAddress ||
		inv.Notes != other.Notes ||
		inv.PaymentTerms != other.PaymentTerms {
		return false
	}
	itemsEqual := slices.EqualFunc(inv.Items, other.Items, func(a, b LineItem) bool {
		return a.ID == b.ID && a.Description == b.Description &&
			a.Quantity == b.Quantity && a.UnitPrice.Equal(b.UnitPrice)
	})
	discountsEqual := slices.EqualFunc(inv.Discounts, other.Discounts, func(a, b Discount) bool {
		return a.ID == b.ID && a.Date == b.Date &&
			a.Description == b.Description && a.Amount.Equal(b.Amount)
	})
	return itemsEqual && discountsEqual
}

// Date is a calendar date without a time of day.
// The zero Date is "unset" and encodes as an empty string.
type Date struct {
	civil.Date
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{d}, nil
}

// ParseDateOrZero parses a YYYY-MM-DD string, returning the zero Date on failure.
func ParseDateOrZero(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return d
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Date == civil.Date{}
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

// String returns YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() || !d.IsValid() {
		return ""
	}
	return d.Date.String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Empty or malformed input leaves the zero Date.
func (d *Date) UnmarshalText(data []byte) error {
	*d = ParseDateOrZero(string(data))
	return nil
}
