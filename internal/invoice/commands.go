package invoice

import (
	"time"

	"github.com/samber/lo"

	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// HeaderField names a scalar field of the invoice header.
type HeaderField string

// Header fields. The values match the JSON field names of models.Invoice.
const (
	FieldInvoiceNumber  HeaderField = "invoiceNumber"
	FieldIssueDate      HeaderField = "date"
	FieldDueDate        HeaderField = "dueDate"
	FieldCompanyName    HeaderField = "companyName"
	FieldCompanyAddress HeaderField = "companyAddress"
	FieldClientName     HeaderField = "clientName"
	FieldClientAddress  HeaderField = "clientAddress"
	FieldNotes          HeaderField = "notes"
	FieldPaymentTerms   HeaderField = "paymentTerms"
)

// ItemField names an editable field of a line item.
type ItemField string

// Line item fields.
const (
	ItemDescription ItemField = "description"
	ItemQuantity    ItemField = "quantity"
	ItemPrice       ItemField = "price"
)

// DiscountField names an editable field of a discount.
type DiscountField string

// Discount fields.
const (
	DiscountAmount      DiscountField = "amount"
	DiscountDate        DiscountField = "date"
	DiscountDescription DiscountField = "description"
)

var (
	headerFields   = []HeaderField{FieldInvoiceNumber, FieldIssueDate, FieldDueDate, FieldCompanyName, FieldCompanyAddress, FieldClientName, FieldClientAddress, FieldNotes, FieldPaymentTerms}
	itemFields     = []ItemField{ItemDescription, ItemQuantity, ItemPrice}
	discountFields = []DiscountField{DiscountAmount, DiscountDate, DiscountDescription}
)

// Valid reports whether f is a known header field.
func (f HeaderField) Valid() bool { return lo.Contains(headerFields, f) }

// Valid reports whether f is a known line item field.
func (f ItemField) Valid() bool { return lo.Contains(itemFields, f) }

// Valid reports whether f is a known discount field.
func (f DiscountField) Valid() bool { return lo.Contains(discountFields, f) }

// Env carries what commands need from outside the document.
type Env struct {
	IDs   IDGenerator
	Today func() models.Date
}

func (e Env) today() models.Date {
	if e.Today == nil {
		return models.DateOf(time.Now())
	}
	return e.Today()
}

// Command is one user intent against the document. The set of commands is
// closed; they are built by callers and consumed only by Apply.
type Command interface {
	// Op returns the wire name of the command.
	Op() string
	apply(inv *models.Invoice, env Env)
}

// SetField replaces a header field. Dates that do not parse become unset.
type SetField struct {
	Field HeaderField
	Value string
}

// AddItem appends a line item with quantity 1 and price 0.
type AddItem struct{}

// UpdateItem changes one field of the item with ID. Unknown ids are ignored.
type UpdateItem struct {
	ID    string
	Field ItemField
	Value string
}

// RemoveItem deletes the item with ID. Unknown ids are ignored.
type RemoveItem struct {
	ID string
}

// AddDiscount appends a zero discount dated today.
type AddDiscount struct{}

// UpdateDiscount changes one field of the discount with ID. Unknown ids are ignored.
type UpdateDiscount struct {
	ID    string
	Field DiscountField
	Value string
}

// RemoveDiscount deletes the discount with ID. Unknown ids are ignored.
type RemoveDiscount struct {
	ID string
}

func (SetField) Op() string       { return "set_field" }
func (AddItem) Op() string        { return "add_item" }
func (UpdateItem) Op() string     { return "update_item" }
func (RemoveItem) Op() string     { return "remove_item" }
func (AddDiscount) Op() string    { return "add_discount" }
func (UpdateDiscount) Op() string { return "update_discount" }
func (RemoveDiscount) Op() string { return "remove_discount" }

func (c SetField) apply(inv *models.Invoice, _ Env) {
	switch c.Field {
	case FieldInvoiceNumber:
		inv.InvoiceNumber = c.Value
	case FieldIssueDate:
		inv.IssueDate = models.ParseDateOrZero(c.Value)
	case FieldDueDate:
		inv.DueDate = models.ParseDateOrZero(c.Value)
	case FieldCompanyName:
		inv.CompanyName = c.Value
	case FieldCompanyAddress:
		inv.CompanyAddress = c.Value
	case FieldClientName:
		inv.ClientName = c.Value
	case FieldClientAddress:
		inv.ClientAddress = c.Value
	case FieldNotes:
		inv.Notes = c.Value
	case FieldPaymentTerms:
		inv.PaymentTerms = c.Value
	}
}

func (AddItem) apply(inv *models.Invoice, env Env) {
	id := freshID(env.IDs, func(id string) bool {
		return lo.ContainsBy(inv.Items, func(it models.LineItem) bool { return it.ID == id })
	})
	inv.Items = append(inv.Items, models.LineItem{
		ID:        id,
		Quantity:  1,
		UnitPrice: money.Zero,
	})
}

func (c UpdateItem) apply(inv *models.Invoice, _ Env) {
	_, idx, found := lo.FindIndexOf(inv.Items, func(it models.LineItem) bool { return it.ID == c.ID })
	if !found {
		ignoreMissing(c, c.ID)
		return
	}
	item := &inv.Items[idx]
	switch c.Field {
	case ItemDescription:
		item.Description = c.Value
	case ItemQuantity:
		item.Quantity = money.ParseQuantity(c.Value)
	case ItemPrice:
		item.UnitPrice = money.ParseOrZero(c.Value)
	}
}

func (c RemoveItem) apply(inv *models.Invoice, _ Env) {
	before := len(inv.Items)
	inv.Items = lo.Reject(inv.Items, func(it models.LineItem, _ int) bool { return it.ID == c.ID })
	if len(inv.Items) == before {
		ignoreMissing(c, c.ID)
	}
}

func (AddDiscount) apply(inv *models.Invoice, env Env) {
	id := freshID(env.IDs, func(id string) bool {
		return lo.ContainsBy(inv.Discounts, func(d models.Discount) bool { return d.ID == id })
	})
	inv.Discounts = append(inv.Discounts, models.Discount{
		ID:     id,
		Amount: money.Zero,
		Date:   env.today(),
	})
}

func (c UpdateDiscount) apply(inv *models.Invoice, _ Env) {
	_, idx, found := lo.FindIndexOf(inv.Discounts, func(d models.Discount) bool { return d.ID == c.ID })
	if !found {
		ignoreMissing(c, c.ID)
		return
	}
	discount := &inv.Discounts[idx]
	switch c.Field {
	case DiscountAmount:
		discount.Amount = money.ParseOrZero(c.Value)
	case DiscountDate:
		discount.Date = models.ParseDateOrZero(c.Value)
	case DiscountDescription:
		discount.Description = c.Value
	}
}

func (c RemoveDiscount) apply(inv *models.Invoice, _ Env) {
	before := len(inv.Discounts)
	inv.Discounts = lo.Reject(inv.Discounts, func(d models.Discount, _ int) bool { return d.ID == c.ID })
	if len(inv.Discounts) == before {
		ignoreMissing(c, c.ID)
	}
}

// ignoreMissing records a command whose target is not in the invoice.
func ignoreMissing(cmd Command, id string) {
	log := logger.WithComponent("invoice")
	log.Debug().Str("op", cmd.Op()).Str("id", id).Msg("No line with this id, command ignored")
}

// Apply returns the invoice that results from running cmd against inv.
// inv itself is never modified.
func Apply(inv models.Invoice, cmd Command, env Env) models.Invoice {
	next := inv.Clone()
	cmd.apply(&next, env)
	return next
}

// ApplyAll runs the commands in order.
func ApplyAll(inv models.Invoice, env Env, cmds ...Command) models.Invoice {
	next := inv.Clone()
	for _, cmd := range cmds {
		cmd.apply(&next, env)
	}
	return next
}
