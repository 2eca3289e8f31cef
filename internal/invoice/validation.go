package invoice

import (
	"fmt"

	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// Reviewer inspects invoices for values that are allowed but probably unintended.
type Reviewer struct {
	log zerolog.Logger
}

// NewReviewer creates a new invoice reviewer
func NewReviewer() *Reviewer {
	return &Reviewer{
		log: logger.WithComponent("invoice-review"),
	}
}

// ReviewResult contains the derived totals and any warnings
type ReviewResult struct {
	Totals        Totals
	Warnings      []string
	NegativeTotal bool
}

// Review computes totals and flags suspicious values. It never changes the invoice:
// a negative final total is kept as a credit balance, only reported.
func (r *Reviewer) Review(inv models.Invoice) *ReviewResult {
	result := &ReviewResult{
		Totals:   ComputeTotals(inv),
		Warnings: []string{},
	}

	if result.Totals.FinalTotal.IsNegative() {
		result.NegativeTotal = true
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"final total is negative (%s): discounts %s exceed subtotal %s",
			money.Format(result.Totals.FinalTotal),
			money.Format(result.Totals.TotalDiscount),
			money.Format(result.Totals.Subtotal)))
	}

	for i, item := range inv.Items {
		if item.Quantity == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d (%s) has zero quantity", i+1, item.ID))
		}
	}

	if len(result.Warnings) > 0 {
		r.log.Warn().
			Str("invoice_number", inv.InvoiceNumber).
			Str("final_total", money.Format(result.Totals.FinalTotal)).
			Strs("warnings", result.Warnings).
			Msg("Invoice review found warnings")
	} else {
		r.log.Debug().
			Str("invoice_number", inv.InvoiceNumber).
			Str("final_total", money.Format(result.Totals.FinalTotal)).
			Msg("Invoice review passed")
	}

	return result
}
