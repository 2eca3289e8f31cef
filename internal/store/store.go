// Package store persists snapshots of saved invoices.
//
// Saving copies the invoice as it is at that moment; later edits in the
// session never reach a saved record. Loading returns only the editable
// document, so derived values stored next to it (totals, timestamps) are
// never fed back into the editor.
//
// Backends:
//   - firestore: collection "invoices", field names as used by the web app
//   - postgres: gorm, JSON snapshot column
//   - sqlite: gorm, JSON snapshot column, file on disk
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// Store saves, lists, fetches and deletes invoice snapshots.
type Store interface {
	// Save stores a snapshot of inv and returns its new id.
	Save(ctx context.Context, inv models.Invoice) (string, error)

	// List returns all saved invoices, newest first.
	List(ctx context.Context) ([]Record, error)

	// Get returns one saved invoice or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes one saved invoice or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Backend names the backend for logs and errors.
	Backend() string

	Close() error
}

// Record is a saved invoice with the values derived when it was saved.
type Record struct {
	ID             string          `json:"id"`
	Document       models.Invoice  `json:"document"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// newRecord derives the totals of doc.
func newRecord(id string, doc models.Invoice, createdAt time.Time) Record {
	totals := invoice.ComputeTotals(doc)
	return Record{
		ID:             id,
		Document:       doc.Clone(),
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.TotalDiscount,
		TotalAmount:    totals.FinalTotal,
		CreatedAt:      createdAt,
	}
}

// Load returns the editable document of a saved record, without its id,
// totals or timestamps.
func Load(rec Record) models.Invoice {
	return rec.Document.Clone()
}
