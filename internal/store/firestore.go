package store

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

// DefaultCollection is the Firestore collection saved invoices live in.
const DefaultCollection = "invoices"

// firestoreInvoice is the stored document. Field names match the documents
// written by the web version of the editor, so both can share a collection.
type firestoreInvoice struct {
	InvoiceNumber  string              `firestore:"invoiceNumber"`
	Date           string              `firestore:"date"`
	DueDate        string              `firestore:"dueDate"`
	CompanyName    string              `firestore:"companyName"`
	CompanyAddress string              `firestore:"companyAddress"`
	ClientName     string              `firestore:"clientName"`
	ClientAddress  string              `firestore:"clientAddress"`
	Items          []firestoreItem     `firestore:"items"`
	Discounts      []firestoreDiscount `firestore:"discounts"`
	Notes          string              `firestore:"notes"`
	PaymentTerms   string              `firestore:"paymentTerms"`
	Subtotal       float64             `firestore:"subtotal"`
	DiscountAmount float64             `firestore:"discountAmount"`
	TotalAmount    float64             `firestore:"totalAmount"`
	CreatedAt      time.Time           `firestore:"createdAt"`
}

type firestoreItem struct {
	ID          string  `firestore:"id"`
	Description string  `firestore:"description"`
	Quantity    int64   `firestore:"quantity"`
	Price       float64 `firestore:"price"`
}

type firestoreDiscount struct {
	ID          string  `firestore:"id"`
	Amount      float64 `firestore:"amount"`
	Date        string  `firestore:"date"`
	Description string  `firestore:"description,omitempty"`
}

func toFirestore(inv models.Invoice, createdAt time.Time) firestoreInvoice {
	rec := newRecord("", inv, createdAt)
	return firestoreInvoice{
		InvoiceNumber:  inv.InvoiceNumber,
		Date:           inv.IssueDate.String(),
		DueDate:        inv.DueDate.String(),
		CompanyName:    inv.CompanyName,
		CompanyAddress: inv.CompanyAddress,
		ClientName:     inv.ClientName,
		ClientAddress:  inv.ClientAddress,
		Items: lo.Map(inv.Items, func(it models.LineItem, _ int) firestoreItem {
			return firestoreItem{
				ID:          it.ID,
				Description: it.Description,
				Quantity:    it.Quantity,
				Price:       it.UnitPrice.InexactFloat64(),
			}
		}),
		Discounts: lo.Map(inv.Discounts, func(d models.Discount, _ int) firestoreDiscount {
			return firestoreDiscount{
				ID:          d.ID,
				Amount:      d.Amount.InexactFloat64(),
				Date:        d.Date.String(),
				Description: d.Description,
			}
		}),
		Notes:          inv.Notes,
		PaymentTerms:   inv.PaymentTerms,
		Subtotal:       rec.Subtotal.InexactFloat64(),
		DiscountAmount: rec.DiscountAmount.InexactFloat64(),
		TotalAmount:    rec.TotalAmount.InexactFloat64(),
		CreatedAt:      createdAt,
	}
}

// fromFirestore rebuilds the record. Documents written by other clients may
// hold negative or missing values; they are coerced like user input.
func fromFirestore(id string, doc firestoreInvoice) Record {
	inv := models.Invoice{
		InvoiceNumber:  doc.InvoiceNumber,
		IssueDate:      models.ParseDateOrZero(doc.Date),
		DueDate:        models.ParseDateOrZero(doc.DueDate),
		CompanyName:    doc.CompanyName,
		CompanyAddress: doc.CompanyAddress,
		ClientName:     doc.ClientName,
		ClientAddress:  doc.ClientAddress,
		Items: lo.Map(doc.Items, func(it firestoreItem, _ int) models.LineItem {
			return models.LineItem{
				ID:          it.ID,
				Description: it.Description,
				Quantity:    max(it.Quantity, 0),
				UnitPrice:   amountFromFloat(it.Price),
			}
		}),
		Discounts: lo.Map(doc.Discounts, func(d firestoreDiscount, _ int) models.Discount {
			return models.Discount{
				ID:          d.ID,
				Amount:      amountFromFloat(d.Amount),
				Date:        models.ParseDateOrZero(d.Date),
				Description: d.Description,
			}
		}),
		Notes:        doc.Notes,
		PaymentTerms: doc.PaymentTerms,
	}
	return newRecord(id, invoice.Sanitize(inv), doc.CreatedAt)
}

func amountFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return money.Zero
	}
	return money.Coerce(decimal.NewFromFloat(f))
}

// FirestoreStore keeps invoices in a Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
	log        zerolog.Logger
}

// NewFirestoreStore connects to Firestore. Credentials come from
// GOOGLE_CREDENTIALS (inline JSON) or GOOGLE_APPLICATION_CREDENTIALS (file),
// falling back to application default credentials.
func NewFirestoreStore(ctx context.Context, projectID, collection, credentialsJSON, credentialsFile string) (*FirestoreStore, error) {
	const op = "NewFirestoreStore"

	if collection == "" {
		collection = DefaultCollection
	}

	var clientOptions []option.ClientOption
	if credentialsJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credentialsJSON)))
	} else if credentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapStoreError(op, BackendFirestore, errors.Join(ErrMissingCredentials, err))
		}
		return nil, WrapStoreError(op, BackendFirestore, err)
	}

	return &FirestoreStore{
		client:     client,
		collection: collection,
		now:        time.Now,
		log:        logger.WithComponent("store-firestore"),
	}, nil
}

// Backend implements Store.
func (s *FirestoreStore) Backend() string { return BackendFirestore }

// Save implements Store.
func (s *FirestoreStore) Save(ctx context.Context, inv models.Invoice) (string, error) {
	const op = "Save"

	ref, _, err := s.client.Collection(s.collection).Add(ctx, toFirestore(inv, s.now().UTC()))
	if err != nil {
		return "", WrapStoreError(op, BackendFirestore, err)
	}

	s.log.Info().
		Str("id", ref.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Msg("Saved invoice")
	return ref.ID, nil
}

// List implements Store.
func (s *FirestoreStore) List(ctx context.Context) ([]Record, error) {
	const op = "List"

	docs, err := s.client.Collection(s.collection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, WrapStoreError(op, BackendFirestore, err)
	}

	records := make([]Record, 0, len(docs))
	for _, snap := range docs {
		var doc firestoreInvoice
		if err := snap.DataTo(&doc); err != nil {
			s.log.Warn().Err(err).Str("id", snap.Ref.ID).Msg("Skipping undecodable invoice")
			continue
		}
		records = append(records, fromFirestore(snap.Ref.ID, doc))
	}
	return records, nil
}

// Get implements Store.
func (s *FirestoreStore) Get(ctx context.Context, id string) (Record, error) {
	const op = "Get"

	if !validDocID(id) {
		return Record{}, WrapStoreError(op, BackendFirestore, ErrNotFound)
	}
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		return Record{}, WrapStoreError(op, BackendFirestore, notFound(err))
	}

	var doc firestoreInvoice
	if err := snap.DataTo(&doc); err != nil {
		return Record{}, WrapStoreError(op, BackendFirestore, errors.Join(ErrCorruptRecord, err))
	}
	return fromFirestore(snap.Ref.ID, doc), nil
}

// Delete implements Store.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	const op = "Delete"

	if !validDocID(id) {
		return WrapStoreError(op, BackendFirestore, ErrNotFound)
	}
	if _, err := s.client.Collection(s.collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return WrapStoreError(op, BackendFirestore, notFound(err))
	}

	s.log.Info().Str("id", id).Msg("Deleted invoice")
	return nil
}

// Close implements Store.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func validDocID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func notFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
