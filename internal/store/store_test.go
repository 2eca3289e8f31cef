package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/datatypes"

	"invoicer/internal/config"
	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

type seqIDs struct{ n int }

func (s *seqIDs) NextID() string {
	s.n++
	return fmt.Sprint(s.n)
}

var today = models.ParseDateOrZero("2026-10-15")

func sampleInvoice(number string) models.Invoice {
	env := invoice.Env{IDs: &seqIDs{}, Today: func() models.Date { return today }}
	inv := invoice.ApplyAll(invoice.NewInvoice(today), env,
		invoice.SetField{Field: invoice.FieldInvoiceNumber, Value: number},
		invoice.SetField{Field: invoice.FieldCompanyName, Value: "Normar"},
		invoice.SetField{Field: invoice.FieldClientName, Value: "ACME"},
		invoice.SetField{Field: invoice.FieldNotes, Value: "thanks"},
		invoice.AddItem{}, invoice.AddItem{}, invoice.AddDiscount{},
	)
	return invoice.ApplyAll(inv, env,
		invoice.UpdateItem{ID: "1", Field: invoice.ItemQuantity, Value: "2"},
		invoice.UpdateItem{ID: "1", Field: invoice.ItemPrice, Value: "100"},
		invoice.UpdateItem{ID: "2", Field: invoice.ItemPrice, Value: "50.125"},
		invoice.UpdateDiscount{ID: "3", Field: invoice.DiscountAmount, Value: "30"},
		invoice.UpdateDiscount{ID: "3", Field: invoice.DiscountDescription, Value: "cash"},
	)
}

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "invoices.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	inv := sampleInvoice("042")

	id, err := s.Save(ctx, inv)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, rec.ID)
	assert.True(t, Load(rec).Equal(inv), "loaded invoice differs: %+v", Load(rec))
	assert.Equal(t, "250.125", rec.Subtotal.String())
	assert.Equal(t, "30", rec.DiscountAmount.String())
	assert.Equal(t, "220.125", rec.TotalAmount.String())
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestSQLiteGetSanitizesEditedSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	row := invoiceRow{
		ID:            "edited",
		InvoiceNumber: "9",
		Snapshot: datatypes.JSON(`{"invoiceNumber":"9","items":[` +
			`{"id":"a","quantity":-3,"price":"-5"},{"id":"b","quantity":2,"price":"1e5000000"}],` +
			`"discounts":[{"id":"c","amount":"-7"}]}`),
		CreatedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.db.WithContext(ctx).Create(&row).Error)

	rec, err := s.Get(ctx, "edited")
	require.NoError(t, err)

	items := rec.Document.Items
	require.Len(t, items, 2)
	assert.Equal(t, int64(0), items[0].Quantity)
	assert.True(t, items[0].UnitPrice.IsZero())
	assert.Equal(t, int64(2), items[1].Quantity)
	assert.True(t, items[1].UnitPrice.IsZero())
	assert.True(t, rec.Document.Discounts[0].Amount.IsZero())
	assert.True(t, rec.TotalAmount.IsZero())
}

func TestSQLiteSaveIsSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	inv := sampleInvoice("042")

	id, err := s.Save(ctx, inv)
	require.NoError(t, err)
	inv.Items[0].Description = "edited after save"

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Document.Items[0].Description)
}

func TestSQLiteListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clock := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for _, number := range []string{"001", "002", "003"} {
		_, err := s.Save(ctx, sampleInvoice(number))
		require.NoError(t, err)
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "003", records[0].Document.InvoiceNumber)
	assert.Equal(t, "002", records[1].Document.InvoiceNumber)
	assert.Equal(t, "001", records[2].Document.InvoiceNumber)
}

func TestSQLiteDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, sampleInvoice("042"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.Delete(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "Delete", storeErr.Op)
	assert.Equal(t, BackendSQLite, storeErr.Backend)
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := &config.Config{StoreBackend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")}

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, BackendSQLite, s.Backend())

	_, err = Open(context.Background(), &config.Config{StoreBackend: "mongo"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestFirestoreMappingKeepsEditableFields(t *testing.T) {
	inv := sampleInvoice("042")
	created := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	doc := toFirestore(inv, created)
	assert.Equal(t, "2026-10-15", doc.Date)
	assert.Equal(t, 250.125, doc.Subtotal)
	assert.Equal(t, 30.0, doc.DiscountAmount)
	assert.Equal(t, 220.125, doc.TotalAmount)
	assert.Equal(t, 50.125, doc.Items[1].Price)

	rec := fromFirestore("abc", doc)
	assert.Equal(t, "abc", rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
	assert.True(t, Load(rec).Equal(inv))
}

func TestFirestoreMappingCoercesForeignDocuments(t *testing.T) {
	doc := firestoreInvoice{
		InvoiceNumber: "7",
		Date:          "15/10/2026",
		Items: []firestoreItem{
			{ID: "a", Quantity: -2, Price: -5},
			{ID: "b", Quantity: 1, Price: math.NaN()},
			{ID: "c", Quantity: 1, Price: 1e300},
		},
		Discounts: []firestoreDiscount{{ID: "b", Amount: 12.5, Date: "2026-10-01"}},
	}

	rec := fromFirestore("x", doc)

	assert.True(t, rec.Document.IssueDate.IsZero())
	assert.Equal(t, int64(0), rec.Document.Items[0].Quantity)
	assert.True(t, rec.Document.Items[0].UnitPrice.IsZero())
	assert.True(t, rec.Document.Items[1].UnitPrice.IsZero())
	assert.True(t, rec.Document.Items[2].UnitPrice.IsZero())
	assert.Equal(t, "-12.5", rec.TotalAmount.String())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(WrapStoreError("List", BackendFirestore, status.Error(codes.Unavailable, "down"))))
	assert.True(t, IsRetryable(WrapStoreError("Save", BackendSQLite, context.DeadlineExceeded)))
	assert.False(t, IsRetryable(WrapStoreError("Get", BackendSQLite, ErrNotFound)))
	assert.False(t, IsRetryable(status.Error(codes.PermissionDenied, "no")))
	assert.False(t, IsRetryable(nil))
}
