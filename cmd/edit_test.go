package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

func TestEditFlagsCommandOrder(t *testing.T) {
	f := editFlags{
		batch:           []byte(`[{"op":"remove_item","id":"9"}]`),
		sets:            []string{"clientName=ACME"},
		addItems:        2,
		items:           []string{"1.price=10"},
		removeItems:     []string{"2"},
		addDiscounts:    1,
		discounts:       []string{"3.amount=5"},
		removeDiscounts: []string{"4"},
	}

	cmds, err := f.commands()
	require.NoError(t, err)

	ops := make([]string, len(cmds))
	for i, c := range cmds {
		ops[i] = c.Op()
	}
	assert.Equal(t, []string{
		"remove_item", "set_field", "add_item", "add_item", "update_item",
		"remove_item", "add_discount", "update_discount", "remove_discount",
	}, ops)
	assert.Equal(t, invoice.UpdateItem{ID: "1", Field: invoice.ItemPrice, Value: "10"}, cmds[4])
}

func TestEditFlagsRejectUnknownFields(t *testing.T) {
	_, err := editFlags{sets: []string{"colour=red"}}.commands()
	assert.ErrorIs(t, err, invoice.ErrUnknownField)

	_, err = editFlags{items: []string{"1.weight=3"}}.commands()
	assert.ErrorIs(t, err, invoice.ErrUnknownField)

	_, err = editFlags{discounts: []string{"amount=3"}}.commands()
	assert.ErrorIs(t, err, invoice.ErrMalformedCommand)
}

func TestPrintBatchRoundTrips(t *testing.T) {
	cmds, err := editFlags{
		sets:      []string{"clientName=ACME Ltd"},
		addItems:  1,
		discounts: []string{"7.amount=12.50"},
	}.commands()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printBatch(&out, cmds))

	assert.Contains(t, out.String(), `"op":"set_field"`)
	decoded, err := invoice.DecodeCommands(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cmds, decoded)
}

func TestDocumentFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.json")

	_, err := readDocument(path)
	assert.ErrorIs(t, err, errNoDocument)

	today := models.ParseDateOrZero("2026-10-15")
	env, err := editEnv()
	require.NoError(t, err)
	inv := invoice.ApplyAll(invoice.NewInvoice(today), env,
		invoice.SetField{Field: invoice.FieldClientName, Value: "ACME"},
		invoice.AddItem{}, invoice.AddDiscount{})

	require.NoError(t, writeDocument(path, inv))
	got, err := readDocument(path)
	require.NoError(t, err)
	assert.True(t, got.Equal(inv))
}

func TestReadDocumentSanitizesHandEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"invoiceNumber": "7",
		"items": [{"id": "a", "description": "Crown", "quantity": -2, "price": "-40"}],
		"discounts": [{"id": "b", "amount": "-5", "date": "2026-10-15"}]
	}`), 0o644))

	inv, err := readDocument(path)
	require.NoError(t, err)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Crown", inv.Items[0].Description)
	assert.Equal(t, int64(0), inv.Items[0].Quantity)
	assert.True(t, inv.Items[0].UnitPrice.IsZero())
	assert.True(t, inv.Discounts[0].Amount.IsZero())
}

func TestAddedLines(t *testing.T) {
	before := models.Invoice{Items: []models.LineItem{{ID: "a"}}, Discounts: []models.Discount{{ID: "x"}}}
	after := models.Invoice{
		Items:     []models.LineItem{{ID: "a"}, {ID: "b"}},
		Discounts: []models.Discount{{ID: "y"}},
	}

	assert.Equal(t, []models.LineItem{{ID: "b"}}, addedItems(before, after))
	assert.Equal(t, []models.Discount{{ID: "y"}}, addedDiscounts(before, after))
}
