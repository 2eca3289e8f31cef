package register

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoicer/internal/store"
	"invoicer/pkg/models"
)

func sampleRecords() []store.Record {
	return []store.Record{
		{
			ID: "b",
			Document: models.Invoice{
				InvoiceNumber: "002",
				IssueDate:     models.ParseDateOrZero("2026-10-15"),
				DueDate:       models.ParseDateOrZero("2026-11-14"),
				ClientName:    "ACME",
			},
			Subtotal:       decimal.RequireFromString("250.125"),
			DiscountAmount: decimal.RequireFromString("30"),
			TotalAmount:    decimal.RequireFromString("220.125"),
			CreatedAt:      time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:             "a",
			Document:       models.Invoice{InvoiceNumber: "001"},
			Subtotal:       decimal.Zero,
			DiscountAmount: decimal.RequireFromString("5"),
			TotalAmount:    decimal.RequireFromString("-5"),
			CreatedAt:      time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleRecords())

	require.Len(t, rows, 2)
	assert.Equal(t, Row{
		ID:             "b",
		InvoiceNumber:  "002",
		Date:           "2026-10-15",
		DueDate:        "2026-11-14",
		Client:         "ACME",
		Subtotal:       250.13,
		DiscountAmount: 30,
		Total:          220.13,
		SavedAt:        "2026-10-15 09:30:00",
	}, rows[0])
	assert.Equal(t, "", rows[1].Date)
	assert.Equal(t, -5.0, rows[1].Total)
	assert.Len(t, rows[0].Values(), len(Headers))
}

func TestColumnRange(t *testing.T) {
	assert.Equal(t, "Invoices!A:I", columnRange("Invoices", 0))
	assert.Equal(t, "Invoices!A1:I1", columnRange("Invoices", 1))
}

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9", id)

	_, err = extractSpreadsheetID("https://example.com/sheet")
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRecords(), ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "002", rows[1][1])
	assert.Equal(t, "220.13", rows[1][7])
	assert.Equal(t, "001", rows[2][1])
}
