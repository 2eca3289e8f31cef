package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

type seqIDs struct{ n int }

func (s *seqIDs) NextID() string {
	s.n++
	return fmt.Sprintf("id%d", s.n)
}

var today = models.ParseDateOrZero("2026-10-15")

func sampleInvoice(t *testing.T) models.Invoice {
	t.Helper()
	env := invoice.Env{IDs: &seqIDs{}, Today: func() models.Date { return today }}
	inv := invoice.ApplyAll(invoice.NewInvoice(today), env,
		invoice.SetField{Field: invoice.FieldCompanyName, Value: "Normar Dental Lab"},
		invoice.SetField{Field: invoice.FieldClientName, Value: "Dr. <Smith>"},
		invoice.SetField{Field: invoice.FieldInvoiceNumber, Value: "042"},
		invoice.AddItem{}, invoice.AddItem{}, invoice.AddDiscount{},
	)
	return invoice.ApplyAll(inv, env,
		invoice.UpdateItem{ID: "id1", Field: invoice.ItemDescription, Value: "Zirconia crown"},
		invoice.UpdateItem{ID: "id1", Field: invoice.ItemQuantity, Value: "2"},
		invoice.UpdateItem{ID: "id1", Field: invoice.ItemPrice, Value: "100"},
		invoice.UpdateItem{ID: "id2", Field: invoice.ItemPrice, Value: "50"},
		invoice.UpdateDiscount{ID: "id3", Field: invoice.DiscountAmount, Value: "30"},
		invoice.UpdateDiscount{ID: "id3", Field: invoice.DiscountDescription, Value: "cash"},
	)
}

func TestPaddingRows(t *testing.T) {
	for items, want := range map[int]int{0: 6, 1: 5, 3: 3, 6: 0, 9: 0} {
		assert.Equal(t, want, PaddingRows(items), "items=%d", items)
	}
}

func TestBuildTableRows(t *testing.T) {
	for _, n := range []int{0, 1, 3, 6, 9} {
		env := invoice.Env{IDs: &seqIDs{}, Today: func() models.Date { return today }}
		inv := invoice.NewInvoice(today)
		for i := 0; i < n; i++ {
			inv = invoice.Apply(inv, invoice.AddItem{}, env)
		}

		layout := Build(inv)

		assert.Equal(t, max(0, MinTableRows-n), layout.Table.Padding)
		assert.Equal(t, max(n, MinTableRows), len(layout.Table.Rows))
		for _, row := range layout.Table.Rows[n:] {
			assert.True(t, row.Blank)
		}
	}
}

func TestBuildScenario(t *testing.T) {
	layout := Build(sampleInvoice(t))

	assert.Equal(t, "Normar Dental Lab", layout.Header.CompanyName)
	assert.Equal(t, "042", layout.Header.InvoiceNumber)
	assert.Equal(t, "2026-10-15", layout.Header.IssueDate)
	assert.Equal(t, "2026-11-14", layout.Header.DueDate)

	require.Equal(t, MinTableRows-2, layout.Table.Padding)
	rows := layout.Table.Rows[:2]
	assert.False(t, rows[1].Blank)
	assert.Equal(t, Row{ID: "id1", Description: "Zirconia crown", Quantity: "2", UnitPrice: "100.00", LineTotal: "200.00"}, rows[0])
	assert.Equal(t, "50.00", rows[1].LineTotal)

	assert.Equal(t, "250.00", layout.Totals.Subtotal)
	assert.Equal(t, []DiscountRow{{Amount: "-30.00", Label: "Payment (cash)", Date: "2026-10-15"}}, layout.Totals.Discounts)
	assert.Equal(t, "220.00", layout.Totals.FinalTotal)
	assert.False(t, layout.Totals.Negative)
	assert.Equal(t, LabelSignature, layout.Signature)
}

func TestBuildIsIdempotent(t *testing.T) {
	inv := sampleInvoice(t)

	assert.Equal(t, Build(inv), Build(inv))
}

func TestBuildEmptyDatesRenderBlank(t *testing.T) {
	inv := invoice.NewInvoice(today)
	inv.DueDate = models.Date{}

	assert.Equal(t, "", Build(inv).Header.DueDate)
}

func TestRenderPage(t *testing.T) {
	r := NewHTMLRenderer()
	layout := Build(sampleInvoice(t))

	page, err := r.RenderPage(layout, PageOptions{AutoPrint: true})
	require.NoError(t, err)

	assert.Contains(t, page, "@page { size: A4")
	assert.Contains(t, page, "window.print()")
	assert.Contains(t, page, "<title>Invoice 042</title>")
	assert.Contains(t, page, "Dr. &lt;Smith&gt;")
	assert.NotContains(t, page, "Dr. <Smith>")
	assert.Contains(t, page, "-30.00")
	assert.Equal(t, MinTableRows-2, strings.Count(page, `<tr class="blank">`))

	plain, err := r.RenderPage(layout, PageOptions{})
	require.NoError(t, err)
	assert.NotContains(t, plain, "window.print()")
}

func TestRenderFragment(t *testing.T) {
	fragment, err := NewHTMLRenderer().RenderFragment(Build(sampleInvoice(t)))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fragment, "<style>"))
	assert.Contains(t, fragment, `id="invoice-preview"`)
	assert.Contains(t, fragment, "220.00")
	assert.NotContains(t, fragment, "<html")
}
