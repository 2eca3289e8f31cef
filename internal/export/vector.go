package export

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"invoicer/internal/render"
)

var (
	brandColor    = &props.Color{Red: 30, Green: 64, Blue: 175}
	mutedColor    = &props.Color{Red: 100, Green: 116, Blue: 139}
	negativeColor = &props.Color{Red: 220, Green: 38, Blue: 38}
)

// VectorPDF renders layout as a PDF with selectable text.
func (e *PDFExporter) VectorPDF(ctx context.Context, layout render.Layout) ([]byte, error) {
	const op = "VectorPDF"

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	addVectorHeader(m, layout.Header)
	addVectorClient(m, layout.Client)
	addVectorTable(m, layout.Table)
	addVectorTotals(m, layout.Totals)
	addVectorNotes(m, layout)
	addVectorSignature(m, layout.Signature)

	doc, err := m.Generate()
	if err != nil {
		return nil, NewExportError(op, fmt.Errorf("%w: %w", ErrEncode, err), "maroto")
	}
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	out := doc.GetBytes()
	e.log.Debug().
		Str("invoice_number", layout.Header.InvoiceNumber).
		Int("bytes", len(out)).
		Msg("Rendered vector PDF")
	return out, nil
}

func addVectorHeader(m core.Maroto, h render.Header) {
	m.AddRow(30,
		col.New(6).Add(
			text.New(h.CompanyName, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
				Color: brandColor,
			}),
			text.New(h.CompanyAddress, props.Text{
				Size:  9,
				Top:   8,
				Align: align.Left,
				Color: mutedColor,
			}),
		),
		col.New(6).Add(
			text.New(h.Title, props.Text{
				Size:  18,
				Style: fontstyle.Bold,
				Align: align.Right,
				Color: brandColor,
			}),
			text.New(fmt.Sprintf("%s %s", render.LabelNumber, h.InvoiceNumber), props.Text{
				Size:  10,
				Top:   9,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("%s: %s", render.LabelIssueDate, h.IssueDate), props.Text{
				Size:  10,
				Top:   14,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("%s: %s", render.LabelDueDate, h.DueDate), props.Text{
				Size:  10,
				Top:   19,
				Align: align.Right,
			}),
		),
	)

	m.AddRow(5, line.NewCol(12))
}

func addVectorClient(m core.Maroto, c render.Client) {
	m.AddRow(14,
		col.New(12).Add(
			text.New(fmt.Sprintf("%s: %s", render.LabelBillTo, c.Name), props.Text{
				Size:  11,
				Style: fontstyle.Bold,
				Top:   3,
				Align: align.Left,
			}),
			text.New(c.Address, props.Text{
				Size:  9,
				Top:   8,
				Align: align.Left,
				Color: mutedColor,
			}),
		),
	)
}

func addVectorTable(m core.Maroto, t render.Table) {
	head := props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Color: brandColor}
	m.AddRow(8,
		col.New(6).Add(text.New(render.LabelDescription, withAlign(head, align.Left))),
		col.New(2).Add(text.New(render.LabelQuantity, withAlign(head, align.Right))),
		col.New(2).Add(text.New(render.LabelUnitPrice, withAlign(head, align.Right))),
		col.New(2).Add(text.New(render.LabelLineTotal, withAlign(head, align.Right))),
	)
	m.AddRow(2, line.NewCol(12))

	body := props.Text{Size: 10, Top: 2}
	for _, row := range t.Rows {
		if row.Blank {
			m.AddRow(8, col.New(12))
			continue
		}
		m.AddRow(8,
			col.New(6).Add(text.New(row.Description, withAlign(body, align.Left))),
			col.New(2).Add(text.New(row.Quantity, withAlign(body, align.Right))),
			col.New(2).Add(text.New(row.UnitPrice, withAlign(body, align.Right))),
			col.New(2).Add(text.New(row.LineTotal, withAlign(body, align.Right))),
		)
	}
	m.AddRow(5, line.NewCol(12))
}

func addVectorTotals(m core.Maroto, t render.TotalsBlock) {
	label := props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Align: align.Left}
	amount := props.Text{Size: 10, Style: fontstyle.Bold, Top: 2, Align: align.Right}

	m.AddRow(8,
		col.New(9).Add(text.New(render.LabelSubtotal, label)),
		col.New(3).Add(text.New(t.Subtotal, amount)),
	)

	discountAmount := amount
	discountAmount.Color = negativeColor
	for _, d := range t.Discounts {
		m.AddRow(11,
			col.New(9).Add(
				text.New(d.Label, label),
				text.New(render.LabelDiscountDate+" "+d.Date, props.Text{Size: 8, Top: 7, Align: align.Left, Color: mutedColor}),
			),
			col.New(3).Add(text.New(d.Amount, discountAmount)),
		)
	}

	final := amount
	final.Size = 12
	if t.Negative {
		final.Color = negativeColor
	}
	m.AddRow(10,
		col.New(9).Add(text.New(render.LabelFinalTotal, props.Text{Size: 12, Style: fontstyle.Bold, Top: 2, Align: align.Left, Color: brandColor})),
		col.New(3).Add(text.New(t.FinalTotal, final)),
	)
}

func addVectorNotes(m core.Maroto, l render.Layout) {
	for _, block := range []struct{ title, body string }{
		{render.LabelNotes, l.Notes},
		{render.LabelPaymentTerms, l.PaymentTerms},
	} {
		if block.body == "" {
			continue
		}
		m.AddRow(10,
			col.New(12).Add(text.New(fmt.Sprintf("%s: %s", block.title, block.body), props.Text{
				Size:  9,
				Top:   3,
				Align: align.Left,
			})),
		)
	}
}

func addVectorSignature(m core.Maroto, label string) {
	m.AddRow(25)
	m.AddRow(3, line.NewCol(3))
	m.AddRow(8,
		col.New(3).Add(text.New(label, props.Text{
			Size:  10,
			Style: fontstyle.Bold,
			Align: align.Center,
		})),
	)
}

func withAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	return p
}
