package render

import (
	"bytes"
	"fmt"
	"html/template"
)

// PrintDelayMillis is how long the print page waits before opening the
// print dialog, giving the browser time to lay out the document.
const PrintDelayMillis = 500

const invoiceHTMLTemplate = `
{{define "styles"}}
    * { box-sizing: border-box; }
    .invoice {
      max-width: 800px;
      margin: 0 auto;
      padding: 32px;
      background: #ffffff;
      color: #1e293b;
      font-family: "Helvetica Neue", Arial, sans-serif;
      font-size: 14px;
    }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 4px solid #1e40af;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .company h1 { margin: 0 0 4px; font-size: 22px; color: #1e40af; }
    .company p, .meta p { margin: 2px 0; color: #475569; }
    .meta { text-align: right; }
    .meta .title { font-size: 18px; font-weight: bold; color: #1e40af; }
    .client { background: #eff6ff; padding: 12px; border-radius: 6px; margin-bottom: 24px; }
    .client .label { font-weight: bold; color: #1e40af; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
    th, td { border: 2px solid #cbd5e1; padding: 10px; }
    th { background: #dbeafe; color: #1e3a8a; text-align: left; }
    td.num, th.num { text-align: right; white-space: nowrap; }
    tr.blank td { height: 40px; }
    .totals { border: 2px solid #93c5fd; margin-bottom: 32px; }
    .totals .row { display: flex; border-bottom: 2px solid #bfdbfe; }
    .totals .row:last-child { border-bottom: 0; }
    .totals .label { flex: 1; padding: 10px; font-weight: 600; }
    .totals .amount { width: 25%; padding: 10px; text-align: right; font-weight: 600; border-left: 2px solid #bfdbfe; }
    .totals .discount .amount { color: #dc2626; }
    .totals .date { font-size: 12px; color: #64748b; font-weight: normal; }
    .totals .final { background: #dbeafe; font-weight: bold; color: #1e3a8a; }
    .totals .final.negative .amount { color: #dc2626; }
    .notes { margin-bottom: 24px; white-space: pre-line; }
    .signature { margin-top: 64px; padding-top: 24px; border-top: 2px solid #e2e8f0; }
    .signature .line { width: 160px; border-bottom: 2px solid #94a3b8; margin-bottom: 8px; }
    .signature p { margin: 0; font-weight: bold; color: #334155; }
{{end}}

{{define "invoice"}}
<div class="invoice" id="invoice-preview">
  <div class="header">
    <div class="company">
      <h1>{{.Header.CompanyName}}</h1>
      {{if .Header.CompanyAddress}}<p>{{.Header.CompanyAddress}}</p>{{end}}
    </div>
    <div class="meta">
      <p class="title">{{.Header.Title}}</p>
      <p>{{label "number"}} <strong>{{.Header.InvoiceNumber}}</strong></p>
      <p>{{label "date"}}: <strong>{{.Header.IssueDate}}</strong></p>
      <p>{{label "due"}}: <strong>{{.Header.DueDate}}</strong></p>
    </div>
  </div>

  <div class="client">
    <span class="label">{{label "billTo"}}:</span> {{.Client.Name}}
    {{if .Client.Address}}<div>{{.Client.Address}}</div>{{end}}
  </div>

  <table>
    <thead>
      <tr>
        <th>{{label "description"}}</th>
        <th class="num">{{label "quantity"}}</th>
        <th class="num">{{label "price"}}</th>
        <th class="num">{{label "total"}}</th>
      </tr>
    </thead>
    <tbody>
      {{range .Table.Rows}}
      {{if .Blank}}
      <tr class="blank"><td></td><td></td><td></td><td></td></tr>
      {{else}}
      <tr data-id="{{.ID}}">
        <td>{{.Description}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{.UnitPrice}}</td>
        <td class="num">{{.LineTotal}}</td>
      </tr>
      {{end}}
      {{end}}
    </tbody>
  </table>

  <div class="totals">
    <div class="row">
      <div class="label">{{label "subtotal"}}</div>
      <div class="amount">{{.Totals.Subtotal}}</div>
    </div>
    {{range .Totals.Discounts}}
    <div class="row discount">
      <div class="label">{{.Label}}<div class="date">{{label "discountDate"}} {{.Date}}</div></div>
      <div class="amount">{{.Amount}}</div>
    </div>
    {{end}}
    <div class="row final{{if .Totals.Negative}} negative{{end}}">
      <div class="label">{{label "finalTotal"}}</div>
      <div class="amount">{{.Totals.FinalTotal}}</div>
    </div>
  </div>

  {{if .Notes}}<div class="notes"><strong>{{label "notes"}}:</strong> {{.Notes}}</div>{{end}}
  {{if .PaymentTerms}}<div class="notes"><strong>{{label "paymentTerms"}}:</strong> {{.PaymentTerms}}</div>{{end}}

  <div class="signature">
    <div class="line"></div>
    <p>{{.Signature}}</p>
  </div>
</div>
{{end}}

{{define "page"}}<!doctype html>
<html lang="en" dir="ltr">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>
    @page { size: A4; margin: 10mm; }
    body { margin: 0; background: #ffffff; }
    @media print { .invoice { padding: 0; max-width: none; } }
{{template "styles"}}
  </style>
</head>
<body>
{{template "invoice" .Layout}}
{{if .AutoPrint}}
<script>
  window.onload = function () { setTimeout(function () { window.print(); }, {{.PrintDelay}}); };
</script>
{{end}}
</body>
</html>
{{end}}
`

var labels = map[string]string{
	"number":       LabelNumber,
	"date":         LabelIssueDate,
	"due":          LabelDueDate,
	"billTo":       LabelBillTo,
	"description":  LabelDescription,
	"quantity":     LabelQuantity,
	"price":        LabelUnitPrice,
	"total":        LabelLineTotal,
	"subtotal":     LabelSubtotal,
	"discountDate": LabelDiscountDate,
	"finalTotal":   LabelFinalTotal,
	"notes":        LabelNotes,
	"paymentTerms": LabelPaymentTerms,
}

// PageOptions controls the standalone page produced by RenderPage.
type PageOptions struct {
	// AutoPrint adds a script that opens the print dialog once the page has loaded.
	AutoPrint bool
}

// HTMLRenderer renders layouts with html/template, escaping all invoice text.
type HTMLRenderer struct {
	tpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	funcs := template.FuncMap{
		"label": func(key string) string { return labels[key] },
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("html").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

// RenderFragment renders the invoice markup with its styles, for embedding
// in a larger page.
func (r *HTMLRenderer) RenderFragment(layout Layout) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("<style>")
	if err := r.tpl.ExecuteTemplate(&buf, "styles", nil); err != nil {
		return "", fmt.Errorf("render styles: %w", err)
	}
	buf.WriteString("</style>\n")
	if err := r.tpl.ExecuteTemplate(&buf, "invoice", layout); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	return buf.String(), nil
}

// RenderPage renders a complete A4 HTML document for the layout.
func (r *HTMLRenderer) RenderPage(layout Layout, opts PageOptions) (string, error) {
	data := struct {
		Title      string
		Layout     Layout
		AutoPrint  bool
		PrintDelay int
	}{
		Title:      PageTitle(layout),
		Layout:     layout,
		AutoPrint:  opts.AutoPrint,
		PrintDelay: PrintDelayMillis,
	}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "page", data); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}

// PageTitle is the document title used for printed and downloaded copies.
func PageTitle(layout Layout) string {
	if layout.Header.InvoiceNumber == "" {
		return "Invoice"
	}
	return "Invoice " + layout.Header.InvoiceNumber
}
