package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"invoicer/internal/render"
)

const (
	// PageWidth is the logical width of the rasterized page, in CSS pixels.
	PageWidth = 800

	// RasterScale is the device pixel ratio used when rasterizing.
	RasterScale = 2

	margin   = 32
	rowH     = 36
	contentW = PageWidth - 2*margin
)

var (
	colWhite    = color.RGBA{255, 255, 255, 255}
	colInk      = color.RGBA{30, 41, 59, 255}
	colMuted    = color.RGBA{100, 116, 139, 255}
	colBrand    = color.RGBA{30, 64, 175, 255}
	colBrandInk = color.RGBA{30, 58, 138, 255}
	colGrid     = color.RGBA{203, 213, 225, 255}
	colHeadBg   = color.RGBA{219, 234, 254, 255}
	colClientBg = color.RGBA{239, 246, 255, 255}
	colTotalsBd = color.RGBA{147, 197, 253, 255}
	colTotalsLn = color.RGBA{191, 219, 254, 255}
	colNegative = color.RGBA{220, 38, 38, 255}
	colSignLine = color.RGBA{148, 163, 184, 255}
)

// table column edges in logical pixels: description, quantity, price, total
var colEdges = [...]float64{margin, 400, 488, 616, PageWidth - margin}

type alignment int

const (
	alignLeft alignment = iota
	alignRight
	alignCenter
)

type textStyle struct {
	size  float64
	bold  bool
	color color.Color
}

// Rasterizer draws layouts onto opaque bitmaps.
type Rasterizer struct {
	regular *opentype.Font
	bold    *opentype.Font
	scale   float64
}

// NewRasterizer loads the Go fonts used for drawing.
func NewRasterizer() (*Rasterizer, error) {
	const op = "NewRasterizer"

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, NewExportError(op, fmt.Errorf("%w: %w", ErrRasterize, err), "parse regular font")
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, NewExportError(op, fmt.Errorf("%w: %w", ErrRasterize, err), "parse bold font")
	}
	return &Rasterizer{regular: regular, bold: bold, scale: RasterScale}, nil
}

// Rasterize draws layout at RasterScale on a white background.
func (r *Rasterizer) Rasterize(ctx context.Context, layout render.Layout) (*image.RGBA, error) {
	const op = "Rasterize"

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	p := &painter{
		regular: r.regular,
		bold:    r.bold,
		scale:   r.scale,
		faces:   map[faceKey]font.Face{},
	}
	defer p.close()

	height := p.plan(layout)

	p.img = image.NewRGBA(image.Rect(0, 0, p.px(PageWidth), p.px(height)))
	draw.Draw(p.img, p.img.Bounds(), image.NewUniform(colWhite), image.Point{}, draw.Src)
	for _, step := range p.steps {
		step()
		if p.err != nil {
			return nil, NewExportError(op, fmt.Errorf("%w: %w", ErrRasterize, p.err), "draw")
		}
	}

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}
	return p.img, nil
}

type faceKey struct {
	bold bool
	size float64
}

// painter records drawing steps while laying out top to bottom, then
// replays them once the page height is known.
type painter struct {
	regular, bold *opentype.Font
	scale         float64
	faces         map[faceKey]font.Face
	img           *image.RGBA
	steps         []func()
	err           error
}

func (p *painter) px(v float64) int {
	return int(v*p.scale + 0.5)
}

func (p *painter) close() {
	for _, f := range p.faces {
		f.Close()
	}
}

func (p *painter) face(style textStyle) font.Face {
	key := faceKey{bold: style.bold, size: style.size}
	if f, ok := p.faces[key]; ok {
		return f
	}
	src := p.regular
	if style.bold {
		src = p.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    style.size * p.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		p.err = err
		return nil
	}
	p.faces[key] = f
	return f
}

func (p *painter) fill(x, y, w, h float64, c color.Color) {
	p.steps = append(p.steps, func() {
		rect := image.Rect(p.px(x), p.px(y), p.px(x+w), p.px(y+h))
		draw.Draw(p.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
	})
}

func (p *painter) stroke(x, y, w, h, t float64, c color.Color) {
	p.fill(x, y, w, t, c)
	p.fill(x, y+h-t, w, t, c)
	p.fill(x, y, t, h, c)
	p.fill(x+w-t, y, t, h, c)
}

// text draws s with its baseline at y. x is the left edge, right edge or
// centre depending on align. Text wider than maxWidth is cut with an ellipsis.
func (p *painter) text(x, y float64, s string, style textStyle, align alignment, maxWidth float64) {
	if s == "" {
		return
	}
	p.steps = append(p.steps, func() {
		face := p.face(style)
		if face == nil {
			return
		}
		s := fitText(face, s, fixed.I(p.px(maxWidth)))
		width := font.MeasureString(face, s)
		dot := fixed.I(p.px(x))
		switch align {
		case alignRight:
			dot -= width
		case alignCenter:
			dot -= width / 2
		}
		d := &font.Drawer{
			Dst:  p.img,
			Src:  image.NewUniform(style.color),
			Face: face,
			Dot:  fixed.Point26_6{X: dot, Y: fixed.I(p.px(y))},
		}
		d.DrawString(s)
	})
}

func fitText(face font.Face, s string, maxWidth fixed.Int26_6) string {
	if maxWidth <= 0 || font.MeasureString(face, s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if font.MeasureString(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}

func lines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// plan lays out every section and returns the page height.
func (p *painter) plan(l render.Layout) float64 {
	y := float64(margin)
	y = p.planHeader(l.Header, y)
	y = p.planClient(l.Client, y)
	y = p.planTable(l.Table, y)
	y = p.planTotals(l.Totals, y)
	y = p.planNotes(l, y)
	y = p.planSignature(l.Signature, y)
	return y + margin
}

func (p *painter) planHeader(h render.Header, y float64) float64 {
	half := contentW / 2.0
	name := textStyle{size: 22, bold: true, color: colBrand}
	small := textStyle{size: 13, color: colMuted}

	left := y + 24
	p.text(margin, left, h.CompanyName, name, alignLeft, half)
	for _, line := range lines(h.CompanyAddress) {
		left += 18
		p.text(margin, left, line, small, alignLeft, half)
	}

	right := y + 20
	edge := float64(PageWidth - margin)
	p.text(edge, right, h.Title, textStyle{size: 18, bold: true, color: colBrand}, alignRight, half)
	meta := []string{
		render.LabelNumber + " " + h.InvoiceNumber,
		render.LabelIssueDate + ": " + h.IssueDate,
		render.LabelDueDate + ": " + h.DueDate,
	}
	for _, line := range meta {
		right += 20
		p.text(edge, right, line, textStyle{size: 13, color: colInk}, alignRight, half)
	}

	y = max(left, right) + 16
	p.fill(margin, y, contentW, 4, colBrand)
	return y + 4 + 24
}

func (p *painter) planClient(c render.Client, y float64) float64 {
	addr := lines(c.Address)
	height := 40 + 18*float64(len(addr))
	p.fill(margin, y, contentW, height, colClientBg)

	label := render.LabelBillTo + ":"
	p.text(margin+12, y+25, label, textStyle{size: 14, bold: true, color: colBrand}, alignLeft, 100)
	p.text(margin+80, y+25, c.Name, textStyle{size: 14, color: colInk}, alignLeft, contentW-92)
	line := y + 25
	for _, a := range addr {
		line += 18
		p.text(margin+12, line, a, textStyle{size: 13, color: colMuted}, alignLeft, contentW-24)
	}
	return y + height + 24
}

func (p *painter) planTable(t render.Table, y float64) float64 {
	head := textStyle{size: 14, bold: true, color: colBrandInk}
	body := textStyle{size: 14, color: colInk}
	headers := []string{render.LabelDescription, render.LabelQuantity, render.LabelUnitPrice, render.LabelLineTotal}

	top := y
	p.fill(margin, y, contentW, rowH, colHeadBg)
	for i, h := range headers {
		p.cell(i, y, h, head)
	}
	y += rowH

	for _, row := range t.Rows {
		if !row.Blank {
			p.cell(0, y, row.Description, body)
			p.cell(1, y, row.Quantity, body)
			p.cell(2, y, row.UnitPrice, body)
			p.cell(3, y, row.LineTotal, body)
		}
		p.fill(margin, y, contentW, 2, colGrid)
		y += rowH
	}

	p.stroke(margin, top, contentW, y-top, 2, colGrid)
	for _, edge := range colEdges[1 : len(colEdges)-1] {
		p.fill(edge-1, top, 2, y-top, colGrid)
	}
	return y + 24
}

// cell draws text in table column i; the description is left aligned, numbers right aligned.
func (p *painter) cell(i int, rowTop float64, s string, style textStyle) {
	left, right := colEdges[i], colEdges[i+1]
	width := right - left - 20
	if i == 0 {
		p.text(left+10, rowTop+23, s, style, alignLeft, width)
		return
	}
	p.text(right-10, rowTop+23, s, style, alignRight, width)
}

func (p *painter) planTotals(t render.TotalsBlock, y float64) float64 {
	amountW := contentW / 4.0
	amountRight := float64(PageWidth - margin - 10)
	labelStyle := textStyle{size: 14, bold: true, color: colInk}
	top := y

	p.text(margin+10, y+23, render.LabelSubtotal, labelStyle, alignLeft, contentW-amountW-20)
	p.text(amountRight, y+23, t.Subtotal, labelStyle, alignRight, amountW-20)
	y += rowH

	for _, d := range t.Discounts {
		p.fill(margin, y, contentW, 2, colTotalsLn)
		p.text(margin+10, y+21, d.Label, labelStyle, alignLeft, contentW-amountW-20)
		p.text(margin+10, y+39, render.LabelDiscountDate+" "+d.Date, textStyle{size: 12, color: colMuted}, alignLeft, contentW-amountW-20)
		p.text(amountRight, y+29, d.Amount, textStyle{size: 14, bold: true, color: colNegative}, alignRight, amountW-20)
		y += 48
	}

	p.fill(margin, y, contentW, 2, colTotalsLn)
	p.fill(margin+contentW-amountW, y, amountW, rowH, colHeadBg)
	finalStyle := textStyle{size: 15, bold: true, color: colBrandInk}
	amountStyle := finalStyle
	if t.Negative {
		amountStyle.color = colNegative
	}
	p.text(margin+10, y+24, render.LabelFinalTotal, finalStyle, alignLeft, contentW-amountW-20)
	p.text(amountRight, y+24, t.FinalTotal, amountStyle, alignRight, amountW-20)
	y += rowH

	p.fill(margin+contentW-amountW-1, top, 2, y-top, colTotalsLn)
	p.stroke(margin, top, contentW, y-top, 2, colTotalsBd)
	return y + 24
}

func (p *painter) planNotes(l render.Layout, y float64) float64 {
	label := textStyle{size: 13, bold: true, color: colInk}
	body := textStyle{size: 13, color: colInk}
	for _, block := range []struct{ title, text string }{
		{render.LabelNotes, l.Notes},
		{render.LabelPaymentTerms, l.PaymentTerms},
	} {
		content := lines(block.text)
		if len(content) == 0 {
			continue
		}
		y += 18
		p.text(margin, y, block.title+":", label, alignLeft, contentW)
		for _, line := range content {
			y += 18
			p.text(margin, y, line, body, alignLeft, contentW)
		}
		y += 10
	}
	return y
}

func (p *painter) planSignature(label string, y float64) float64 {
	y += 40
	p.fill(margin, y, contentW, 2, colTotalsLn)
	y += 56
	p.fill(margin, y, 160, 2, colSignLine)
	y += 22
	p.text(margin+80, y, label, textStyle{size: 13, bold: true, color: colInk}, alignCenter, 160)
	return y
}
