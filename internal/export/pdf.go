package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/internal/render"
)

// A4 portrait, in millimetres.
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
)

// PDFExporter produces the downloadable PDF forms of a layout.
type PDFExporter struct {
	raster *Rasterizer
	log    zerolog.Logger
}

// NewPDFExporter creates an exporter with its fonts loaded.
func NewPDFExporter() (*PDFExporter, error) {
	raster, err := NewRasterizer()
	if err != nil {
		return nil, err
	}
	return &PDFExporter{
		raster: raster,
		log:    logger.WithComponent("pdf-export"),
	}, nil
}

// Filename is the download name for an invoice number: invoice-<number>.pdf.
// Characters that are unsafe in file names are replaced with underscores.
func Filename(invoiceNumber string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(invoiceNumber))
	if safe == "" {
		return "invoice.pdf"
	}
	return "invoice-" + safe + ".pdf"
}

// RasterInfo describes a rendered raster PDF.
type RasterInfo struct {
	WidthPx  int
	HeightPx int
	// HeightMM is the image height on the page.
	HeightMM float64
	// Clipped is set when the image is taller than the page, so its bottom
	// (usually the totals) is cut off.
	Clipped bool
}

// RasterPDF rasterizes layout and writes it as a single A4 portrait page.
// The bitmap spans the page width; its height keeps the aspect ratio.
func (e *PDFExporter) RasterPDF(ctx context.Context, layout render.Layout, w io.Writer) (RasterInfo, error) {
	const op = "RasterPDF"

	img, err := e.raster.Rasterize(ctx, layout)
	if err != nil {
		return RasterInfo{}, WrapExportError(op, err, "")
	}

	var bitmap bytes.Buffer
	if err := png.Encode(&bitmap, img); err != nil {
		return RasterInfo{}, NewExportError(op, fmt.Errorf("%w: %w", ErrEncode, err), "png")
	}

	if err := checkContext(ctx, op); err != nil {
		return RasterInfo{}, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(render.PageTitle(layout), true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("invoice", opts, &bitmap)

	bounds := img.Bounds()
	info := RasterInfo{WidthPx: bounds.Dx(), HeightPx: bounds.Dy()}
	info.HeightMM = A4WidthMM * float64(info.HeightPx) / float64(info.WidthPx)
	info.Clipped = info.HeightMM > A4HeightMM
	pdf.ImageOptions("invoice", 0, 0, A4WidthMM, info.HeightMM, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return RasterInfo{}, NewExportError(op, fmt.Errorf("%w: %w", ErrEncode, err), "pdf")
	}
	if _, err := w.Write(out.Bytes()); err != nil {
		return RasterInfo{}, NewExportError(op, err, "write pdf")
	}

	if info.Clipped {
		e.log.Warn().
			Str("invoice_number", layout.Header.InvoiceNumber).
			Float64("height_mm", info.HeightMM).
			Int("items", len(layout.Table.Rows)-layout.Table.Padding).
			Msg("Invoice is taller than one A4 page, the bottom is cut off")
	}
	e.log.Debug().
		Str("invoice_number", layout.Header.InvoiceNumber).
		Int("width_px", info.WidthPx).
		Int("height_px", info.HeightPx).
		Float64("height_mm", info.HeightMM).
		Bool("clipped", info.Clipped).
		Int("bytes", out.Len()).
		Msg("Rendered raster PDF")
	return info, nil
}
