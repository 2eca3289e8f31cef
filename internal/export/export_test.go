package export

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/invoice"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

type stubIDs struct{ n int }

func (s *stubIDs) NextID() string {
	s.n++
	return strings.Repeat("x", s.n)
}

type recordingOpener struct {
	path string
	err  error
}

func (o *recordingOpener) Open(_ context.Context, path string) error {
	o.path = path
	return o.err
}

func sampleLayout(items int) render.Layout {
	today := models.ParseDateOrZero("2026-10-15")
	env := invoice.Env{IDs: &stubIDs{}, Today: func() models.Date { return today }}
	inv := invoice.ApplyAll(invoice.NewInvoice(today), env,
		invoice.SetField{Field: invoice.FieldCompanyName, Value: "Normar Dental Lab"},
		invoice.SetField{Field: invoice.FieldCompanyAddress, Value: "Main street 1\nRamtha"},
		invoice.SetField{Field: invoice.FieldClientName, Value: "Dr. Smith"},
		invoice.SetField{Field: invoice.FieldNotes, Value: "Thank you"},
		invoice.AddDiscount{},
	)
	for i := 0; i < items; i++ {
		inv = invoice.Apply(inv, invoice.AddItem{}, env)
		id := inv.Items[i].ID
		inv = invoice.ApplyAll(inv, env,
			invoice.UpdateItem{ID: id, Field: invoice.ItemDescription, Value: "Zirconia crown with a rather long description that will not fit its column"},
			invoice.UpdateItem{ID: id, Field: invoice.ItemPrice, Value: "99.95"},
		)
	}
	return render.Build(inv)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice-042.pdf", Filename("042"))
	assert.Equal(t, "invoice-2026_17.pdf", Filename("2026/17"))
	assert.Equal(t, "invoice.pdf", Filename("  "))
}

func TestRasterizeWhiteBackgroundAtScale(t *testing.T) {
	r, err := NewRasterizer()
	require.NoError(t, err)

	img, err := r.Rasterize(context.Background(), sampleLayout(2))
	require.NoError(t, err)

	assert.Equal(t, PageWidth*RasterScale, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), img.Bounds().Dx()/2)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(1, 1))
}

func TestRasterizeGrowsWithRows(t *testing.T) {
	r, err := NewRasterizer()
	require.NoError(t, err)

	short, err := r.Rasterize(context.Background(), sampleLayout(1))
	require.NoError(t, err)
	padded, err := r.Rasterize(context.Background(), sampleLayout(6))
	require.NoError(t, err)
	long, err := r.Rasterize(context.Background(), sampleLayout(10))
	require.NoError(t, err)

	// short tables are padded to six rows
	assert.Equal(t, short.Bounds().Dy(), padded.Bounds().Dy())
	assert.Greater(t, long.Bounds().Dy(), padded.Bounds().Dy())
}

func TestRasterPDF(t *testing.T) {
	exporter, err := NewPDFExporter()
	require.NoError(t, err)

	var buf bytes.Buffer
	info, err := exporter.RasterPDF(context.Background(), sampleLayout(3), &buf)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "/Image")
	assert.False(t, info.Clipped)
	assert.InDelta(t, A4WidthMM*float64(info.HeightPx)/float64(info.WidthPx), info.HeightMM, 1e-9)
}

func TestRasterPDFReportsClipping(t *testing.T) {
	exporter, err := NewPDFExporter()
	require.NoError(t, err)

	var buf bytes.Buffer
	info, err := exporter.RasterPDF(context.Background(), sampleLayout(40), &buf)

	require.NoError(t, err)
	assert.True(t, info.Clipped)
	assert.Greater(t, info.HeightMM, A4HeightMM)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRasterPDFCanceled(t *testing.T) {
	exporter, err := NewPDFExporter()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	var buf bytes.Buffer
	_, err = exporter.RasterPDF(ctx, sampleLayout(1), &buf)

	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var exportErr *ExportError
	assert.True(t, errors.As(err, &exportErr))
	assert.Zero(t, buf.Len())
}

func TestVectorPDF(t *testing.T) {
	exporter, err := NewPDFExporter()
	require.NoError(t, err)

	out, err := exporter.VectorPDF(context.Background(), sampleLayout(2))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPrintOpensFreshPage(t *testing.T) {
	opener := &recordingOpener{}
	printer := NewPrinter(opener).WithDir(t.TempDir())

	path, err := printer.Print(context.Background(), sampleLayout(1))

	require.NoError(t, err)
	assert.Equal(t, path, opener.path)
	page, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "window.print()")
	assert.Contains(t, string(page), "Normar Dental Lab")
}

func TestPrintWithoutSurface(t *testing.T) {
	dir := t.TempDir()

	path, err := NewPrinter(nil).WithDir(dir).Print(context.Background(), sampleLayout(1))
	assert.ErrorIs(t, err, ErrNoRenderingSurface)
	assert.Equal(t, dir, filepath.Dir(path))

	failing := &recordingOpener{err: errors.New("no display")}
	_, err = NewPrinter(failing).WithDir(dir).Print(context.Background(), sampleLayout(1))
	assert.ErrorIs(t, err, ErrNoRenderingSurface)
	assert.ErrorContains(t, err, "no display")
}
