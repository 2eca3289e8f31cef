// Package export produces the printable and downloadable forms of an invoice.
//
// Every export works on a render.Layout built from an invoice snapshot, so
// edits made while an export is running never show up in its output.
//
// Export Paths:
//   - Print: a standalone A4 HTML page that opens the print dialog after 500 ms
//   - Raster PDF: the layout drawn at 2x scale on white, embedded in one A4 page
//   - Vector PDF: the same layout as selectable text
//
// Failures are returned as *ExportError and never modify the invoice.
package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/internal/render"
)

// Opener hands a file to something that can display and print it.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// BrowserOpener opens files with the desktop's default handler.
type BrowserOpener struct{}

// Open implements Opener.
func (BrowserOpener) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// the viewer outlives ctx, so it is not bound to it
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

// Printer writes print pages and hands them to an Opener.
type Printer struct {
	renderer *render.HTMLRenderer
	opener   Opener
	dir      string
	log      zerolog.Logger
}

// NewPrinter creates a printer. A nil opener means no rendering surface is
// available; Print then writes the page and reports ErrNoRenderingSurface.
func NewPrinter(opener Opener) *Printer {
	return &Printer{
		renderer: render.NewHTMLRenderer(),
		opener:   opener,
		dir:      os.TempDir(),
		log:      logger.WithComponent("print"),
	}
}

// WithDir sets the directory print pages are written to.
func (p *Printer) WithDir(dir string) *Printer {
	p.dir = dir
	return p
}

// Page returns the standalone print page for layout.
func (p *Printer) Page(layout render.Layout) (string, error) {
	const op = "PrintPage"

	page, err := p.renderer.RenderPage(layout, render.PageOptions{AutoPrint: true})
	if err != nil {
		return "", NewExportError(op, fmt.Errorf("%w: %w", ErrEncode, err), "html template")
	}
	return page, nil
}

// Print writes the print page to a fresh file and opens it, so the page
// prints in its own context. It returns the file path, which is also
// returned alongside ErrNoRenderingSurface so callers can point the user at it.
func (p *Printer) Print(ctx context.Context, layout render.Layout) (string, error) {
	const op = "Print"

	if err := checkContext(ctx, op); err != nil {
		return "", err
	}

	page, err := p.Page(layout)
	if err != nil {
		return "", err
	}

	file, err := os.CreateTemp(p.dir, "invoice-*.html")
	if err != nil {
		return "", NewExportError(op, err, "create print page")
	}
	path := file.Name()
	if _, err := file.WriteString(page); err != nil {
		file.Close()
		return "", NewExportError(op, err, "write print page")
	}
	if err := file.Close(); err != nil {
		return "", NewExportError(op, err, "write print page")
	}

	if p.opener == nil {
		return path, NewExportError(op, ErrNoRenderingSurface, path)
	}
	if err := p.opener.Open(ctx, path); err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("Could not open print page")
		return path, WrapExportError(op, fmt.Errorf("%w: %w", ErrNoRenderingSurface, err), path)
	}

	p.log.Info().
		Str("invoice_number", layout.Header.InvoiceNumber).
		Str("path", path).
		Msg("Opened print page")
	return path, nil
}
