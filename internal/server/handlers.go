package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"invoicer/internal/export"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/internal/render"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

// maxCommandBody caps the size of a command batch.
const maxCommandBody = 1 << 20

var errNoStore = errors.New("no invoice store configured")

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en" dir="ltr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #f3f4f6; margin: 0; font-family: sans-serif; }
.toolbar { display: flex; gap: 12px; padding: 12px 24px; background: #fff; border-bottom: 1px solid #ddd; }
.toolbar a { color: #1f2937; text-decoration: none; font-size: 14px; }
.sheet { margin: 24px auto; width: 800px; background: #fff; box-shadow: 0 1px 4px rgba(0,0,0,.15); }
</style>
</head>
<body>
<nav class="toolbar">
<a href="/api/draft/print" target="_blank">Print</a>
<a href="/api/draft/pdf">Download PDF</a>
<a href="/api/draft/pdf?vector=1">Download PDF (text)</a>
</nav>
<div class="sheet">{{.Fragment}}</div>
</body>
</html>
`))

type totalsView struct {
	Subtotal      string `json:"subtotal"`
	TotalDiscount string `json:"totalDiscount"`
	FinalTotal    string `json:"finalTotal"`
}

type draftView struct {
	Invoice  models.Invoice `json:"invoice"`
	Totals   totalsView     `json:"totals"`
	Warnings []string       `json:"warnings"`
}

type recordView struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	ClientName    string    `json:"clientName"`
	Date          string    `json:"date"`
	TotalAmount   string    `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type errorView struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func (s *Server) draft(inv models.Invoice) draftView {
	review := s.reviewer.Review(inv)
	return draftView{
		Invoice: inv,
		Totals: totalsView{
			Subtotal:      money.Format(review.Totals.Subtotal),
			TotalDiscount: money.Format(review.Totals.TotalDiscount),
			FinalTotal:    money.Format(review.Totals.FinalTotal),
		},
		Warnings: review.Warnings,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	layout := render.Build(s.session.Snapshot())
	fragment, err := s.renderer.RenderFragment(layout)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	err = indexTemplate.Execute(&buf, struct {
		Title    string
		Fragment template.HTML
	}{
		Title:    render.PageTitle(layout),
		Fragment: template.HTML(fragment), //nolint:gosec // produced by html/template
	})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.draft(s.session.Snapshot()))
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBody))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	cmds, err := invoice.DecodeCommands(body)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	inv := s.session.Dispatch(cmds...)
	writeJSON(w, http.StatusOK, s.draft(inv))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.draft(s.session.Reset()))
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	page, err := s.renderer.RenderPage(render.Build(s.session.Snapshot()), render.PageOptions{AutoPrint: true})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeHTML(w, []byte(page))
}

// ClippedHeader is set on image PDF downloads whose content did not fit on
// the page.
const ClippedHeader = "X-Invoice-Clipped"

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ExportTimeout)
	defer cancel()

	inv := s.session.Snapshot()
	layout := render.Build(inv)
	vector, _ := strconv.ParseBool(r.URL.Query().Get("vector"))

	var (
		data []byte
		err  error
	)
	if vector {
		data, err = s.pdf.VectorPDF(ctx, layout)
	} else {
		var (
			buf  bytes.Buffer
			info export.RasterInfo
		)
		info, err = s.pdf.RasterPDF(ctx, layout, &buf)
		data = buf.Bytes()
		if info.Clipped {
			w.Header().Set(ClippedHeader, "true")
		}
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(inv.InvoiceNumber)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errNoStore)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
	defer cancel()

	inv := s.session.Snapshot()
	id, err := s.store.Save(ctx, inv)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errNoStore)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
	defer cancel()

	records, err := s.store.List(ctx)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(records, func(rec store.Record, _ int) recordView {
		return recordView{
			ID:            rec.ID,
			InvoiceNumber: rec.Document.InvoiceNumber,
			ClientName:    rec.Document.ClientName,
			Date:          rec.Document.IssueDate.String(),
			TotalAmount:   money.Format(rec.TotalAmount),
			CreatedAt:     rec.CreatedAt,
		}
	}))
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errNoStore)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
	defer cancel()

	rec, err := s.store.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	inv := store.Load(rec)
	s.session.Replace(inv)
	writeJSON(w, http.StatusOK, s.draft(inv))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errNoStore)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.StoreTimeout)
	defer cancel()

	if err := s.store.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, err)
	case store.IsRetryable(err):
		s.writeError(w, r, http.StatusServiceUnavailable, err)
	default:
		s.writeError(w, r, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger.WithContext(r.Context()).Warn().Err(err).Int("status", status).Msg("Request failed")
	writeJSON(w, status, errorView{
		Error:     err.Error(),
		Retryable: store.IsRetryable(err) || errors.Is(err, export.ErrCanceled),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page) //nolint:errcheck
}
