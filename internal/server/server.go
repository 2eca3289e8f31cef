// Package server exposes the editing session over HTTP for local preview.
//
// The server owns no invoice state of its own: every request goes through
// the invoice.Session, and exports and saves work on a snapshot taken at the
// start of the request.
//
// Routes:
//   - GET    /                          preview page
//   - GET    /api/draft                 current invoice with totals and warnings
//   - POST   /api/draft/commands        apply a JSON array of commands
//   - POST   /api/draft/reset           start a new invoice
//   - GET    /api/draft/print           print page (opens the print dialog)
//   - GET    /api/draft/pdf             raster PDF download (?vector=1 for vector)
//   - POST   /api/draft/save            save a snapshot to the store
//   - GET    /api/invoices              list saved invoices, newest first
//   - POST   /api/invoices/{id}/load    replace the draft with a saved invoice
//   - DELETE /api/invoices/{id}         delete a saved invoice
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"invoicer/internal/export"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/render"
	"invoicer/internal/store"
)

// Options tunes request handling.
type Options struct {
	// StoreTimeout bounds each store call.
	StoreTimeout time.Duration
	// ExportTimeout bounds each PDF export.
	ExportTimeout time.Duration
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{
		StoreTimeout:  10 * time.Second,
		ExportTimeout: 30 * time.Second,
	}
}

// Server serves the preview and the draft API.
type Server struct {
	session  *invoice.Session
	store    store.Store
	renderer *render.HTMLRenderer
	pdf      *export.PDFExporter
	reviewer *invoice.Reviewer
	opts     Options
	router   *mux.Router
	log      zerolog.Logger
}

// New builds a server around session. st may be nil, in which case the
// store routes answer 503. Unset timeouts take their DefaultOptions value.
func New(session *invoice.Session, st store.Store, opts Options) (*Server, error) {
	defaults := DefaultOptions()
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaults.StoreTimeout
	}
	if opts.ExportTimeout <= 0 {
		opts.ExportTimeout = defaults.ExportTimeout
	}

	pdf, err := export.NewPDFExporter()
	if err != nil {
		return nil, fmt.Errorf("NewServer: %w", err)
	}

	s := &Server{
		session:  session,
		store:    st,
		renderer: render.NewHTMLRenderer(),
		pdf:      pdf,
		reviewer: invoice.NewReviewer(),
		opts:     opts,
		router:   mux.NewRouter(),
		log:      logger.WithComponent("server"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(requestLogger)

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	draft := s.router.PathPrefix("/api/draft").Subrouter()
	draft.HandleFunc("", s.handleDraft).Methods(http.MethodGet)
	draft.HandleFunc("/commands", s.handleCommands).Methods(http.MethodPost)
	draft.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	draft.HandleFunc("/print", s.handlePrint).Methods(http.MethodGet)
	draft.HandleFunc("/pdf", s.handlePDF).Methods(http.MethodGet)
	draft.HandleFunc("/save", s.handleSave).Methods(http.MethodPost)

	saved := s.router.PathPrefix("/api/invoices").Subrouter()
	saved.HandleFunc("", s.handleList).Methods(http.MethodGet)
	saved.HandleFunc("/{id}/load", s.handleLoad).Methods(http.MethodPost)
	saved.HandleFunc("/{id}", s.handleDelete).Methods(http.MethodDelete)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
