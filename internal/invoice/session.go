package invoice

import (
	"sync"

	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// Session owns the invoice being edited. Commands are applied one batch at a
// time; readers always get a private copy, so an export running on a
// snapshot never sees a half-applied edit.
type Session struct {
	mu  sync.RWMutex
	inv models.Invoice
	env Env
	log zerolog.Logger
}

// NewSession starts a session on inv.
func NewSession(inv models.Invoice, env Env) *Session {
	return &Session{
		inv: inv.Clone(),
		env: env,
		log: logger.WithComponent("session"),
	}
}

// Dispatch applies cmds in order and returns the resulting invoice.
func (s *Session) Dispatch(cmds ...Command) models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.inv.Items) + len(s.inv.Discounts)
	s.inv = ApplyAll(s.inv, s.env, cmds...)

	s.log.Debug().
		Int("commands", len(cmds)).
		Int("lines_before", before).
		Int("lines_after", len(s.inv.Items)+len(s.inv.Discounts)).
		Msg("Applied commands")

	return s.inv.Clone()
}

// Snapshot returns a deep copy of the current invoice.
func (s *Session) Snapshot() models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv.Clone()
}

// Replace swaps in a different invoice, e.g. one loaded from the store.
func (s *Session) Replace(inv models.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inv = inv.Clone()
}

// Reset replaces the invoice with a fresh one issued today.
func (s *Session) Reset() models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inv = NewInvoice(s.env.today())
	return s.inv.Clone()
}
