package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"invoicer/internal/invoice"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

// errNoDocument is returned when the working invoice file does not exist yet.
var errNoDocument = errors.New("no working invoice")

// readDocument loads the working invoice from path.
func readDocument(path string) (models.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Invoice{}, fmt.Errorf("%w at %s (run 'invoicer new' first)", errNoDocument, path)
		}
		return models.Invoice{}, fmt.Errorf("failed to read invoice file: %w", err)
	}

	var inv models.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return models.Invoice{}, fmt.Errorf("invalid invoice file %s: %w", path, err)
	}
	return invoice.Sanitize(inv), nil
}

// writeDocument replaces the working invoice at path. The file is written
// next to the target and renamed into place, so a failed write never leaves
// a truncated invoice behind.
func writeDocument(path string, inv models.Invoice) error {
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode invoice: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".invoice-*.json")
	if err != nil {
		return fmt.Errorf("failed to write invoice file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write invoice file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write invoice file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write invoice file: %w", err)
	}
	return nil
}

// editEnv is the environment commands are applied in from the CLI.
func editEnv() (invoice.Env, error) {
	ids, err := invoice.NewSnowflakeIDs(1)
	if err != nil {
		return invoice.Env{}, err
	}
	return invoice.Env{IDs: ids, Today: invoice.Today}, nil
}

// commandContext creates a context with timeout that is also canceled on
// interrupt.
func commandContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openStore loads configuration and connects to the configured store.
func openStore(log zerolog.Logger) (store.Store, context.Context, context.CancelFunc, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := commandContext(cfg.StoreTimeout, log)
	st, err := store.Open(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, handleStoreError(err, log)
	}

	log.Debug().Str("backend", st.Backend()).Msg("Store opened")
	return st, ctx, cancel, nil
}

// handleStoreError turns store failures into messages for the terminal.
func handleStoreError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Store operation failed")

	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("invoice not found: %w", err)
	case errors.Is(err, store.ErrMissingCredentials):
		return fmt.Errorf("missing Google Cloud credentials. Please set one of:\n" +
			"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n" +
			"  GOOGLE_CREDENTIALS='<json-credentials>'\n" +
			"Original error: %w", err)
	case errors.Is(err, store.ErrUnknownBackend):
		return fmt.Errorf("unknown STORE_BACKEND, expected firestore, postgres or sqlite: %w", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("store did not answer in time, try again or raise STORE_TIMEOUT: %w", err)
	case store.IsRetryable(err):
		return fmt.Errorf("store is temporarily unavailable, try again: %w", err)
	default:
		return err
	}
}
