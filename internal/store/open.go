package store

import (
	"context"
	"fmt"

	"invoicer/internal/config"
)

// Backend names.
const (
	BackendFirestore = config.BackendFirestore
	BackendPostgres  = config.BackendPostgres
	BackendSQLite    = config.BackendSQLite
)

// Open connects to the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	const op = "Open"

	var (
		s   Store
		err error
	)
	switch cfg.StoreBackend {
	case BackendFirestore:
		s, err = NewFirestoreStore(ctx, cfg.GoogleCloudProject, cfg.FirestoreCollection,
			cfg.GoogleCredentialsJSON, cfg.GoogleApplicationCredentials)
	case BackendPostgres:
		s, err = OpenPostgres(ctx, cfg.DatabaseDSN)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, WrapStoreError(op, cfg.StoreBackend, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
