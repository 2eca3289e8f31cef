package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// invoiceRow is the saved snapshot. The editable document lives in Snapshot;
// the other columns are derived copies for querying and reporting.
type invoiceRow struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)"`
	InvoiceNumber  string          `gorm:"type:varchar(100);index"`
	ClientName     string          `gorm:"type:varchar(255)"`
	Snapshot       datatypes.JSON  `gorm:"not null"`
	Subtotal       decimal.Decimal `gorm:"type:numeric"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric"`
	CreatedAt      time.Time       `gorm:"index"`
}

func (invoiceRow) TableName() string { return "invoices" }

// SQLStore keeps invoices in a relational database through gorm.
type SQLStore struct {
	db      *gorm.DB
	backend string
	now     func() time.Time
	log     zerolog.Logger
}

// OpenPostgres connects to PostgreSQL with a DSN such as
// "host=localhost user=invoicer dbname=invoicer sslmode=disable".
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return openSQL(ctx, BackendPostgres, postgres.Open(dsn))
}

// OpenSQLite opens (or creates) the SQLite database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	return openSQL(ctx, BackendSQLite, sqlite.Open(path))
}

func openSQL(ctx context.Context, backend string, dialector gorm.Dialector) (*SQLStore, error) {
	const op = "Open"

	log := logger.WithComponent("store-" + backend)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, WrapStoreError(op, backend, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&invoiceRow{}); err != nil {
		return nil, WrapStoreError(op, backend, fmt.Errorf("migrate: %w", err))
	}

	log.Debug().Msg("Store ready")
	return &SQLStore{db: db, backend: backend, now: time.Now, log: log}, nil
}

// Backend implements Store.
func (s *SQLStore) Backend() string { return s.backend }

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, inv models.Invoice) (string, error) {
	const op = "Save"

	snapshot, err := json.Marshal(inv)
	if err != nil {
		return "", WrapStoreError(op, s.backend, err)
	}

	rec := newRecord(uuid.NewString(), inv, s.now().UTC())
	row := invoiceRow{
		ID:             rec.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		ClientName:     inv.ClientName,
		Snapshot:       datatypes.JSON(snapshot),
		Subtotal:       rec.Subtotal,
		DiscountAmount: rec.DiscountAmount,
		TotalAmount:    rec.TotalAmount,
		CreatedAt:      rec.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", WrapStoreError(op, s.backend, err)
	}

	s.log.Info().
		Str("id", row.ID).
		Str("invoice_number", row.InvoiceNumber).
		Str("total", row.TotalAmount.StringFixed(2)).
		Msg("Saved invoice")
	return row.ID, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	const op = "List"

	var rows []invoiceRow
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, WrapStoreError(op, s.backend, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			s.log.Warn().Err(err).Str("id", row.ID).Msg("Skipping undecodable invoice")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	const op = "Get"

	var row invoiceRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, WrapStoreError(op, s.backend, ErrNotFound)
	}
	if err != nil {
		return Record{}, WrapStoreError(op, s.backend, err)
	}

	rec, err := row.record()
	if err != nil {
		return Record{}, WrapStoreError(op, s.backend, err)
	}
	return rec, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	const op = "Delete"

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&invoiceRow{})
	if res.Error != nil {
		return WrapStoreError(op, s.backend, res.Error)
	}
	if res.RowsAffected == 0 {
		return WrapStoreError(op, s.backend, ErrNotFound)
	}

	s.log.Info().Str("id", id).Msg("Deleted invoice")
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r invoiceRow) record() (Record, error) {
	var inv models.Invoice
	if err := json.Unmarshal(r.Snapshot, &inv); err != nil {
		return Record{}, errors.Join(ErrCorruptRecord, err)
	}
	return newRecord(r.ID, invoice.Sanitize(inv), r.CreatedAt), nil
}

// gormLogger sends gorm's logs through zerolog. SQL traces are logged at
// trace level, slow or failed statements at warn and error.
type gormLogger struct {
	log           zerolog.Logger
	slowThreshold time.Duration
}

func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	return &gormLogger{log: log, slowThreshold: 200 * time.Millisecond}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	switch level {
	case gormlogger.Silent:
		next.log = l.log.Level(zerolog.Disabled)
	case gormlogger.Error:
		next.log = l.log.Level(zerolog.ErrorLevel)
	case gormlogger.Warn:
		next.log = l.log.Level(zerolog.WarnLevel)
	}
	return &next
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.log.Info().Msgf(msg, args...)
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("Query failed")
	case elapsed > l.slowThreshold:
		sql, rows := fc()
		l.log.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("Slow query")
	case l.log.GetLevel() <= zerolog.TraceLevel && zerolog.GlobalLevel() <= zerolog.TraceLevel:
		sql, rows := fc()
		l.log.Trace().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("Query")
	}
}
