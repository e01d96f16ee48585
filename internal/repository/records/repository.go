// Package records persists certificate records and their issuance tasks in a relational database.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"

	sqlitePrefix = "sqlite://"
)

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Repository is the certificate record store and durable issuance task queue.
type Repository struct {
	db      *gorm.DB
	metrics Metrics
	now     func() time.Time
	logger  *zap.Logger
}

// Open connects to the database named by dsn. sqlite://<path> and sqlite://:memory:
// select the embedded driver, anything else is handed to the postgres driver.
func Open(dsn string) (*gorm.DB, string, error) {
	if dsn == "" {
		return nil, "", errors.New("record store dsn is required")
	}
	cfg := &gorm.Config{
		Logger:                 gormlogger.Discard,
		TranslateError:         true,
		SkipDefaultTransaction: true,
	}

	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), cfg)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite record store: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, "", fmt.Errorf("sqlite record store pool: %w", err)
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		return db, DialectSQLite, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, "", fmt.Errorf("open postgres record store: %w", err)
	}
	return db, DialectPostgres, nil
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&_pragma=foreign_keys(1)"
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func NewRepository(db *gorm.DB, metrics Metrics, logger *zap.Logger) *Repository {
	return &Repository{
		db:      db,
		metrics: metrics,
		now:     time.Now,
		logger:  logger.Named("record_repository"),
	}
}

// Migrate creates or updates the tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&certificateRow{}, &taskRow{}); err != nil {
		return fmt.Errorf("migrate record store: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
