// Package database opens the application database and applies the embedded
// schema migrations. The same store code runs against PostgreSQL (pgx) for
// a shared deployment or SQLite (modernc, pure Go) for the default local
// single-learner setup; the database URL decides which driver is used.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"kotoba/migrations"
)

// IsPostgresURL reports whether the database URL addresses a PostgreSQL
// server. Anything else is treated as a SQLite path or file: URL.
func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// sqliteDSN normalizes a SQLite URL or bare path into a file: DSN with
// foreign keys enabled, which the cards table relies on for cascade deletes.
func sqliteDSN(url string) string {
	dsn := url
	if !strings.HasPrefix(dsn, "file:") {
		if dsn == ":memory:" {
			dsn = "file::memory:"
		} else {
			dsn = "file:" + dsn
		}
	}

	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Open establishes a database connection for the given URL and verifies it
// with a ping. The caller owns the returned handle and must close it.
func Open(ctx context.Context, url string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var db *sql.DB
	var err error

	if IsPostgresURL(url) {
		db, err = sql.Open("pgx", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		db, err = sql.Open("sqlite", sqliteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		// SQLite is a single-writer store and the app is a single-learner
		// tool; one connection also keeps :memory: databases coherent.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		slog.Bool("postgres", IsPostgresURL(url)))
	return db, nil
}

// Migrate applies all embedded goose migrations to the database.
func Migrate(db *sql.DB, url string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetLogger(&slogGooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	goose.SetBaseFS(migrations.FS)

	dialect := "sqlite3"
	if IsPostgresURL(url) {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	start := time.Now()
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("migrations applied",
		slog.String("dialect", dialect),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// OpenAndMigrate opens the database and brings its schema up to date.
// This is the one-call path used by the server at startup and by tests
// that run against an in-memory SQLite database.
func OpenAndMigrate(ctx context.Context, url string, logger *slog.Logger) (*sql.DB, error) {
	db, err := Open(ctx, url, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, url, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// slogGooseLogger adapts goose's logger interface onto slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
