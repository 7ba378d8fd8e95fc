package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrStorage marks failures of the persistence layer
var ErrStorage = errors.New("storage error")

// Dialect identifies the SQL backend behind a DB
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB wraps *sql.DB and rewrites `?` placeholders for the active dialect.
// Queries in this package are written once with `?`.
type DB struct {
	*sql.DB
	dialect Dialect
}

// New opens the database named by databaseURL and runs migrations.
// postgres:// and postgresql:// URLs use lib/pq; anything else is a SQLite
// file path (an optional sqlite:// prefix is stripped).
func New(databaseURL string) (*DB, error) {
	dialect, dsn := parseURL(databaseURL)

	sqlDB, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{DB: sqlDB, dialect: dialect}

	if dialect == DialectSQLite {
		// SQLite allows one writer; a single connection serialises access
		// and keeps per-connection pragmas.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := sqlDB.Exec(pragma); err != nil {
				_ = sqlDB.Close()
				return nil, fmt.Errorf("set %q: %w", pragma, err)
			}
		}
	}

	if err := db.migrate(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func parseURL(databaseURL string) (Dialect, string) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DialectPostgres, databaseURL
	default:
		return DialectSQLite, sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://"))
	}
}

// sqliteDSN pins the timestamp text format so stored times sort lexically
func sqliteDSN(path string) string {
	if strings.Contains(path, "_time_format=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite"
}

// Dialect reports the backend in use
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind converts `?` placeholders to the dialect's syntax. Question marks
// inside single-quoted literals are left alone.
func (db *DB) Rebind(query string) string {
	return rebind(db.dialect, query)
}

func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ExecContext runs a statement after rebinding placeholders
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Rebind(query), args...)
}

// QueryContext runs a query after rebinding placeholders
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Rebind(query), args...)
}

// QueryRowContext runs a single-row query after rebinding placeholders
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Rebind(query), args...)
}

// Tx is a transaction with the same placeholder rewriting as DB
type Tx struct {
	*sql.Tx
	dialect Dialect
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, dialect: db.dialect}, nil
}

// ExecContext runs a statement after rebinding placeholders
func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.Tx.ExecContext(ctx, rebind(tx.dialect, query), args...)
}

// QueryRowContext runs a single-row query after rebinding placeholders
func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.Tx.QueryRowContext(ctx, rebind(tx.dialect, query), args...)
}

// withTx runs fn inside a transaction, rolling back on error
func (db *DB) withTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit transaction", err)
	}
	return nil
}

// storageError tags err with ErrStorage
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS preferences (
		singleton_key      TEXT PRIMARY KEY,
		id                 TEXT NOT NULL,
		active_provider    TEXT NOT NULL,
		provider_settings  TEXT NOT NULL DEFAULT '{}',
		system_prompt      TEXT NOT NULL,
		translation_prompt TEXT NOT NULL,
		email_prompt       TEXT NOT NULL,
		correction_prompt  TEXT NOT NULL,
		syntax_rules       TEXT NOT NULL DEFAULT '{}',
		use_emojis         BOOLEAN NOT NULL DEFAULT 0,
		created_at         DATETIME NOT NULL,
		updated_at         DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS history_records (
		seq            INTEGER PRIMARY KEY AUTOINCREMENT,
		id             TEXT NOT NULL UNIQUE,
		kind           TEXT NOT NULL,
		original_text  TEXT NOT NULL,
		generated_text TEXT NOT NULL,
		details        TEXT NOT NULL DEFAULT '{}',
		created_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_kind_created
		ON history_records(kind, created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS preferences (
		singleton_key      TEXT PRIMARY KEY,
		id                 UUID NOT NULL,
		active_provider    TEXT NOT NULL,
		provider_settings  JSONB NOT NULL DEFAULT '{}',
		system_prompt      TEXT NOT NULL,
		translation_prompt TEXT NOT NULL,
		email_prompt       TEXT NOT NULL,
		correction_prompt  TEXT NOT NULL,
		syntax_rules       JSONB NOT NULL DEFAULT '{}',
		use_emojis         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS history_records (
		seq            BIGSERIAL PRIMARY KEY,
		id             UUID NOT NULL UNIQUE,
		kind           TEXT NOT NULL,
		original_text  TEXT NOT NULL,
		generated_text TEXT NOT NULL,
		details        JSONB NOT NULL DEFAULT '{}',
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_kind_created
		ON history_records(kind, created_at)`,
}

func (db *DB) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if db.dialect == DialectPostgres {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
