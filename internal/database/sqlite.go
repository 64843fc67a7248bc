package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/query"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// SQLite is a file-backed store for local runs and tests.
type SQLite struct {
	db  *sql.DB
	log *zerolog.Logger
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Opening an existing database is safe; the schema is idempotent.
//
// The connection is configured with:
//   - WAL journal for concurrent reads during writes
//   - a 5 second busy timeout
//   - foreign key enforcement
//   - case-sensitive LIKE, matching PostgreSQL
func OpenSQLite(path string, logger *zerolog.Logger) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_cslike=1", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite has a single writer; more connections only produce SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	logger.Info().Str("path", path).Msg("opened sqlite database")

	return &SQLite{db: db, log: logger}, nil
}

// Dialect implements query.Executor.
func (s *SQLite) Dialect() query.Dialect { return query.SQLite }

// Query runs stmt and hands every row to scan.
func (s *SQLite) Query(ctx context.Context, stmt string, args []any, scan func([]any) error) error {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		if err := scan(values); err != nil {
			return err
		}
	}

	return rows.Err()
}

// Exec runs stmt and returns the number of affected rows.
func (s *SQLite) Exec(ctx context.Context, stmt string, args []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
