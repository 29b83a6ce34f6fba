package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // Registers the postgres driver
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store wraps the database connection and exposes one method per query.
// Every method accepts an optional transaction; nil runs against the pool.
type Store struct {
	db  *sqlx.DB
	log *logger.Logger
}

// Open connects to the database and migrates the schema to the latest version.
func Open(ctx context.Context, driver, dsn string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection: sqlite has a single writer, and ":memory:" databases are per connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	s := &Store{db: db, log: log.With("component", "storage")}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ext(tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *Store) get(ctx context.Context, tx *sqlx.Tx, dest interface{}, query string, args ...interface{}) error {
	q := s.ext(tx)
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func (s *Store) selectAll(ctx context.Context, tx *sqlx.Tx, dest interface{}, query string, args ...interface{}) error {
	q := s.ext(tx)
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (sql.Result, error) {
	q := s.ext(tx)
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

func (s *Store) namedExec(ctx context.Context, tx *sqlx.Tx, query string, arg interface{}) error {
	_, err := sqlx.NamedExecContext(ctx, s.ext(tx), query, arg)
	return err
}

// expectOne turns a zero-row update into a NotFoundError.
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s %s: %w", what, id, err)
	}
	if n == 0 {
		return apperr.NotFoundf(what, "%s %s not found", what, id)
	}
	return nil
}

func notFoundOr(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf(what, "%s %s not found", what, id)
	}
	return fmt.Errorf("failed to load %s %s: %w", what, id, err)
}
