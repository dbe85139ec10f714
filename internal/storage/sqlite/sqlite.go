// Package sqlite provides a SQLite-backed implementation of the storage.Store
// and token.Book interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/holiman/uint256"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage"
	"github.com/mmynk/billsplitter/internal/token"
)

// Ensure SQLiteStore implements storage.Store, storage.AccountStore and token.Book
var (
	_ storage.Store        = (*SQLiteStore)(nil)
	_ storage.AccountStore = (*SQLiteStore)(nil)
	_ token.Book           = (*SQLiteStore)(nil)
)

// SQLiteStore implements storage.Store using SQLite.
//
// The pool is capped at one connection: SQLite serialises writers anyway and
// a single connection keeps ledger transactions strictly ordered.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver. Pragmas in the DSN apply to every
	// connection the pool opens.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type txKey struct{}

type txScope struct {
	store *SQLiteStore
	tx    *sql.Tx
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) txFrom(ctx context.Context) (*sql.Tx, bool) {
	scope, ok := ctx.Value(txKey{}).(*txScope)
	if !ok || scope.store != s {
		return nil, false
	}
	return scope.tx, true
}

// q returns the transaction carried by ctx, or the pool.
func (s *SQLiteStore) q(ctx context.Context) querier {
	if tx, ok := s.txFrom(ctx); ok {
		return tx
	}
	return s.db
}

// Atomic runs fn inside a transaction. Calls made with the context handed
// to fn use that transaction; a nested Atomic joins it.
func (s *SQLiteStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := s.txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, &txScope{store: s, tx: tx})); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func parseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", s, err)
	}
	return v, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hexAddress and hexBillID adapt the text columns to the model types.
type hexAddress struct{ dst *models.Address }

func (h hexAddress) Scan(src any) error {
	s, err := asString(src)
	if err != nil {
		return err
	}
	return h.dst.UnmarshalText([]byte(s))
}

type hexBillID struct{ dst *models.BillID }

func (h hexBillID) Scan(src any) error {
	s, err := asString(src)
	if err != nil {
		return err
	}
	return h.dst.UnmarshalText([]byte(s))
}

type decAmount struct{ dst *uint256.Int }

func (d decAmount) Scan(src any) error {
	s, err := asString(src)
	if err != nil {
		return err
	}
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	d.dst.Set(v)
	return nil
}

func asString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unexpected column type %T", src)
}
