package repository

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/tally/internal/db"
)

// SQLiteStore is the Store backed by a SQLite database.
type SQLiteStore struct {
	conn db.DBTX
	uow  db.UnitOfWork // nil inside a transaction
}

func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{conn: database, uow: db.NewSQLiteUnitOfWork(database)}
}

// NewSQLiteStoreWithUoW builds a store whose transactions go through uow.
// Tests use it to inject write failures.
func NewSQLiteStoreWithUoW(conn db.DBTX, uow db.UnitOfWork) *SQLiteStore {
	return &SQLiteStore{conn: conn, uow: uow}
}

func (s *SQLiteStore) Activities() ActivityRepo { return NewSQLiteActivityRepo(s.conn) }
func (s *SQLiteStore) Progress() ProgressRepo   { return NewSQLiteProgressRepo(s.conn) }
func (s *SQLiteStore) Balances() BalanceRepo    { return NewSQLiteBalanceRepo(s.conn) }

// WithinTx runs fn in a single SQLite transaction. Nested calls join the
// enclosing transaction.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.uow == nil {
		return fn(ctx, s)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &SQLiteStore{conn: tx})
	})
}
