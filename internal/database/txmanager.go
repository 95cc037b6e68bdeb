package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type txContextKey struct{}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs fn with a transaction attached to its context.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager that opens transactions on db.
func NewTxManager(db *sql.DB) TxManager {
	return &txManager{db: db}
}

// WithTx commits when fn succeeds and rolls back otherwise. When ctx already carries a
// transaction fn joins it and the outermost call decides the outcome.
func (m *txManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txContextKey{}).(*sql.Tx); nested {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if fnErr := fn(context.WithValue(ctx, txContextKey{}, tx)); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(fnErr, rbErr)
		}
		return fnErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTx returns the transaction carried by ctx, falling back to db.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
