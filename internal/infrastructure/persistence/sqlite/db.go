package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/port"
)

// activeTx is the context key carrying the open transaction
type activeTx struct{}

// DB is the claim store's transaction manager. The open *sql.Tx travels in
// the context, so repositories join it through ExecutorFrom.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB wraps an open pool
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{DB: sqlDB, logger: logger}
}

// WithTransaction runs fn in one transaction. A call made from inside fn joins
// the outer transaction instead of opening another. fn's error, or a panic,
// rolls everything back.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if current(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin claim transaction", zap.Error(err))
		return fmt.Errorf("begin claim transaction: %w", err)
	}

	started := time.Now()
	committed := false
	defer func() {
		p := recover()
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				db.logger.Error("Failed to roll back claim transaction", zap.Error(rbErr))
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
		if p != nil {
			db.logger.Error("Claim transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, activeTx{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		db.logger.Error("Failed to commit claim transaction", zap.Error(err))
		return fmt.Errorf("commit claim transaction: %w", err)
	}
	committed = true

	db.logger.Debug("Claim transaction committed", zap.Duration("took", time.Since(started)))
	return nil
}

func current(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(activeTx{}).(*sql.Tx)
	return tx
}

// Executor is the query surface shared by *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ExecutorFrom returns the transaction open in ctx, falling back to the pool
func ExecutorFrom(ctx context.Context, pool *sql.DB) Executor {
	if tx := current(ctx); tx != nil {
		return tx
	}
	return pool
}

var _ port.TransactionManager = (*DB)(nil)
