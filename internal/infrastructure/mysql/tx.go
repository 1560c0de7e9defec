package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const (
	errDeadlock        = 1213
	errLockWaitTimeout = 1205
	errDuplicateEntry  = 1062
)

// TxRunner executes a unit of work inside one database transaction.
type TxRunner struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewTxRunner(db *sqlx.DB, timeout time.Duration) *TxRunner {
	return &TxRunner{db: db, timeout: timeout}
}

// WithTx begins a READ COMMITTED transaction bounded by the runner timeout,
// runs fn and commits when fn returns nil. Every other exit path rolls back.
// Row locks taken inside fn with SELECT ... FOR UPDATE are held until then.
func (r *TxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback after Commit is a no-op returning sql.ErrTxDone.
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IsDeadlock reports whether err is a lock conflict the whole transaction
// can be retried after.
func IsDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDeadlock || mysqlErr.Number == errLockWaitTimeout
	}
	return false
}

func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDuplicateEntry
	}
	return false
}
