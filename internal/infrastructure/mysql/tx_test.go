package mysql_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/config"
	"stockledger/internal/infrastructure/mysql"
	"stockledger/internal/testutil"
)

func TestIsDeadlock(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &driver.MySQLError{Number: 1213}, true},
		{"lock wait timeout", &driver.MySQLError{Number: 1205}, true},
		{"wrapped deadlock", fmt.Errorf("updating stock: %w", &driver.MySQLError{Number: 1213}), true},
		{"duplicate entry", &driver.MySQLError{Number: 1062}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mysql.IsDeadlock(tt.err))
		})
	}
}

func TestIsDuplicateEntry(t *testing.T) {
	assert.True(t, mysql.IsDuplicateEntry(&driver.MySQLError{Number: 1062}))
	assert.False(t, mysql.IsDuplicateEntry(&driver.MySQLError{Number: 1213}))
}

func TestDSN(t *testing.T) {
	dsn := mysql.DSN(config.DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 3307, Name: "ledger"})
	assert.Equal(t, "u:p@tcp(db:3307)/ledger?parseTime=true&loc=UTC&clientFoundRows=true", dsn)
}

// Integration Tests

func TestTxRunner_CommitsOnSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	runner := mysql.NewTxRunner(db, 5*time.Second)
	err := runner.WithTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO User (id, name, email, passwordHash, role) VALUES ('u-1', 'Admin', 'a@example.com', 'x', 'Admin')`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM User WHERE id = 'u-1'`))
	assert.Equal(t, 1, count)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	runner := mysql.NewTxRunner(db, 5*time.Second)
	sentinel := errors.New("abort")
	err := runner.WithTx(context.Background(), func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO User (id, name, email, passwordHash, role) VALUES ('u-2', 'Admin', 'b@example.com', 'x', 'Admin')`); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM User WHERE id = 'u-2'`))
	assert.Equal(t, 0, count)
}
