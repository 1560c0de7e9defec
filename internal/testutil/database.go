package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"stockledger/internal/infrastructure/mysql"
)

// SetupTestDB opens the integration database. It expects a MySQL server
// reachable through TEST_DATABASE_DSN (default root@localhost:3306, database
// stockledger_test) and skips the test otherwise.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/stockledger_test?parseTime=true&loc=UTC&clientFoundRows=true"
	}
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table and closes db.
func CleanupTestDB(t *testing.T, db *sqlx.DB) {
	if db == nil {
		return
	}

	for i := len(mysql.Schema) - 1; i >= 0; i-- {
		table := mysql.Schema[i].Table
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema and clears leftovers from earlier runs.
func SetupTestTables(t *testing.T, db *sqlx.DB) {
	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Logf("failed to create tables: %v", err)
	}
	for i := len(mysql.Schema) - 1; i >= 0; i-- {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", mysql.Schema[i].Table)); err != nil {
			t.Logf("failed to clean table %s: %v", mysql.Schema[i].Table, err)
		}
	}
}

// InsertUser adds an actor row that ledger entries can reference.
func InsertUser(t *testing.T, db *sqlx.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO User (id, name, email, passwordHash, role) VALUES (?, ?, ?, 'x', 'Admin')`,
		id, name, id+"@example.com",
	)
	if err != nil {
		t.Fatalf("inserting user %s: %v", id, err)
	}
}
