package mysql

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema lists the DDL statements in dependency order.
var Schema = []struct {
	Table string
	DDL   string
}{
	{"User", `
	CREATE TABLE IF NOT EXISTS User (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		passwordHash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		isDeleted TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updatedAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3)
	)`},
	{"Product", `
	CREATE TABLE IF NOT EXISTS Product (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		uniqueCode VARCHAR(100) NOT NULL UNIQUE,
		unit VARCHAR(50) NOT NULL,
		buyPrice DECIMAL(15,2) NOT NULL,
		sellPrice DECIMAL(15,2) NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		isDeleted TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updatedAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		CONSTRAINT chk_product_stock CHECK (stock >= 0),
		INDEX idx_product_deleted (isDeleted)
	)`},
	{"Input", `
	CREATE TABLE IF NOT EXISTS Input (
		id CHAR(36) NOT NULL PRIMARY KEY,
		productId CHAR(36) NOT NULL,
		userId CHAR(36) NOT NULL,
		amount INT NOT NULL,
		isDeleted TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updatedAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		FOREIGN KEY (productId) REFERENCES Product(id),
		FOREIGN KEY (userId) REFERENCES User(id),
		INDEX idx_input_product (productId),
		INDEX idx_input_created (isDeleted, createdAt)
	)`},
}

// Migrate creates any missing table.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, tbl := range Schema {
		if _, err := db.ExecContext(ctx, tbl.DDL); err != nil {
			return fmt.Errorf("creating table %s: %w", tbl.Table, err)
		}
	}
	return nil
}
