package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/infrastructure/mysql"
)

const productColumns = `id, name, uniqueCode, unit, buyPrice, sellPrice, stock, isDeleted, createdAt, updatedAt`

type productRow struct {
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	UniqueCode string          `db:"uniqueCode"`
	Unit       string          `db:"unit"`
	BuyPrice   decimal.Decimal `db:"buyPrice"`
	SellPrice  decimal.Decimal `db:"sellPrice"`
	Stock      int             `db:"stock"`
	IsDeleted  bool            `db:"isDeleted"`
	CreatedAt  time.Time       `db:"createdAt"`
	UpdatedAt  time.Time       `db:"updatedAt"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:         r.ID,
		Name:       r.Name,
		UniqueCode: r.UniqueCode,
		Unit:       r.Unit,
		BuyPrice:   r.BuyPrice,
		SellPrice:  r.SellPrice,
		Stock:      r.Stock,
		IsDeleted:  r.IsDeleted,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type MySQLRepository struct {
	db *sqlx.DB
}

func NewMySQLRepository(db *sqlx.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Product WHERE id = ? AND isDeleted = 0`
	return r.getOne(ctx, r.db, query, fmt.Sprintf("product with id %s not found", id), id)
}

func (r *MySQLRepository) FindByUniqueCode(ctx context.Context, code string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Product WHERE uniqueCode = ? AND isDeleted = 0`
	return r.getOne(ctx, r.db, query, fmt.Sprintf("product with code %s not found", code), code)
}

func (r *MySQLRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Product WHERE isDeleted = 0 ORDER BY name ASC`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

// FindByIDForUpdate locks the product row until tx ends. Soft-deleted rows
// are returned as well so the caller can tell "missing" from "frozen".
func (r *MySQLRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM Product WHERE id = ? FOR UPDATE`
	return r.getOne(ctx, tx, query, fmt.Sprintf("product with id %s not found", id), id)
}

// UniqueCodeTaken includes soft-deleted products: a code is never reused.
func (r *MySQLRepository) UniqueCodeTaken(ctx context.Context, tx *sqlx.Tx, code string) (bool, error) {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM Product WHERE uniqueCode = ?`, code); err != nil {
		return false, fmt.Errorf("checking unique code: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, tx *sqlx.Tx, p domain.Product) error {
	query := `
		INSERT INTO Product (id, name, uniqueCode, unit, buyPrice, sellPrice, stock, isDeleted, createdAt, updatedAt)
		VALUES (:id, :name, :uniqueCode, :unit, :buyPrice, :sellPrice, :stock, :isDeleted, :createdAt, :updatedAt)
	`
	row := productRow{
		ID:         p.ID,
		Name:       p.Name,
		UniqueCode: p.UniqueCode,
		Unit:       p.Unit,
		BuyPrice:   p.BuyPrice,
		SellPrice:  p.SellPrice,
		Stock:      p.Stock,
		IsDeleted:  p.IsDeleted,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		if mysql.IsDuplicateEntry(err) {
			return apperrors.NewConflictError(fmt.Sprintf("product code %s already exists", p.UniqueCode))
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateStock(ctx context.Context, tx *sqlx.Tx, id string, stock int) error {
	result, err := tx.ExecContext(ctx, `UPDATE Product SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return fmt.Errorf("updating product stock: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("product with id %s not found", id))
}

// UpdateDetails rewrites the descriptive columns of a live product. Stock and
// uniqueCode are never touched here.
func (r *MySQLRepository) UpdateDetails(ctx context.Context, p domain.Product) error {
	query := `
		UPDATE Product
		SET name = ?, unit = ?, buyPrice = ?, sellPrice = ?
		WHERE id = ? AND isDeleted = 0
	`
	result, err := r.db.ExecContext(ctx, query, p.Name, p.Unit, p.BuyPrice, p.SellPrice, p.ID)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("product with id %s not found", p.ID))
}

func (r *MySQLRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE Product SET isDeleted = 1 WHERE id = ? AND isDeleted = 0`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("product with id %s not found", id))
}

func (r *MySQLRepository) getOne(ctx context.Context, q sqlx.QueryerContext, query, notFound string, args ...interface{}) (*domain.Product, error) {
	var row productRow
	err := sqlx.GetContext(ctx, q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	product := row.toDomain()
	return &product, nil
}

func expectOneRow(result sql.Result, notFound string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(notFound)
	}
	return nil
}
