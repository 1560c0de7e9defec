package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

type entryRow struct {
	ID        string    `db:"id"`
	ProductID string    `db:"productId"`
	UserID    string    `db:"userId"`
	Amount    int       `db:"amount"`
	IsDeleted bool      `db:"isDeleted"`
	CreatedAt time.Time `db:"createdAt"`
	UpdatedAt time.Time `db:"updatedAt"`
}

func (r entryRow) toDomain() domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Amount:    r.Amount,
		IsDeleted: r.IsDeleted,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type entryViewRow struct {
	entryRow
	ProductName string `db:"productName"`
	ProductUnit string `db:"productUnit"`
	UserName    string `db:"userName"`
}

const entryViewQuery = `
	SELECT i.id, i.productId, i.userId, i.amount, i.isDeleted, i.createdAt, i.updatedAt,
	       p.name AS productName, p.unit AS productUnit, u.name AS userName
	FROM Input i
	JOIN Product p ON p.id = i.productId
	JOIN User u ON u.id = i.userId
`

type MySQLEntryRepository struct {
	db *sqlx.DB
}

func NewMySQLEntryRepository(db *sqlx.DB) *MySQLEntryRepository {
	return &MySQLEntryRepository{db: db}
}

// FindByIDForUpdate locks the entry row, deleted or not.
func (r *MySQLEntryRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*domain.LedgerEntry, error) {
	query := `
		SELECT id, productId, userId, amount, isDeleted, createdAt, updatedAt
		FROM Input
		WHERE id = ?
		FOR UPDATE
	`

	var row entryRow
	err := tx.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("entry with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry for update: %w", err)
	}

	entry := row.toDomain()
	return &entry, nil
}

func (r *MySQLEntryRepository) Insert(ctx context.Context, tx *sqlx.Tx, e domain.LedgerEntry) error {
	query := `
		INSERT INTO Input (id, productId, userId, amount, isDeleted, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query, e.ID, e.ProductID, e.UserID, e.Amount, e.IsDeleted, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

func (r *MySQLEntryRepository) UpdateAmount(ctx context.Context, tx *sqlx.Tx, id string, amount int, userID string) error {
	result, err := tx.ExecContext(ctx, `UPDATE Input SET amount = ?, userId = ? WHERE id = ? AND isDeleted = 0`, amount, userID, id)
	if err != nil {
		return fmt.Errorf("updating entry amount: %w", err)
	}
	return expectOneRow(result, id)
}

func (r *MySQLEntryRepository) MarkDeleted(ctx context.Context, tx *sqlx.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `UPDATE Input SET isDeleted = 1 WHERE id = ? AND isDeleted = 0`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return expectOneRow(result, id)
}

func (r *MySQLEntryRepository) FindLiveByID(ctx context.Context, id string) (*domain.EntryView, error) {
	var row entryViewRow
	err := r.db.GetContext(ctx, &row, entryViewQuery+` WHERE i.id = ? AND i.isDeleted = 0`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("entry with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}

	view := row.toView()
	return &view, nil
}

// ListLive returns live entries created at or after since (zero means all
// time), newest first.
func (r *MySQLEntryRepository) ListLive(ctx context.Context, since time.Time) ([]domain.EntryView, error) {
	query := entryViewQuery + ` WHERE i.isDeleted = 0`
	var args []interface{}
	if !since.IsZero() {
		query += ` AND i.createdAt >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY i.createdAt DESC`

	var rows []entryViewRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}

	views := make([]domain.EntryView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.toView())
	}
	return views, nil
}

// SumLive re-derives a product's stock from its live entries.
func (r *MySQLEntryRepository) SumLive(ctx context.Context, tx *sqlx.Tx, productID string) (int, error) {
	var sum int
	err := tx.GetContext(ctx, &sum, `SELECT COALESCE(SUM(amount), 0) FROM Input WHERE productId = ? AND isDeleted = 0`, productID)
	if err != nil {
		return 0, fmt.Errorf("summing entries: %w", err)
	}
	return sum, nil
}

func (r entryViewRow) toView() domain.EntryView {
	return domain.EntryView{
		LedgerEntry: r.entryRow.toDomain(),
		ProductName: r.ProductName,
		ProductUnit: r.ProductUnit,
		UserName:    r.UserName,
	}
}

func expectOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("entry with id %s not found", id))
	}
	return nil
}
