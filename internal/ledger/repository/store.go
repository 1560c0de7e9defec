package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"stockledger/internal/domain"
	"stockledger/internal/infrastructure/mysql"
	"stockledger/internal/ledger/service"
	productrepo "stockledger/internal/product/repository"
)

// Store runs reconciliation units of work against MySQL. Product and entry
// writes issued through one LedgerTx share a single database transaction.
type Store struct {
	runner      *mysql.TxRunner
	entryRepo   *MySQLEntryRepository
	productRepo *productrepo.MySQLRepository
}

func NewStore(runner *mysql.TxRunner, entryRepo *MySQLEntryRepository, productRepo *productrepo.MySQLRepository) *Store {
	return &Store{runner: runner, entryRepo: entryRepo, productRepo: productRepo}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx service.LedgerTx) error) error {
	return s.runner.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, &ledgerTx{tx: tx, entries: s.entryRepo, products: s.productRepo})
	})
}

type ledgerTx struct {
	tx       *sqlx.Tx
	entries  *MySQLEntryRepository
	products *productrepo.MySQLRepository
}

func (t *ledgerTx) FindProductForUpdate(ctx context.Context, productID string) (*domain.Product, error) {
	return t.products.FindByIDForUpdate(ctx, t.tx, productID)
}

func (t *ledgerTx) FindEntryForUpdate(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	return t.entries.FindByIDForUpdate(ctx, t.tx, entryID)
}

func (t *ledgerTx) UniqueCodeTaken(ctx context.Context, code string) (bool, error) {
	return t.products.UniqueCodeTaken(ctx, t.tx, code)
}

func (t *ledgerTx) InsertProduct(ctx context.Context, p domain.Product) error {
	return t.products.Insert(ctx, t.tx, p)
}

func (t *ledgerTx) UpdateProductStock(ctx context.Context, productID string, stock int) error {
	return t.products.UpdateStock(ctx, t.tx, productID, stock)
}

func (t *ledgerTx) InsertEntry(ctx context.Context, e domain.LedgerEntry) error {
	return t.entries.Insert(ctx, t.tx, e)
}

func (t *ledgerTx) UpdateEntryAmount(ctx context.Context, entryID string, amount int, userID string) error {
	return t.entries.UpdateAmount(ctx, t.tx, entryID, amount, userID)
}

func (t *ledgerTx) MarkEntryDeleted(ctx context.Context, entryID string) error {
	return t.entries.MarkDeleted(ctx, t.tx, entryID)
}

func (t *ledgerTx) SumLiveEntries(ctx context.Context, productID string) (int, error) {
	return t.entries.SumLive(ctx, t.tx, productID)
}
