package service

import (
	"context"
	"sync"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

// memoryStore serializes transactions behind one mutex and works on a copy
// of the state that is only swapped in when fn succeeds.
type memoryStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	entries  map[string]domain.LedgerEntry
	failOn   string
	txCount  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: map[string]domain.Product{},
		entries:  map[string]domain.LedgerEntry{},
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	tx := &memoryTx{
		store:    m,
		products: make(map[string]domain.Product, len(m.products)),
		entries:  make(map[string]domain.LedgerEntry, len(m.entries)),
	}
	for k, v := range m.products {
		tx.products[k] = v
	}
	for k, v := range m.entries {
		tx.entries[k] = v
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.products = tx.products
	m.entries = tx.entries
	return nil
}

func (m *memoryStore) product(id string) domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id]
}

func (m *memoryStore) entry(id string) domain.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[id]
}

func (m *memoryStore) liveSum(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, e := range m.entries {
		if e.ProductID == productID {
			sum += e.Contribution()
		}
	}
	return sum
}

func (m *memoryStore) seedProduct(id string, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id] = domain.Product{ID: id, Name: id, UniqueCode: id, Stock: stock}
}

type memoryTx struct {
	store    *memoryStore
	products map[string]domain.Product
	entries  map[string]domain.LedgerEntry
}

func (t *memoryTx) fail(op string) error {
	if t.store.failOn == op {
		return context.DeadlineExceeded
	}
	return nil
}

func (t *memoryTx) FindProductForUpdate(ctx context.Context, productID string) (*domain.Product, error) {
	p, ok := t.products[productID]
	if !ok {
		return nil, apperrors.NewNotFoundError("product with id " + productID + " not found")
	}
	return &p, nil
}

func (t *memoryTx) FindEntryForUpdate(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	e, ok := t.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("input with id " + entryID + " not found")
	}
	return &e, nil
}

func (t *memoryTx) UniqueCodeTaken(ctx context.Context, code string) (bool, error) {
	for _, p := range t.products {
		if p.UniqueCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) InsertProduct(ctx context.Context, p domain.Product) error {
	if err := t.fail("InsertProduct"); err != nil {
		return err
	}
	t.products[p.ID] = p
	return nil
}

func (t *memoryTx) UpdateProductStock(ctx context.Context, productID string, stock int) error {
	if err := t.fail("UpdateProductStock"); err != nil {
		return err
	}
	p := t.products[productID]
	p.Stock = stock
	t.products[productID] = p
	return nil
}

func (t *memoryTx) InsertEntry(ctx context.Context, e domain.LedgerEntry) error {
	if err := t.fail("InsertEntry"); err != nil {
		return err
	}
	t.entries[e.ID] = e
	return nil
}

func (t *memoryTx) UpdateEntryAmount(ctx context.Context, entryID string, amount int, userID string) error {
	e := t.entries[entryID]
	e.Amount = amount
	e.UserID = userID
	t.entries[entryID] = e
	return nil
}

func (t *memoryTx) MarkEntryDeleted(ctx context.Context, entryID string) error {
	e := t.entries[entryID]
	e.IsDeleted = true
	t.entries[entryID] = e
	return nil
}

func (t *memoryTx) SumLiveEntries(ctx context.Context, productID string) (int, error) {
	sum := 0
	for _, e := range t.entries {
		if e.ProductID == productID {
			sum += e.Contribution()
		}
	}
	return sum, nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordMutation(op domain.StockOperation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[string(op)+"/"+outcome]++
}

func (r *countingRecorder) get(op domain.StockOperation, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[string(op)+"/"+outcome]
}
