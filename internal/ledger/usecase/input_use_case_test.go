package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
	"stockledger/internal/ledger/service"
)

func createDeadlockError() error {
	return &driver.MySQLError{Number: 1213}
}

type mockEngine struct {
	CreateFunc     func(ctx context.Context, productID string, amount int, actorID string) (*service.CreateResult, error)
	EditFunc       func(ctx context.Context, entryID string, newAmount int, actorID string) (*service.EditResult, error)
	SoftDeleteFunc func(ctx context.Context, entryID string, actorID string) (*service.DeleteResult, error)
}

func (m *mockEngine) Create(ctx context.Context, productID string, amount int, actorID string) (*service.CreateResult, error) {
	return m.CreateFunc(ctx, productID, amount, actorID)
}

func (m *mockEngine) Edit(ctx context.Context, entryID string, newAmount int, actorID string) (*service.EditResult, error) {
	return m.EditFunc(ctx, entryID, newAmount, actorID)
}

func (m *mockEngine) SoftDelete(ctx context.Context, entryID string, actorID string) (*service.DeleteResult, error) {
	return m.SoftDeleteFunc(ctx, entryID, actorID)
}

type mockReader struct {
	FindLiveByIDFunc func(ctx context.Context, id string) (*domain.EntryView, error)
	ListLiveFunc     func(ctx context.Context, since time.Time) ([]domain.EntryView, error)
}

func (m *mockReader) FindLiveByID(ctx context.Context, id string) (*domain.EntryView, error) {
	return m.FindLiveByIDFunc(ctx, id)
}

func (m *mockReader) ListLive(ctx context.Context, since time.Time) ([]domain.EntryView, error) {
	return m.ListLiveFunc(ctx, since)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.StockEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, event domain.StockEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func newTestInputUseCase(engine ReconciliationEngine, notifier Notifier) *InputUseCase {
	return NewInputUseCase(engine, &mockReader{}, notifier, zap.NewNop(), 3)
}

func TestCreate_NotifiesAfterCommit(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := &mockEngine{
		CreateFunc: func(ctx context.Context, productID string, amount int, actorID string) (*service.CreateResult, error) {
			return &service.CreateResult{
				Entry: domain.LedgerEntry{ID: "e-1", ProductID: productID, Amount: amount, UserID: actorID},
				Event: domain.StockEvent{Operation: domain.StockOpCreate, EntryID: "e-1", ProductID: productID, Amount: amount, Stock: 15},
			}, nil
		},
	}
	uc := newTestInputUseCase(engine, notifier)

	entry, err := uc.Create(context.Background(), "p-1", 5, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "e-1", entry.ID)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, 15, notifier.events[0].Stock)
}

func TestCreate_ErrorIsNotRetriedOrNotified(t *testing.T) {
	notifier := &recordingNotifier{}
	calls := 0
	engine := &mockEngine{
		CreateFunc: func(ctx context.Context, productID string, amount int, actorID string) (*service.CreateResult, error) {
			calls++
			return nil, apperrors.NewNotFoundError("product with id p-1 not found")
		},
	}
	uc := newTestInputUseCase(engine, notifier)

	_, err := uc.Create(context.Background(), "p-1", 5, "u-1")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Empty(t, notifier.events)
}

func TestEdit_RetriesDeadlockThenSucceeds(t *testing.T) {
	calls := 0
	engine := &mockEngine{
		EditFunc: func(ctx context.Context, entryID string, newAmount int, actorID string) (*service.EditResult, error) {
			calls++
			if calls < 3 {
				return nil, createDeadlockError()
			}
			return &service.EditResult{
				Previous: domain.EntrySnapshot{Entry: domain.LedgerEntry{ID: entryID, Amount: 5}, Product: domain.Product{Stock: 15}},
				Event:    domain.StockEvent{Operation: domain.StockOpEdit, Amount: newAmount, PreviousAmount: 5, Stock: 12},
			}, nil
		},
	}
	notifier := &recordingNotifier{}
	uc := newTestInputUseCase(engine, notifier)

	snapshot, err := uc.Edit(context.Background(), "e-1", 2, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 5, snapshot.Entry.Amount)
	assert.Equal(t, 15, snapshot.Product.Stock)
	assert.Equal(t, 3, calls)
	assert.Len(t, notifier.events, 1)
}

func TestEdit_DeadlockRetriesExhausted(t *testing.T) {
	calls := 0
	engine := &mockEngine{
		EditFunc: func(ctx context.Context, entryID string, newAmount int, actorID string) (*service.EditResult, error) {
			calls++
			return nil, &driver.MySQLError{Number: 1205}
		},
	}
	notifier := &recordingNotifier{}
	uc := newTestInputUseCase(engine, notifier)

	_, err := uc.Edit(context.Background(), "e-1", 2, "u-1")
	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok, "expected DeadlockError, got %v", err)
	assert.Equal(t, 3, calls)
	assert.Empty(t, notifier.events)
}

func TestEdit_RetryStopsWhenContextCancelled(t *testing.T) {
	calls := 0
	engine := &mockEngine{
		EditFunc: func(ctx context.Context, entryID string, newAmount int, actorID string) (*service.EditResult, error) {
			calls++
			return nil, createDeadlockError()
		},
	}
	uc := newTestInputUseCase(engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Edit(ctx, "e-1", 2, "u-1")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestDelete_NoopDoesNotNotify(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := &mockEngine{
		SoftDeleteFunc: func(ctx context.Context, entryID string, actorID string) (*service.DeleteResult, error) {
			return &service.DeleteResult{
				Previous: domain.EntrySnapshot{Entry: domain.LedgerEntry{ID: entryID, IsDeleted: true}},
			}, nil
		},
	}
	uc := newTestInputUseCase(engine, notifier)

	snapshot, err := uc.Delete(context.Background(), "e-1", "u-1")
	require.NoError(t, err)
	assert.True(t, snapshot.Entry.IsDeleted)
	assert.Empty(t, notifier.events)
}

func TestDelete_NotifiesCommittedDelete(t *testing.T) {
	notifier := &recordingNotifier{}
	engine := &mockEngine{
		SoftDeleteFunc: func(ctx context.Context, entryID string, actorID string) (*service.DeleteResult, error) {
			return &service.DeleteResult{
				Previous: domain.EntrySnapshot{Entry: domain.LedgerEntry{ID: entryID, Amount: 2}, Product: domain.Product{Stock: 9}},
				Event:    &domain.StockEvent{Operation: domain.StockOpDelete, PreviousAmount: 2, Stock: 7},
			}, nil
		},
	}
	uc := newTestInputUseCase(engine, notifier)

	snapshot, err := uc.Delete(context.Background(), "e-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, 9, snapshot.Product.Stock)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, -2, notifier.events[0].Delta())
}

func TestList_ReadsAllTime(t *testing.T) {
	var gotSince time.Time
	reader := &mockReader{
		ListLiveFunc: func(ctx context.Context, since time.Time) ([]domain.EntryView, error) {
			gotSince = since
			return []domain.EntryView{{LedgerEntry: domain.LedgerEntry{ID: "e-1"}, ProductName: "Beras"}}, nil
		},
	}
	uc := NewInputUseCase(&mockEngine{}, reader, nil, zap.NewNop(), 3)

	views, err := uc.List(context.Background())
	require.NoError(t, err)
	assert.True(t, gotSince.IsZero())
	assert.Len(t, views, 1)
}
