package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/domain"
	"stockledger/internal/infrastructure/mysql"
	"stockledger/internal/ledger/service"
)

type ReconciliationEngine interface {
	Create(ctx context.Context, productID string, amount int, actorID string) (*service.CreateResult, error)
	Edit(ctx context.Context, entryID string, newAmount int, actorID string) (*service.EditResult, error)
	SoftDelete(ctx context.Context, entryID string, actorID string) (*service.DeleteResult, error)
}

type EntryReader interface {
	FindLiveByID(ctx context.Context, id string) (*domain.EntryView, error)
	ListLive(ctx context.Context, since time.Time) ([]domain.EntryView, error)
}

// Notifier receives every committed stock change.
type Notifier interface {
	Notify(ctx context.Context, event domain.StockEvent)
}

type InputUseCase struct {
	engine   ReconciliationEngine
	reader   EntryReader
	notifier Notifier
	retrier  *mysql.Retrier
	logger   *zap.Logger
}

func NewInputUseCase(
	engine ReconciliationEngine,
	reader EntryReader,
	notifier Notifier,
	logger *zap.Logger,
	maxRetryAttempts int,
) *InputUseCase {
	return &InputUseCase{
		engine:   engine,
		reader:   reader,
		notifier: notifier,
		retrier:  mysql.NewRetrier(maxRetryAttempts, logger),
		logger:   logger,
	}
}

func (uc *InputUseCase) Create(ctx context.Context, productID string, amount int, actorID string) (*domain.LedgerEntry, error) {
	uc.logger.Debug("create input started", zap.String("productId", productID), zap.Int("amount", amount))

	var result *service.CreateResult
	err := uc.retrier.Do(ctx, "create", func() error {
		var err error
		result, err = uc.engine.Create(ctx, productID, amount, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, result.Event)
	return &result.Entry, nil
}

func (uc *InputUseCase) Edit(ctx context.Context, entryID string, newAmount int, actorID string) (*domain.EntrySnapshot, error) {
	uc.logger.Debug("edit input started", zap.String("entryId", entryID), zap.Int("amount", newAmount))

	var result *service.EditResult
	err := uc.retrier.Do(ctx, "edit", func() error {
		var err error
		result, err = uc.engine.Edit(ctx, entryID, newAmount, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, result.Event)
	return &result.Previous, nil
}

func (uc *InputUseCase) Delete(ctx context.Context, entryID string, actorID string) (*domain.EntrySnapshot, error) {
	uc.logger.Debug("delete input started", zap.String("entryId", entryID))

	var result *service.DeleteResult
	err := uc.retrier.Do(ctx, "delete", func() error {
		var err error
		result, err = uc.engine.SoftDelete(ctx, entryID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Event != nil {
		uc.notify(ctx, *result.Event)
	}
	return &result.Previous, nil
}

func (uc *InputUseCase) Get(ctx context.Context, entryID string) (*domain.EntryView, error) {
	return uc.reader.FindLiveByID(ctx, entryID)
}

func (uc *InputUseCase) List(ctx context.Context) ([]domain.EntryView, error) {
	return uc.reader.ListLive(ctx, time.Time{})
}

func (uc *InputUseCase) notify(ctx context.Context, event domain.StockEvent) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, event)
}
