package usecase

import (
	"context"

	"go.uber.org/zap"

	"stockledger/internal/domain"
	"stockledger/internal/infrastructure/mysql"
	ledgerservice "stockledger/internal/ledger/service"
	"stockledger/internal/product/service"
)

type Service interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	UpdateDetails(ctx context.Context, id string, in service.DetailsUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Ledger creates products together with their opening entry and audits
// stock against the ledger.
type Ledger interface {
	CreateProduct(ctx context.Context, in ledgerservice.NewProduct, actorID string) (*ledgerservice.ProductResult, error)
	Verify(ctx context.Context, productID string) (*ledgerservice.VerifyResult, error)
}

type Notifier interface {
	Notify(ctx context.Context, event domain.StockEvent)
}

// ReportInvalidator drops cached reports after product master data changes.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

type ProductUseCase struct {
	service     Service
	ledger      Ledger
	notifier    Notifier
	invalidator ReportInvalidator
	retrier     *mysql.Retrier
	logger      *zap.Logger
}

func NewProductUseCase(
	service Service,
	ledger Ledger,
	notifier Notifier,
	invalidator ReportInvalidator,
	logger *zap.Logger,
	maxRetryAttempts int,
) *ProductUseCase {
	return &ProductUseCase{
		service:     service,
		ledger:      ledger,
		notifier:    notifier,
		invalidator: invalidator,
		retrier:     mysql.NewRetrier(maxRetryAttempts, logger),
		logger:      logger,
	}
}

func (uc *ProductUseCase) List(ctx context.Context) ([]domain.Product, error) {
	return uc.service.List(ctx)
}

func (uc *ProductUseCase) Get(ctx context.Context, id string) (*domain.Product, error) {
	return uc.service.Get(ctx, id)
}

func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	return uc.service.GetByCode(ctx, code)
}

func (uc *ProductUseCase) Create(ctx context.Context, in ledgerservice.NewProduct, actorID string) (*ledgerservice.ProductResult, error) {
	var result *ledgerservice.ProductResult
	err := uc.retrier.Do(ctx, "create-product", func() error {
		var err error
		result, err = uc.ledger.CreateProduct(ctx, in, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		uc.notifier.Notify(ctx, result.Event)
	}
	return result, nil
}

func (uc *ProductUseCase) Update(ctx context.Context, id string, in service.DetailsUpdate) (*domain.Product, error) {
	product, err := uc.service.UpdateDetails(ctx, id, in)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return product, nil
}

func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.service.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *ProductUseCase) Verify(ctx context.Context, id string) (*ledgerservice.VerifyResult, error) {
	return uc.ledger.Verify(ctx, id)
}

func (uc *ProductUseCase) invalidate(ctx context.Context) {
	if uc.invalidator == nil {
		return
	}
	if err := uc.invalidator.Invalidate(ctx); err != nil {
		uc.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}
