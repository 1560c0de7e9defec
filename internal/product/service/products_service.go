package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByUniqueCode(ctx context.Context, code string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	UpdateDetails(ctx context.Context, p domain.Product) error
	SoftDelete(ctx context.Context, id string) error
}

// DetailsUpdate carries the descriptive fields of a product. Stock is only
// ever changed through the ledger.
type DetailsUpdate struct {
	Name       string
	UniqueCode string
	Unit       string
	BuyPrice   decimal.Decimal
	SellPrice  decimal.Decimal
}

type ProductService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	return s.repo.FindByUniqueCode(ctx, strings.TrimSpace(code))
}

// UpdateDetails rewrites name, unit and prices. uniqueCode may be repeated
// in the request but never changed.
func (s *ProductService) UpdateDetails(ctx context.Context, id string, in DetailsUpdate) (*domain.Product, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(in.UniqueCode)
	if code != "" && code != current.UniqueCode {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "uniqueCode",
			Message: "uniqueCode cannot be changed",
		})
	}

	updated := *current
	updated.Name = strings.TrimSpace(in.Name)
	updated.Unit = in.Unit
	updated.BuyPrice = in.BuyPrice
	updated.SellPrice = in.SellPrice
	if err := s.repo.UpdateDetails(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.String("productId", id))
	return &updated, nil
}

// Delete soft-deletes the product. Its stock stays frozen at the current
// value and its entries can no longer be edited or deleted.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("productId", id))
	return nil
}
