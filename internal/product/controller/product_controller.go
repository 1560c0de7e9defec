package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/commons"
	"stockledger/internal/domain"
	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
	ledgerservice "stockledger/internal/ledger/service"
	"stockledger/internal/middleware"
	"stockledger/internal/product/service"
)

// priceScale matches the DECIMAL(15,2) price columns.
const priceScale = 2

type ProductUseCase interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	Create(ctx context.Context, in ledgerservice.NewProduct, actorID string) (*ledgerservice.ProductResult, error)
	Update(ctx context.Context, id string, in service.DetailsUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Verify(ctx context.Context, id string) (*ledgerservice.VerifyResult, error)
}

type Controller struct {
	useCase ProductUseCase
	logger  *zap.Logger
}

func NewController(useCase ProductUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Get("/code/{code}", c.GetByCode)
	r.Get("/{id}", c.Get)
	r.Put("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
	r.Get("/{id}/ledger-check", c.LedgerCheck)
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	products, err := c.useCase.List(r.Context())
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	out := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, dto.NewProductDTO(p))
	}
	commons.WriteJSON(w, http.StatusOK, dto.ProductListResponse{TraceID: traceID, Products: out}, c.logger)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	product, err := c.useCase.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.ProductResponse{TraceID: traceID, Product: dto.NewProductDTO(*product)}, c.logger)
}

func (c *Controller) GetByCode(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	product, err := c.useCase.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.ProductResponse{TraceID: traceID, Product: dto.NewProductDTO(*product)}, c.logger)
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("missing actor"), logger)
		return
	}

	var req dto.CreateProductRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	stock, err := commons.ParseAmount("stock", req.Stock)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	if err := validatePrices(req.BuyPrice, req.SellPrice); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	result, err := c.useCase.Create(r.Context(), ledgerservice.NewProduct{
		Name:         req.Name,
		UniqueCode:   req.UniqueCode,
		Unit:         req.Unit,
		BuyPrice:     req.BuyPrice,
		SellPrice:    req.SellPrice,
		InitialStock: stock,
	}, actor.ID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	logger.Info("product created", zap.String("productId", result.Product.ID), zap.String("actorId", actor.ID))
	commons.WriteJSON(w, http.StatusCreated, dto.CreateProductResponse{
		TraceID: traceID,
		Product: dto.NewProductDTO(result.Product),
		Opening: dto.NewInputDTO(result.Opening),
	}, logger)
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.UpdateProductRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	if err := validatePrices(req.BuyPrice, req.SellPrice); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	product, err := c.useCase.Update(r.Context(), chi.URLParam(r, "id"), service.DetailsUpdate{
		Name:       req.Name,
		UniqueCode: req.UniqueCode,
		Unit:       req.Unit,
		BuyPrice:   req.BuyPrice,
		SellPrice:  req.SellPrice,
	})
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.ProductResponse{TraceID: traceID, Product: dto.NewProductDTO(*product)}, logger)
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	if err := c.useCase.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) LedgerCheck(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	res, err := c.useCase.Verify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.LedgerCheckResponse{
		TraceID:    traceID,
		ProductID:  res.ProductID,
		Stock:      res.Stock,
		LedgerSum:  res.LedgerSum,
		Consistent: res.Consistent,
	}, c.logger)
}

// validatePrices rejects negative prices and prices finer than the
// two-decimal column scale.
func validatePrices(buy, sell decimal.Decimal) error {
	var details []apperrors.ValidationDetail
	details = appendPriceDetail(details, "buyPrice", buy)
	details = appendPriceDetail(details, "sellPrice", sell)
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func appendPriceDetail(details []apperrors.ValidationDetail, field string, price decimal.Decimal) []apperrors.ValidationDetail {
	switch {
	case price.IsNegative():
		return append(details, apperrors.ValidationDetail{Field: field, Message: field + " must be non-negative"})
	case !price.Equal(price.Round(priceScale)):
		return append(details, apperrors.ValidationDetail{Field: field, Message: field + " must have at most 2 decimal places"})
	}
	return details
}
