package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/domain"
)

type CreateProductRequest struct {
	Name       string          `json:"name" validate:"required,max=191"`
	UniqueCode string          `json:"uniqueCode" validate:"required,max=64"`
	Unit       string          `json:"unit" validate:"required,max=32"`
	BuyPrice   decimal.Decimal `json:"buyPrice"`
	SellPrice  decimal.Decimal `json:"sellPrice"`
	Stock      json.Number     `json:"stock" validate:"required"`
}

// UpdateProductRequest may repeat uniqueCode but never change it.
type UpdateProductRequest struct {
	Name       string          `json:"name" validate:"required,max=191"`
	UniqueCode string          `json:"uniqueCode,omitempty"`
	Unit       string          `json:"unit" validate:"required,max=32"`
	BuyPrice   decimal.Decimal `json:"buyPrice"`
	SellPrice  decimal.Decimal `json:"sellPrice"`
}

type ProductDTO struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	UniqueCode string          `json:"uniqueCode"`
	Unit       string          `json:"unit"`
	BuyPrice   decimal.Decimal `json:"buyPrice"`
	SellPrice  decimal.Decimal `json:"sellPrice"`
	Margin     decimal.Decimal `json:"margin"`
	Stock      int             `json:"stock"`
	IsDeleted  bool            `json:"isDeleted"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type ProductResponse struct {
	TraceID string     `json:"traceId"`
	Product ProductDTO `json:"product"`
}

type CreateProductResponse struct {
	TraceID string     `json:"traceId"`
	Product ProductDTO `json:"product"`
	Opening InputDTO   `json:"opening"`
}

type ProductListResponse struct {
	TraceID  string       `json:"traceId"`
	Products []ProductDTO `json:"products"`
}

type LedgerCheckResponse struct {
	TraceID    string `json:"traceId"`
	ProductID  string `json:"productId"`
	Stock      int    `json:"stock"`
	LedgerSum  int    `json:"ledgerSum"`
	Consistent bool   `json:"consistent"`
}

func NewProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:         p.ID,
		Name:       p.Name,
		UniqueCode: p.UniqueCode,
		Unit:       p.Unit,
		BuyPrice:   p.BuyPrice,
		SellPrice:  p.SellPrice,
		Margin:     p.Margin(),
		Stock:      p.Stock,
		IsDeleted:  p.IsDeleted,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
