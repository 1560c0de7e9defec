package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         string
	Name       string
	UniqueCode string
	Unit       string
	BuyPrice   decimal.Decimal
	SellPrice  decimal.Decimal
	Stock      int
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ApplyDelta returns the stock that would result from adding delta.
func (p Product) ApplyDelta(delta int) int {
	return p.Stock + delta
}

// Margin is the per-unit difference between sell and buy price.
func (p Product) Margin() decimal.Decimal {
	return p.SellPrice.Sub(p.BuyPrice)
}
