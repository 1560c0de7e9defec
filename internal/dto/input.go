package dto

import (
	"encoding/json"
	"time"

	"stockledger/internal/domain"
)

// Amount is kept as a json.Number so both 5 and "5" are accepted and
// fractional values can be rejected explicitly.
type CreateInputRequest struct {
	ProductID string      `json:"productId" validate:"required"`
	Amount    json.Number `json:"amount" validate:"required"`
}

type UpdateInputRequest struct {
	Amount json.Number `json:"amount" validate:"required"`
}

type InputDTO struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	UserID      string    `json:"userId"`
	Amount      int       `json:"amount"`
	ProductName string    `json:"productName,omitempty"`
	ProductUnit string    `json:"productUnit,omitempty"`
	UserName    string    `json:"userName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InputSnapshotResponse is the entry and product state read before an edit
// or delete was applied.
type InputSnapshotResponse struct {
	TraceID string     `json:"traceId"`
	Input   InputDTO   `json:"input"`
	Product ProductDTO `json:"product"`
}

type InputResponse struct {
	TraceID string   `json:"traceId"`
	Input   InputDTO `json:"input"`
}

type InputListResponse struct {
	TraceID string     `json:"traceId"`
	Inputs  []InputDTO `json:"inputs"`
}

func NewInputDTO(e domain.LedgerEntry) InputDTO {
	return InputDTO{
		ID:        e.ID,
		ProductID: e.ProductID,
		UserID:    e.UserID,
		Amount:    e.Amount,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
