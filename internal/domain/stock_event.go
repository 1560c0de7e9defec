package domain

import "time"

type StockOperation string

const (
	StockOpCreate  StockOperation = "CREATE"
	StockOpEdit    StockOperation = "EDIT"
	StockOpDelete  StockOperation = "DELETE"
	StockOpOpening StockOperation = "OPENING"
)

// StockEvent describes a committed ledger mutation.
type StockEvent struct {
	Operation      StockOperation `json:"operation"`
	EntryID        string         `json:"entryId"`
	ProductID      string         `json:"productId"`
	ActorID        string         `json:"actorId"`
	Amount         int            `json:"amount"`
	PreviousAmount int            `json:"previousAmount"`
	Stock          int            `json:"stock"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

// Delta is the change the event applied to the product stock.
func (e StockEvent) Delta() int {
	switch e.Operation {
	case StockOpDelete:
		return -e.PreviousAmount
	case StockOpEdit:
		return e.Amount - e.PreviousAmount
	default:
		return e.Amount
	}
}
