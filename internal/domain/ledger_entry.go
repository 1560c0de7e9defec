package domain

import "time"

// LedgerEntry is one stock input. Amount is the entry's current quantity,
// not a delta: a live entry contributes Amount to its product's stock and a
// deleted one contributes nothing.
type LedgerEntry struct {
	ID        string
	ProductID string
	UserID    string
	Amount    int
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contribution is what the entry currently adds to the product stock.
func (e LedgerEntry) Contribution() int {
	if e.IsDeleted {
		return 0
	}
	return e.Amount
}

// EntrySnapshot pairs an entry with its product as both were read inside
// the reconciling transaction, before any write.
type EntrySnapshot struct {
	Entry   LedgerEntry
	Product Product
}

// EntryView is a read model for listings: a live entry joined with its
// product and actor.
type EntryView struct {
	LedgerEntry
	ProductName string
	ProductUnit string
	UserName    string
}
