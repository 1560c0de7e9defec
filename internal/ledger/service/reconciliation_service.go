package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

// LedgerTx is the set of reads and writes available inside one
// reconciliation transaction. The ForUpdate reads hold row locks until the
// transaction ends and return soft-deleted rows as well.
type LedgerTx interface {
	FindProductForUpdate(ctx context.Context, productID string) (*domain.Product, error)
	FindEntryForUpdate(ctx context.Context, entryID string) (*domain.LedgerEntry, error)
	UniqueCodeTaken(ctx context.Context, code string) (bool, error)
	InsertProduct(ctx context.Context, p domain.Product) error
	UpdateProductStock(ctx context.Context, productID string, stock int) error
	InsertEntry(ctx context.Context, e domain.LedgerEntry) error
	UpdateEntryAmount(ctx context.Context, entryID string, amount int, userID string) error
	MarkEntryDeleted(ctx context.Context, entryID string) error
	SumLiveEntries(ctx context.Context, productID string) (int, error)
}

// Store commits fn's writes atomically, or none of them when fn fails.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// MutationRecorder counts engine outcomes per operation.
type MutationRecorder interface {
	RecordMutation(op domain.StockOperation, outcome string)
}

const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeNoop      = "noop"
	OutcomeFailed    = "failed"
)

// MaxStock is the largest stock the INT stock column holds.
const MaxStock = math.MaxInt32

type Options struct {
	AllowNegativeAmounts bool
}

type NewProduct struct {
	Name         string
	UniqueCode   string
	Unit         string
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
	InitialStock int
}

type CreateResult struct {
	Entry domain.LedgerEntry
	Event domain.StockEvent
}

type EditResult struct {
	Previous domain.EntrySnapshot
	Event    domain.StockEvent
}

// DeleteResult carries the snapshot read before the subtraction. Event is
// nil when the entry was already deleted.
type DeleteResult struct {
	Previous domain.EntrySnapshot
	Event    *domain.StockEvent
}

type ProductResult struct {
	Product domain.Product
	Opening domain.LedgerEntry
	Event   domain.StockEvent
}

type VerifyResult struct {
	ProductID  string `json:"productId"`
	Stock      int    `json:"stock"`
	LedgerSum  int    `json:"ledgerSum"`
	Consistent bool   `json:"consistent"`
}

// ReconciliationService keeps Product.stock equal to the sum of the live
// entries of the product by applying exactly one delta per mutation.
type ReconciliationService struct {
	store    Store
	recorder MutationRecorder
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
	newID    func() string
}

func NewReconciliationService(store Store, recorder MutationRecorder, logger *zap.Logger, opts Options) *ReconciliationService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ReconciliationService{
		store:    store,
		recorder: recorder,
		logger:   logger,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

func (s *ReconciliationService) Create(ctx context.Context, productID string, amount int, actorID string) (*CreateResult, error) {
	if err := requireIDs(map[string]string{"productId": productID, "actorId": actorID}); err != nil {
		return nil, err
	}
	if amount < 0 {
		s.recorder.RecordMutation(domain.StockOpCreate, OutcomeRejected)
		return nil, invalidAmount("amount must not be negative")
	}

	var result CreateResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		product, err := tx.FindProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product.IsDeleted {
			return apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", productID))
		}

		stock := product.ApplyDelta(amount)
		if stock > MaxStock {
			return stockOverflow()
		}

		now := s.now()
		entry := domain.LedgerEntry{
			ID:        s.newID(),
			ProductID: productID,
			UserID:    actorID,
			Amount:    amount,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertEntry(ctx, entry); err != nil {
			return err
		}

		if err := tx.UpdateProductStock(ctx, productID, stock); err != nil {
			return err
		}

		result = CreateResult{
			Entry: entry,
			Event: domain.StockEvent{
				Operation:  domain.StockOpCreate,
				EntryID:    entry.ID,
				ProductID:  productID,
				ActorID:    actorID,
				Amount:     amount,
				Stock:      stock,
				OccurredAt: now,
			},
		}
		return nil
	})
	if err != nil {
		s.recordFailure(domain.StockOpCreate, err)
		return nil, err
	}

	s.recorder.RecordMutation(domain.StockOpCreate, OutcomeCommitted)
	s.logger.Info("ledger entry created",
		zap.String("entryId", result.Entry.ID),
		zap.String("productId", productID),
		zap.Int("amount", amount),
		zap.Int("stock", result.Event.Stock))
	return &result, nil
}

// Edit replaces the amount of a live entry and moves the product stock by
// the gap. The returned snapshot is the state before the update.
func (s *ReconciliationService) Edit(ctx context.Context, entryID string, newAmount int, actorID string) (*EditResult, error) {
	if err := requireIDs(map[string]string{"entryId": entryID, "actorId": actorID}); err != nil {
		return nil, err
	}
	if newAmount < 0 && !s.opts.AllowNegativeAmounts {
		s.recorder.RecordMutation(domain.StockOpEdit, OutcomeRejected)
		return nil, invalidAmount("amount must not be negative")
	}

	var result EditResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		entry, product, err := s.lockLiveEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}

		gap := newAmount - entry.Amount
		candidate := product.ApplyDelta(gap)
		if candidate < 0 {
			return apperrors.NewInsufficientStockError(product.ID, product.Stock, candidate)
		}
		if candidate > MaxStock {
			return stockOverflow()
		}

		if err := tx.UpdateEntryAmount(ctx, entryID, newAmount, actorID); err != nil {
			return err
		}
		if err := tx.UpdateProductStock(ctx, product.ID, candidate); err != nil {
			return err
		}

		result = EditResult{
			Previous: domain.EntrySnapshot{Entry: *entry, Product: *product},
			Event: domain.StockEvent{
				Operation:      domain.StockOpEdit,
				EntryID:        entryID,
				ProductID:      product.ID,
				ActorID:        actorID,
				Amount:         newAmount,
				PreviousAmount: entry.Amount,
				Stock:          candidate,
				OccurredAt:     s.now(),
			},
		}
		return nil
	})
	if err != nil {
		s.recordFailure(domain.StockOpEdit, err)
		return nil, err
	}

	s.recorder.RecordMutation(domain.StockOpEdit, OutcomeCommitted)
	s.logger.Info("ledger entry edited",
		zap.String("entryId", entryID),
		zap.String("productId", result.Event.ProductID),
		zap.Int("gap", result.Event.Delta()),
		zap.Int("stock", result.Event.Stock))
	return &result, nil
}

// SoftDelete removes a live entry's contribution. Deleting an entry that is
// already deleted succeeds without touching stock.
func (s *ReconciliationService) SoftDelete(ctx context.Context, entryID string, actorID string) (*DeleteResult, error) {
	if err := requireIDs(map[string]string{"entryId": entryID}); err != nil {
		return nil, err
	}

	var result DeleteResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		entry, err := tx.FindEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		product, err := tx.FindProductForUpdate(ctx, entry.ProductID)
		if err != nil {
			return err
		}

		result.Previous = domain.EntrySnapshot{Entry: *entry, Product: *product}
		if entry.IsDeleted {
			return nil
		}
		if product.IsDeleted {
			return frozenProduct(product.ID)
		}

		candidate := product.ApplyDelta(-entry.Amount)
		if candidate < 0 {
			return apperrors.NewInsufficientStockError(product.ID, product.Stock, candidate)
		}
		if candidate > MaxStock {
			return stockOverflow()
		}

		if err := tx.MarkEntryDeleted(ctx, entryID); err != nil {
			return err
		}
		if err := tx.UpdateProductStock(ctx, product.ID, candidate); err != nil {
			return err
		}

		result.Event = &domain.StockEvent{
			Operation:      domain.StockOpDelete,
			EntryID:        entryID,
			ProductID:      product.ID,
			ActorID:        actorID,
			Amount:         0,
			PreviousAmount: entry.Amount,
			Stock:          candidate,
			OccurredAt:     s.now(),
		}
		return nil
	})
	if err != nil {
		s.recordFailure(domain.StockOpDelete, err)
		return nil, err
	}

	if result.Event == nil {
		s.recorder.RecordMutation(domain.StockOpDelete, OutcomeNoop)
		s.logger.Debug("ledger entry already deleted", zap.String("entryId", entryID))
		return &result, nil
	}

	s.recorder.RecordMutation(domain.StockOpDelete, OutcomeCommitted)
	s.logger.Info("ledger entry deleted",
		zap.String("entryId", entryID),
		zap.String("productId", result.Event.ProductID),
		zap.Int("stock", result.Event.Stock))
	return &result, nil
}

// CreateProduct inserts the product and its opening entry together, so the
// initial stock is backed by the ledger from the start.
func (s *ReconciliationService) CreateProduct(ctx context.Context, in NewProduct, actorID string) (*ProductResult, error) {
	in.UniqueCode = strings.TrimSpace(in.UniqueCode)
	if err := requireIDs(map[string]string{"name": strings.TrimSpace(in.Name), "uniqueCode": in.UniqueCode, "actorId": actorID}); err != nil {
		return nil, err
	}
	if in.InitialStock < 0 {
		s.recorder.RecordMutation(domain.StockOpOpening, OutcomeRejected)
		return nil, apperrors.NewValidationError("invalid amount", apperrors.ValidationDetail{
			Field:   "stock",
			Message: "initial stock must not be negative",
		})
	}
	if in.InitialStock > MaxStock {
		s.recorder.RecordMutation(domain.StockOpOpening, OutcomeRejected)
		return nil, apperrors.NewValidationError("invalid amount", apperrors.ValidationDetail{
			Field:   "stock",
			Message: fmt.Sprintf("initial stock must not exceed %d", MaxStock),
		})
	}

	var result ProductResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		taken, err := tx.UniqueCodeTaken(ctx, in.UniqueCode)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.NewConflictError(fmt.Sprintf("product code %s already exists", in.UniqueCode))
		}

		now := s.now()
		product := domain.Product{
			ID:         s.newID(),
			Name:       strings.TrimSpace(in.Name),
			UniqueCode: in.UniqueCode,
			Unit:       in.Unit,
			BuyPrice:   in.BuyPrice,
			SellPrice:  in.SellPrice,
			Stock:      in.InitialStock,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.InsertProduct(ctx, product); err != nil {
			return err
		}

		opening := domain.LedgerEntry{
			ID:        s.newID(),
			ProductID: product.ID,
			UserID:    actorID,
			Amount:    in.InitialStock,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.InsertEntry(ctx, opening); err != nil {
			return err
		}

		result = ProductResult{
			Product: product,
			Opening: opening,
			Event: domain.StockEvent{
				Operation:  domain.StockOpOpening,
				EntryID:    opening.ID,
				ProductID:  product.ID,
				ActorID:    actorID,
				Amount:     in.InitialStock,
				Stock:      product.Stock,
				OccurredAt: now,
			},
		}
		return nil
	})
	if err != nil {
		s.recordFailure(domain.StockOpOpening, err)
		return nil, err
	}

	s.recorder.RecordMutation(domain.StockOpOpening, OutcomeCommitted)
	s.logger.Info("product created",
		zap.String("productId", result.Product.ID),
		zap.String("uniqueCode", result.Product.UniqueCode),
		zap.Int("stock", result.Product.Stock))
	return &result, nil
}

// Verify re-sums the live ledger of one product under the product lock and
// compares it with the stored stock. It never repairs anything.
func (s *ReconciliationService) Verify(ctx context.Context, productID string) (*VerifyResult, error) {
	if err := requireIDs(map[string]string{"productId": productID}); err != nil {
		return nil, err
	}

	var result VerifyResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		product, err := tx.FindProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		sum, err := tx.SumLiveEntries(ctx, productID)
		if err != nil {
			return err
		}
		result = VerifyResult{
			ProductID:  productID,
			Stock:      product.Stock,
			LedgerSum:  sum,
			Consistent: product.Stock == sum,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Consistent {
		s.logger.Warn("stock drift detected",
			zap.String("productId", productID),
			zap.Int("stock", result.Stock),
			zap.Int("ledgerSum", result.LedgerSum))
	}
	return &result, nil
}

// lockLiveEntry takes the entry lock, then the product lock.
func (s *ReconciliationService) lockLiveEntry(ctx context.Context, tx LedgerTx, entryID string) (*domain.LedgerEntry, *domain.Product, error) {
	entry, err := tx.FindEntryForUpdate(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry.IsDeleted {
		return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("input with id %s not found", entryID))
	}

	product, err := tx.FindProductForUpdate(ctx, entry.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product.IsDeleted {
		return nil, nil, frozenProduct(product.ID)
	}
	return entry, product, nil
}

func (s *ReconciliationService) recordFailure(op domain.StockOperation, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindInsufficientStock, apperrors.KindConflict:
		s.recorder.RecordMutation(op, OutcomeRejected)
		s.logger.Info("ledger mutation rejected", zap.String("operation", string(op)), zap.Error(err))
	default:
		s.recorder.RecordMutation(op, OutcomeFailed)
		s.logger.Error("ledger mutation failed", zap.String("operation", string(op)), zap.Error(err))
	}
}

func frozenProduct(productID string) error {
	return apperrors.NewConflictError(fmt.Sprintf("product %s is deleted; its stock is frozen", productID))
}

func stockOverflow() error {
	return invalidAmount(fmt.Sprintf("stock would exceed maximum of %d", MaxStock))
}

func invalidAmount(message string) error {
	return apperrors.NewValidationError("invalid amount", apperrors.ValidationDetail{
		Field:   "amount",
		Message: message,
	})
}

func requireIDs(fields map[string]string) error {
	var details []apperrors.ValidationDetail
	for _, name := range []string{"productId", "entryId", "actorId", "name", "uniqueCode"} {
		value, ok := fields[name]
		if ok && value == "" {
			details = append(details, apperrors.ValidationDetail{Field: name, Message: name + " is required"})
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) RecordMutation(domain.StockOperation, string) {}
