package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/domain"
)

const publishTimeout = 5 * time.Second

// Sink receives committed stock changes.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event domain.StockEvent) error
}

type Recorder interface {
	RecordStockEvent(sink string, err error)
}

// Fanout delivers each event to every sink after the ledger transaction has
// committed. A failing sink is logged and never fails the mutation.
type Fanout struct {
	sinks    []Sink
	recorder Recorder
	logger   *zap.Logger
}

func NewFanout(recorder Recorder, logger *zap.Logger, sinks ...Sink) *Fanout {
	return &Fanout{
		sinks:    sinks,
		recorder: recorder,
		logger:   logger,
	}
}

func (f *Fanout) Notify(ctx context.Context, event domain.StockEvent) {
	// the request may finish before a slow sink does
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, sink := range f.sinks {
		err := sink.Publish(ctx, event)
		if f.recorder != nil {
			f.recorder.RecordStockEvent(sink.Name(), err)
		}
		if err != nil {
			f.logger.Warn("stock event delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("operation", string(event.Operation)),
				zap.String("productId", event.ProductID),
				zap.String("entryId", event.EntryID),
				zap.Error(err),
			)
		}
	}
}
