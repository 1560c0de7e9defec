package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"stockledger/internal/domain"
	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
)

const dateLayout = "2006-01-02"

// Period selects the creation window of an input recap.
type Period string

const (
	PeriodAll     Period = "all"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod maps the ?type= query value. Empty means all time.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodWeekly, PeriodMonthly:
		return Period(raw), nil
	default:
		return "", apperrors.NewValidationError("invalid report type", apperrors.ValidationDetail{
			Field:   "type",
			Message: "type must be one of all, weekly, monthly",
		})
	}
}

// Since is the earliest createdAt included for the period, zero for all time.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

func (p Period) label() string {
	switch p {
	case PeriodWeekly:
		return "Mingguan"
	case PeriodMonthly:
		return "Bulanan"
	default:
		return "Seluruh"
	}
}

type EntryLister interface {
	ListLive(ctx context.Context, since time.Time) ([]domain.EntryView, error)
}

type ProductLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

type CacheRecorder interface {
	RecordCacheLookup(report string, hit bool)
}

type ReportService struct {
	entries  EntryLister
	products ProductLister
	cache    Cache
	recorder CacheRecorder
	group    singleflight.Group
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService builds reports from the live ledger. cache and recorder
// may be nil.
func NewReportService(entries EntryLister, products ProductLister, cache Cache, recorder CacheRecorder, logger *zap.Logger) *ReportService {
	return &ReportService{
		entries:  entries,
		products: products,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// InputRecap groups the live inputs of the period by product name, in the
// order each product first appears.
func (s *ReportService) InputRecap(ctx context.Context, period Period) (*dto.InputReport, error) {
	key := "inputs:" + string(period)

	var report dto.InputReport
	if s.lookup(ctx, "inputs", key, &report) {
		return &report, nil
	}

	val, err := s.build(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.buildInputRecap(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	return val.(*dto.InputReport), nil
}

// ProductMaster lists live products with their current stock.
func (s *ReportService) ProductMaster(ctx context.Context) (*dto.ProductReport, error) {
	key := "products:" + s.now().Format(dateLayout)

	var report dto.ProductReport
	if s.lookup(ctx, "products", key, &report) {
		return &report, nil
	}

	val, err := s.build(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.buildProductMaster(ctx)
	})
	if err != nil {
		return nil, err
	}
	return val.(*dto.ProductReport), nil
}

func (s *ReportService) buildInputRecap(ctx context.Context, period Period) (*dto.InputReport, error) {
	views, err := s.entries.ListLive(ctx, period.Since(s.now()))
	if err != nil {
		return nil, fmt.Errorf("listing inputs for report: %w", err)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})

	groups := make([]dto.InputReportGroup, 0)
	index := make(map[string]int)
	for _, v := range views {
		row := dto.InputReportRow{
			Product:  v.ProductName,
			Quantity: v.Amount,
			Unit:     v.ProductUnit,
			Date:     v.CreatedAt.UTC().Format(dateLayout),
			Entity:   v.UserName,
		}
		i, ok := index[v.ProductName]
		if !ok {
			i = len(groups)
			index[v.ProductName] = i
			groups = append(groups, dto.InputReportGroup{Product: v.ProductName})
		}
		groups[i].Data = append(groups[i].Data, row)
	}

	return &dto.InputReport{
		Title:  "Data Rekap Input Produk " + period.label(),
		Period: string(period),
		Groups: groups,
	}, nil
}

func (s *ReportService) buildProductMaster(ctx context.Context) (*dto.ProductReport, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products for report: %w", err)
	}

	rows := make([]dto.ProductReportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, dto.ProductReportRow{
			Name:  p.Name,
			Total: p.Stock,
			Info:  p.Unit,
			Date:  p.CreatedAt.UTC().Format(dateLayout),
		})
	}

	return &dto.ProductReport{
		Title: "Data Produk Terdaftar " + s.now().Format(dateLayout),
		Rows:  rows,
	}, nil
}

// build collapses concurrent builds of the same report into one query and
// stores the result in the cache.
func (s *ReportService) build(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, val)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val, res.Err
	}
}

func (s *ReportService) lookup(ctx context.Context, report, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}

	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		hit = false
	}
	if s.recorder != nil {
		s.recorder.RecordCacheLookup(report, hit)
	}
	return hit
}

func (s *ReportService) store(ctx context.Context, key string, val interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, val); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
