package analytics

import (
	"context"
	"fmt"
	"time"

	"invoiceflow/internal/billing"
	"invoiceflow/internal/caching"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/reports"
	"invoiceflow/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ReportCacheTTL bounds how stale a cached profit/loss report may be.
const ReportCacheTTL = 60 * time.Second

// ReportService computes profit/loss reports and catalog summaries.
type ReportService interface {
	ProfitLoss(ctx context.Context, q reports.Query) (*reports.Report, error)
	InventoryOverview(ctx context.Context) (*InventoryOverview, error)
	Invalidate(ctx context.Context) error
}

// InventoryOverview summarizes the persisted catalog.
type InventoryOverview struct {
	ItemCount       int       `json:"itemCount"`
	TotalUnits      int       `json:"totalUnits"`
	StockValue      float64   `json:"stockValue"`  // at buying price
	RetailValue     float64   `json:"retailValue"` // at selling price
	LowStockCount   int       `json:"lowStockCount"`
	OutOfStockCount int       `json:"outOfStockCount"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

type reportService struct {
	salesRepo     repositories.SalesRecordRepository
	inventoryRepo repositories.InventoryRepository
	cacheService  caching.CacheService
	loc           *time.Location
	now           func() time.Time
	group         singleflight.Group
}

func NewReportService(salesRepo repositories.SalesRecordRepository, inventoryRepo repositories.InventoryRepository, cacheService caching.CacheService, loc *time.Location) ReportService {
	return newReportService(salesRepo, inventoryRepo, cacheService, loc, time.Now)
}

func newReportService(salesRepo repositories.SalesRecordRepository, inventoryRepo repositories.InventoryRepository, cacheService caching.CacheService, loc *time.Location, now func() time.Time) *reportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		salesRepo:     salesRepo,
		inventoryRepo: inventoryRepo,
		cacheService:  cacheService,
		loc:           loc,
		now:           now,
	}
}

// cacheKey includes today's date so relative windows roll over at midnight.
func (s *reportService) cacheKey(q reports.Query, now time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", q.Window, q.From, q.To, now.In(s.loc).Format(reports.DateLayout))
}

func (s *reportService) ProfitLoss(ctx context.Context, q reports.Query) (*reports.Report, error) {
	log := logger.WithComponent("reports")
	now := s.now()
	key := s.cacheKey(q, now)

	if s.cacheService != nil {
		cached, err := s.cacheService.GetReport(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	res := s.group.DoChan(key, func() (interface{}, error) {
		records, err := s.salesRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load sales records: %w", err)
		}
		report, err := reports.Build(records, q, now, s.loc)
		if err != nil {
			return nil, err
		}
		if s.cacheService != nil {
			if err := s.cacheService.SetReport(ctx, key, report, ReportCacheTTL); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
			}
		}
		return report, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-res:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*reports.Report), nil
	}
}

func (s *reportService) InventoryOverview(ctx context.Context) (*InventoryOverview, error) {
	items, err := s.inventoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	stockValue, retailValue := decimal.Zero, decimal.Zero
	out := &InventoryOverview{ItemCount: len(items), LastUpdated: s.now()}
	for _, item := range items {
		out.TotalUnits += item.Stock
		units := decimal.NewFromInt(int64(item.Stock))
		stockValue = stockValue.Add(billing.Amount(item.BuyingPrice).Mul(units))
		retailValue = retailValue.Add(billing.Amount(item.Price).Mul(units))
		switch item.StockStatus() {
		case models.StockStatusOut:
			out.OutOfStockCount++
		case models.StockStatusLow:
			out.LowStockCount++
		}
	}
	out.StockValue = stockValue.InexactFloat64()
	out.RetailValue = retailValue.InexactFloat64()
	return out, nil
}

// Invalidate drops cached reports after new sales records are written.
func (s *reportService) Invalidate(ctx context.Context) error {
	if s.cacheService == nil {
		return nil
	}
	return s.cacheService.InvalidateReports(ctx)
}
