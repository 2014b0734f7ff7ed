package jobs

import (
	"context"
	"time"

	"invoiceflow/internal/analytics"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/reports"
)

// ReportRefreshService drops cached reports and rebuilds the default window so
// the first dashboard load after a quiet period is served from cache.
type ReportRefreshService struct {
	reportService analytics.ReportService
}

type ReportRefreshResult struct {
	Window        reports.Window
	Points        int
	LastRefreshAt time.Time
}

func NewReportRefreshService(reportService analytics.ReportService) *ReportRefreshService {
	return &ReportRefreshService{reportService: reportService}
}

func (r *ReportRefreshService) Refresh(ctx context.Context) (*ReportRefreshResult, error) {
	log := logger.WithComponent("report-refresh")
	if err := r.reportService.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("report cache invalidation failed")
	}

	report, err := r.reportService.ProfitLoss(ctx, reports.Query{Window: reports.WindowThisMonth})
	if err != nil {
		return nil, err
	}
	log.Debug().Int("points", len(report.Points)).Float64("net", report.Summary.Net).Msg("report cache warmed")
	return &ReportRefreshResult{
		Window:        reports.WindowThisMonth,
		Points:        len(report.Points),
		LastRefreshAt: time.Now(),
	}, nil
}
