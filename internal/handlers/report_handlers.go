package handlers

import (
	"net/http"

	"invoiceflow/internal/analytics"
	"invoiceflow/internal/reports"

	"github.com/labstack/echo/v4"
)

type ReportHandlers struct {
	reportService analytics.ReportService
}

func NewReportHandlers(reportService analytics.ReportService) *ReportHandlers {
	return &ReportHandlers{reportService: reportService}
}

// ProfitLoss handles GET /reports/profit-loss
// @Summary Profit and loss over a window
// @Tags reports
// @Produce json
// @Param window query string false "today, last_7_days, last_30_days, this_week, this_month, this_year, last_year, all_time or custom" default(this_month)
// @Param from query string false "custom window start, YYYY-MM-DD"
// @Param to query string false "custom window end, YYYY-MM-DD"
// @Success 200 {object} reports.Report
// @Router /reports/profit-loss [get]
func (h *ReportHandlers) ProfitLoss(c echo.Context) error {
	window, err := reports.ParseWindow(c.QueryParam("window"))
	if err != nil {
		return sendServiceError(c, "build report", err)
	}
	q := reports.Query{Window: window, From: c.QueryParam("from"), To: c.QueryParam("to")}

	report, err := h.reportService.ProfitLoss(c.Request().Context(), q)
	if err != nil {
		return sendServiceError(c, "build report", err)
	}
	return c.JSON(http.StatusOK, report)
}

// InventoryOverview handles GET /reports/inventory
func (h *ReportHandlers) InventoryOverview(c echo.Context) error {
	overview, err := h.reportService.InventoryOverview(c.Request().Context())
	if err != nil {
		return sendServiceError(c, "summarize inventory", err)
	}
	return c.JSON(http.StatusOK, overview)
}
