package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoiceflow/internal/analytics"
	"invoiceflow/internal/billing"
	"invoiceflow/internal/common"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/workspace"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
)

// PendingView is a pending sale with its running totals.
type PendingView struct {
	workspace.PendingSale
	Totals        billing.Totals `json:"totals"`
	AmountInWords string         `json:"amountInWords"`
}

// FinalizeResult describes a committed invoice or direct sale.
type FinalizeResult struct {
	Kind       workspace.Kind             `json:"kind"`
	Number     string                     `json:"number"`
	Invoice    *models.Invoice            `json:"invoice,omitempty"`
	DirectSale *models.DirectSaleLogEntry `json:"directSale,omitempty"`
	PDFURL     string                     `json:"pdfUrl,omitempty"`
	Notices    []models.Notice            `json:"notices,omitempty"`
}

// SaleService drives the pending invoice and direct sale.
type SaleService interface {
	Pending(ctx context.Context, kind workspace.Kind) (*PendingView, error)
	AddLine(ctx context.Context, kind workspace.Kind, itemID string, qty int) (*workspace.Result, error)
	RemoveLine(ctx context.Context, kind workspace.Kind, lineID string) (*workspace.Result, error)
	Clear(ctx context.Context, kind workspace.Kind) (*workspace.Result, error)
	SetBuyer(ctx context.Context, buyer models.BuyerAddress) error
	SetSaleDate(ctx context.Context, date string) error
	Finalize(ctx context.Context, kind workspace.Kind) (*FinalizeResult, error)
	NewInvoice(ctx context.Context) (*PendingView, error)
}

type saleService struct {
	state        StateService
	finalizeRepo repositories.FinalizeRepository
	settingsRepo repositories.SettingsRepository
	invoiceSvc   InvoiceService
	reportSvc    analytics.ReportService
	guard        *common.InflightGuard
	metrics      *SaleMetrics
	loc          *time.Location
}

func NewSaleService(state StateService, finalizeRepo repositories.FinalizeRepository, settingsRepo repositories.SettingsRepository, invoiceSvc InvoiceService, reportSvc analytics.ReportService, guard *common.InflightGuard, metrics *SaleMetrics, loc *time.Location) SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &saleService{
		state:        state,
		finalizeRepo: finalizeRepo,
		settingsRepo: settingsRepo,
		invoiceSvc:   invoiceSvc,
		reportSvc:    reportSvc,
		guard:        guard,
		metrics:      metrics,
		loc:          loc,
	}
}

func (s *saleService) Pending(ctx context.Context, kind workspace.Kind) (*PendingView, error) {
	p, err := s.state.Workspace().Pending(kind)
	if err != nil {
		return nil, err
	}
	totals := billing.CalculateTotals(p.Lines)
	return &PendingView{PendingSale: *p, Totals: totals, AmountInWords: billing.AmountInWords(totals.GrandTotal)}, nil
}

func (s *saleService) AddLine(ctx context.Context, kind workspace.Kind, itemID string, qty int) (*workspace.Result, error) {
	res, err := s.state.Workspace().AddLine(kind, itemID, qty)
	if err != nil {
		if errors.Is(err, workspace.ErrInsufficientStock) {
			s.metrics.StockRejected(string(kind))
		}
		return nil, err
	}
	s.state.Persist(ctx, res.Affected)
	return res, nil
}

func (s *saleService) RemoveLine(ctx context.Context, kind workspace.Kind, lineID string) (*workspace.Result, error) {
	res, err := s.state.Workspace().RemoveLine(kind, lineID)
	if err != nil {
		return nil, err
	}
	s.state.Persist(ctx, res.Affected)
	return res, nil
}

func (s *saleService) Clear(ctx context.Context, kind workspace.Kind) (*workspace.Result, error) {
	res, err := s.state.Workspace().Clear(kind)
	if err != nil {
		return nil, err
	}
	s.state.Persist(ctx, res.Affected)
	return res, nil
}

func (s *saleService) SetBuyer(ctx context.Context, buyer models.BuyerAddress) error {
	if err := common.ValidateGSTIN(buyer.GSTIN, "gstin"); err != nil {
		return err
	}
	if err := s.state.Workspace().SetBuyer(buyer); err != nil {
		return err
	}
	s.state.SaveSnapshot(ctx)
	return nil
}

func (s *saleService) SetSaleDate(ctx context.Context, date string) error {
	if err := s.state.Workspace().SetSaleDate(date); err != nil {
		return err
	}
	s.state.SaveSnapshot(ctx)
	return nil
}

// Finalize persists the pending sale of kind in one transaction and only
// then drops its lines. The sale is frozen for the duration, so line edits,
// clears and a new invoice are refused until it commits or fails.
func (s *saleService) Finalize(ctx context.Context, kind workspace.Kind) (*FinalizeResult, error) {
	release, err := s.guard.Acquire("finalize:" + string(kind))
	if err != nil {
		return nil, err
	}
	defer release()

	ws := s.state.Workspace()
	pending, counter, err := ws.BeginFinalize(kind)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			ws.AbortFinalize(kind)
		}
	}()

	if len(pending.Lines) == 0 {
		return nil, ErrEmptySale
	}
	if kind == workspace.KindDirectSale && pending.SaleDate == "" {
		return nil, ErrSaleDateRequired
	}

	saleDate := pending.Date
	if kind == workspace.KindDirectSale {
		saleDate = pending.SaleDate
	}
	records := salesRecords(pending.Number, saleDate, pending.Lines)
	totals := billing.CalculateTotals(pending.Lines)
	result := &FinalizeResult{Kind: kind, Number: pending.Number}

	switch kind {
	case workspace.KindInvoice:
		inv, err := s.buildInvoice(pending, totals)
		if err != nil {
			return nil, err
		}
		if err := s.finalizeRepo.FinalizeInvoice(ctx, inv, records, counter+1); err != nil {
			s.metrics.FinalizeFailed(string(kind))
			return nil, fmt.Errorf("finalize invoice %s: %w", pending.Number, err)
		}
		result.Invoice = inv
	case workspace.KindDirectSale:
		entry := buildDirectSale(pending, totals)
		if err := s.finalizeRepo.FinalizeDirectSale(ctx, entry, records, counter+1); err != nil {
			s.metrics.FinalizeFailed(string(kind))
			return nil, fmt.Errorf("finalize direct sale %s: %w", pending.Number, err)
		}
		result.DirectSale = entry
	}

	if err := ws.CommitFinalize(kind, counter+1); err != nil {
		return nil, err
	}
	committed = true
	s.state.SaveSnapshot(ctx)
	s.metrics.Finalized(string(kind))

	log := logger.WithComponent("sales")
	log.Info().Str("kind", string(kind)).Str("number", pending.Number).
		Int("lines", len(pending.Lines)).Float64("grand_total", totals.GrandTotal).Msg("sale finalized")

	if err := s.reportSvc.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("report cache invalidation failed")
	}

	result.Notices = append(result.Notices, models.Notice{
		Level:   models.NoticeSuccess,
		Message: fmt.Sprintf("%s saved", pending.Number),
	})
	if result.Invoice != nil {
		url, err := s.invoiceSvc.GeneratePDF(ctx, result.Invoice)
		if err != nil {
			log.Error().Err(err).Str("invoice", pending.Number).Msg("invoice PDF failed")
			result.Notices = append(result.Notices, models.Notice{
				Level:   models.NoticeWarning,
				Message: "Invoice saved, but the PDF could not be generated",
			})
		} else {
			result.PDFURL = url
		}
	}
	return result, nil
}

func (s *saleService) buildInvoice(p *workspace.PendingSale, totals billing.Totals) (*models.Invoice, error) {
	date, err := time.ParseInLocation("2006-01-02", p.Date, s.loc)
	if err != nil {
		return nil, err
	}
	return &models.Invoice{
		InvoiceNumber: p.Number,
		InvoiceDate:   date,
		Buyer:         p.Buyer,
		Items:         p.Lines,
		SubTotal:      totals.SubTotal,
		CGST:          totals.CGST,
		SGST:          totals.SGST,
		TaxAmount:     totals.TaxAmount,
		GrandTotal:    totals.GrandTotal,
		Status:        models.InvoiceStatusUnpaid,
	}, nil
}

func buildDirectSale(p *workspace.PendingSale, totals billing.Totals) *models.DirectSaleLogEntry {
	entry := &models.DirectSaleLogEntry{
		DSNumber:   p.Number,
		SaleDate:   p.SaleDate,
		Items:      make([]models.DirectSaleLineItem, 0, len(p.Lines)),
		SubTotal:   totals.SubTotal,
		TaxAmount:  totals.TaxAmount,
		GrandTotal: totals.GrandTotal,
	}
	profit := decimal.Zero
	for _, l := range p.Lines {
		lp := billing.Profit(l)
		profit = profit.Add(lp)
		entry.Items = append(entry.Items, models.DirectSaleLineItem{
			LineItem:            l,
			SellingPricePerUnit: l.Price,
			TotalItemProfit:     lp.InexactFloat64(),
		})
	}
	entry.TotalProfit = profit.InexactFloat64()
	return entry
}

func salesRecords(number, saleDate string, lines []models.LineItem) []*models.SalesRecord {
	out := make([]*models.SalesRecord, 0, len(lines))
	for _, l := range lines {
		out = append(out, &models.SalesRecord{
			ID:                  xid.New().String(),
			DocumentNumber:      number,
			SaleDate:            saleDate,
			ItemID:              l.ItemID,
			ItemName:            l.Name,
			Category:            l.Category,
			QuantitySold:        l.Quantity,
			SellingPricePerUnit: l.Price,
			BuyingPricePerUnit:  l.BuyingPrice,
			TotalProfit:         billing.LineProfit(l),
		})
	}
	return out
}

// NewInvoice starts a fresh invoice: the current lines go back to stock and
// the invoice counter moves forward.
func (s *saleService) NewInvoice(ctx context.Context) (*PendingView, error) {
	ws := s.state.Workspace()
	res, err := ws.Clear(workspace.KindInvoice)
	if err != nil {
		return nil, err
	}
	next := ws.AdvanceCounter(workspace.KindInvoice)
	s.state.Persist(ctx, res.Affected)

	if err := s.settingsRepo.SetCounter(context.WithoutCancel(ctx), repositories.InvoiceCounterColumn, next); err != nil {
		log := logger.WithComponent("sales")
		log.Error().Err(err).Int("counter", next).Msg("invoice counter write failed")
	}
	return s.Pending(ctx, workspace.KindInvoice)
}
