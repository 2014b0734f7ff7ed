package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics counts finalized documents and rejected stock reservations.
// A nil *SaleMetrics records nothing.
type SaleMetrics struct {
	finalized       *prometheus.CounterVec
	finalizeErrors  *prometheus.CounterVec
	stockRejections *prometheus.CounterVec
}

func NewSaleMetrics(registerer prometheus.Registerer) *SaleMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	finalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_documents_finalized_total",
		Help: "Finalized invoices and direct sales by kind.",
	}, []string{"kind"})
	finalizeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_finalize_failures_total",
		Help: "Finalize attempts that failed to persist, by kind.",
	}, []string{"kind"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoiceflow_stock_rejections_total",
		Help: "Line additions rejected for insufficient stock, by kind.",
	}, []string{"kind"})
	registerer.MustRegister(finalized, finalizeErrors, rejections)
	return &SaleMetrics{finalized: finalized, finalizeErrors: finalizeErrors, stockRejections: rejections}
}

func (m *SaleMetrics) Finalized(kind string) {
	if m == nil {
		return
	}
	m.finalized.WithLabelValues(kind).Inc()
}

func (m *SaleMetrics) FinalizeFailed(kind string) {
	if m == nil {
		return
	}
	m.finalizeErrors.WithLabelValues(kind).Inc()
}

func (m *SaleMetrics) StockRejected(kind string) {
	if m == nil {
		return
	}
	m.stockRejections.WithLabelValues(kind).Inc()
}
