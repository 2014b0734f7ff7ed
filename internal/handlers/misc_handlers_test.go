package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"invoiceflow/internal/models"
	"invoiceflow/internal/reports"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/services"
	"invoiceflow/internal/shortcuts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfitLoss(t *testing.T) {
	e := newTestEcho()
	svc := new(MockReportService)
	h := NewReportHandlers(svc)

	q := reports.Query{Window: reports.WindowCustom, From: "2024-01-01", To: "2024-01-02"}
	svc.On("ProfitLoss", mock.Anything, q).Return(&reports.Report{
		Window:  reports.WindowCustom,
		Summary: reports.Summary{TotalProfit: 150, TotalLoss: 30, Net: 120},
	}, nil)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/reports/profit-loss?window=custom&from=2024-01-01&to=2024-01-02", "")
	require.NoError(t, h.ProfitLoss(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"net":120`)
}

func TestProfitLoss_BadWindow(t *testing.T) {
	e := newTestEcho()
	svc := new(MockReportService)
	h := NewReportHandlers(svc)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/reports/profit-loss?window=fortnight", "")
	require.NoError(t, h.ProfitLoss(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.On("ProfitLoss", mock.Anything, reports.Query{Window: reports.WindowCustom, From: "2024-02-01"}).
		Return(nil, reports.ErrCustomRange)
	c, rec = newJSONContext(e, http.MethodGet, "/v1/reports/profit-loss?window=custom&from=2024-02-01", "")
	require.NoError(t, h.ProfitLoss(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSettings(t *testing.T) {
	e := newTestEcho()
	svc := new(MockSettingsService)
	h := NewSettingsHandlers(svc)

	svc.On("Get", mock.Anything).Return(&services.SettingsView{
		AppSettings:       models.AppSettings{InvoiceCounter: 7, DirectSaleCounter: 1},
		NextInvoiceNumber: "INV-0007",
	}, nil)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/settings", "")
	require.NoError(t, h.GetSettings(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nextInvoiceNumber":"INV-0007"`)
}

func TestUpdateBuyerAddress(t *testing.T) {
	e := newTestEcho()
	svc := new(MockSettingsService)
	h := NewSettingsHandlers(svc)

	buyer := models.BuyerAddress{Name: "Acme Traders", GSTIN: "27AAPFU0939F1ZV"}
	svc.On("SetBuyerAddress", mock.Anything, buyer).Return(nil)
	svc.On("Get", mock.Anything).Return(&services.SettingsView{AppSettings: models.AppSettings{BuyerAddress: buyer}}, nil)

	c, rec := newJSONContext(e, http.MethodPut, "/v1/settings/buyer-address", `{"name":"Acme Traders","gstin":"27AAPFU0939F1ZV"}`)
	require.NoError(t, h.UpdateBuyerAddress(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Traders")

	c, rec = newJSONContext(e, http.MethodPut, "/v1/settings/buyer-address", `{"name":"Acme","email":"not-an-email"}`)
	require.NoError(t, h.UpdateBuyerAddress(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must be a valid email address", decodeError(t, rec).Error.Details["email"])

	svc.AssertNumberOfCalls(t, "SetBuyerAddress", 1)
}

func TestGetBuyer_NotFound(t *testing.T) {
	e := newTestEcho()
	svc := new(MockSettingsService)
	h := NewSettingsHandlers(svc)

	svc.On("LookupBuyer", mock.Anything, "URP").Return(nil, repositories.ErrNotFound)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/buyers/URP", "", "gstin", "URP")
	require.NoError(t, h.GetBuyer(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchShortcut(t *testing.T) {
	e := newTestEcho()
	svc := new(MockShortcutService)
	h := NewShortcutHandlers(svc)

	svc.On("Dispatch", mock.Anything, shortcuts.KeyEvent{Key: "I", Meta: true}).
		Return(&services.ShortcutOutcome{Action: shortcuts.ActionShowInventory, Section: shortcuts.SectionInventory}, nil)
	svc.On("Dispatch", mock.Anything, shortcuts.KeyEvent{Key: "q", Ctrl: true}).
		Return(nil, shortcuts.ErrUnboundShortcut)

	c, rec := newJSONContext(e, http.MethodPost, "/v1/shortcuts", `{"combo":"Cmd+I"}`)
	require.NoError(t, h.Dispatch(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"section":"inventory"`)

	c, rec = newJSONContext(e, http.MethodPost, "/v1/shortcuts", `{"key":"q","ctrl":true}`)
	require.NoError(t, h.Dispatch(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/v1/shortcuts", `{"combo":"Hyper+P"}`)
	require.NoError(t, h.Dispatch(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	e := newTestEcho()
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	h := NewHealthHandlers(ok, ok, nil)
	c, rec := newJSONContext(e, http.MethodGet, "/health", "")
	require.NoError(t, h.HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"disabled"`)

	h = NewHealthHandlers(ok, down, ok)
	c, rec = newJSONContext(e, http.MethodGet, "/health", "")
	require.NoError(t, h.HealthCheck(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)

	c, rec = newJSONContext(e, http.MethodGet, "/health/ready", "")
	require.NoError(t, h.ReadinessCheck(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h = NewHealthHandlers(ok, ok, down)
	c, rec = newJSONContext(e, http.MethodGet, "/health/ready", "")
	require.NoError(t, h.ReadinessCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
