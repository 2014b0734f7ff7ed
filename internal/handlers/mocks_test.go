package handlers

import (
	"context"
	"time"

	"invoiceflow/internal/analytics"
	"invoiceflow/internal/enrichment"
	"invoiceflow/internal/models"
	"invoiceflow/internal/reports"
	"invoiceflow/internal/services"
	"invoiceflow/internal/shortcuts"
	"invoiceflow/internal/workspace"

	"github.com/stretchr/testify/mock"
)

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) List(ctx context.Context, filter *models.InventorySearchFilter) []models.InventoryItemView {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.InventoryItemView)
}

func (m *MockInventoryService) Get(ctx context.Context, id string) (*models.InventoryItemView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItemView), args.Error(1)
}

func (m *MockInventoryService) Create(ctx context.Context, input services.ItemInput) (*services.ItemResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemResult), args.Error(1)
}

func (m *MockInventoryService) Update(ctx context.Context, id string, input services.ItemInput) (*services.ItemResult, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemResult), args.Error(1)
}

func (m *MockInventoryService) AdjustStock(ctx context.Context, id string, delta int) (*services.ItemResult, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemResult), args.Error(1)
}

func (m *MockInventoryService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInventoryService) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryService) LowStockAlerts(ctx context.Context) ([]*models.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryService) Describe(ctx context.Context, in enrichment.Input) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) Pending(ctx context.Context, kind workspace.Kind) (*services.PendingView, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PendingView), args.Error(1)
}

func (m *MockSaleService) AddLine(ctx context.Context, kind workspace.Kind, itemID string, qty int) (*workspace.Result, error) {
	args := m.Called(ctx, kind, itemID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workspace.Result), args.Error(1)
}

func (m *MockSaleService) RemoveLine(ctx context.Context, kind workspace.Kind, lineID string) (*workspace.Result, error) {
	args := m.Called(ctx, kind, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workspace.Result), args.Error(1)
}

func (m *MockSaleService) Clear(ctx context.Context, kind workspace.Kind) (*workspace.Result, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workspace.Result), args.Error(1)
}

func (m *MockSaleService) SetBuyer(ctx context.Context, buyer models.BuyerAddress) error {
	return m.Called(ctx, buyer).Error(0)
}

func (m *MockSaleService) SetSaleDate(ctx context.Context, date string) error {
	return m.Called(ctx, date).Error(0)
}

func (m *MockSaleService) Finalize(ctx context.Context, kind workspace.Kind) (*services.FinalizeResult, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FinalizeResult), args.Error(1)
}

func (m *MockSaleService) NewInvoice(ctx context.Context) (*services.PendingView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PendingView), args.Error(1)
}

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) List(ctx context.Context, filter *models.InvoiceListFilter) ([]*models.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, number string) (*models.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) RecordPayment(ctx context.Context, number string, amountPaid float64, paidAt *time.Time) (*models.Invoice, error) {
	args := m.Called(ctx, number, amountPaid, paidAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GeneratePDF(ctx context.Context, inv *models.Invoice) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceService) PDFURL(ctx context.Context, number string) (string, error) {
	args := m.Called(ctx, number)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceService) ListDirectSales(ctx context.Context, limit, offset int) ([]*models.DirectSaleLogEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DirectSaleLogEntry), args.Error(1)
}

func (m *MockInvoiceService) GetDirectSale(ctx context.Context, number string) (*models.DirectSaleLogEntry, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DirectSaleLogEntry), args.Error(1)
}

type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) Export(ctx context.Context) (*models.BackupDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupDocument), args.Error(1)
}

func (m *MockBackupService) ParseBackup(data []byte) (*models.BackupDocument, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackupDocument), args.Error(1)
}

func (m *MockBackupService) Import(ctx context.Context, doc *models.BackupDocument) (*models.ImportResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportResult), args.Error(1)
}

func (m *MockBackupService) ScheduledBackup(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) LoginOAuth(ctx context.Context, idToken string) (*models.TokenResponse, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*services.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (*services.SettingsView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SettingsView), args.Error(1)
}

func (m *MockSettingsService) SetBuyerAddress(ctx context.Context, buyer models.BuyerAddress) error {
	return m.Called(ctx, buyer).Error(0)
}

func (m *MockSettingsService) LookupBuyer(ctx context.Context, gstin string) (*models.BuyerProfile, error) {
	args := m.Called(ctx, gstin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuyerProfile), args.Error(1)
}

func (m *MockSettingsService) ListBuyers(ctx context.Context) ([]*models.BuyerProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BuyerProfile), args.Error(1)
}

type MockShortcutService struct {
	mock.Mock
}

func (m *MockShortcutService) Dispatch(ctx context.Context, ev shortcuts.KeyEvent) (*services.ShortcutOutcome, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ShortcutOutcome), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ProfitLoss(ctx context.Context, q reports.Query) (*reports.Report, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.Report), args.Error(1)
}

func (m *MockReportService) InventoryOverview(ctx context.Context) (*analytics.InventoryOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.InventoryOverview), args.Error(1)
}

func (m *MockReportService) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
