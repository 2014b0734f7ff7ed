package services

import (
	"context"
	"io"
	"time"

	"invoiceflow/internal/analytics"
	"invoiceflow/internal/enrichment"
	"invoiceflow/internal/models"
	"invoiceflow/internal/reports"
	"invoiceflow/internal/repositories"

	"github.com/stretchr/testify/mock"
)

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) GetAll(ctx context.Context) ([]*models.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Upsert(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpsertBatch(ctx context.Context, items []*models.InventoryItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockInventoryRepository) ReplaceAll(ctx context.Context, items []*models.InventoryItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockInventoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInventoryRepository) SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) LowStock(ctx context.Context, threshold int) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryItem), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.AppSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppSettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *models.AppSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsRepository) SetCounter(ctx context.Context, column repositories.CounterColumn, next int) error {
	args := m.Called(ctx, column, next)
	return args.Error(0)
}

func (m *MockSettingsRepository) SaveBuyerAddress(ctx context.Context, buyer models.BuyerAddress) error {
	args := m.Called(ctx, buyer)
	return args.Error(0)
}

type MockFinalizeRepository struct {
	mock.Mock
}

func (m *MockFinalizeRepository) FinalizeInvoice(ctx context.Context, inv *models.Invoice, records []*models.SalesRecord, nextCounter int) error {
	args := m.Called(ctx, inv, records, nextCounter)
	return args.Error(0)
}

func (m *MockFinalizeRepository) FinalizeDirectSale(ctx context.Context, entry *models.DirectSaleLogEntry, records []*models.SalesRecord, nextCounter int) error {
	args := m.Called(ctx, entry, records, nextCounter)
	return args.Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter *models.InvoiceListFilter) ([]*models.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdatePayment(ctx context.Context, number string, amountPaid float64, status models.InvoiceStatus, paidAt time.Time) error {
	args := m.Called(ctx, number, amountPaid, status, paidAt)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SetPDFObject(ctx context.Context, number, object string) error {
	args := m.Called(ctx, number, object)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetDisabled(ctx context.Context, email string, disabled bool) error {
	args := m.Called(ctx, email, disabled)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockBuyerProfileRepository struct {
	mock.Mock
}

func (m *MockBuyerProfileRepository) Get(ctx context.Context, gstin string) (*models.BuyerProfile, error) {
	args := m.Called(ctx, gstin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuyerProfile), args.Error(1)
}

func (m *MockBuyerProfileRepository) List(ctx context.Context) ([]*models.BuyerProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BuyerProfile), args.Error(1)
}

func (m *MockBuyerProfileRepository) Upsert(ctx context.Context, buyer models.BuyerAddress) error {
	args := m.Called(ctx, buyer)
	return args.Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
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
	args := m.Called(ctx)
	return args.Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, in enrichment.Input) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

type MockMailQueue struct {
	mock.Mock
}

func (m *MockMailQueue) EnqueuePasswordReset(ctx context.Context, email, resetURL string) error {
	args := m.Called(ctx, email, resetURL)
	return args.Error(0)
}

type MockPDFService struct {
	mock.Mock
}

func (m *MockPDFService) RenderInvoice(inv *models.Invoice) ([]byte, error) {
	args := m.Called(inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
