package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"
)

// InvoiceService reads finalized documents and manages invoice payments and PDFs.
type InvoiceService interface {
	List(ctx context.Context, filter *models.InvoiceListFilter) ([]*models.Invoice, error)
	Get(ctx context.Context, number string) (*models.Invoice, error)
	RecordPayment(ctx context.Context, number string, amountPaid float64, paidAt *time.Time) (*models.Invoice, error)
	GeneratePDF(ctx context.Context, inv *models.Invoice) (string, error)
	PDFURL(ctx context.Context, number string) (string, error)

	ListDirectSales(ctx context.Context, limit, offset int) ([]*models.DirectSaleLogEntry, error)
	GetDirectSale(ctx context.Context, number string) (*models.DirectSaleLogEntry, error)
}

type invoiceService struct {
	invoiceRepo    repositories.InvoiceRepository
	directSaleRepo repositories.DirectSaleRepository
	pdfSvc         PDFService
	minioSvc       MinioService
	bucket         string
	now            func() time.Time
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, directSaleRepo repositories.DirectSaleRepository, pdfSvc PDFService, minioSvc MinioService, bucket string) InvoiceService {
	return &invoiceService{
		invoiceRepo:    invoiceRepo,
		directSaleRepo: directSaleRepo,
		pdfSvc:         pdfSvc,
		minioSvc:       minioSvc,
		bucket:         bucket,
		now:            time.Now,
	}
}

func (s *invoiceService) List(ctx context.Context, filter *models.InvoiceListFilter) ([]*models.Invoice, error) {
	return s.invoiceRepo.List(ctx, filter)
}

func (s *invoiceService) Get(ctx context.Context, number string) (*models.Invoice, error) {
	return s.invoiceRepo.GetByNumber(ctx, number)
}

// RecordPayment sets the cumulative amount paid and derives the status.
func (s *invoiceService) RecordPayment(ctx context.Context, number string, amountPaid float64, paidAt *time.Time) (*models.Invoice, error) {
	inv, err := s.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if amountPaid < 0 || amountPaid > inv.GrandTotal+0.005 {
		return nil, ErrInvalidPayment
	}

	at := s.now()
	if paidAt != nil {
		at = *paidAt
	}
	status := models.PaymentStatusFor(amountPaid, inv.GrandTotal)
	if err := s.invoiceRepo.UpdatePayment(ctx, number, amountPaid, status, at); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	inv.AmountPaid = amountPaid
	inv.Status = status
	inv.LatestPaymentDate = &at
	return inv, nil
}

// GeneratePDF renders the invoice, stores it and returns a download link.
func (s *invoiceService) GeneratePDF(ctx context.Context, inv *models.Invoice) (string, error) {
	data, err := s.pdfSvc.RenderInvoice(inv)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("generated PDF is empty")
	}

	object := inv.InvoiceNumber + ".pdf"
	if err := s.minioSvc.Upload(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		return "", fmt.Errorf("upload PDF: %w", err)
	}
	if err := s.invoiceRepo.SetPDFObject(ctx, inv.InvoiceNumber, object); err != nil {
		log := logger.WithComponent("invoices")
		log.Warn().Err(err).Str("invoice", inv.InvoiceNumber).Msg("could not record PDF object")
	}
	inv.PDFObject = object

	return s.minioSvc.GetPresignedURL(ctx, s.bucket, object, PresignedURLExpiry)
}

// PDFURL presigns the stored PDF, rendering it first when missing.
func (s *invoiceService) PDFURL(ctx context.Context, number string) (string, error) {
	inv, err := s.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return "", err
	}
	if inv.PDFObject == "" {
		return s.GeneratePDF(ctx, inv)
	}
	return s.minioSvc.GetPresignedURL(ctx, s.bucket, inv.PDFObject, PresignedURLExpiry)
}

func (s *invoiceService) ListDirectSales(ctx context.Context, limit, offset int) ([]*models.DirectSaleLogEntry, error) {
	return s.directSaleRepo.List(ctx, limit, offset)
}

func (s *invoiceService) GetDirectSale(ctx context.Context, number string) (*models.DirectSaleLogEntry, error) {
	return s.directSaleRepo.GetByNumber(ctx, number)
}
