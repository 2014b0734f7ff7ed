package repositories

import (
	"context"

	"invoiceflow/internal/models"

	"github.com/jackc/pgx/v5"
)

// FinalizeRepository writes a finalized document and everything that goes
// with it in a single transaction.
type FinalizeRepository interface {
	FinalizeInvoice(ctx context.Context, inv *models.Invoice, records []*models.SalesRecord, nextCounter int) error
	FinalizeDirectSale(ctx context.Context, entry *models.DirectSaleLogEntry, records []*models.SalesRecord, nextCounter int) error
}

type finalizeRepo struct {
	db DBTX
}

func NewFinalizeRepo(db DBTX) FinalizeRepository {
	return &finalizeRepo{db: db}
}

// FinalizeInvoice stores the invoice, its sales records, the buyer profile
// (only for a real GSTIN) and the next invoice counter.
func (r *finalizeRepo) FinalizeInvoice(ctx context.Context, inv *models.Invoice, records []*models.SalesRecord, nextCounter int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := NewInvoiceRepo(tx).Create(ctx, inv); err != nil {
			return err
		}
		if err := NewSalesRecordRepo(tx).InsertBatch(ctx, records); err != nil {
			return err
		}
		if err := NewBuyerProfileRepo(tx).Upsert(ctx, inv.Buyer); err != nil {
			return err
		}
		return NewSettingsRepo(tx).SetCounter(ctx, InvoiceCounterColumn, nextCounter)
	})
}

// FinalizeDirectSale stores the log entry, its sales records and the next DS counter.
func (r *finalizeRepo) FinalizeDirectSale(ctx context.Context, entry *models.DirectSaleLogEntry, records []*models.SalesRecord, nextCounter int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := NewDirectSaleRepo(tx).Create(ctx, entry); err != nil {
			return err
		}
		if err := NewSalesRecordRepo(tx).InsertBatch(ctx, records); err != nil {
			return err
		}
		return NewSettingsRepo(tx).SetCounter(ctx, DirectSaleCounterColumn, nextCounter)
	})
}
