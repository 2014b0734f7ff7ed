package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"invoiceflow/internal/models"

	"github.com/jackc/pgx/v5"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByNumber(ctx context.Context, number string) (*models.Invoice, error)
	List(ctx context.Context, filter *models.InvoiceListFilter) ([]*models.Invoice, error)
	UpdatePayment(ctx context.Context, number string, amountPaid float64, status models.InvoiceStatus, paidAt time.Time) error
	SetPDFObject(ctx context.Context, number, object string) error
}

type invoiceRepo struct {
	db DBTX
}

func NewInvoiceRepo(db DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `invoice_number, invoice_date, buyer, items, sub_total, cgst, sgst, tax_amount, grand_total, amount_paid, status, latest_payment_date, pdf_object, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var (
		buyer, items []byte
		status       string
	)
	err := row.Scan(&inv.InvoiceNumber, &inv.InvoiceDate, &buyer, &items, &inv.SubTotal, &inv.CGST, &inv.SGST,
		&inv.TaxAmount, &inv.GrandTotal, &inv.AmountPaid, &status, &inv.LatestPaymentDate, &inv.PDFObject,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvoiceStatus(status)
	if err := json.Unmarshal(buyer, &inv.Buyer); err != nil {
		return nil, fmt.Errorf("decode buyer: %w", err)
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return inv, nil
}

// Create inserts a finalized invoice. A second insert of the same number fails with ErrDuplicate.
func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	buyer, err := json.Marshal(inv.Buyer)
	if err != nil {
		return mapErr(err, "encode buyer")
	}
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return mapErr(err, "encode items")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO invoices (invoice_number, invoice_date, buyer, items, sub_total, cgst, sgst, tax_amount, grand_total, amount_paid, status, latest_payment_date, pdf_object, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`, inv.InvoiceNumber, inv.InvoiceDate, buyer, items, inv.SubTotal, inv.CGST, inv.SGST, inv.TaxAmount,
		inv.GrandTotal, inv.AmountPaid, string(inv.Status), inv.LatestPaymentDate, inv.PDFObject)
	return mapErr(err, "create invoice "+inv.InvoiceNumber)
}

func (r *invoiceRepo) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = $1`, number))
	if err != nil {
		return nil, mapErr(err, "get invoice "+number)
	}
	return inv, nil
}

// List returns invoices newest first, by date then number.
func (r *invoiceRepo) List(ctx context.Context, filter *models.InvoiceListFilter) ([]*models.Invoice, error) {
	if filter == nil {
		filter = &models.InvoiceListFilter{}
	}
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("invoice_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("invoice_date <= $%d", len(args)))
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit, max(filter.Offset, 0))
	query += fmt.Sprintf(` ORDER BY invoice_date DESC, invoice_number DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "list invoices")
	}
	defer rows.Close()

	var out []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, mapErr(err, "scan invoice")
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// UpdatePayment is the only mutation allowed on a finalized invoice.
func (r *invoiceRepo) UpdatePayment(ctx context.Context, number string, amountPaid float64, status models.InvoiceStatus, paidAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET amount_paid = $1, status = $2, latest_payment_date = $3, updated_at = NOW()
		WHERE invoice_number = $4
	`, amountPaid, string(status), paidAt, number)
	if err != nil {
		return mapErr(err, "update invoice payment")
	}
	return requireRow(tag, "update invoice payment "+number)
}

func (r *invoiceRepo) SetPDFObject(ctx context.Context, number, object string) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET pdf_object = $1, updated_at = NOW() WHERE invoice_number = $2`, object, number)
	if err != nil {
		return mapErr(err, "set invoice pdf")
	}
	return requireRow(tag, "set invoice pdf "+number)
}
