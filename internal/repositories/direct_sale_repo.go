package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"invoiceflow/internal/models"

	"github.com/jackc/pgx/v5"
)

type DirectSaleRepository interface {
	Create(ctx context.Context, entry *models.DirectSaleLogEntry) error
	GetByNumber(ctx context.Context, number string) (*models.DirectSaleLogEntry, error)
	List(ctx context.Context, limit, offset int) ([]*models.DirectSaleLogEntry, error)
}

type directSaleRepo struct {
	db DBTX
}

func NewDirectSaleRepo(db DBTX) DirectSaleRepository {
	return &directSaleRepo{db: db}
}

const directSaleColumns = `ds_number, sale_date, items, sub_total, tax_amount, grand_total, total_profit, created_at`

func scanDirectSale(row pgx.Row) (*models.DirectSaleLogEntry, error) {
	e := &models.DirectSaleLogEntry{}
	var items []byte
	if err := row.Scan(&e.DSNumber, &e.SaleDate, &items, &e.SubTotal, &e.TaxAmount, &e.GrandTotal, &e.TotalProfit, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &e.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return e, nil
}

func (r *directSaleRepo) Create(ctx context.Context, e *models.DirectSaleLogEntry) error {
	items, err := json.Marshal(e.Items)
	if err != nil {
		return mapErr(err, "encode items")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO direct_sales_log (ds_number, sale_date, items, sub_total, tax_amount, grand_total, total_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, e.DSNumber, e.SaleDate, items, e.SubTotal, e.TaxAmount, e.GrandTotal, e.TotalProfit)
	return mapErr(err, "create direct sale "+e.DSNumber)
}

func (r *directSaleRepo) GetByNumber(ctx context.Context, number string) (*models.DirectSaleLogEntry, error) {
	e, err := scanDirectSale(r.db.QueryRow(ctx, `SELECT `+directSaleColumns+` FROM direct_sales_log WHERE ds_number = $1`, number))
	if err != nil {
		return nil, mapErr(err, "get direct sale "+number)
	}
	return e, nil
}

// List returns entries newest first, by sale date then number.
func (r *directSaleRepo) List(ctx context.Context, limit, offset int) ([]*models.DirectSaleLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `SELECT `+directSaleColumns+` FROM direct_sales_log ORDER BY sale_date DESC, ds_number DESC LIMIT $1 OFFSET $2`, limit, max(offset, 0))
	if err != nil {
		return nil, mapErr(err, "list direct sales")
	}
	defer rows.Close()

	var out []*models.DirectSaleLogEntry
	for rows.Next() {
		e, err := scanDirectSale(rows)
		if err != nil {
			return nil, mapErr(err, "scan direct sale")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
