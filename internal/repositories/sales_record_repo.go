package repositories

import (
	"context"

	"invoiceflow/internal/models"
)

type SalesRecordRepository interface {
	Insert(ctx context.Context, rec *models.SalesRecord) error
	InsertBatch(ctx context.Context, recs []*models.SalesRecord) error
	GetAll(ctx context.Context) ([]models.SalesRecord, error)
	ListByDocument(ctx context.Context, documentNumber string) ([]models.SalesRecord, error)
}

type salesRecordRepo struct {
	db DBTX
}

func NewSalesRecordRepo(db DBTX) SalesRecordRepository {
	return &salesRecordRepo{db: db}
}

const salesRecordColumns = `id, document_number, sale_date, item_id, item_name, category, quantity_sold, selling_price_per_unit, buying_price_per_unit, total_profit, created_at`

// Insert appends a record; records are never updated.
func (r *salesRecordRepo) Insert(ctx context.Context, rec *models.SalesRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sales_records (id, document_number, sale_date, item_id, item_name, category, quantity_sold, selling_price_per_unit, buying_price_per_unit, total_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`, rec.ID, rec.DocumentNumber, rec.SaleDate, rec.ItemID, rec.ItemName, rec.Category, rec.QuantitySold,
		rec.SellingPricePerUnit, rec.BuyingPricePerUnit, rec.TotalProfit)
	return mapErr(err, "insert sales record")
}

func (r *salesRecordRepo) InsertBatch(ctx context.Context, recs []*models.SalesRecord) error {
	for _, rec := range recs {
		if err := r.Insert(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *salesRecordRepo) GetAll(ctx context.Context) ([]models.SalesRecord, error) {
	return r.query(ctx, `SELECT `+salesRecordColumns+` FROM sales_records ORDER BY sale_date, created_at`)
}

func (r *salesRecordRepo) ListByDocument(ctx context.Context, documentNumber string) ([]models.SalesRecord, error) {
	return r.query(ctx, `SELECT `+salesRecordColumns+` FROM sales_records WHERE document_number = $1 ORDER BY created_at`, documentNumber)
}

func (r *salesRecordRepo) query(ctx context.Context, sql string, args ...any) ([]models.SalesRecord, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err, "query sales records")
	}
	defer rows.Close()

	var out []models.SalesRecord
	for rows.Next() {
		var rec models.SalesRecord
		if err := rows.Scan(&rec.ID, &rec.DocumentNumber, &rec.SaleDate, &rec.ItemID, &rec.ItemName, &rec.Category,
			&rec.QuantitySold, &rec.SellingPricePerUnit, &rec.BuyingPricePerUnit, &rec.TotalProfit, &rec.CreatedAt); err != nil {
			return nil, mapErr(err, "scan sales record")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
