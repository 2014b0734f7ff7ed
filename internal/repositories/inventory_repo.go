package repositories

import (
	"context"
	"fmt"
	"strings"

	"invoiceflow/internal/models"

	"github.com/jackc/pgx/v5"
)

type InventoryRepository interface {
	GetAll(ctx context.Context) ([]*models.InventoryItem, error)
	GetByID(ctx context.Context, id string) (*models.InventoryItem, error)
	Upsert(ctx context.Context, item *models.InventoryItem) error
	UpsertBatch(ctx context.Context, items []*models.InventoryItem) error
	ReplaceAll(ctx context.Context, items []*models.InventoryItem) error
	UpdateStock(ctx context.Context, id string, stock int) error
	Delete(ctx context.Context, id string) error
	SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.InventoryItem, error)
	LowStock(ctx context.Context, threshold int) ([]*models.InventoryItem, error)
}

type inventoryRepo struct {
	db DBTX
}

func NewInventoryRepo(db DBTX) InventoryRepository {
	return &inventoryRepo{db: db}
}

const inventoryColumns = `id, category, name, buying_price, price, stock, description, purchase_date, hsn_sac, gst_rate, created_at, updated_at`

const upsertInventorySQL = `
	INSERT INTO inventory (id, category, name, buying_price, price, stock, description, purchase_date, hsn_sac, gst_rate, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE SET
		category = EXCLUDED.category, name = EXCLUDED.name, buying_price = EXCLUDED.buying_price,
		price = EXCLUDED.price, stock = EXCLUDED.stock, description = EXCLUDED.description,
		purchase_date = EXCLUDED.purchase_date, hsn_sac = EXCLUDED.hsn_sac, gst_rate = EXCLUDED.gst_rate,
		updated_at = NOW()
`

func scanInventory(row pgx.Row) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	err := row.Scan(&item.ID, &item.Category, &item.Name, &item.BuyingPrice, &item.Price, &item.Stock,
		&item.Description, &item.PurchaseDate, &item.HSNSAC, &item.GSTRate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *inventoryRepo) list(ctx context.Context, query string, args ...any) ([]*models.InventoryItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "query inventory")
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		item, err := scanInventory(rows)
		if err != nil {
			return nil, mapErr(err, "scan inventory")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *inventoryRepo) GetAll(ctx context.Context) ([]*models.InventoryItem, error) {
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory ORDER BY id`)
}

func (r *inventoryRepo) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	item, err := scanInventory(r.db.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "get inventory item")
	}
	return item, nil
}

func (r *inventoryRepo) Upsert(ctx context.Context, item *models.InventoryItem) error {
	_, err := r.db.Exec(ctx, upsertInventorySQL, item.ID, item.Category, item.Name, item.BuyingPrice, item.Price,
		item.Stock, item.Description, item.PurchaseDate, item.HSNSAC, item.GSTRate)
	return mapErr(err, "upsert inventory item")
}

// UpsertBatch writes all items in one transaction.
func (r *inventoryRepo) UpsertBatch(ctx context.Context, items []*models.InventoryItem) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		txRepo := &inventoryRepo{db: tx}
		for _, item := range items {
			if err := txRepo.Upsert(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceAll deletes the catalog and writes items, in one transaction.
func (r *inventoryRepo) ReplaceAll(ctx context.Context, items []*models.InventoryItem) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM inventory`); err != nil {
			return mapErr(err, "clear inventory")
		}
		txRepo := &inventoryRepo{db: tx}
		for _, item := range items {
			if err := txRepo.Upsert(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *inventoryRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	tag, err := r.db.Exec(ctx, `UPDATE inventory SET stock = $1, updated_at = NOW() WHERE id = $2`, stock, id)
	if err != nil {
		return mapErr(err, "update stock")
	}
	return requireRow(tag, fmt.Sprintf("update stock of %s", id))
}

func (r *inventoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete inventory item")
	}
	return requireRow(tag, fmt.Sprintf("delete inventory item %s", id))
}

// SearchByNamePrefix is an ordered range scan over name, case-insensitive.
func (r *inventoryRepo) SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.InventoryItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE lower(name) LIKE lower($1) || '%' ORDER BY name LIMIT $2`, escapeLike(prefix), limit)
}

func (r *inventoryRepo) LowStock(ctx context.Context, threshold int) ([]*models.InventoryItem, error) {
	return r.list(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE stock <= $1 ORDER BY stock, name`, threshold)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
