package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"invoiceflow/internal/models"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Save(ctx context.Context, settings *models.AppSettings) error
	SetCounter(ctx context.Context, column CounterColumn, next int) error
	SaveBuyerAddress(ctx context.Context, buyer models.BuyerAddress) error
}

// CounterColumn names one of the document counters.
type CounterColumn string

const (
	InvoiceCounterColumn    CounterColumn = "invoice_counter"
	DirectSaleCounterColumn CounterColumn = "direct_sale_counter"
)

type settingsRepo struct {
	db DBTX
}

func NewSettingsRepo(db DBTX) SettingsRepository {
	return &settingsRepo{db: db}
}

// Get returns the singleton settings, or defaults when the row does not exist yet.
func (r *settingsRepo) Get(ctx context.Context) (*models.AppSettings, error) {
	var (
		s     models.AppSettings
		buyer []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT invoice_counter, direct_sale_counter, buyer_address
		FROM settings WHERE id = $1
	`, models.SettingsDocumentID).Scan(&s.InvoiceCounter, &s.DirectSaleCounter, &buyer)
	if err != nil {
		err = mapErr(err, "get settings")
		if errors.Is(err, ErrNotFound) {
			return models.DefaultSettings(), nil
		}
		return nil, err
	}
	if len(buyer) > 0 {
		if err := json.Unmarshal(buyer, &s.BuyerAddress); err != nil {
			return nil, mapErr(err, "decode settings buyer address")
		}
	}
	return &s, nil
}

func (r *settingsRepo) Save(ctx context.Context, s *models.AppSettings) error {
	buyer, err := json.Marshal(s.BuyerAddress)
	if err != nil {
		return mapErr(err, "encode buyer address")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO settings (id, invoice_counter, direct_sale_counter, buyer_address, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			invoice_counter = EXCLUDED.invoice_counter,
			direct_sale_counter = EXCLUDED.direct_sale_counter,
			buyer_address = EXCLUDED.buyer_address,
			updated_at = NOW()
	`, models.SettingsDocumentID, s.InvoiceCounter, s.DirectSaleCounter, buyer)
	return mapErr(err, "save settings")
}

// SetCounter merges one counter into the settings row, creating it when missing.
func (r *settingsRepo) SetCounter(ctx context.Context, column CounterColumn, next int) error {
	var query string
	switch column {
	case InvoiceCounterColumn:
		query = `
		INSERT INTO settings (id, invoice_counter, direct_sale_counter, buyer_address, updated_at)
		VALUES ($1, $2, 1, '{}', NOW())
		ON CONFLICT (id) DO UPDATE SET invoice_counter = EXCLUDED.invoice_counter, updated_at = NOW()
	`
	case DirectSaleCounterColumn:
		query = `
		INSERT INTO settings (id, invoice_counter, direct_sale_counter, buyer_address, updated_at)
		VALUES ($1, 1, $2, '{}', NOW())
		ON CONFLICT (id) DO UPDATE SET direct_sale_counter = EXCLUDED.direct_sale_counter, updated_at = NOW()
	`
	default:
		return errors.New("unknown counter column " + string(column))
	}
	_, err := r.db.Exec(ctx, query, models.SettingsDocumentID, next)
	return mapErr(err, "set "+string(column))
}

func (r *settingsRepo) SaveBuyerAddress(ctx context.Context, buyer models.BuyerAddress) error {
	raw, err := json.Marshal(buyer)
	if err != nil {
		return mapErr(err, "encode buyer address")
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO settings (id, invoice_counter, direct_sale_counter, buyer_address, updated_at)
		VALUES ($1, 1, 1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET buyer_address = EXCLUDED.buyer_address, updated_at = NOW()
	`, models.SettingsDocumentID, raw)
	return mapErr(err, "save buyer address")
}
