package repositories

import (
	"context"

	"invoiceflow/internal/models"

	"github.com/jackc/pgx/v5"
)

type BuyerProfileRepository interface {
	Get(ctx context.Context, gstin string) (*models.BuyerProfile, error)
	List(ctx context.Context) ([]*models.BuyerProfile, error)
	Upsert(ctx context.Context, buyer models.BuyerAddress) error
}

type buyerProfileRepo struct {
	db DBTX
}

func NewBuyerProfileRepo(db DBTX) BuyerProfileRepository {
	return &buyerProfileRepo{db: db}
}

const buyerColumns = `gstin, name, address_line1, address_line2, state_name_and_code, contact, email, updated_at`

func scanBuyer(row pgx.Row) (*models.BuyerProfile, error) {
	p := &models.BuyerProfile{}
	err := row.Scan(&p.GSTIN, &p.Name, &p.AddressLine1, &p.AddressLine2, &p.StateNameAndCode, &p.Contact, &p.Email, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get looks a profile up by GSTIN, normalized the same way it was stored.
func (r *buyerProfileRepo) Get(ctx context.Context, gstin string) (*models.BuyerProfile, error) {
	p, err := scanBuyer(r.db.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyer_profiles WHERE gstin = $1`, models.NormalizeGSTIN(gstin)))
	if err != nil {
		return nil, mapErr(err, "get buyer profile")
	}
	return p, nil
}

func (r *buyerProfileRepo) List(ctx context.Context) ([]*models.BuyerProfile, error) {
	rows, err := r.db.Query(ctx, `SELECT `+buyerColumns+` FROM buyer_profiles ORDER BY name`)
	if err != nil {
		return nil, mapErr(err, "list buyer profiles")
	}
	defer rows.Close()

	var out []*models.BuyerProfile
	for rows.Next() {
		p, err := scanBuyer(rows)
		if err != nil {
			return nil, mapErr(err, "scan buyer profile")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert saves a buyer under its normalized GSTIN. Buyers without a real
// GSTIN are skipped.
func (r *buyerProfileRepo) Upsert(ctx context.Context, b models.BuyerAddress) error {
	if !b.HasRealGSTIN() {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO buyer_profiles (gstin, name, address_line1, address_line2, state_name_and_code, contact, email, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (gstin) DO UPDATE SET
			name = EXCLUDED.name, address_line1 = EXCLUDED.address_line1, address_line2 = EXCLUDED.address_line2,
			state_name_and_code = EXCLUDED.state_name_and_code, contact = EXCLUDED.contact, email = EXCLUDED.email,
			updated_at = NOW()
	`, models.NormalizeGSTIN(b.GSTIN), b.Name, b.AddressLine1, b.AddressLine2, b.StateNameAndCode, b.Contact, b.Email)
	return mapErr(err, "upsert buyer profile")
}
