package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/veloxpay/cartrecon/internal/domain/tax"
)

// ProfileRepository loads and maintains gateway tax profiles.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a ProfileRepository that uses the given pool.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// LoadAll returns every configured gateway profile, ordered by gateway code.
func (r *ProfileRepository) LoadAll(ctx context.Context) ([]tax.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT gateway, tolerance, legal_rates FROM gateway_tax_profiles ORDER BY gateway`)
	if err != nil {
		return nil, errors.Wrap(err, "query gateway tax profiles")
	}
	defer rows.Close()

	var profiles []tax.Profile
	for rows.Next() {
		var p tax.Profile
		if err := rows.Scan(&p.Gateway, &p.Tolerance, &p.LegalRates); err != nil {
			return nil, errors.Wrap(err, "scan gateway tax profile")
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate gateway tax profiles")
	}

	return profiles, nil
}

// Upsert inserts or replaces one gateway profile.
func (r *ProfileRepository) Upsert(ctx context.Context, p tax.Profile) error {
	rates := make([]decimal.Decimal, len(p.LegalRates))
	copy(rates, p.LegalRates)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO gateway_tax_profiles (gateway, tolerance, legal_rates)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (gateway) DO UPDATE
		 SET tolerance = EXCLUDED.tolerance, legal_rates = EXCLUDED.legal_rates`,
		p.Gateway, p.Tolerance, rates,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert gateway tax profile %s", p.Gateway)
	}
	return nil
}
