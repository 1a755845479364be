package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veloxpay/cartrecon/internal/domain/money"
)

// CurrencyRepository loads and maintains the currency exponent table.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository returns a CurrencyRepository that uses the given pool.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

// LoadTable returns the full currency exponent table.
func (r *CurrencyRepository) LoadTable(ctx context.Context) (money.Table, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, exponent FROM currencies`)
	if err != nil {
		return money.Table{}, errors.Wrap(err, "query currencies")
	}
	defer rows.Close()

	entries := make(map[string]int32)
	for rows.Next() {
		var (
			code     string
			exponent int32
		)
		if err := rows.Scan(&code, &exponent); err != nil {
			return money.Table{}, errors.Wrap(err, "scan currency")
		}
		entries[code] = exponent
	}
	if err := rows.Err(); err != nil {
		return money.Table{}, errors.Wrap(err, "iterate currencies")
	}

	return money.NewTable(entries), nil
}

// Upsert inserts or replaces one currency's exponent.
func (r *CurrencyRepository) Upsert(ctx context.Context, code string, exponent int32) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO currencies (code, exponent) VALUES ($1, $2)
		 ON CONFLICT (code) DO UPDATE SET exponent = EXCLUDED.exponent`,
		code, exponent,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert currency %s", code)
	}
	return nil
}
