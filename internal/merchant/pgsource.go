package merchant

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSource is the authoritative Source backed by the merchants table.
type PgSource struct {
	pool *pgxpool.Pool
}

var _ Source = (*PgSource)(nil)

func NewPgSource(pool *pgxpool.Pool) *PgSource {
	return &PgSource{pool: pool}
}

func (s *PgSource) GetByKey(ctx context.Context, merchantKey string) (Merchant, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT merchant_key, secret, active, supported_currencies, coalesce(last_seen, now())
		FROM merchants WHERE merchant_key = $1`, merchantKey)

	var m Merchant
	if err := row.Scan(&m.MerchantKey, &m.Secret, &m.Active, &m.SupportedCurrencies, &m.LastSeen); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Merchant{}, false, nil
		}
		return Merchant{}, false, err
	}
	return m, true, nil
}

func (s *PgSource) Touch(ctx context.Context, merchantKey string) error {
	_, err := s.pool.Exec(ctx, `UPDATE merchants SET last_seen = $1 WHERE merchant_key = $2`, time.Now(), merchantKey)
	return err
}
