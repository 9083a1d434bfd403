// Package pgstore is the Postgres-backed payment.Store: compare-and-swap on
// Payment.Version via a conditional UPDATE, grounded on the ancestor's
// pkg/store pgxpool connection pattern.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	gwerrors "payment-gateway/internal/errors"
	"payment-gateway/internal/payment"
)

const defaultMaxConns = 20

// Store is a payment.Store backed by a Postgres payments/status_history
// schema (see migrations/).
type Store struct {
	pool *pgxpool.Pool
}

var _ payment.Store = (*Store)(nil)

// Connect opens a pgxpool against dsn, sized per the ancestor's
// pkg/store/sql.go conventions.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: parse dsn: %w", err)
	}
	cfg.MaxConns = defaultMaxConns
	cfg.MinConns = 5
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) GetByID(ctx context.Context, paymentID string) (payment.Payment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT payment_id, merchant_key, order_id, status, attempt_count, created_at,
		       updated_at, expires_at, coalesce(last_error_code,''), coalesce(last_error_message,''),
		       coalesce(bank_ref,''), coalesce(card_fingerprint,''), version, intent_blob
		FROM payments WHERE payment_id = $1`, paymentID)

	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return payment.Payment{}, gwerrors.NotFound("payment", paymentID)
	}
	if err != nil {
		return payment.Payment{}, gwerrors.Internal("pgstore: get by id", err)
	}
	return p, nil
}

func (s *Store) GetByOrderID(ctx context.Context, merchantKey, orderID string) (payment.Payment, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT payment_id, merchant_key, order_id, status, attempt_count, created_at,
		       updated_at, expires_at, coalesce(last_error_code,''), coalesce(last_error_message,''),
		       coalesce(bank_ref,''), coalesce(card_fingerprint,''), version, intent_blob
		FROM payments
		WHERE merchant_key = $1 AND order_id = $2
		  AND status NOT IN ('DEADLINE_EXPIRED','CANCELLED','REJECTED')
		ORDER BY created_at DESC LIMIT 1`, merchantKey, orderID)

	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return payment.Payment{}, false, nil
	}
	if err != nil {
		return payment.Payment{}, false, gwerrors.Internal("pgstore: get by order id", err)
	}
	return p, true, nil
}

func (s *Store) CreateIfAbsent(ctx context.Context, p payment.Payment) error {
	blob, err := json.Marshal(p.Intent)
	if err != nil {
		return gwerrors.Internal("pgstore: marshal intent", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO payments (payment_id, merchant_key, order_id, status, amount, currency,
		                       attempt_count, created_at, updated_at, expires_at, version, intent_blob)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.PaymentID, p.Intent.MerchantKey, p.Intent.OrderID, p.Status, p.Intent.Amount, p.Intent.Currency,
		p.AttemptCount, p.CreatedAt, p.UpdatedAt, p.ExpiresAt, p.Version, blob)
	if err != nil {
		if isUniqueViolation(err) {
			existing, _, lookupErr := s.GetByOrderID(ctx, p.Intent.MerchantKey, p.Intent.OrderID)
			if lookupErr == nil {
				return gwerrors.DuplicateOrder(p.Intent.MerchantKey, p.Intent.OrderID).WithDetail("payment_id", existing.PaymentID)
			}
			return gwerrors.DuplicateOrder(p.Intent.MerchantKey, p.Intent.OrderID)
		}
		return gwerrors.Internal("pgstore: create payment", err)
	}
	return nil
}

func (s *Store) UpdateConditional(ctx context.Context, p payment.Payment, expectedVersion int64, entry payment.HistoryEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return gwerrors.Internal("pgstore: begin tx", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE payments
		SET status=$1, attempt_count=$2, updated_at=$3, expires_at=$4,
		    last_error_code=nullif($5,''), last_error_message=nullif($6,''),
		    bank_ref=nullif($7,''), card_fingerprint=nullif($8,''), version=$9
		WHERE payment_id=$10 AND version=$11`,
		p.Status, p.AttemptCount, p.UpdatedAt, p.ExpiresAt, p.LastErrorCode, p.LastErrorMessage,
		p.BankRef, p.CardFingerprint, expectedVersion+1, p.PaymentID, expectedVersion)
	if err != nil {
		return gwerrors.Internal("pgstore: update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return gwerrors.ConcurrentModification(p.PaymentID)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO status_history (payment_id, from_status, to_status, at, actor, error_code, message, is_rollback, rollback_from)
		VALUES ($1,$2,$3,$4,nullif($5,''),nullif($6,''),nullif($7,''),$8,nullif($9,0))`,
		entry.PaymentID, entry.FromStatus, entry.ToStatus, entry.At, entry.Actor, entry.ErrorCode, entry.Message,
		entry.IsRollback, entry.RollbackFrom); err != nil {
		return gwerrors.Internal("pgstore: append history", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return gwerrors.Internal("pgstore: commit tx", err)
	}
	return nil
}

func (s *Store) AppendHistory(ctx context.Context, entry payment.HistoryEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO status_history (payment_id, from_status, to_status, at, actor, error_code, message, is_rollback, rollback_from)
		VALUES ($1,$2,$3,$4,nullif($5,''),nullif($6,''),nullif($7,''),$8,nullif($9,0))`,
		entry.PaymentID, entry.FromStatus, entry.ToStatus, entry.At, entry.Actor, entry.ErrorCode, entry.Message,
		entry.IsRollback, entry.RollbackFrom)
	if err != nil {
		return gwerrors.Internal("pgstore: append history", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, paymentID string) ([]payment.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, payment_id, from_status, to_status, at, coalesce(actor,''), coalesce(error_code,''),
		       coalesce(message,''), is_rollback, coalesce(rollback_from,0)
		FROM status_history WHERE payment_id=$1 ORDER BY at ASC`, paymentID)
	if err != nil {
		return nil, gwerrors.Internal("pgstore: history", err)
	}
	defer rows.Close()

	var out []payment.HistoryEntry
	for rows.Next() {
		var e payment.HistoryEntry
		if err := rows.Scan(&e.ID, &e.PaymentID, &e.FromStatus, &e.ToStatus, &e.At, &e.Actor, &e.ErrorCode,
			&e.Message, &e.IsRollback, &e.RollbackFrom); err != nil {
			return nil, gwerrors.Internal("pgstore: scan history", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListByOrderID(ctx context.Context, merchantKey, orderID string) ([]payment.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payment_id, merchant_key, order_id, status, attempt_count, created_at,
		       updated_at, expires_at, coalesce(last_error_code,''), coalesce(last_error_message,''),
		       coalesce(bank_ref,''), coalesce(card_fingerprint,''), version, intent_blob
		FROM payments WHERE merchant_key=$1 AND order_id=$2 ORDER BY created_at ASC`, merchantKey, orderID)
	if err != nil {
		return nil, gwerrors.Internal("pgstore: list by order id", err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (s *Store) FindExpiredSince(ctx context.Context, cutoff time.Time, limit int) ([]payment.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payment_id, merchant_key, order_id, status, attempt_count, created_at,
		       updated_at, expires_at, coalesce(last_error_code,''), coalesce(last_error_message,''),
		       coalesce(bank_ref,''), coalesce(card_fingerprint,''), version, intent_blob
		FROM payments
		WHERE expires_at < $1
		  AND status NOT IN ('CANCELLED','DEADLINE_EXPIRED','REJECTED','REVERSED','PARTIAL_REVERSED','REFUNDED','PARTIAL_REFUNDED')
		ORDER BY expires_at ASC LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, gwerrors.Internal("pgstore: find expired", err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (s *Store) ListByStatus(ctx context.Context, status payment.Status, limit int) ([]payment.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payment_id, merchant_key, order_id, status, attempt_count, created_at,
		       updated_at, expires_at, coalesce(last_error_code,''), coalesce(last_error_message,''),
		       coalesce(bank_ref,''), coalesce(card_fingerprint,''), version, intent_blob
		FROM payments WHERE status=$1 ORDER BY created_at ASC LIMIT $2`, status, limit)
	if err != nil {
		return nil, gwerrors.Internal("pgstore: list by status", err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (payment.Payment, error) {
	var p payment.Payment
	var blob []byte
	if err := row.Scan(&p.PaymentID, &p.Intent.MerchantKey, &p.Intent.OrderID, &p.Status, &p.AttemptCount,
		&p.CreatedAt, &p.UpdatedAt, &p.ExpiresAt, &p.LastErrorCode, &p.LastErrorMessage, &p.BankRef,
		&p.CardFingerprint, &p.Version, &blob); err != nil {
		return payment.Payment{}, err
	}
	if len(blob) > 0 {
		_ = json.Unmarshal(blob, &p.Intent)
	}
	return p, nil
}

func scanPayments(rows pgx.Rows) ([]payment.Payment, error) {
	var out []payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, gwerrors.Internal("pgstore: scan payment", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
