// Package auditstore mirrors every StatusHistory append into ClickHouse, an
// append-only log for reconciliation queries (e.g. "payments that spent over
// 5 minutes in AUTHORIZING") that would be costly against the OLTP store.
// Grounded on the ancestor's pkg/store/clickhouse.go connection options.
package auditstore

import (
	"context"
	"crypto/tls"
	"database/sql"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"payment-gateway/internal/payment"
)

// Store is a write-mostly mirror of status_history.
type Store struct {
	conn *sql.DB
}

// Connect opens a ClickHouse connection against addr (host:port).
func Connect(addr, database, username, password string) (*Store, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		TLS:         &tls.Config{InsecureSkipVerify: true},
		DialTimeout: 30 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	conn.SetMaxIdleConns(5)
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		return nil, err
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Append mirrors a single StatusHistory row. Failures are logged by the
// caller and never block the request path — the mirror is best-effort.
func (s *Store) Append(ctx context.Context, paymentID string, entry payment.HistoryEntry) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO status_history_audit
			(payment_id, from_status, to_status, at, actor, error_code, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		paymentID, string(entry.FromStatus), string(entry.ToStatus), entry.At,
		entry.Actor, entry.ErrorCode, entry.Message)
	return err
}

// StuckInAuthorizing returns payment_ids that have sat in AUTHORIZING past
// olderThan, read from the audit mirror. Nothing in the gateway calls it:
// the sweeper only expires payments past their deadline and does not
// reconcile payments left in AUTHORIZING.
func (s *Store) StuckInAuthorizing(ctx context.Context, olderThan time.Duration) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT payment_id FROM status_history_audit
		WHERE to_status = 'AUTHORIZING' AND at < ?
		  AND payment_id NOT IN (
		      SELECT payment_id FROM status_history_audit WHERE to_status != 'AUTHORIZING' AND at > ?
		  )`, time.Now().Add(-olderThan), time.Now().Add(-olderThan))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
