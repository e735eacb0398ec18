// pgaudit.go mirrors audit entries into Postgres for durable, queryable
// storage alongside the hash-chained JSONL log. Postgres is never the
// source of truth for chain integrity — VerifyChain only ever reads the
// JSONL file — this is strictly a reporting sink an operator can point
// dashboards and retention jobs at.
package cord

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createAuditMirrorTable = `
CREATE TABLE IF NOT EXISTS cord_audit_log (
	id BIGSERIAL PRIMARY KEY,
	ts TIMESTAMPTZ NOT NULL,
	prev_hash TEXT NOT NULL,
	entry_hash TEXT NOT NULL UNIQUE,
	decision TEXT NOT NULL,
	score DOUBLE PRECISION NOT NULL,
	payload JSONB NOT NULL
)`

// PgAuditSink mirrors AuditEntry records into Postgres.
type PgAuditSink struct {
	pool *pgxpool.Pool
}

// NewPgAuditSink connects to Postgres using connString and ensures the
// mirror table exists.
func NewPgAuditSink(ctx context.Context, connString string) (*PgAuditSink, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, createAuditMirrorTable); err != nil {
		pool.Close()
		return nil, err
	}
	return &PgAuditSink{pool: pool}, nil
}

// Mirror inserts entry into the mirror table, ignoring a duplicate
// entry_hash (a retry of the same append).
func (s *PgAuditSink) Mirror(ctx context.Context, entry AuditEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO cord_audit_log (ts, prev_hash, entry_hash, decision, score, payload)
		VALUES ($1::timestamptz, $2, $3, $4, $5, $6)
		ON CONFLICT (entry_hash) DO NOTHING`,
		entry.Timestamp, entry.PrevHash, entry.EntryHash, entry.Decision, entry.Score, payload)
	return err
}

// Close releases the connection pool.
func (s *PgAuditSink) Close() {
	s.pool.Close()
}
