// Package store holds the persistence side-car spec.md §6 keeps outside
// the core: an append-only operation log (pgx/v5, Postgres) a server can
// replay to rebuild a document, and an ephemeral presence registry
// (go-redis/v9). Neither type is imported by crdt or engine — a replica
// never has to know it's being persisted.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OpLog appends every wire-format operation a server applies, in arrival
// order, per document, so a restarted server can rebuild a crdt.Replica
// by replaying them through the ordinary ReceivePrimitive path — grounded
// on sumanthd032-CollabText/server's pgxpool connection-string handling,
// generalized from an unused connection into an actual append/replay log.
type OpLog struct {
	pool *pgxpool.Pool
}

// NewOpLog connects to dsn and ensures the backing table exists.
func NewOpLog(ctx context.Context, dsn string) (*OpLog, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	l := &OpLog{pool: pool}
	if err := l.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return l, nil
}

func (l *OpLog) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS oplog (
	doc_id     TEXT    NOT NULL,
	seq        BIGSERIAL,
	payload    BYTEA   NOT NULL,
	PRIMARY KEY (doc_id, seq)
)`
	if _, err := l.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append records one wire-encoded operation for docID.
func (l *OpLog) Append(ctx context.Context, docID string, payload []byte) error {
	const stmt = `INSERT INTO oplog (doc_id, payload) VALUES ($1, $2)`
	if _, err := l.pool.Exec(ctx, stmt, docID, payload); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Replay streams every recorded operation for docID, oldest first, calling
// apply for each one. apply is expected to be a *crdt.Replica's
// ReceivePrimitive — every entry in the log is, structurally, just another
// remote operation.
func (l *OpLog) Replay(ctx context.Context, docID string, apply func(payload []byte) error) error {
	const query = `SELECT payload FROM oplog WHERE doc_id = $1 ORDER BY seq ASC`
	rows, err := l.pool.Query(ctx, query, docID)
	if err != nil {
		return fmt.Errorf("store: replay query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("store: replay scan: %w", err)
		}
		if err := apply(payload); err != nil {
			return fmt.Errorf("store: replay apply: %w", err)
		}
	}
	return rows.Err()
}

// Close releases the underlying connection pool.
func (l *OpLog) Close() { l.pool.Close() }
