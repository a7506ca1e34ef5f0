package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement. *pgxpool.Pool and pgx.Tx satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createEntries = `
CREATE TABLE IF NOT EXISTS md_entries (
	received_at      TIMESTAMPTZ NOT NULL,
	stream           TEXT        NOT NULL,
	symbol           TEXT        NOT NULL DEFAULT '',
	snapshot         BOOLEAN     NOT NULL,
	transact_time    BIGINT,
	update_action    TEXT,
	entry_type       TEXT,
	price            NUMERIC,
	size             NUMERIC,
	number_of_orders BIGINT,
	trade_id         TEXT,
	aggressor_side   TEXT,
	first_px         NUMERIC,
	last_px          NUMERIC,
	high_px          NUMERIC,
	low_px           NUMERIC,
	buy_volume       NUMERIC,
	sell_volume      NUMERIC
)`

const createEntriesIndex = `
CREATE INDEX IF NOT EXISTS md_entries_stream_received_at_idx
	ON md_entries (stream, received_at DESC)`

const createHypertable = `
DO $$
BEGIN
	IF EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'timescaledb') THEN
		PERFORM create_hypertable('md_entries', 'received_at', if_not_exists => TRUE);
	END IF;
END
$$`

// Schema lists the statements EnsureSchema runs, in order.
var Schema = []string{createEntries, createEntriesIndex, createHypertable}

// EnsureSchema creates the recorder tables if they do not exist. It is
// safe to run on every start.
func EnsureSchema(ctx context.Context, db Execer) error {
	for i, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
