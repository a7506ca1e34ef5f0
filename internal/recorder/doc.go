// Package recorder persists market-data refreshes to TimescaleDB.
//
// Every MDEntry of a snapshot or incremental refresh becomes one md_entries
// row stamped with its receive time. Rows are buffered, batched and written
// append-only with pgx batches. When the buffer is full new rows are
// dropped and counted rather than blocking the market-data connection.
package recorder
