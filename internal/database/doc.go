// Package database manages the TimescaleDB pool the market-data recorder
// writes to.
//
// Tables:
//   - md_entries: one row per MDEntry of every snapshot or incremental
//     refresh, partitioned on received_at when TimescaleDB is available
package database
