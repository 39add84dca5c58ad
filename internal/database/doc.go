// Package database provides SQLite-based storage for portscan.
//
// This package implements the ScanDB, which stores completed scan
// reports so that results can be reviewed later and compared across
// runs of the same target.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
