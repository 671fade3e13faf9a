// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - Ledger: Query records and the daily query counter
//   - ItemStore: Content item persistence
//   - ReceiptStore: Append-only delivery receipts
//   - StatsStore: Per-day counters
//   - SessionStore: Session budgets and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.newsdesk/data/newsdesk.db
//
// # Thread Safety
//
// All operations are thread-safe. Writes that read before they write run in
// transactions retried on SQLITE_BUSY.
package sqlite
