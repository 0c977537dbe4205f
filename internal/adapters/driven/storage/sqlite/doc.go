// Package sqlite provides the SQLite-backed implementation of the
// driven.JobStore interface.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Jobs, their latest
// progress snapshot, and their terminal results live in one database so a
// second process (status polling, the TUI watcher) can observe a run.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.ocr2doc/data/jobs.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
