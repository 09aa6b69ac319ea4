// Package sqlite provides the SQLite-backed generation journal.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The journal is an append-only audit log of request
// lifecycle events (pending, fulfilled, failed, dropped). Chunks are never
// restored from it; the board itself lives for one session.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.pdfboard/data/journal.db
//
// # Thread Safety
//
// All operations are thread-safe. Request goroutines append concurrently;
// SQLite in WAL mode serialises the writes.
package sqlite
