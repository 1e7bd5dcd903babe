// Package sqlitehistory implements the [history.Store] interface with
// single-file SQLite persistence through the pure-Go modernc.org/sqlite
// driver, so no cgo toolchain is required.
//
// [Open] creates the database file if needed, applies per-connection pragmas
// through the DSN (WAL journal mode, a 5s busy timeout, foreign keys) and
// bootstraps the record table. Structured record fields are stored as JSON
// columns and decoded on read, so listed records are full round-trips of what
// was appended.
package sqlitehistory
