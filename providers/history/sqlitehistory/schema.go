package sqlitehistory

import (
	"context"
	"fmt"
)

// createTableSQL is the DDL for the record table. All record fields are
// persisted to guarantee round-trip fidelity: records read back from SQLite
// are identical to the originals. Structured fields (prompt, api, output) are
// stored as JSON text.
//
// The seq column provides monotonic append ordering; AUTOINCREMENT keeps it
// monotonic even across a Clear.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    op         TEXT NOT NULL,
    block_type TEXT NOT NULL DEFAULT '',
    prompt     TEXT NOT NULL DEFAULT '{}',
    api        TEXT NOT NULL DEFAULT '{}',
    output     TEXT NOT NULL DEFAULT '[]',
    text       TEXT NOT NULL DEFAULT '',
    tokens     INTEGER NOT NULL DEFAULT 0
)`

// ensureSchema creates the record table if it does not already exist. Called
// on every Open; deployments with migration tooling can manage the table
// themselves since the statement is idempotent.
func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, s.table)); err != nil {
		return fmt.Errorf("sqlitehistory: create table: %w", err)
	}
	return nil
}
