package sqlitehistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the cgo-free "sqlite" driver

	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/history"
)

// defaultTableName is the SQLite table used when no custom name is provided.
const defaultTableName = "llmwrap_history"

// timeFormat is how created_at is stored; RFC3339Nano keeps sub-second
// precision and sorts lexicographically.
const timeFormat = time.RFC3339Nano

// Store implements [history.Store] with single-file SQLite persistence via
// the pure-Go modernc.org/sqlite driver. Thread safety is handled by the
// database/sql connection pool; the DSN pragmas (WAL journal mode, busy
// timeout, foreign keys) are applied to every pooled connection.
type Store struct {
	db    *sql.DB
	table string
}

// Compile-time check: Store must implement history.Store.
var _ history.Store = (*Store)(nil)

// Option configures optional Store behavior.
type Option func(*Store)

// WithTableName overrides the default table name ("llmwrap_history"). The
// name is quoted before being interpolated into statements.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.table = quoteIdentifier(name)
	}
}

// Open opens (creating if needed) the SQLite database at path and bootstraps
// the record table. The caller owns the returned store and must Close it.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitehistory: open %s: %w", path, err)
	}

	store := &Store{
		db:    db,
		table: defaultTableName,
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists one record. A nil record is silently ignored to match the
// history.Store contract.
func (s *Store) Append(ctx context.Context, record *history.Record) error {
	if record == nil {
		return nil
	}

	promptJSON, err := marshalColumn(record.Prompt, "{}")
	if err != nil {
		return fmt.Errorf("sqlitehistory: encode prompt: %w", err)
	}
	apiJSON, err := marshalColumn(record.API, "{}")
	if err != nil {
		return fmt.Errorf("sqlitehistory: encode api: %w", err)
	}
	outputJSON, err := marshalColumn(record.Output, "[]")
	if err != nil {
		return fmt.Errorf("sqlitehistory: encode output: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, created_at, op, block_type, prompt, api, output, text, tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.CreatedAt.UTC().Format(timeFormat),
		record.Op,
		record.BlockType,
		promptJSON,
		apiJSON,
		outputJSON,
		record.Text,
		record.Tokens,
	)
	if err != nil {
		return fmt.Errorf("sqlitehistory: append: %w", err)
	}
	return nil
}

// List returns all records in append order (ordered by the monotonic seq
// column).
func (s *Store) List(ctx context.Context) ([]*history.Record, error) {
	query := fmt.Sprintf(`SELECT id, created_at, op, block_type, prompt, api, output, text, tokens
		FROM %s ORDER BY seq ASC`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlitehistory: list: %w", err)
	}
	defer rows.Close()

	records := []*history.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitehistory: list: %w", err)
	}
	return records, nil
}

// Clear deletes all records.
func (s *Store) Clear(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("sqlitehistory: clear: %w", err)
	}
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlitehistory: len: %w", err)
	}
	return count, nil
}

// scanRecord reads one row into a Record, decoding the JSON columns and
// parsing the stored timestamp.
func scanRecord(rows *sql.Rows) (*history.Record, error) {
	var (
		record     history.Record
		createdAt  string
		promptJSON string
		apiJSON    string
		outputJSON string
	)
	if err := rows.Scan(
		&record.ID,
		&createdAt,
		&record.Op,
		&record.BlockType,
		&promptJSON,
		&apiJSON,
		&outputJSON,
		&record.Text,
		&record.Tokens,
	); err != nil {
		return nil, fmt.Errorf("sqlitehistory: scan: %w", err)
	}

	parsed, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("sqlitehistory: parse created_at %q: %w", createdAt, err)
	}
	record.CreatedAt = parsed

	if err := json.Unmarshal([]byte(promptJSON), &record.Prompt); err != nil {
		return nil, fmt.Errorf("sqlitehistory: decode prompt: %w", err)
	}
	var api wrapper.ApiArgs
	if err := json.Unmarshal([]byte(apiJSON), &api); err != nil {
		return nil, fmt.Errorf("sqlitehistory: decode api: %w", err)
	}
	record.API = api
	if err := json.Unmarshal([]byte(outputJSON), &record.Output); err != nil {
		return nil, fmt.Errorf("sqlitehistory: decode output: %w", err)
	}

	return &record, nil
}

// marshalColumn encodes value as JSON, substituting empty for nil so the
// column never stores the literal "null".
func marshalColumn(value any, empty string) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(encoded) == "null" {
		return empty, nil
	}
	return string(encoded), nil
}

// quoteIdentifier makes a table name safe for interpolation by double-quoting
// it and escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
