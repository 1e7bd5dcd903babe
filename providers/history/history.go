package history

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/llmwrap/core/wrapper"
)

// Record is one completed query: the full input plus the ordered output
// chunks. Records are written once, after the query completes, and never
// mutated afterwards.
type Record struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Op        string             `json:"op"`                   // wrapper.Op of the query
	BlockType string             `json:"block_type,omitempty"` // block queries only
	Prompt    wrapper.PromptArgs `json:"prompt"`
	API       wrapper.ApiArgs    `json:"api"`
	Output    []string           `json:"output"` // ordered chunks; one element for non-streamed queries
	Text      string             `json:"text"`   // chunks joined
	Tokens    int                `json:"tokens,omitempty"`
}

// NewRecord builds an empty record for op with a fresh ID and timestamp.
func NewRecord(op wrapper.Op) *Record {
	return &Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Op:        op.String(),
	}
}

// Clone returns an independent copy: argument maps and the output slice are
// duplicated so neither side can mutate the other.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Prompt = r.Prompt.Clone()
	clone.API = r.API.Clone()
	clone.Output = slices.Clone(r.Output)
	return &clone
}

// Store persists query records. Implementations must be safe for concurrent
// use; List returns records in append order.
type Store interface {
	// Append stores one completed record.
	Append(ctx context.Context, record *Record) error

	// List returns all stored records, oldest first.
	List(ctx context.Context) ([]*Record, error)

	// Clear removes every stored record.
	Clear(ctx context.Context) error

	// Len reports the number of stored records.
	Len(ctx context.Context) (int, error)
}
