package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/history"
)

func TestStore_AppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	if n, _ := s.Len(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d records", n)
	}

	first := history.NewRecord(wrapper.OpResponse)
	first.Prompt = wrapper.PromptArgs{"QUESTION": "hi"}
	first.Output = []string{"hello"}
	first.Text = "hello"

	second := history.NewRecord(wrapper.OpBlock)
	second.BlockType = "json"
	second.Output = []string{`{"a":1}`}
	second.Text = `{"a":1}`

	if err := s.Append(ctx, first); err != nil {
		t.Fatalf("Append() error = %v, want nil", err)
	}
	if err := s.Append(ctx, second); err != nil {
		t.Fatalf("Append() error = %v, want nil", err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v, want nil", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != first.ID || records[1].ID != second.ID {
		t.Error("records are not in append order")
	}
	if records[1].BlockType != "json" {
		t.Errorf("expected block type 'json', got %q", records[1].BlockType)
	}
}

func TestStore_DefensiveCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	record := history.NewRecord(wrapper.OpResponse)
	record.Prompt = wrapper.PromptArgs{"QUESTION": "original"}
	record.Output = []string{"chunk"}

	if err := s.Append(ctx, record); err != nil {
		t.Fatalf("Append() error = %v, want nil", err)
	}

	// Mutating the appended record must not reach the store.
	record.Prompt["QUESTION"] = "mutated after append"
	record.Output[0] = "mutated"

	listed, _ := s.List(ctx)
	if listed[0].Prompt["QUESTION"] != "original" {
		t.Error("store shares the caller's prompt map")
	}
	if listed[0].Output[0] != "chunk" {
		t.Error("store shares the caller's output slice")
	}

	// Mutating a listed record must not reach the store either.
	listed[0].Output[0] = "mutated by reader"
	again, _ := s.List(ctx)
	if again[0].Output[0] != "chunk" {
		t.Error("List returns the stored slice instead of a copy")
	}
}

func TestStore_NilRecordIgnored(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Append(ctx, nil); err != nil {
		t.Fatalf("Append(nil) error = %v, want nil", err)
	}
	if n, _ := s.Len(ctx); n != 0 {
		t.Errorf("expected 0 records after nil append, got %d", n)
	}
}

func TestStore_Clear(t *testing.T) {
	s := New()
	ctx := context.Background()

	for range 3 {
		if err := s.Append(ctx, history.NewRecord(wrapper.OpResponse)); err != nil {
			t.Fatalf("Append() error = %v, want nil", err)
		}
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v, want nil", err)
	}
	if n, _ := s.Len(ctx); n != 0 {
		t.Errorf("expected empty store after Clear, got %d records", n)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := New()
	ctx := context.Background()

	const goroutines = 16
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record := history.NewRecord(wrapper.OpResponse)
			record.Text = fmt.Sprintf("answer-%d", i)
			if err := s.Append(ctx, record); err != nil {
				t.Errorf("Append() error = %v, want nil", err)
			}
		}()
	}
	wg.Wait()

	if n, _ := s.Len(ctx); n != goroutines {
		t.Errorf("expected %d records, got %d", goroutines, n)
	}
}
