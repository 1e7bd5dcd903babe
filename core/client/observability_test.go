package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/ai"
	"github.com/leofalp/llmwrap/providers/observability"
)

type recordingSpan struct {
	observability.NoopSpan
	mu     sync.Mutex
	name   string
	events []string
	status observability.StatusCode
	errs   []error
	ended  bool
}

func (s *recordingSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

func (s *recordingSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *recordingSpan) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

func (s *recordingSpan) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

type recordingObserver struct {
	observability.NoopProvider
	mu    sync.Mutex
	spans []*recordingSpan
}

func (o *recordingObserver) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &recordingSpan{name: name}
	o.mu.Lock()
	o.spans = append(o.spans, span)
	o.mu.Unlock()
	return ctx, span
}

func (o *recordingObserver) onlySpan(t *testing.T) *recordingSpan {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.spans) != 1 {
		t.Fatalf("observer recorded %d spans, want 1", len(o.spans))
	}
	return o.spans[0]
}

// TestClient_Observability_SuccessSpan verifies a blocking query produces one
// ended client.query span with OK status.
func TestClient_Observability_SuccessSpan(t *testing.T) {
	obs := &recordingObserver{}
	c := New(&mockProvider{}, WithObservability(obs))

	if _, _, err := c.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{}); err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}

	span := obs.onlySpan(t)
	if span.name != observability.SpanClientQuery {
		t.Errorf("span name = %q, want %q", span.name, observability.SpanClientQuery)
	}
	if !span.isEnded() {
		t.Error("span was never ended")
	}
	if span.status != observability.StatusOK {
		t.Errorf("span status = %v, want StatusOK", span.status)
	}
}

// TestClient_Observability_BackendFailureSpan verifies provider errors are
// recorded on the span with error status.
func TestClient_Observability_BackendFailureSpan(t *testing.T) {
	obs := &recordingObserver{}
	provider := &mockProvider{
		completeFunc: func(ctx context.Context, request *ai.Request) (*ai.Response, error) {
			return nil, errors.New("boom")
		},
	}
	c := New(provider, WithObservability(obs))

	if _, _, err := c.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{}); !errors.Is(err, wrapper.ErrBackend) {
		t.Fatalf("QueryResponse() error = %v, want ErrBackend", err)
	}

	span := obs.onlySpan(t)
	if span.status != observability.StatusError {
		t.Errorf("span status = %v, want StatusError", span.status)
	}
	if len(span.errs) == 0 || !errors.Is(span.errs[0], wrapper.ErrBackend) {
		t.Errorf("span errors = %v, want recorded ErrBackend", span.errs)
	}
	if !span.isEnded() {
		t.Error("span was never ended")
	}
}

// TestClient_Observability_StreamSpanEndsOnDrain verifies the query span of a
// streamed operation stays open until the consumer drains the stream, then
// closes with a completion event.
func TestClient_Observability_StreamSpanEndsOnDrain(t *testing.T) {
	obs := &recordingObserver{}
	c := New(&mockStreamProvider{}, WithObservability(obs))

	stream, err := c.QueryStream(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryStream() error = %v, want nil", err)
	}

	span := obs.onlySpan(t)
	if span.isEnded() {
		t.Fatal("span ended before the stream was consumed")
	}

	if _, err := stream.Collect(); err != nil {
		t.Fatalf("Collect() error = %v, want nil", err)
	}

	if !span.isEnded() {
		t.Error("span still open after the stream drained")
	}
	if span.status != observability.StatusOK {
		t.Errorf("span status = %v, want StatusOK", span.status)
	}
	found := false
	for _, event := range span.events {
		if event == observability.EventStreamComplete {
			found = true
		}
	}
	if !found {
		t.Errorf("span events = %v, want %q", span.events, observability.EventStreamComplete)
	}
}
