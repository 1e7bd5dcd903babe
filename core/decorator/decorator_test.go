package decorator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/llmwrap/core/bridge"
	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/observability"
)

// mockWrapper is a scriptable Wrapper that counts inner calls, so tests can
// verify how many queries an invocation actually produced.
type mockWrapper struct {
	mu    sync.Mutex
	calls int

	queryResponseFunc func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error)
	queryStreamFunc   func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error)
	queryObjectFunc   func(ctx context.Context, target any, prompt wrapper.PromptArgs, api wrapper.ApiArgs) error
	queryBlockFunc    func(ctx context.Context, blockType string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error)
}

var _ wrapper.Wrapper = (*mockWrapper)(nil)

func (m *mockWrapper) bump() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockWrapper) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockWrapper) QueryResponse(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
	m.bump()
	if m.queryResponseFunc != nil {
		return m.queryResponseFunc(ctx, prompt, api)
	}
	return fmt.Sprint(prompt["QUESTION"]), 1, nil
}

func (m *mockWrapper) QueryStream(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error) {
	m.bump()
	if m.queryStreamFunc != nil {
		return m.queryStreamFunc(ctx, prompt, api)
	}
	return wrapper.NewTextStream(fmt.Sprint(prompt["QUESTION"])), nil
}

func (m *mockWrapper) QueryObject(ctx context.Context, target any, prompt wrapper.PromptArgs, api wrapper.ApiArgs) error {
	m.bump()
	if m.queryObjectFunc != nil {
		return m.queryObjectFunc(ctx, target, prompt, api)
	}
	return nil
}

func (m *mockWrapper) QueryBlock(ctx context.Context, blockType string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
	m.bump()
	if m.queryBlockFunc != nil {
		return m.queryBlockFunc(ctx, blockType, prompt, api)
	}
	return fmt.Sprint(prompt["QUESTION"]), nil
}

// ========== Pass-through ==========

// TestDecorator_NilHook_PassThrough verifies that a decorator without a hook
// forwards every operation verbatim.
func TestDecorator_NilHook_PassThrough(t *testing.T) {
	inner := &mockWrapper{
		queryResponseFunc: func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
			return "hello", 7, nil
		},
		queryBlockFunc: func(ctx context.Context, blockType string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
			if blockType != "json" {
				t.Errorf("inner received blockType %q, want %q", blockType, "json")
			}
			return `{"ok":true}`, nil
		},
	}
	d := New(inner, nil)

	if d.Inner() != wrapper.Wrapper(inner) {
		t.Error("Inner() should return the decorated wrapper")
	}

	text, tokens, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}
	if text != "hello" || tokens != 7 {
		t.Errorf("QueryResponse() = (%q, %d), want (%q, %d)", text, tokens, "hello", 7)
	}

	block, err := d.QueryBlock(context.Background(), "json", wrapper.PromptArgs{}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryBlock() error = %v, want nil", err)
	}
	if block != `{"ok":true}` {
		t.Errorf("QueryBlock() = %q, want %q", block, `{"ok":true}`)
	}
}

// TestDecorator_PassThroughChain_PreservesChunkOrder verifies that stacking
// several pass-through decorators delivers the root chunk sequence unchanged.
func TestDecorator_PassThroughChain_PreservesChunkOrder(t *testing.T) {
	want := []string{"al", "pha", "bet"}
	inner := &mockWrapper{
		queryStreamFunc: func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error) {
			return wrapper.NewStream(func(yield func(string, error) bool) {
				for _, chunk := range want {
					if !yield(chunk, nil) {
						return
					}
				}
			}), nil
		},
	}

	var w wrapper.Wrapper = inner
	for range 3 {
		w = New(w, nil)
	}

	stream, err := w.QueryStream(context.Background(), wrapper.PromptArgs{}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryStream() error = %v, want nil", err)
	}

	var got []string
	for chunk, err := range stream.Iter() {
		if err != nil {
			t.Fatalf("unexpected mid-stream error: %v", err)
		}
		got = append(got, chunk)
	}
	if len(got) != len(want) {
		t.Fatalf("stream yielded %d chunks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// ========== Prepare ==========

// TestDecorator_EchoScenario verifies the canonical rewriting decorator: the
// finalize step prefixes the inner answer, so QUESTION=hi yields ECHO:hi.
func TestDecorator_EchoScenario(t *testing.T) {
	d := New(&mockWrapper{}, Hooks{
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			return &Result{Op: res.Op, Text: "ECHO:" + res.Text, Tokens: res.Tokens}, nil
		},
	})

	text, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}
	if text != "ECHO:hi" {
		t.Errorf("QueryResponse() = %q, want %q", text, "ECHO:hi")
	}
}

// TestDecorator_PrepareRewritesPrompt verifies that the dispatched request
// carries the hook's rewrite while the caller's own map stays untouched.
func TestDecorator_PrepareRewritesPrompt(t *testing.T) {
	var innerSaw wrapper.PromptArgs
	inner := &mockWrapper{
		queryResponseFunc: func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
			innerSaw = prompt
			return "ok", 1, nil
		},
	}
	d := New(inner, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			prompt := inv.Prompt()
			prompt["TASK"] = "rewritten"
			return &Request{Prompt: prompt, API: inv.API()}, nil
		},
	})

	callerArgs := wrapper.PromptArgs{"QUESTION": "original"}
	if _, _, err := d.QueryResponse(context.Background(), callerArgs, wrapper.ApiArgs{}); err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}

	if innerSaw["TASK"] != "rewritten" || innerSaw["QUESTION"] != "original" {
		t.Errorf("inner saw %v, want rewrite plus original question", innerSaw)
	}
	if _, leaked := callerArgs["TASK"]; leaked {
		t.Error("hook rewrite leaked into the caller's prompt arguments")
	}
}

// TestDecorator_NestedSubQueriesDontCountAsDispatch verifies that Prepare may
// query the inner wrapper freely before producing the one dispatch.
func TestDecorator_NestedSubQueriesDontCountAsDispatch(t *testing.T) {
	inner := &mockWrapper{}
	d := New(inner, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			for _, probe := range []string{"first", "second"} {
				if _, _, err := inv.Inner().QueryResponse(ctx, wrapper.PromptArgs{"QUESTION": probe}, inv.API()); err != nil {
					return nil, err
				}
			}
			return &Request{Prompt: inv.Prompt(), API: inv.API()}, nil
		},
	})

	if _, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "final"}, wrapper.ApiArgs{}); err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}
	if got := inner.callCount(); got != 3 {
		t.Errorf("inner saw %d calls, want 3 (two nested probes plus the dispatch)", got)
	}
}

// TestDecorator_FanOutJoinsInSubmissionOrder verifies that concurrent
// sub-queries with asymmetric delays come back in submission order.
func TestDecorator_FanOutJoinsInSubmissionOrder(t *testing.T) {
	inner := &mockWrapper{
		queryResponseFunc: func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
			if joined, ok := prompt["CONTEXT"]; ok {
				return fmt.Sprint(joined), 1, nil
			}
			task := fmt.Sprint(prompt["TASK"])
			if task == "slow" {
				time.Sleep(50 * time.Millisecond)
			}
			return task, 1, nil
		},
	}
	d := New(inner, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			parts, err := bridge.Gather(ctx,
				func(ctx context.Context) (string, error) {
					text, _, err := inv.Inner().QueryResponse(ctx, wrapper.PromptArgs{"TASK": "slow"}, inv.API())
					return text, err
				},
				func(ctx context.Context) (string, error) {
					text, _, err := inv.Inner().QueryResponse(ctx, wrapper.PromptArgs{"TASK": "fast"}, inv.API())
					return text, err
				},
			)
			if err != nil {
				return nil, err
			}
			prompt := inv.Prompt()
			prompt["CONTEXT"] = strings.Join(parts, "|")
			return &Request{Prompt: prompt, API: inv.API()}, nil
		},
	})

	text, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "combine"}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}
	if text != "slow|fast" {
		t.Errorf("QueryResponse() = %q, want %q (submission order, not completion order)", text, "slow|fast")
	}
}

// ========== Dispatch protocol ==========

// TestDecorator_ZeroDispatch_ErrProtocol verifies that a prepare step which
// neither returns a request nor dispatches fails the invocation.
func TestDecorator_ZeroDispatch_ErrProtocol(t *testing.T) {
	inner := &mockWrapper{}
	var captured *Invocation
	d := New(inner, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			captured = inv
			return nil, nil
		},
	})

	_, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{}, wrapper.ApiArgs{})
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("QueryResponse() error = %v, want ErrProtocol", err)
	}
	if inner.callCount() != 0 {
		t.Errorf("inner saw %d calls, want 0", inner.callCount())
	}
	if captured.State() != StateFailed {
		t.Errorf("invocation state = %v, want %v", captured.State(), StateFailed)
	}
}

// TestDecorator_ReturnAfterManualDispatch_ErrProtocol verifies that returning
// a request after having dispatched counts as a second dispatch.
func TestDecorator_ReturnAfterManualDispatch_ErrProtocol(t *testing.T) {
	inner := &mockWrapper{}
	d := New(inner, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			if _, err := inv.Dispatch(ctx, &Request{Prompt: inv.Prompt(), API: inv.API()}); err != nil {
				return nil, err
			}
			return &Request{Prompt: inv.Prompt(), API: inv.API()}, nil
		},
	})

	_, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("QueryResponse() error = %v, want ErrProtocol", err)
	}
	if inner.callCount() != 1 {
		t.Errorf("inner saw %d calls, want exactly the one manual dispatch", inner.callCount())
	}
}

// TestDecorator_SecondManualDispatch_ErrProtocol verifies that a second
// Dispatch call fails the invocation even when the hook swallows the error.
func TestDecorator_SecondManualDispatch_ErrProtocol(t *testing.T) {
	inner := &mockWrapper{}
	d := New(inner, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			req := &Request{Prompt: inv.Prompt(), API: inv.API()}
			if _, err := inv.Dispatch(ctx, req); err != nil {
				return nil, err
			}
			if _, err := inv.Dispatch(ctx, req); !errors.Is(err, ErrProtocol) {
				t.Errorf("second Dispatch() error = %v, want ErrProtocol", err)
			}
			return nil, nil // swallow the violation
		},
	})

	_, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("QueryResponse() error = %v, want ErrProtocol even when the hook swallows it", err)
	}
	if inner.callCount() != 1 {
		t.Errorf("inner saw %d calls, want 1", inner.callCount())
	}
}

// TestDecorator_DispatchDuringFinalize_ErrProtocol verifies that the dispatch
// window closes when Prepare returns.
func TestDecorator_DispatchDuringFinalize_ErrProtocol(t *testing.T) {
	d := New(&mockWrapper{}, Hooks{
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			_, err := inv.Dispatch(ctx, &Request{Prompt: inv.Prompt(), API: inv.API()})
			return nil, err
		},
	})

	_, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("QueryResponse() error = %v, want ErrProtocol", err)
	}
}

// TestDecorator_ManualDispatch_ResultMidPrepare verifies that a hook can
// dispatch itself, inspect the result while still preparing, and finish
// normally.
func TestDecorator_ManualDispatch_ResultMidPrepare(t *testing.T) {
	var captured *Invocation
	d := New(&mockWrapper{}, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			captured = inv
			res, err := inv.Dispatch(ctx, &Request{Prompt: inv.Prompt(), API: inv.API()})
			if err != nil {
				return nil, err
			}
			if res.Text != "hi" {
				t.Errorf("Dispatch() result text = %q, want %q", res.Text, "hi")
			}
			if inv.State() != StatePreparing {
				t.Errorf("state after manual dispatch = %v, want %v", inv.State(), StatePreparing)
			}
			return nil, nil
		},
	})

	text, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}
	if text != "hi" {
		t.Errorf("QueryResponse() = %q, want %q", text, "hi")
	}
	if captured.State() != StateDone {
		t.Errorf("final state = %v, want %v", captured.State(), StateDone)
	}
}

// ========== Failure propagation ==========

// TestDecorator_PrepareErrorPropagates verifies that a prepare failure
// surfaces unchanged and nothing reaches the backend.
func TestDecorator_PrepareErrorPropagates(t *testing.T) {
	wantErr := errors.New("context assembly failed")
	inner := &mockWrapper{}
	var captured *Invocation
	d := New(inner, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			captured = inv
			return nil, wantErr
		},
	})

	_, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{}, wrapper.ApiArgs{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("QueryResponse() error = %v, want %v", err, wantErr)
	}
	if inner.callCount() != 0 {
		t.Errorf("inner saw %d calls, want 0", inner.callCount())
	}
	if captured.State() != StateFailed {
		t.Errorf("invocation state = %v, want %v", captured.State(), StateFailed)
	}
}

// TestDecorator_BackendErrorPropagates verifies that a dispatch failure
// surfaces unchanged and skips the finalize step.
func TestDecorator_BackendErrorPropagates(t *testing.T) {
	wantErr := errors.New("backend refused")
	finalizeCalled := false
	var captured *Invocation
	d := New(&mockWrapper{
		queryResponseFunc: func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
			return "", 0, wantErr
		},
	}, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			captured = inv
			return &Request{Prompt: inv.Prompt(), API: inv.API()}, nil
		},
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			finalizeCalled = true
			return nil, nil
		},
	})

	_, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{}, wrapper.ApiArgs{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("QueryResponse() error = %v, want %v", err, wantErr)
	}
	if finalizeCalled {
		t.Error("Finalize ran after a failed dispatch")
	}
	if captured.State() != StateFailed {
		t.Errorf("invocation state = %v, want %v", captured.State(), StateFailed)
	}
}

// TestDecorator_FinalizeErrorPropagates verifies that a finalize failure
// fails the invocation; no partial Done is observable.
func TestDecorator_FinalizeErrorPropagates(t *testing.T) {
	wantErr := errors.New("postprocess failed")
	var captured *Invocation
	d := New(&mockWrapper{}, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			captured = inv
			return &Request{Prompt: inv.Prompt(), API: inv.API()}, nil
		},
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			return nil, wantErr
		},
	})

	text, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("QueryResponse() error = %v, want %v", err, wantErr)
	}
	if text != "" {
		t.Errorf("QueryResponse() text = %q, want empty on failure", text)
	}
	if captured.State() != StateFailed {
		t.Errorf("invocation state = %v, want %v", captured.State(), StateFailed)
	}
}

// ========== Finalize ==========

// TestDecorator_FinalizeNilKeepsResult verifies that returning nil from
// Finalize leaves the dispatch result untouched.
func TestDecorator_FinalizeNilKeepsResult(t *testing.T) {
	d := New(&mockWrapper{
		queryResponseFunc: func(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
			return "untouched", 42, nil
		},
	}, Hooks{
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			return nil, nil
		},
	})

	text, tokens, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}
	if text != "untouched" || tokens != 42 {
		t.Errorf("QueryResponse() = (%q, %d), want (%q, %d)", text, tokens, "untouched", 42)
	}
}

// TestDecorator_StreamFinalizeTextFallback verifies that a finalize step
// replacing a stream result with plain text still satisfies stream callers.
func TestDecorator_StreamFinalizeTextFallback(t *testing.T) {
	d := New(&mockWrapper{}, Hooks{
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			text, err := res.Stream.Collect()
			if err != nil {
				return nil, err
			}
			return &Result{Op: res.Op, Text: "[" + text + "]"}, nil
		},
	})

	stream, err := d.QueryStream(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{})
	if err != nil {
		t.Fatalf("QueryStream() error = %v, want nil", err)
	}
	text, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v, want nil", err)
	}
	if text != "[hi]" {
		t.Errorf("Collect() = %q, want %q", text, "[hi]")
	}
}

// TestDecorator_QueryObject_TargetFlowsThrough verifies that the dispatch
// decodes into the caller's target and finalize can mutate it in place.
func TestDecorator_QueryObject_TargetFlowsThrough(t *testing.T) {
	type city struct {
		Name       string `json:"name"`
		Population int    `json:"population"`
	}

	d := New(&mockWrapper{
		queryObjectFunc: func(ctx context.Context, target any, prompt wrapper.PromptArgs, api wrapper.ApiArgs) error {
			return json.Unmarshal([]byte(`{"name":"turin","population":848885}`), target)
		},
	}, Hooks{
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			decoded, ok := res.Object.(*city)
			if !ok {
				t.Fatalf("result object is %T, want *city", res.Object)
			}
			decoded.Name = strings.ToUpper(decoded.Name)
			return nil, nil
		},
	})

	var got city
	if err := d.QueryObject(context.Background(), &got, wrapper.PromptArgs{"TASK": "describe Turin"}, wrapper.ApiArgs{}); err != nil {
		t.Fatalf("QueryObject() error = %v, want nil", err)
	}
	if got.Name != "TURIN" || got.Population != 848885 {
		t.Errorf("decoded value = %+v, want finalized TURIN/848885", got)
	}
}

// ========== Concurrency and state ==========

// TestDecorator_ConcurrentInvocationsIsolated verifies that one decorator
// instance serves overlapping invocations without mixing their state.
func TestDecorator_ConcurrentInvocationsIsolated(t *testing.T) {
	d := New(&mockWrapper{}, Hooks{
		FinalizeFunc: func(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
			return &Result{Op: res.Op, Text: "ECHO:" + res.Text, Tokens: res.Tokens}, nil
		},
	})

	const goroutines = 16
	var wg sync.WaitGroup
	failures := make(chan string, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			question := fmt.Sprintf("q-%d", i)
			text, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": question}, wrapper.ApiArgs{})
			if err != nil {
				failures <- fmt.Sprintf("QueryResponse(%s) error: %v", question, err)
				return
			}
			if text != "ECHO:"+question {
				failures <- fmt.Sprintf("QueryResponse(%s) = %q, want %q", question, text, "ECHO:"+question)
			}
		}()
	}
	wg.Wait()
	close(failures)
	for failure := range failures {
		t.Error(failure)
	}
}

// TestState_String tests lifecycle state formatting
func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StatePreparing, "preparing"},
		{StateDispatching, "dispatching"},
		{StateFinalizing, "finalizing"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

// ========== Observability ==========

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

// TestDecorator_WithObservability_SpanLifecycle verifies that a successful
// invocation produces one ended span with prepare and finalize events.
func TestDecorator_WithObservability_SpanLifecycle(t *testing.T) {
	obs := &recordingObserver{}
	d := New(&mockWrapper{}, nil, WithObservability(obs))

	if _, _, err := d.QueryResponse(context.Background(), wrapper.PromptArgs{"QUESTION": "hi"}, wrapper.ApiArgs{}); err != nil {
		t.Fatalf("QueryResponse() error = %v, want nil", err)
	}

	if len(obs.spans) != 1 {
		t.Fatalf("observer recorded %d spans, want 1", len(obs.spans))
	}
	span := obs.spans[0]
	if span.name != observability.SpanDecoratorRun {
		t.Errorf("span name = %q, want %q", span.name, observability.SpanDecoratorRun)
	}
	if !span.ended {
		t.Error("span was never ended")
	}
	if span.status != observability.StatusOK {
		t.Errorf("span status = %v, want StatusOK", span.status)
	}
	wantEvents := []string{observability.EventDecoratorPrepare, observability.EventDecoratorFinalize}
	if len(span.events) != len(wantEvents) {
		t.Fatalf("span events = %v, want %v", span.events, wantEvents)
	}
	for i := range wantEvents {
		if span.events[i] != wantEvents[i] {
			t.Errorf("event[%d] = %q, want %q", i, span.events[i], wantEvents[i])
		}
	}
}

// TestDecorator_ObserverFromContext verifies that protocol failures are
// recorded on the span provided by the caller's context.
func TestDecorator_ObserverFromContext(t *testing.T) {
	obs := &recordingObserver{}
	d := New(&mockWrapper{}, Hooks{
		PrepareFunc: func(ctx context.Context, inv *Invocation) (*Request, error) {
			return nil, nil
		},
	})

	ctx := observability.ContextWithObserver(context.Background(), obs)
	if _, _, err := d.QueryResponse(ctx, wrapper.PromptArgs{}, wrapper.ApiArgs{}); !errors.Is(err, ErrProtocol) {
		t.Fatalf("QueryResponse() error = %v, want ErrProtocol", err)
	}

	if len(obs.spans) != 1 {
		t.Fatalf("observer recorded %d spans, want 1", len(obs.spans))
	}
	span := obs.spans[0]
	if span.status != observability.StatusError {
		t.Errorf("span status = %v, want StatusError", span.status)
	}
	if len(span.errs) == 0 || !errors.Is(span.errs[0], ErrProtocol) {
		t.Errorf("span errors = %v, want recorded ErrProtocol", span.errs)
	}
}
