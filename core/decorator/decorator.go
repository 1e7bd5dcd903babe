package decorator

import (
	"context"
	"fmt"

	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/observability"
)

// Decorator wraps exactly one inner [wrapper.Wrapper] with a [Hook] and
// implements the full contract itself, so decorators compose: each layer sees
// only its immediate inner wrapper and the chain terminates at a provider
// adapter. All per-call state lives in the [Invocation], so a Decorator is
// safe for concurrent use whenever its hook is.
type Decorator struct {
	inner wrapper.Wrapper
	hook  Hook
	obs   observability.Provider
}

// Ensure Decorator implements the contract at compile time.
var _ wrapper.Wrapper = (*Decorator)(nil)

// Option configures a Decorator.
type Option func(*Decorator)

// WithObservability attaches an observability provider. Every invocation then
// runs inside a span carrying the operation and lifecycle events; without it
// the decorator falls back to the observer carried by the context, if any.
func WithObservability(obs observability.Provider) Option {
	return func(d *Decorator) {
		d.obs = obs
	}
}

// New builds a decorator around inner. A nil hook behaves as the pass-through
// [Hooks] zero value: every operation is forwarded verbatim.
func New(inner wrapper.Wrapper, hook Hook, options ...Option) *Decorator {
	d := &Decorator{
		inner: inner,
		hook:  hook,
	}
	if d.hook == nil {
		d.hook = Hooks{}
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Inner returns the decorated wrapper.
func (d *Decorator) Inner() wrapper.Wrapper {
	return d.inner
}

// QueryResponse implements [wrapper.Wrapper].
func (d *Decorator) QueryResponse(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
	res, err := d.run(ctx, newInvocation(wrapper.OpResponse, d.inner, prompt, api))
	if err != nil {
		return "", 0, err
	}
	return res.Text, res.Tokens, nil
}

// QueryStream implements [wrapper.Wrapper]. A hook that replaces the result
// with plain text instead of a stream still satisfies the caller: the text
// comes back as a single-chunk stream.
func (d *Decorator) QueryStream(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error) {
	res, err := d.run(ctx, newInvocation(wrapper.OpStream, d.inner, prompt, api))
	if err != nil {
		return nil, err
	}
	if res.Stream == nil {
		return wrapper.NewTextStream(res.Text), nil
	}
	return res.Stream, nil
}

// QueryObject implements [wrapper.Wrapper]. The dispatch decodes straight
// into the caller's target; hooks post-process by mutating the decoded value
// in place during Finalize.
func (d *Decorator) QueryObject(ctx context.Context, target any, prompt wrapper.PromptArgs, api wrapper.ApiArgs) error {
	inv := newInvocation(wrapper.OpObject, d.inner, prompt, api)
	inv.target = target
	_, err := d.run(ctx, inv)
	return err
}

// QueryBlock implements [wrapper.Wrapper].
func (d *Decorator) QueryBlock(ctx context.Context, blockType string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
	inv := newInvocation(wrapper.OpBlock, d.inner, prompt, api)
	inv.blockType = blockType
	res, err := d.run(ctx, inv)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// run drives one invocation through the lifecycle: Prepare, exactly one
// dispatch, Finalize. Errors at any step move the invocation to StateFailed
// and propagate unchanged, so no caller ever observes a partial Done.
func (d *Decorator) run(ctx context.Context, inv *Invocation) (*Result, error) {
	span := d.startSpan(&ctx, inv)
	if span != nil {
		defer span.End()
	}

	inv.transition(StatePreparing)
	if span != nil {
		span.AddEvent(observability.EventDecoratorPrepare,
			observability.String(observability.AttrDecoratorState, StatePreparing.String()),
		)
	}

	req, err := d.hook.Prepare(ctx, inv)
	dispatched, dispatchErr, protoErr := inv.status()
	switch {
	case err != nil:
		inv.transition(StateFailed)
		return nil, failSpan(span, err)
	case protoErr != nil:
		// A protocol violation inside Prepare fails the invocation even if
		// the hook swallowed the error Dispatch returned.
		inv.transition(StateFailed)
		return nil, failSpan(span, protoErr)
	case dispatchErr != nil:
		return nil, failSpan(span, dispatchErr)
	case req == nil && !dispatched:
		inv.transition(StateFailed)
		return nil, failSpan(span, fmt.Errorf("%w: prepare returned no request and never dispatched", ErrProtocol))
	case req != nil && dispatched:
		inv.transition(StateFailed)
		return nil, failSpan(span, fmt.Errorf("%w: prepare returned a request after dispatching", ErrProtocol))
	case req != nil:
		if _, err := inv.Dispatch(ctx, req); err != nil {
			return nil, failSpan(span, err)
		}
	}

	inv.transition(StateFinalizing)
	if span != nil {
		span.AddEvent(observability.EventDecoratorFinalize,
			observability.String(observability.AttrDecoratorState, StateFinalizing.String()),
		)
	}

	res := inv.lastResult()
	finalized, err := d.hook.Finalize(ctx, inv, res)
	if err != nil {
		inv.transition(StateFailed)
		return nil, failSpan(span, err)
	}
	if finalized != nil {
		res = finalized
	}

	inv.transition(StateDone)
	if span != nil {
		span.SetStatus(observability.StatusOK, "")
	}
	return res, nil
}

// startSpan opens the lifecycle span when an observer is configured or
// carried by the context. It rewrites *ctx so nested work joins the span.
func (d *Decorator) startSpan(ctx *context.Context, inv *Invocation) observability.Span {
	obs := d.obs
	if obs == nil {
		obs = observability.ObserverFromContext(*ctx)
	}
	if obs == nil {
		return nil
	}
	attrs := []observability.Attribute{
		observability.String(observability.AttrQueryOperation, inv.op.String()),
	}
	if inv.blockType != "" {
		attrs = append(attrs, observability.String(observability.AttrQueryBlockType, inv.blockType))
	}
	spanCtx, span := obs.StartSpan(*ctx, observability.SpanDecoratorRun, attrs...)
	*ctx = observability.ContextWithSpan(spanCtx, span)
	return span
}

func failSpan(span observability.Span, err error) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
	}
	return err
}
