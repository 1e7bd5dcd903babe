// Package decorator composes wrappers: a [Decorator] owns exactly one inner
// [wrapper.Wrapper] and a [Hook], implements the full contract itself, and
// runs every invocation through a fixed lifecycle: Prepare, exactly one
// dispatch, Finalize. Because a decorator is itself a Wrapper, layers stack
// into a singly-linked chain terminating at a provider adapter, and each
// layer sees only its immediate inner wrapper.
//
// The hook decides what the one dispatch carries. During Prepare it may run
// arbitrary nested work against [Invocation.Inner], such as sub-queries or
// concurrent fan-out via bridge.Gather, and then either return the
// transformed [Request] for the runtime to dispatch or call
// [Invocation.Dispatch] itself when it needs the result mid-preparation. Zero dispatches and second dispatches
// both fail the invocation with [ErrProtocol]; failures at any step surface
// unchanged with no partial result.
//
// Minimal rewriting decorator:
//
//	styled := decorator.New(client, decorator.Hooks{
//	    PrepareFunc: func(ctx context.Context, inv *decorator.Invocation) (*decorator.Request, error) {
//	        prompt := inv.Prompt()
//	        prompt["TASK"] = "Explain like I'm five: " + fmt.Sprint(prompt["TASK"])
//	        return &decorator.Request{Prompt: prompt, API: inv.API()}, nil
//	    },
//	})
//
//	answer, _, err := styled.QueryResponse(ctx, prompt, api)
//
// The shipped composition patterns (capture, restyle, workflow, retry, cache,
// ...) are all built on this package.
package decorator
