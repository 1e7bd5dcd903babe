package restyle

import (
	"context"

	"github.com/leofalp/llmwrap/core/decorator"
	"github.com/leofalp/llmwrap/core/wrapper"
)

// eli5Instruction is the bundled rephrasing style.
const eli5Instruction = "ELI5 the CONTENT. In other words, rephrase the CONTENT " +
	"in a way that is easy to understand for a 5 year old."

// New builds a restyling wrapper around inner. Every query runs in two
// phases: the caller's arguments are first answered plainly with a nested
// QueryResponse, then the answer is dispatched back through the chain as the
// CONTENT of a rephrasing query carrying instruction as its TASK. The
// caller's operation is preserved, so a streamed query streams the restyled
// answer.
func New(inner wrapper.Wrapper, instruction string, options ...decorator.Option) *decorator.Decorator {
	return decorator.New(inner, &restyleHook{instruction: instruction}, options...)
}

// NewELI5 builds a restyling wrapper that rephrases every answer in language
// a five-year-old could follow.
func NewELI5(inner wrapper.Wrapper, options ...decorator.Option) *decorator.Decorator {
	return New(inner, eli5Instruction, options...)
}

// restyleHook obtains the plain answer during Prepare and hands the
// rephrasing query to the runtime as the invocation's one dispatch.
type restyleHook struct {
	instruction string
}

var _ decorator.Hook = (*restyleHook)(nil)

func (h *restyleHook) Prepare(ctx context.Context, inv *decorator.Invocation) (*decorator.Request, error) {
	content, _, err := inv.Inner().QueryResponse(ctx, inv.Prompt(), inv.API())
	if err != nil {
		return nil, err
	}

	return &decorator.Request{
		Prompt: wrapper.PromptArgs{
			"CONTENT": content,
			"TASK":    h.instruction,
		},
		API: inv.API(),
	}, nil
}

func (h *restyleHook) Finalize(_ context.Context, _ *decorator.Invocation, _ *decorator.Result) (*decorator.Result, error) {
	return nil, nil
}
