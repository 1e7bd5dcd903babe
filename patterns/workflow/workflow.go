package workflow

import (
	"context"

	"github.com/leofalp/llmwrap/core/bridge"
	"github.com/leofalp/llmwrap/core/decorator"
	"github.com/leofalp/llmwrap/core/wrapper"
)

// Analysis instructions for the two fan-out branches and the synthesis query.
// The caller's arguments ride along nested under USER_ARGS so the model sees
// the question exactly as posed.
const (
	knowledgeLevelTask = "Analyze the question posed by the user in the USER_ARGS. " +
		"Infer the user's knowledge level based on the request, and provide a statement of that level."

	keyPointsTask = "Analyze the question posed by the user in the USER_ARGS. " +
		"Identify the key points that need to be covered to answer the question, and provide a list of those key points."

	synthesisTask = "Analyze the question posed by the user in the USER_ARGS. " +
		"Provide a comprehensive response to the question posed by the user in the USER_ARGS. " +
		"The response should be tailored to the KNOWLEDGE_LEVEL of the user. " +
		"The response should cover the KEY_POINTS that are relevant to the question."
)

// NewQA builds the question-answering workflow around inner. Every query
// first runs two concurrent analysis sub-queries against the inner wrapper,
// then dispatches a single synthesis query whose arguments carry both
// analyses alongside the caller's original arguments. The caller's operation
// is preserved, so a streamed question streams its synthesized answer.
func NewQA(inner wrapper.Wrapper, options ...decorator.Option) *decorator.Decorator {
	return decorator.New(inner, qaHook{}, options...)
}

// qaHook fans out the two analyses during Prepare and hands the synthesis
// query to the runtime for the invocation's one dispatch.
type qaHook struct{}

var _ decorator.Hook = qaHook{}

func (qaHook) Prepare(ctx context.Context, inv *decorator.Invocation) (*decorator.Request, error) {
	api := inv.API()

	analyze := func(task string) func(context.Context) (string, error) {
		userArgs := inv.Prompt()
		return func(ctx context.Context) (string, error) {
			return inv.Inner().QueryBlock(ctx, "text", wrapper.PromptArgs{
				"USER_ARGS": userArgs,
				"TASK":      task,
			}, api)
		}
	}

	// Submission order fixes the result order: knowledge level first, key
	// points second, whichever finishes earlier.
	analyses, err := bridge.Gather(ctx,
		analyze(knowledgeLevelTask),
		analyze(keyPointsTask),
	)
	if err != nil {
		return nil, err
	}

	return &decorator.Request{
		Prompt: wrapper.PromptArgs{
			"KNOWLEDGE_LEVEL": analyses[0],
			"KEY_POINTS":      analyses[1],
			"USER_ARGS":       inv.Prompt(),
			"TASK":            synthesisTask,
		},
		API: api,
	}, nil
}

func (qaHook) Finalize(_ context.Context, _ *decorator.Invocation, _ *decorator.Result) (*decorator.Result, error) {
	return nil, nil
}
