package client

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/leofalp/llmwrap/core/bridge"
	"github.com/leofalp/llmwrap/core/parse"
	"github.com/leofalp/llmwrap/core/prompt"
	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/internal/jsonschema"
	"github.com/leofalp/llmwrap/providers/ai"
	"github.com/leofalp/llmwrap/providers/observability"
)

// Client is the provider adapter: the innermost layer of every decorator
// chain, implementing the full wrapper contract against one [ai.Provider].
// It is the sole conversion point between prompt/api arguments and
// role/content message lists, and between provider responses and contract
// results.
//
// A Client keeps no per-call state (no conversation memory) and is safe for
// concurrent use.
type Client struct {
	provider   ai.Provider
	renderer   prompt.Renderer
	system     string
	defaults   wrapper.ApiArgs
	observer   observability.Provider
	bufferSize int
}

// Ensure Client implements the contract at compile time.
var _ wrapper.Wrapper = (*Client)(nil)

// New builds the adapter around provider, which must be non-nil.
//
// Example:
//
//	w := client.New(openaichat.New(),
//	    client.WithSystemPrompt("You are a concise assistant."),
//	    client.WithDefaults(wrapper.ApiArgs{Temperature: utils.Ptr(0.2)}),
//	)
//	answer, tokens, err := w.QueryResponse(ctx, wrapper.PromptArgs{
//	    "QUESTION": "What is the capital of Piedmont?",
//	}, wrapper.ApiArgs{})
func New(provider ai.Provider, opts ...func(*ClientOptions)) *Client {
	options := &ClientOptions{
		Renderer:         prompt.Sections{},
		StreamBufferSize: bridge.DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Renderer == nil {
		options.Renderer = prompt.Sections{}
	}

	return &Client{
		provider:   provider,
		renderer:   options.Renderer,
		system:     options.SystemPrompt,
		defaults:   options.Defaults,
		observer:   options.Observer,
		bufferSize: options.StreamBufferSize,
	}
}

// QueryResponse implements [wrapper.Wrapper]. It blocks for the complete
// response text and reports the total tokens the call consumed.
func (c *Client) QueryResponse(ctx context.Context, promptArgs wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
	request, err := c.buildRequest(promptArgs, api, "")
	if err != nil {
		return "", 0, err
	}

	ctx, qs := c.startQuery(ctx, wrapper.OpResponse, request)
	response, err := c.complete(ctx, request)
	if err != nil {
		return "", 0, qs.fail(ctx, err)
	}
	qs.succeed(ctx, response)

	return response.Text, response.Usage.TotalTokens, nil
}

// QueryStream implements [wrapper.Wrapper]. With a streaming provider the
// chunks cross a bounded pipe in emission order and backend failures reach
// the consumer as the iterator's final error; a provider without streaming
// support is driven through Complete and its text delivered as one chunk.
//
// Argument and rendering problems are returned immediately. Nothing is sent
// to a streaming backend until the stream is consumed.
func (c *Client) QueryStream(ctx context.Context, promptArgs wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error) {
	request, err := c.buildRequest(promptArgs, api, "")
	if err != nil {
		return nil, err
	}

	ctx, qs := c.startQuery(ctx, wrapper.OpStream, request)

	streamer, ok := c.provider.(ai.StreamProvider)
	if !ok {
		response, err := c.complete(ctx, request)
		if err != nil {
			return nil, qs.fail(ctx, err)
		}
		qs.succeed(ctx, response)
		return wrapper.NewTextStream(response.Text), nil
	}

	// The provider pushes into its own channel; the pipe turns that into the
	// contract's pull-style iterator. finalResponse is written by the
	// producer before the pipe closes, so reading it after the stream drains
	// is ordered.
	var finalResponse *ai.Response
	chunkSequence := bridge.Pipe(ctx, c.bufferSize, func(ctx context.Context, emit func(string) error) error {
		chunks := make(chan ai.Chunk, c.bufferSize)
		var streamErr error
		go func() {
			defer close(chunks)
			finalResponse, streamErr = streamer.Stream(ctx, request, chunks)
		}()
		for chunk := range chunks {
			if err := emit(chunk.Text); err != nil {
				return err
			}
		}
		if streamErr != nil {
			return c.backendError(streamErr)
		}
		return nil
	})

	if qs != nil {
		chunkSequence = qs.observeStream(ctx, chunkSequence, &finalResponse)
	}
	return wrapper.NewStream(chunkSequence), nil
}

// QueryObject implements [wrapper.Wrapper]. It appends an output-format
// instruction carrying the JSON schema generated from target's type, queries,
// and decodes the response into target. Output that cannot be decoded fails
// with an error matching [parse.ErrValidation].
func (c *Client) QueryObject(ctx context.Context, target any, promptArgs wrapper.PromptArgs, api wrapper.ApiArgs) error {
	pointer := reflect.ValueOf(target)
	if pointer.Kind() != reflect.Pointer || pointer.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", parse.ErrValidation, target)
	}

	instruction, err := objectInstruction(target)
	if err != nil {
		return err
	}
	request, err := c.buildRequest(promptArgs, api, instruction)
	if err != nil {
		return err
	}

	ctx, qs := c.startQuery(ctx, wrapper.OpObject, request,
		observability.String(observability.AttrQueryOutputType, fmt.Sprintf("%T", target)),
	)
	response, err := c.complete(ctx, request)
	if err != nil {
		return qs.fail(ctx, err)
	}
	if err := parse.Into(response.Text, target); err != nil {
		return qs.fail(ctx, err)
	}
	qs.succeed(ctx, response)

	return nil
}

// QueryBlock implements [wrapper.Wrapper]. It appends a fenced-block
// instruction for blockType, queries, and extracts the block from the
// response. Output without the requested block fails with an error matching
// [parse.ErrFormat].
func (c *Client) QueryBlock(ctx context.Context, blockType string, promptArgs wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
	request, err := c.buildRequest(promptArgs, api, blockInstruction(blockType))
	if err != nil {
		return "", err
	}

	ctx, qs := c.startQuery(ctx, wrapper.OpBlock, request,
		observability.String(observability.AttrQueryBlockType, blockType),
	)
	response, err := c.complete(ctx, request)
	if err != nil {
		return "", qs.fail(ctx, err)
	}
	block, err := parse.ExtractBlock(response.Text, blockType)
	if err != nil {
		return "", qs.fail(ctx, err)
	}
	qs.succeed(ctx, response)

	return block, nil
}

// buildRequest validates both argument structures and converts them into the
// provider request: defaults merged under call arguments, prompt arguments
// rendered into the user message, the optional instruction appended as an
// OUTPUT FORMAT section. It also rejects a client built without a provider,
// so no operation ever dereferences one.
func (c *Client) buildRequest(promptArgs wrapper.PromptArgs, api wrapper.ApiArgs, instruction string) (*ai.Request, error) {
	if c.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", wrapper.ErrBackend)
	}
	if err := promptArgs.Validate(); err != nil {
		return nil, err
	}
	if err := api.Validate(); err != nil {
		return nil, err
	}

	rendered, err := c.renderer.Render(promptArgs)
	if err != nil {
		return nil, err
	}
	if instruction != "" {
		if rendered != "" {
			rendered += "\n\n"
		}
		rendered += "# OUTPUT FORMAT\n" + instruction
	}

	merged := c.defaults.Merge(api)

	messages := make([]ai.Message, 0, 2)
	if c.system != "" {
		messages = append(messages, ai.System(c.system))
	}
	messages = append(messages, ai.User(rendered))

	return &ai.Request{
		Model:            merged.Model,
		Messages:         messages,
		Temperature:      merged.Temperature,
		TopP:             merged.TopP,
		MaxTokens:        merged.MaxTokens,
		Stop:             merged.Stop,
		PresencePenalty:  merged.PresencePenalty,
		FrequencyPenalty: merged.FrequencyPenalty,
		Seed:             merged.Seed,
		Extra:            merged.Extra,
	}, nil
}

// complete drives one blocking completion through the bridge, so provider
// panics cannot crash the caller and cancellation abandons the worker instead
// of hanging.
func (c *Client) complete(ctx context.Context, request *ai.Request) (*ai.Response, error) {
	response, err := bridge.Call(ctx, func(ctx context.Context) (*ai.Response, error) {
		return c.provider.Complete(ctx, request)
	})
	if err != nil {
		return nil, c.backendError(err)
	}
	if response == nil {
		return nil, fmt.Errorf("%w: %s returned no response", wrapper.ErrBackend, c.provider.Name())
	}
	return response, nil
}

// backendError classifies a provider failure as the contract's backend kind.
// The cause stays inspectable through errors.Is/As but the contract makes no
// promise about its shape.
func (c *Client) backendError(err error) error {
	return fmt.Errorf("%w: %s: %w", wrapper.ErrBackend, c.provider.Name(), err)
}

// objectInstruction builds the OUTPUT FORMAT text for a structured query from
// the JSON schema of target's type.
func objectInstruction(target any) (string, error) {
	schema, err := jsonschema.GenerateForType(reflect.TypeOf(target))
	if err != nil {
		return "", fmt.Errorf("%w: generate schema for %T: %v", parse.ErrValidation, target, err)
	}
	encoded, err := schema.JsonString(true)
	if err != nil {
		return "", fmt.Errorf("%w: encode schema for %T: %v", parse.ErrValidation, target, err)
	}
	return "Respond with a single JSON object conforming to this JSON Schema:\n" +
		encoded +
		"\nOutput raw JSON only: no prose, no code fences.", nil
}

// blockInstruction builds the OUTPUT FORMAT text for a block query. The text
// pseudo-type asks for prose instead of a fence.
func blockInstruction(blockType string) string {
	blockType = strings.ToLower(strings.TrimSpace(blockType))
	if blockType == "" || blockType == "text" {
		return "Answer in plain text, without markdown code fences."
	}
	return fmt.Sprintf("Answer with exactly one fenced %s code block:\n```%s\n<answer>\n```\nPut nothing outside the block.", blockType, blockType)
}
