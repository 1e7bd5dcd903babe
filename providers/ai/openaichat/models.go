package openaichat

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/llmwrap/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest is the /v1/chat/completions request payload common to
// OpenAI, Cerebras and Groq.
type chatCompletionRequest struct {
	Model            string         `json:"model"`
	Messages         []chatMessage  `json:"messages"`
	Temperature      *float64       `json:"temperature,omitempty"`
	TopP             *float64       `json:"top_p,omitempty"`
	MaxTokens        *int           `json:"max_tokens,omitempty"`
	Stop             []string       `json:"stop,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"`
	Seed             *int           `json:"seed,omitempty"`
	Stream           *bool          `json:"stream,omitempty"`
	StreamOptions    *streamOptions `json:"stream_options,omitempty"`

	// extra carries provider-specific parameters merged into the payload by
	// MarshalJSON. Unexported so encoding/json does not emit it twice.
	extra map[string]any
}

type chatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// streamOptions configures streaming behavior in the request.
type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// MarshalJSON merges the extra parameters into the typed payload. Extra
// values are applied last and may override typed fields; they are the escape
// hatch for parameters the typed request does not model.
func (r chatCompletionRequest) MarshalJSON() ([]byte, error) {
	type plain chatCompletionRequest
	encoded, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.extra) == 0 {
		return encoded, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.extra {
		encodedValue, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode extra parameter %q: %w", key, err)
		}
		merged[key] = encodedValue
	}
	return json.Marshal(merged)
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "content_filter"
}

type chatResponseMessage struct {
	Role    string `json:"role"` // "assistant"
	Content string `json:"content,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *chatUsage) toUsage() ai.Usage {
	if u == nil {
		return ai.Usage{}
	}
	return ai.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

/*
	CHAT COMPLETIONS STREAMING API - RESPONSE TYPES

	SSE chunks returned by /v1/chat/completions when stream=true. Each chunk
	carries incremental content deltas; the final chunk carries usage when
	stream_options.include_usage is requested.
*/

type chatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"` // "chat.completion.chunk"
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage,omitempty"` // Final chunk only
}

// streamChoice uses Delta instead of the non-streaming Message.
type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"` // Nil until the final chunk for this choice
}

type streamDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"` // Nullable to distinguish empty string from absent
}

/*
	CONVERSION FUNCTIONS
*/

// requestToWire converts the generic request to the wire payload, falling
// back to defaultModel when the request does not name one.
func requestToWire(request *ai.Request, defaultModel string) chatCompletionRequest {
	wire := chatCompletionRequest{
		Model:            request.Model,
		Temperature:      request.Temperature,
		TopP:             request.TopP,
		MaxTokens:        request.MaxTokens,
		Stop:             request.Stop,
		PresencePenalty:  request.PresencePenalty,
		FrequencyPenalty: request.FrequencyPenalty,
		Seed:             request.Seed,
		extra:            request.Extra,
	}
	if wire.Model == "" {
		wire.Model = defaultModel
	}

	wire.Messages = make([]chatMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		wire.Messages = append(wire.Messages, chatMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	return wire
}

// responseFromWire converts a decoded chat completion into the generic form.
// The first choice carries the answer; multiple choices are never requested.
func responseFromWire(decoded *chatCompletionResponse) (*ai.Response, error) {
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	choice := decoded.Choices[0]
	if choice.Message.Content == "" && choice.Message.Refusal != "" {
		return nil, fmt.Errorf("model refused the request: %s", choice.Message.Refusal)
	}

	return &ai.Response{
		Text:         choice.Message.Content,
		Model:        decoded.Model,
		FinishReason: choice.FinishReason,
		Usage:        decoded.Usage.toUsage(),
	}, nil
}
