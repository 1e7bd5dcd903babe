package client

import (
	"github.com/leofalp/llmwrap/core/prompt"
	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/observability"
)

// ClientOptions collects the configuration [New] applies to a Client. Callers
// do not build one directly; they pass With* functions to New.
type ClientOptions struct {
	Renderer         prompt.Renderer
	SystemPrompt     string
	Defaults         wrapper.ApiArgs
	Observer         observability.Provider
	StreamBufferSize int
}

// WithRenderer selects how prompt arguments become the user message.
// Default: [prompt.Sections].
func WithRenderer(renderer prompt.Renderer) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.Renderer = renderer
	}
}

// WithSystemPrompt prepends a system message to every request.
func WithSystemPrompt(content string) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.SystemPrompt = content
	}
}

// WithDefaults sets api arguments applied under every call's own arguments:
// a call-level field always wins over the default.
func WithDefaults(defaults wrapper.ApiArgs) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.Defaults = defaults
	}
}

// WithObservability attaches an observer. Every operation then runs inside a
// client.query span with duration, token and chunk metrics; streamed
// operations record completion when the stream drains. Default: none.
func WithObservability(observer observability.Provider) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.Observer = observer
	}
}

// WithStreamBufferSize sets the capacity of the chunk pipe between the
// provider and a stream consumer. Values <= 0 keep the bridge default.
func WithStreamBufferSize(size int) func(*ClientOptions) {
	return func(options *ClientOptions) {
		options.StreamBufferSize = size
	}
}
