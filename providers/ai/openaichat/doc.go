// Package openaichat implements the [ai.Provider] and [ai.StreamProvider]
// interfaces over the OpenAI chat-completions wire format, which OpenAI,
// Cerebras and Groq all speak.
//
// Each backend has its own constructor baking in the endpoint, the default
// model and the environment variable the API key is read from: [New]
// (OPENAI_API_KEY), [Cerebras] (CEREBRAS_API_KEY) and [Groq] (GROQ_API_KEY).
// [ForProvider] selects a backend by name for CLIs and examples. Construction
// is configured with functional options ([WithAPIKey], [WithBaseURL],
// [WithModel], [WithHTTPClient], [WithHeader]).
//
// Streaming uses SSE with stream_options.include_usage, so the final
// [ai.Response] carries token usage even for streamed requests. Any other
// OpenAI-compatible server (a proxy, a self-hosted runtime) works through
// [New] with [WithBaseURL] and [WithModel].
package openaichat
