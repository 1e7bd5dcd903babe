// Package wrapper defines the four-operation chat-completion contract shared by
// every component in the module: providers adapt backends to it, decorators
// compose on top of it, and callers program against it.
//
// The central interface is [Wrapper] with its operations QueryResponse,
// QueryStream, QueryObject and QueryBlock. Arguments travel in two typed
// structures: [PromptArgs] carries named template variables (UPPERCASE names by
// caller convention) and [ApiArgs] carries execution parameters forwarded to the
// backend. Streaming responses are delivered as a single-use [Stream] of text
// chunks. For type-safe structured output without a manual pointer target, use
// the generic [ObjectAs] helper.
package wrapper
