package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Backend Attributes ---

const (
	// AttrLLMProvider is the name of the LLM backend (e.g., "openai", "cerebras")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4.1", "llama-3.3-70b")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the backend
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMMaxTokens is the maximum tokens allowed
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Token Usage Attributes ---

const (
	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Query Attributes ---

const (
	// AttrQueryOperation is the wrapper operation ("response", "stream", "object", "block")
	AttrQueryOperation = "query.operation"

	// AttrQueryPrompt is the rendered prompt (truncated)
	AttrQueryPrompt = "query.prompt"

	// AttrQueryOutputType is the Go type a structured query decodes into
	AttrQueryOutputType = "query.output_type"

	// AttrQueryBlockType is the fenced block type requested by a block query
	AttrQueryBlockType = "query.block_type"

	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrResponseContent is the response content from the LLM (truncated)
	AttrResponseContent = "response.content"

	// AttrStreamChunks is the number of chunks a stream produced
	AttrStreamChunks = "stream.chunks"
)

// --- Decorator Attributes ---

const (
	// AttrDecoratorBranches is the number of fan-out branches a decorator dispatched
	AttrDecoratorBranches = "decorator.branches"

	// AttrDecoratorState is the decorator lifecycle state at the time of the event
	AttrDecoratorState = "decorator.state"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- History Attributes ---

const (
	// AttrHistoryRecordID is the identifier of a stored query record
	AttrHistoryRecordID = "history.record.id"

	// AttrHistoryRecords is the number of records returned or retained
	AttrHistoryRecords = "history.records"
)

// --- Pattern Attributes ---

const (
	// AttrCacheHit reports whether a cached response satisfied the query
	AttrCacheHit = "cache.hit"

	// AttrCacheKey is the computed cache key for the query
	AttrCacheKey = "cache.key"

	// AttrRetryAttempt is the 1-based retry attempt number
	AttrRetryAttempt = "retry.attempt"

	// AttrRetryBackoff is the backoff duration waited before a retry
	AttrRetryBackoff = "retry.backoff"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanClientQuery is the span name for wrapper query operations
	SpanClientQuery = "client.query"

	// SpanLLMRequest is the span name for LLM API requests
	SpanLLMRequest = "llm.request"

	// SpanDecoratorRun is the span name for a decorator lifecycle run
	SpanDecoratorRun = "decorator.run"

	// SpanHistoryOperation is the span name for history store operations
	SpanHistoryOperation = "history.operation"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of an LLM request
	EventLLMRequestEnd = "llm.request.end"

	// EventTokensReceived marks when token usage is reported by the backend
	EventTokensReceived = "llm.tokens.received" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// EventStreamComplete marks the end of a streamed response
	EventStreamComplete = "llm.stream.complete"

	// EventDecoratorPrepare marks the prepare phase of a decorator run
	EventDecoratorPrepare = "decorator.prepare"

	// EventDecoratorFinalize marks the finalize phase of a decorator run
	EventDecoratorFinalize = "decorator.finalize"

	// EventHistoryAppend marks when a query record is appended to history
	EventHistoryAppend = "history.append"

	// EventHistoryClear marks when history is cleared
	EventHistoryClear = "history.clear"

	// EventCacheHit marks a query answered from cache
	EventCacheHit = "cache.hit"

	// EventCacheMiss marks a query that had to reach the backend
	EventCacheMiss = "cache.miss"

	// EventRetryAttempt marks one retry of a failed query
	EventRetryAttempt = "retry.attempt"
)

// --- Metric Names ---

const (
	// MetricClientRequestCount is the counter for wrapper queries
	MetricClientRequestCount = "llmwrap.client.request.count"

	// MetricClientRequestDuration is the histogram for query duration
	MetricClientRequestDuration = "llmwrap.client.request.duration"

	// MetricClientTokensTotal is the counter for total tokens
	MetricClientTokensTotal = "llmwrap.client.tokens.total"

	// MetricClientTokensPrompt is the counter for prompt tokens
	MetricClientTokensPrompt = "llmwrap.client.tokens.prompt"

	// MetricClientTokensCompletion is the counter for completion tokens
	MetricClientTokensCompletion = "llmwrap.client.tokens.completion"

	// MetricClientStreamChunks is the counter for streamed chunks
	MetricClientStreamChunks = "llmwrap.client.stream.chunks"
)
