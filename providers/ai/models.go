package ai

/*
	##### REQUEST #####
*/

// Request represents a single chat completion request. The adapter in
// core/client builds one per query; providers translate it to their wire
// format.
type Request struct {
	Model            string         `json:"model,omitempty"`             // Model name or identifier
	Messages         []Message      `json:"messages"`                    // Full conversation, system prompt included
	Temperature      *float64       `json:"temperature,omitempty"`       // Sampling temperature [0..2]
	TopP             *float64       `json:"top_p,omitempty"`             // Nucleus sampling (0..1], alternative to temperature
	MaxTokens        *int           `json:"max_tokens,omitempty"`        // Cap on generated tokens
	Stop             []string       `json:"stop,omitempty"`              // Stop sequences
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`  // Penalty [-2..2], encourages new topics
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"` // Penalty [-2..2], reduces repetition
	Seed             *int           `json:"seed,omitempty"`              // Best-effort deterministic sampling
	Extra            map[string]any `json:"-"`                           // Provider-specific parameters, merged into the wire payload
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds an assistant message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

/*
	##### RESPONSE #####
*/

// Usage carries the token accounting a provider reports for one request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Response represents a completed chat request.
type Response struct {
	Text         string `json:"text"`
	Model        string `json:"model,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage,omitempty"`
}

// Chunk is the ordered unit of generated text pushed by a streaming
// provider. Chunks carry text only; usage arrives with the final Response.
type Chunk struct {
	Text string `json:"text"`
}

/*
	##### ENUMS #####
*/

// Role represents the role of a message; compatible with string.
type Role string

const (
	RoleSystem    Role = "system"    // System instructions/configuration
	RoleUser      Role = "user"      // End-user message
	RoleAssistant Role = "assistant" // Model response
)
