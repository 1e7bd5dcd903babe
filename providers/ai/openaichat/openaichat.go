package openaichat

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/llmwrap/internal/utils"
	"github.com/leofalp/llmwrap/providers/ai"
)

const chatCompletionsPath = "/chat/completions"

// Preset endpoints and default models for the backends this package ships.
// Every preset can be overridden per client via options or the provider's
// *_API_BASE_URL environment variable.
const (
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "gpt-4o-mini"

	cerebrasBaseURL = "https://api.cerebras.ai/v1"
	cerebrasModel   = "llama-3.3-70b"

	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "llama-3.3-70b-versatile"
)

// Client speaks the OpenAI chat-completions wire format, which OpenAI,
// Cerebras and Groq share. One constructor per backend bakes in the endpoint,
// the default model and the environment variable the API key is read from.
type Client struct {
	name       string
	apiKey     string
	keyEnv     string
	baseURL    string
	model      string
	httpClient *http.Client
	headers    []utils.HeaderOption
}

// Compile-time interface checks.
var (
	_ ai.Provider       = (*Client)(nil)
	_ ai.StreamProvider = (*Client)(nil)
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithAPIKey overrides the key read from the provider's environment variable.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithBaseURL points the client at a different endpoint, e.g. a proxy or a
// self-hosted OpenAI-compatible server. The path must include the version
// prefix ("https://host/v1").
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithModel overrides the preset default model. A model set in the request
// arguments still wins over this.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient replaces the HTTP client, e.g. to set timeouts or a custom
// transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithHeader adds a header to every request. Headers are applied after the
// defaults and may override them.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers = append(c.headers, utils.HeaderOption{Key: key, Value: value})
	}
}

// New builds a client for the OpenAI API. The key is read from
// OPENAI_API_KEY, the endpoint from OPENAI_API_BASE_URL when set.
func New(options ...Option) *Client {
	return newClient("openai", openAIBaseURL, openAIModel, "OPENAI_API_KEY", "OPENAI_API_BASE_URL", options)
}

// Cerebras builds a client for the Cerebras inference API. The key is read
// from CEREBRAS_API_KEY, the endpoint from CEREBRAS_API_BASE_URL when set.
func Cerebras(options ...Option) *Client {
	return newClient("cerebras", cerebrasBaseURL, cerebrasModel, "CEREBRAS_API_KEY", "CEREBRAS_API_BASE_URL", options)
}

// Groq builds a client for the Groq API. The key is read from GROQ_API_KEY,
// the endpoint from GROQ_API_BASE_URL when set.
func Groq(options ...Option) *Client {
	return newClient("groq", groqBaseURL, groqModel, "GROQ_API_KEY", "GROQ_API_BASE_URL", options)
}

// ForProvider builds a client for a backend selected by name ("openai",
// "cerebras" or "groq") with an optional model override, for CLIs and
// examples that take the backend as a flag. An empty model keeps the preset
// default; explicit options win over the model argument.
func ForProvider(name, model string, options ...Option) (*Client, error) {
	if model != "" {
		options = append([]Option{WithModel(model)}, options...)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return New(options...), nil
	case "cerebras":
		return Cerebras(options...), nil
	case "groq":
		return Groq(options...), nil
	}
	return nil, fmt.Errorf("unknown provider %q (want openai, cerebras or groq)", name)
}

func newClient(name, baseURL, model, keyEnv, baseURLEnv string, options []Option) *Client {
	client := &Client{
		name:       name,
		apiKey:     os.Getenv(keyEnv),
		keyEnv:     keyEnv,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{},
	}
	if override := os.Getenv(baseURLEnv); override != "" {
		client.baseURL = strings.TrimRight(override, "/")
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Name implements [ai.Provider].
func (c *Client) Name() string {
	return c.name
}

// Model returns the model used when a request does not name one.
func (c *Client) Model() string {
	return c.model
}

// Complete implements [ai.Provider] against the chat completions endpoint.
func (c *Client) Complete(ctx context.Context, request *ai.Request) (*ai.Response, error) {
	if c.apiKey == "" {
		return nil, c.missingKeyError()
	}

	wire := requestToWire(request, c.model)
	httpResponse, decoded, err := utils.DoPostSync[chatCompletionResponse](ctx, c.httpClient, c.baseURL+chatCompletionsPath, c.apiKey, wire, c.headers...)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, fmt.Errorf("empty response from %s API: %s", c.name, httpResponse.Status)
	}

	return responseFromWire(decoded)
}

func (c *Client) missingKeyError() error {
	return fmt.Errorf("API key is not set (set %s or use WithAPIKey)", c.keyEnv)
}
