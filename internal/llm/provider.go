package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ppiankov/verifact/internal/util"
)

var (
	// ErrMissingAPIKey is returned when a provider is built without a credential
	ErrMissingAPIKey = errors.New("LLM API key is required")

	// ErrEmptyResponse is returned when the backend answers with no choices or content
	ErrEmptyResponse = errors.New("empty response from LLM backend")
)

// Provider is a chat-completion backend capable of tool calling
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model requests are sent to
	Model() string

	// Complete sends one chat turn and returns the assistant reply
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Role is the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool" // Result of a tool call requested by the assistant
)

// Message is one entry of the conversation
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall // Assistant messages only
	ToolCallID string     // Tool messages only
}

// ToolDefinition advertises a callable tool to the backend
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema of the arguments object
}

// ToolCall is a tool invocation requested by the assistant
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON object
}

// ToolChoice controls whether the backend may call the advertised tools
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "" // Backend decides
	ToolChoiceNone ToolChoice = "none"
)

// Request is one completion request
type Request struct {
	System      string
	Messages    []Message
	Tools       []ToolDefinition
	ToolChoice  ToolChoice // Ignored when Tools is empty
	MaxTokens   int
	Temperature float32
}

// Response is the assistant's reply
type Response struct {
	Content    string
	ToolCalls  []ToolCall
	Model      string
	StopReason string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the selected provider
	APIKey string

	// BaseURL for custom or proxied endpoints
	BaseURL string

	// Timeout for a single backend call, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32

	// MaxIterations bounds tool-call rounds per agent task
	MaxIterations int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "openai",
		Timeout:       120,
		MaxTokens:     2000,
		Temperature:   0.2,
		MaxIterations: 6,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) httpClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = util.NewProxyFunc(c.HTTPProxy, c.HTTPSProxy, c.NoProxy)
	return &http.Client{Transport: tr, Timeout: c.timeout()}
}

// StringParameter builds the JSON schema of an arguments object with one required string field
func StringParameter(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{name},
	}
}
