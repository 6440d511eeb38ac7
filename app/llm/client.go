// Package llm provides chat completion clients for the providers the
// digest pipelines can score and summarize with.
package llm

import (
	"context"
	"fmt"
)

// Client is a minimal chat interface: one system prompt, one user
// prompt, one text response.
type Client interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider        string // openai, deepseek or anthropic
	Endpoint        string // optional endpoint override
	Model           string // optional model override
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	AnthropicAPIKey string
}

const (
	openAIEndpoint   = "https://api.openai.com/v1/chat/completions"
	deepSeekEndpoint = "https://api.deepseek.com/chat/completions"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultDeepSeekModel  = "deepseek-chat"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

// New builds a client for the configured provider.
func New(opts Options) (Client, error) {
	switch opts.Provider {
	case "openai", "":
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		endpoint := opts.Endpoint
		if endpoint == "" {
			endpoint = openAIEndpoint
		}
		model := opts.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAICompatible(endpoint, model, opts.OpenAIAPIKey), nil
	case "deepseek":
		if opts.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY not set")
		}
		endpoint := opts.Endpoint
		if endpoint == "" {
			endpoint = deepSeekEndpoint
		}
		model := opts.Model
		if model == "" {
			model = defaultDeepSeekModel
		}
		return NewOpenAICompatible(endpoint, model, opts.DeepSeekAPIKey), nil
	case "anthropic":
		if opts.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		model := opts.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		return NewAnthropic(opts.AnthropicAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", opts.Provider)
	}
}
