package openaicompat

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the subset of the go-openai client the provider uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Dial creates a go-openai client for any OpenAI-compatible endpoint.
// An empty baseURL keeps the library default.
func Dial(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
