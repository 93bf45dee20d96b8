// Package openaicompat implements provider.Provider on the OpenAI Chat
// Completions wire format. Gemini, OpenAI and most local servers speak it.
package openaicompat

import (
	"context"

	"github.com/Cyclone1070/turnkit/internal/provider"
)

// Provider talks to an OpenAI-compatible chat completions endpoint.
type Provider struct {
	client ChatClient
	model  string
}

// New creates a Provider for model.
func New(client ChatClient, model string) *Provider {
	return &Provider{client: client, model: model}
}

// Model returns the model name requests are sent to.
func (p *Provider) Model() string { return p.model }

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := p.model
	resp, err := p.client.CreateChatCompletion(ctx, toChatRequest(model, req))
	if err != nil {
		return nil, mapError(err)
	}
	return fromChatResponse(resp, model)
}
