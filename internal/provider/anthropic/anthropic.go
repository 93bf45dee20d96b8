// Package anthropic implements provider.Provider on the Anthropic Messages API.
package anthropic

import (
	"context"

	"github.com/Cyclone1070/turnkit/internal/provider"
)

// defaultMaxTokens is sent when the request leaves MaxTokens unset; the
// Messages API requires one.
const defaultMaxTokens = 4096

// Provider talks to the Anthropic Messages API.
type Provider struct {
	client MessagesClient
	model  string
}

// New creates a Provider for model.
func New(client MessagesClient, model string) *Provider {
	return &Provider{client: client, model: model}
}

// Model returns the model name requests are sent to.
func (p *Provider) Model() string { return p.model }

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := p.model
	msg, err := p.client.New(ctx, toMessageParams(model, req))
	if err != nil {
		return nil, mapError(err)
	}
	return fromMessage(msg, model)
}
