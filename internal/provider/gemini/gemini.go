// Package gemini implements provider.Provider on the native Gemini API.
package gemini

import (
	"context"

	"github.com/Cyclone1070/turnkit/internal/provider"
)

// Provider sends requests to one Gemini model. It holds no mutable state.
type Provider struct {
	models ModelsClient
	model  string
}

func New(models ModelsClient, model string) *Provider {
	return &Provider{models: models, model: model}
}

// Model returns the model name requests are sent to.
func (p *Provider) Model() string { return p.model }

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	resp, err := p.models.GenerateContent(ctx, p.model, toGeminiContents(req.Messages), toGeminiConfig(req))
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return fromGeminiResponse(resp, p.model)
}
