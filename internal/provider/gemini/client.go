package gemini

import (
	"context"

	"google.golang.org/genai"
)

// ModelsClient is the part of the genai Models service the provider calls.
// *genai.Models satisfies it.
type ModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Dial connects to the Gemini API backend.
func Dial(ctx context.Context, apiKey string) (ModelsClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}
