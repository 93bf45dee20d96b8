package anthropic

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessagesClient is the subset of the SDK message service the provider uses.
// *sdk.MessageService satisfies it.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Dial returns the SDK message service for apiKey. Retries are handled by
// provider.Retrying, so the SDK's own are disabled.
func Dial(apiKey string) MessagesClient {
	client := sdk.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return &client.Messages
}
