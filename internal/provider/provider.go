package provider

import "context"

// Provider is a chat model backend. Implementations must be safe for
// concurrent use; one instance is shared by every session.
type Provider interface {
	// Generate sends one request and returns the assistant's reply.
	// It may return a partial response AND an error (e.g. ErrContextLengthExceeded).
	Generate(ctx context.Context, req *Request) (*Response, error)
}
