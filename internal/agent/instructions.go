package agent

import "context"

// Instructions produce an agent's system prompt. They are resolved once per
// model invocation with the run's context, which carries the conversation
// state (see runctx).
type Instructions interface {
	Resolve(ctx context.Context, a *Agent) string
}

type staticInstructions string

func (s staticInstructions) Resolve(context.Context, *Agent) string { return string(s) }

// Static returns fixed instructions.
func Static(text string) Instructions {
	return staticInstructions(text)
}

// DynamicFunc computes instructions from the run context.
type DynamicFunc func(ctx context.Context, a *Agent) string

func (f DynamicFunc) Resolve(ctx context.Context, a *Agent) string { return f(ctx, a) }

// Dynamic returns instructions computed by fn on every model invocation.
func Dynamic(fn func(ctx context.Context, a *Agent) string) Instructions {
	return DynamicFunc(fn)
}
