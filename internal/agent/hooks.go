package agent

import "context"

// Hooks are optional lifecycle callbacks invoked by the runner for the agent
// that owns them. Nil fields are skipped.
type Hooks struct {
	OnStart     func(ctx context.Context, a *Agent)
	OnEnd       func(ctx context.Context, a *Agent, output string)
	OnHandoff   func(ctx context.Context, from, to *Agent)
	OnToolStart func(ctx context.Context, a *Agent, toolName string)
	OnToolEnd   func(ctx context.Context, a *Agent, toolName, result string)
}
