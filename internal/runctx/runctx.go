// Package runctx carries the caller-owned conversation state through a run.
//
// The state is attached to the context.Context handed to the runner, so tool
// handlers, guardrails, instruction resolvers and handoff predicates all see
// the same value without any agent holding it.
package runctx

import "context"

type stateKey struct{}

// With returns a copy of ctx carrying state.
func With(ctx context.Context, state any) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// From returns the state attached to ctx if it has type T.
func From[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(stateKey{}).(T)
	return v, ok
}

// Value returns the raw state attached to ctx, or nil.
func Value(ctx context.Context) any {
	return ctx.Value(stateKey{})
}
