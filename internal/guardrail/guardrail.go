// Package guardrail defines checks that can block a run before the model sees
// its input or before the caller sees the model's answer.
package guardrail

import "context"

// Direction says which side of a run a guardrail gates.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Result is a guardrail decision. Info is free-form metadata for the caller
// (reason, matched term, classifier verdict).
type Result struct {
	Blocked bool
	Info    map[string]any
}

// Reason returns Info["reason"] when it is a string.
func (r Result) Reason() string {
	s, _ := r.Info["reason"].(string)
	return s
}

// Guardrail evaluates candidate text. Evaluate must not mutate agent or
// conversation state; an error means the check itself could not run.
type Guardrail interface {
	Name() string
	Evaluate(ctx context.Context, text string) (Result, error)
}

// Pass is the Result of a guardrail that lets text through.
func Pass() Result {
	return Result{}
}

// Block is a blocking Result with a reason.
func Block(reason string) Result {
	return Result{Blocked: true, Info: map[string]any{"reason": reason}}
}
