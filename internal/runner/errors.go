package runner

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/turnkit/internal/guardrail"
)

// Sentinels matched by the typed errors below.
var (
	ErrGuardrailBlocked  = errors.New("guardrail blocked the run")
	ErrTurnLimitExceeded = errors.New("turn limit exceeded")
	ErrNoFinalObject     = errors.New("run produced no structured output")
)

// GuardrailBlockedError reports a guardrail tripwire. When Direction is
// guardrail.Output the blocked answer is discarded and never returned.
type GuardrailBlockedError struct {
	Direction guardrail.Direction
	Guardrail string
	Agent     string
	Info      map[string]any
}

func (e *GuardrailBlockedError) Error() string {
	msg := fmt.Sprintf("%s guardrail %q blocked the run", e.Direction, e.Guardrail)
	if reason, ok := e.Info["reason"].(string); ok && reason != "" {
		msg += ": " + reason
	}
	return msg
}

func (e *GuardrailBlockedError) Is(target error) bool {
	return target == ErrGuardrailBlocked
}

// ToolError is a handler fault the tool chose to surface (see tool.Fatal).
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// TurnLimitExceededError is returned when the model is still calling tools or
// handing off after MaxTurns invocations.
type TurnLimitExceededError struct {
	MaxTurns int
}

func (e *TurnLimitExceededError) Error() string {
	return fmt.Sprintf("max turns (%d) exceeded", e.MaxTurns)
}

func (e *TurnLimitExceededError) Is(target error) bool {
	return target == ErrTurnLimitExceeded
}

// IsInputBlocked reports whether err is an input guardrail trip.
func IsInputBlocked(err error) bool {
	var g *GuardrailBlockedError
	return errors.As(err, &g) && g.Direction == guardrail.Input
}
