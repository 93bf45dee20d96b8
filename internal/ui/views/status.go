package views

import (
	"fmt"

	"github.com/Cyclone1070/turnkit/internal/workflow"
)

// Status phases understood by RenderStatus.
const (
	PhaseThinking  = "thinking"
	PhaseTool      = "tool"
	PhaseToolDone  = "done"
	PhaseFailed    = "failed"
	PhaseHandoff   = "handoff"
	PhaseGuardrail = "guardrail"
	PhaseBlocked   = "blocked"
	PhaseError     = "error"
)

// RenderStatus renders one status line.
func RenderStatus(phase, message string) string {
	switch phase {
	case PhaseThinking:
		return StatusThinkingStyle.Render("… " + message)
	case PhaseTool:
		return StatusToolStyle.Render("⚙ " + message)
	case PhaseToolDone:
		return StatusDoneStyle.Render("✔ " + message)
	case PhaseFailed, PhaseError:
		return StatusErrorStyle.Render("✖ " + message)
	case PhaseHandoff:
		return StatusHandoffStyle.Render("→ " + message)
	case PhaseGuardrail:
		return StatusThinkingStyle.Render("⛨ " + message)
	case PhaseBlocked:
		return StatusGuardrailStyle.Render("⛔ " + message)
	default:
		return StatusDefaultStyle.Render(message)
	}
}

// DescribeEvent maps a runner event to a status phase and message.
// ok is false for events that have no status line.
func DescribeEvent(ev workflow.Event) (phase, message string, ok bool) {
	switch e := ev.(type) {
	case workflow.ThinkingEvent:
		return PhaseThinking, fmt.Sprintf("%s is thinking (turn %d)", e.Agent, e.Turn), true
	case workflow.ToolStartEvent:
		return PhaseTool, e.RequestDisplay, true
	case workflow.ToolEndEvent:
		if e.Failed {
			return PhaseFailed, fmt.Sprintf("%s: %s", e.ToolName, e.Display), true
		}
		return PhaseToolDone, fmt.Sprintf("%s: %s", e.ToolName, e.Display), true
	case workflow.HandoffEvent:
		return PhaseHandoff, fmt.Sprintf("%s handed off to %s", e.From, e.To), true
	case workflow.GuardrailEvent:
		if e.Blocked {
			return PhaseBlocked, fmt.Sprintf("%s guardrail %q tripped", e.Direction, e.Name), true
		}
		return PhaseGuardrail, fmt.Sprintf("%s guardrail %q passed", e.Direction, e.Name), true
	default:
		return "", "", false
	}
}
