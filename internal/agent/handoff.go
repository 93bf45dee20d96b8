package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/Cyclone1070/turnkit/internal/provider"
)

// InputFilter rewrites the history handed to the next agent.
type InputFilter func(history []provider.Message) []provider.Message

// Handoff lets the model transfer the conversation to another agent by
// calling a tool.
type Handoff struct {
	targetName      string
	target          func() *Agent
	ToolName        string
	ToolDescription string
	// IsEnabled gates the handoff per run; nil means always enabled.
	IsEnabled func(ctx context.Context) bool
	// InputFilter rewrites history before the target sees it; nil keeps it.
	InputFilter InputFilter
}

// HandoffOption customises a Handoff.
type HandoffOption func(*Handoff)

// WithToolName overrides the transfer_to_<name> tool name.
func WithToolName(name string) HandoffOption {
	return func(h *Handoff) { h.ToolName = name }
}

// WithToolDescription overrides the tool description shown to the model.
func WithToolDescription(desc string) HandoffOption {
	return func(h *Handoff) { h.ToolDescription = desc }
}

// WithEnabled gates the handoff. A disabled handoff is not offered to the model.
func WithEnabled(fn func(ctx context.Context) bool) HandoffOption {
	return func(h *Handoff) { h.IsEnabled = fn }
}

// WithInputFilter rewrites the history the target agent sees.
func WithInputFilter(f InputFilter) HandoffOption {
	return func(h *Handoff) { h.InputFilter = f }
}

// HandoffTo builds a handoff to target.
func HandoffTo(target *Agent, opts ...HandoffOption) Handoff {
	h := Handoff{
		targetName: target.Name(),
		target:     func() *Agent { return target },
	}
	return h.apply(target.HandoffDescription(), opts)
}

// HandoffLater builds a handoff whose target is resolved when the handoff is
// taken. It lets two agents hand off to each other.
func HandoffLater(name string, resolve func() *Agent, opts ...HandoffOption) Handoff {
	h := Handoff{targetName: name, target: resolve}
	return h.apply("", opts)
}

func (h Handoff) apply(desc string, opts []HandoffOption) Handoff {
	h.ToolName = DefaultHandoffToolName(h.targetName)
	h.ToolDescription = "Handoff to the " + h.targetName + " agent to handle the request."
	if desc != "" {
		h.ToolDescription += " " + desc
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// TargetName is the target agent's name.
func (h Handoff) TargetName() string { return h.targetName }

// Target resolves the target agent.
func (h Handoff) Target() *Agent {
	if h.target == nil {
		return nil
	}
	return h.target()
}

// Enabled reports whether the handoff may be offered in ctx.
func (h Handoff) Enabled(ctx context.Context) bool {
	return h.IsEnabled == nil || h.IsEnabled(ctx)
}

var nonWord = regexp.MustCompile(`[^a-z0-9_]`)

// DefaultHandoffToolName is "transfer_to_" plus the agent name lower-cased
// with spaces and punctuation turned into underscores.
func DefaultHandoffToolName(agentName string) string {
	name := strings.ToLower(strings.ReplaceAll(agentName, " ", "_"))
	return "transfer_to_" + nonWord.ReplaceAllString(name, "_")
}

// RemoveToolItems drops tool results and tool calls from history. Assistant
// messages left without text are dropped too.
func RemoveToolItems(history []provider.Message) []provider.Message {
	out := make([]provider.Message, 0, len(history))
	for _, m := range history {
		switch {
		case m.Role == provider.RoleTool:
			continue
		case len(m.ToolCalls) > 0:
			if m.Content == "" {
				continue
			}
			m.ToolCalls = nil
		}
		out = append(out, m)
	}
	return out
}

// KeepLast keeps only the last n messages.
func KeepLast(n int) InputFilter {
	return func(history []provider.Message) []provider.Message {
		if n <= 0 {
			return []provider.Message{}
		}
		if len(history) <= n {
			return append([]provider.Message(nil), history...)
		}
		return append([]provider.Message(nil), history[len(history)-n:]...)
	}
}

// Chain applies filters in order.
func Chain(filters ...InputFilter) InputFilter {
	return func(history []provider.Message) []provider.Message {
		for _, f := range filters {
			if f != nil {
				history = f(history)
			}
		}
		return history
	}
}
